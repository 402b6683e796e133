package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
	"github.com/jackc/pgx/v5"
)

const (
	poolPrimary  = "primary"
	poolFallback = "fallback"
)

// ProductExists reports whether the catalog knows the product
func (db *Database) ProductExists(ctx context.Context, productID int) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE product_id = $1)`, productID).Scan(&exists)
	return exists, err
}

// GetProductWarehouseMapping returns the stored mapping of a product, or ErrNotFound when none was saved
func (db *Database) GetProductWarehouseMapping(ctx context.Context, productID int) (*models.ProductWarehouseMapping, error) {
	var m models.ProductWarehouseMapping
	var mappingType string
	var updatedAt time.Time
	err := db.Pool.QueryRow(ctx,
		`SELECT product_id, mapping_type, enable_fallback, notes, updated_at
		 FROM product_warehouse_mappings WHERE product_id = $1`, productID,
	).Scan(&m.ProductID, &mappingType, &m.EnableFallback, &m.Notes, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// Kept raw; readers decide how to treat a type they do not know
	m.Type = models.MappingStrategy(mappingType)
	m.UpdatedAt = &updatedAt

	rows, err := db.Pool.Query(ctx,
		`SELECT warehouse_id, pool FROM product_warehouse_mapping_items
		 WHERE product_id = $1 ORDER BY pool DESC, position`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m.PrimaryWarehouses = []int{}
	m.FallbackWarehouses = []int{}
	for rows.Next() {
		var id int
		var pool string
		if err := rows.Scan(&id, &pool); err != nil {
			return nil, err
		}
		addItem(&m, pool, id)
	}
	return &m, rows.Err()
}

// ListProductWarehouseMappings returns every stored mapping ordered by product id
func (db *Database) ListProductWarehouseMappings(ctx context.Context) ([]models.ProductWarehouseMapping, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT product_id, mapping_type, enable_fallback, notes, updated_at
		 FROM product_warehouse_mappings ORDER BY product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ProductWarehouseMapping, 0)
	index := make(map[int]int)
	for rows.Next() {
		var m models.ProductWarehouseMapping
		var mappingType string
		var updatedAt time.Time
		if err := rows.Scan(&m.ProductID, &mappingType, &m.EnableFallback, &m.Notes, &updatedAt); err != nil {
			return nil, err
		}
		// Stored values are kept raw so audits can flag them
		m.Type = models.MappingStrategy(mappingType)
		m.UpdatedAt = &updatedAt
		m.PrimaryWarehouses = []int{}
		m.FallbackWarehouses = []int{}
		index[m.ProductID] = len(out)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	items, err := db.Pool.Query(ctx,
		`SELECT product_id, warehouse_id, pool FROM product_warehouse_mapping_items
		 ORDER BY product_id, pool DESC, position`)
	if err != nil {
		return nil, err
	}
	defer items.Close()
	for items.Next() {
		var productID, id int
		var pool string
		if err := items.Scan(&productID, &id, &pool); err != nil {
			return nil, err
		}
		if i, ok := index[productID]; ok {
			addItem(&out[i], pool, id)
		}
	}
	return out, items.Err()
}

// SetProductWarehouseMapping replaces the mapping of a product atomically.
// The previous mapping is discarded wholesale; the last writer wins.
func (db *Database) SetProductWarehouseMapping(ctx context.Context, productID int, m models.WarehouseMapping) (time.Time, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE product_id = $1)`, productID).Scan(&exists); err != nil {
		return time.Time{}, err
	}
	if !exists {
		return time.Time{}, ErrNotFound
	}

	var updatedAt time.Time
	if err := tx.QueryRow(ctx,
		`INSERT INTO product_warehouse_mappings (product_id, mapping_type, enable_fallback, notes, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (product_id) DO UPDATE
		 SET mapping_type = EXCLUDED.mapping_type, enable_fallback = EXCLUDED.enable_fallback,
		     notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
		 RETURNING updated_at`,
		productID, string(m.Type), m.EnableFallback, m.Notes,
	).Scan(&updatedAt); err != nil {
		return time.Time{}, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_warehouse_mapping_items WHERE product_id = $1`, productID); err != nil {
		return time.Time{}, err
	}
	for pos, id := range m.PrimaryWarehouses {
		if _, err := tx.Exec(ctx, `INSERT INTO product_warehouse_mapping_items (product_id, warehouse_id, pool, position) VALUES ($1,$2,$3,$4)`,
			productID, id, poolPrimary, pos,
		); err != nil {
			return time.Time{}, err
		}
	}
	for pos, id := range m.FallbackWarehouses {
		if _, err := tx.Exec(ctx, `INSERT INTO product_warehouse_mapping_items (product_id, warehouse_id, pool, position) VALUES ($1,$2,$3,$4)`,
			productID, id, poolFallback, pos,
		); err != nil {
			return time.Time{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return time.Time{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return updatedAt, nil
}

func addItem(m *models.ProductWarehouseMapping, pool string, id int) {
	if pool == poolFallback {
		m.FallbackWarehouses = append(m.FallbackWarehouses, id)
		return
	}
	m.PrimaryWarehouses = append(m.PrimaryWarehouses, id)
}
