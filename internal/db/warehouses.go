package db

import (
	"context"
	"errors"
	"strings"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
	"github.com/jackc/pgx/v5"
)

const warehouseColumns = `warehouse_id, type, name, location, is_active, created_at, updated_at`

// WarehouseFilter narrows ListWarehouses
type WarehouseFilter struct {
	Type            *models.WarehouseType
	IncludeInactive bool
}

func scanWarehouse(row pgx.Row) (models.Warehouse, error) {
	var w models.Warehouse
	var typ string
	if err := row.Scan(&w.ID, &typ, &w.Name, &w.Location, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return w, err
	}
	w.Type = models.WarehouseType(typ)
	return w, nil
}

// ListWarehouses returns the warehouse catalog ordered by id
func (db *Database) ListWarehouses(ctx context.Context, f WarehouseFilter) ([]models.Warehouse, error) {
	var conds []string
	var args []any
	if !f.IncludeInactive {
		conds = append(conds, "is_active = TRUE")
	}
	if f.Type != nil {
		args = append(args, string(*f.Type))
		conds = append(conds, "type = $1::warehouse_type")
	}
	q := `SELECT ` + warehouseColumns + ` FROM warehouses`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY warehouse_id`

	rows, err := db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	warehouses := make([]models.Warehouse, 0)
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

// GetWarehouse returns one warehouse by id
func (db *Database) GetWarehouse(ctx context.Context, id int) (*models.Warehouse, error) {
	w, err := scanWarehouse(db.Pool.QueryRow(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE warehouse_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWarehouse inserts a new warehouse
func (db *Database) CreateWarehouse(ctx context.Context, in models.WarehouseInput) (*models.Warehouse, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	w, err := scanWarehouse(db.Pool.QueryRow(ctx,
		`INSERT INTO warehouses (name, type, location, is_active) VALUES ($1, $2::warehouse_type, $3, $4)
		 RETURNING `+warehouseColumns,
		in.Name, string(in.Type), in.Location, active,
	))
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// UpdateWarehouse updates warehouse fields
func (db *Database) UpdateWarehouse(ctx context.Context, id int, in models.WarehouseInput) (*models.Warehouse, error) {
	w, err := scanWarehouse(db.Pool.QueryRow(ctx,
		`UPDATE warehouses
		 SET name = $2, type = $3::warehouse_type, location = $4, is_active = COALESCE($5, is_active), updated_at = now()
		 WHERE warehouse_id = $1
		 RETURNING `+warehouseColumns,
		id, in.Name, string(in.Type), in.Location, in.IsActive,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// DeactivateWarehouse hides a warehouse from the catalog; stored mappings keep referencing it
func (db *Database) DeactivateWarehouse(ctx context.Context, id int) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE warehouses SET is_active = FALSE, updated_at = now() WHERE warehouse_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
