// Package seed loads a warehouse catalog from YAML and creates the warehouses
// that are not in the database yet.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/logging"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
	"gopkg.in/yaml.v3"
)

// Catalog is the seed file layout:
//
//	version: 1
//	warehouses:
//	  - name: North Zonal
//	    type: zonal
//	    location: Milan
type Catalog struct {
	Version    int         `yaml:"version"`
	Warehouses []Warehouse `yaml:"warehouses"`
}

// Warehouse is one seeded entry; Type must be zonal or division
type Warehouse struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Location string `yaml:"location"`
}

// Store is what Apply needs from the database
type Store interface {
	ListWarehouses(ctx context.Context, f db.WarehouseFilter) ([]models.Warehouse, error)
	CreateWarehouse(ctx context.Context, in models.WarehouseInput) (*models.Warehouse, error)
}

// ParseCatalogYAML decodes and checks a version 1 catalog
func ParseCatalogYAML(b []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, err
	}
	if c.Version != 1 {
		return Catalog{}, errors.New("seed: unsupported version")
	}
	seen := make(map[string]bool, len(c.Warehouses))
	for i, w := range c.Warehouses {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			return Catalog{}, fmt.Errorf("seed: warehouse %d has no name", i)
		}
		if _, err := models.ParseWarehouseType(w.Type); err != nil {
			return Catalog{}, fmt.Errorf("seed: %s: %w", name, err)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return Catalog{}, fmt.Errorf("seed: duplicate warehouse %q", name)
		}
		seen[key] = true
	}
	return c, nil
}

// LoadCatalog reads and parses the catalog file at path
func LoadCatalog(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	return ParseCatalogYAML(b)
}

// Apply creates every seeded warehouse whose name is not taken yet, active or not.
// Existing warehouses are never modified.
func Apply(ctx context.Context, store Store, c Catalog) (int, error) {
	existing, err := store.ListWarehouses(ctx, db.WarehouseFilter{IncludeInactive: true})
	if err != nil {
		return 0, fmt.Errorf("list warehouses: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, w := range existing {
		taken[strings.ToLower(strings.TrimSpace(w.Name))] = true
	}

	created := 0
	for _, w := range c.Warehouses {
		name := strings.TrimSpace(w.Name)
		if taken[strings.ToLower(name)] {
			continue
		}
		t, err := models.ParseWarehouseType(w.Type)
		if err != nil {
			return created, err
		}
		if _, err := store.CreateWarehouse(ctx, models.WarehouseInput{Name: name, Type: t, Location: w.Location}); err != nil {
			return created, fmt.Errorf("create %s: %w", name, err)
		}
		created++
	}
	logging.LogKV("info", "warehouse seed applied", map[string]interface{}{
		"seeded":  len(c.Warehouses),
		"created": created,
	})
	return created, nil
}
