package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/mapping"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

const (
	kindUnknownStrategy   = "unknown_strategy"
	kindInvalidMapping    = "invalid_mapping"
	kindMissingWarehouse  = "missing_warehouse"
	kindInactiveWarehouse = "inactive_warehouse"
	kindNationwideDrift   = "nationwide_drift"
)

type mappingSource interface {
	ListProductWarehouseMappings(ctx context.Context) ([]models.ProductWarehouseMapping, error)
	ListWarehouses(ctx context.Context, f db.WarehouseFilter) ([]models.Warehouse, error)
}

type auditFinding struct {
	ProductID int    `json:"product_id"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail"`
}

type result struct {
	CheckedMappings int            `json:"checked_mappings"`
	Warehouses      int            `json:"warehouses"`
	Findings        []auditFinding `json:"findings"`
}

// countByKind returns the number of findings per kind
func (r result) countByKind() map[string]int {
	out := map[string]int{
		kindUnknownStrategy:   0,
		kindInvalidMapping:    0,
		kindMissingWarehouse:  0,
		kindInactiveWarehouse: 0,
		kindNationwideDrift:   0,
	}
	for _, f := range r.Findings {
		out[f.Kind]++
	}
	return out
}

func audit(ctx context.Context, src mappingSource) (result, error) {
	res := result{Findings: []auditFinding{}}

	catalog, err := src.ListWarehouses(ctx, db.WarehouseFilter{IncludeInactive: true})
	if err != nil {
		return res, fmt.Errorf("list warehouses: %w", err)
	}
	res.Warehouses = len(catalog)
	byID := make(map[int]models.Warehouse, len(catalog))
	for _, w := range catalog {
		byID[w.ID] = w
	}

	stored, err := src.ListProductWarehouseMappings(ctx)
	if err != nil {
		return res, fmt.Errorf("list mappings: %w", err)
	}

	for _, pm := range stored {
		res.CheckedMappings++
		add := func(kind, detail string) {
			res.Findings = append(res.Findings, auditFinding{ProductID: pm.ProductID, Kind: kind, Detail: detail})
		}

		if !pm.Type.Valid() {
			add(kindUnknownStrategy, fmt.Sprintf("stored type %q", pm.Type))
			continue
		}
		if err := mapping.Validate(pm.WarehouseMapping); err != nil {
			add(kindInvalidMapping, err.Error())
		}

		for _, id := range referenced(pm.WarehouseMapping) {
			w, ok := byID[id]
			switch {
			case !ok:
				add(kindMissingWarehouse, fmt.Sprintf("warehouse %d", id))
			case !w.IsActive:
				add(kindInactiveWarehouse, fmt.Sprintf("warehouse %d (%s)", id, w.Name))
			}
		}

		if pm.Type == models.StrategyNationwide {
			want := mapping.Normalize(pm.WarehouseMapping, catalog)
			if !sameSet(want.PrimaryWarehouses, pm.PrimaryWarehouses) || !sameSet(want.FallbackWarehouses, pm.FallbackWarehouses) {
				add(kindNationwideDrift, "stored pools differ from the active catalog")
			}
		}
	}
	return res, nil
}

func referenced(m models.WarehouseMapping) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, id := range append(append([]int{}, m.PrimaryWarehouses...), m.FallbackWarehouses...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sameSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]int{}, a...)
	y := append([]int{}, b...)
	sort.Ints(x)
	sort.Ints(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
