// Package mapping holds the warehouse assignment rules for products: how a
// strategy resets the primary and fallback pools, how single warehouses are
// toggled in and out of a pool, and how a mapping is summarized and checked
// before it is stored.
package mapping

import "github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"

// Selection is the editable part of a mapping
type Selection struct {
	Primary        []int `json:"primary_warehouses"`
	Fallback       []int `json:"fallback_warehouses"`
	EnableFallback bool  `json:"enable_fallback"`
}

// SelectionOf extracts the selection from a full mapping
func SelectionOf(m models.WarehouseMapping) Selection {
	return Selection{
		Primary:        append([]int{}, m.PrimaryWarehouses...),
		Fallback:       append([]int{}, m.FallbackWarehouses...),
		EnableFallback: m.EnableFallback,
	}
}

// SelectStrategy returns the default selection for a newly chosen strategy.
// Any manual picks in current are discarded; only EnableFallback survives for
// zonal_with_fallback and custom.
func SelectStrategy(strategy models.MappingStrategy, current Selection, catalog []models.Warehouse) Selection {
	switch strategy {
	case models.StrategyNationwide:
		return Selection{
			Primary:        idsOfType(catalog, models.WarehouseTypeZonal),
			Fallback:       idsOfType(catalog, models.WarehouseTypeDivision),
			EnableFallback: true,
		}
	case models.StrategyZonalOnly, models.StrategyDivisionOnly:
		return Selection{Primary: []int{}, Fallback: []int{}, EnableFallback: false}
	default:
		return Selection{Primary: []int{}, Fallback: []int{}, EnableFallback: current.EnableFallback}
	}
}

func idsOfType(catalog []models.Warehouse, t models.WarehouseType) []int {
	ids := make([]int, 0, len(catalog))
	for _, w := range catalog {
		if w.Type == t {
			ids = append(ids, w.ID)
		}
	}
	return ids
}
