package mapping

import (
	"fmt"
	"strings"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

// NationwideSummary is the only summary line shown for nationwide mappings
const NationwideSummary = "All zonal warehouses with division fallback enabled"

// NameLookup resolves a warehouse id to its display name
type NameLookup func(id int) (string, bool)

// CatalogLookup builds a NameLookup over a warehouse catalog
func CatalogLookup(catalog []models.Warehouse) NameLookup {
	names := make(map[int]string, len(catalog))
	for _, w := range catalog {
		names[w.ID] = w.Name
	}
	return func(id int) (string, bool) {
		n, ok := names[id]
		return n, ok
	}
}

// ShouldShowSummary decides whether the summary panel is rendered
func ShouldShowSummary(primary, fallback []int, strategy models.MappingStrategy) bool {
	return len(primary) > 0 || len(fallback) > 0 || strategy == models.StrategyNationwide
}

// Summarize renders the human readable lines describing a resolved mapping
func Summarize(strategy models.MappingStrategy, primary, fallback []int, enableFallback bool, lookup NameLookup) []string {
	if strategy == models.StrategyNationwide {
		return []string{NationwideSummary}
	}
	lines := make([]string, 0, 2)
	if len(primary) > 0 {
		lines = append(lines, "Primary: "+joinNames(primary, lookup))
	}
	if enableFallback && len(fallback) > 0 {
		lines = append(lines, "Fallback: "+joinNames(fallback, lookup))
	}
	return lines
}

func joinNames(ids []int, lookup NameLookup) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = warehouseName(id, lookup)
	}
	return strings.Join(names, ", ")
}

func warehouseName(id int, lookup NameLookup) string {
	if lookup != nil {
		if n, ok := lookup(id); ok {
			return n
		}
	}
	return fmt.Sprintf("Warehouse %d", id)
}
