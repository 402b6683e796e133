package mapping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

// ErrInvalidMapping wraps every structural problem found in a mapping
var ErrInvalidMapping = errors.New("invalid warehouse mapping")

// Validate checks the invariants every stored mapping must hold.
// Empty pools are allowed.
func Validate(m models.WarehouseMapping) error {
	if !m.Type.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidMapping, models.ErrUnknownStrategy, m.Type)
	}

	var problems []string
	if id, dup := firstDuplicate(m.PrimaryWarehouses); dup {
		problems = append(problems, fmt.Sprintf("warehouse %d listed twice in primary_warehouses", id))
	}
	if id, dup := firstDuplicate(m.FallbackWarehouses); dup {
		problems = append(problems, fmt.Sprintf("warehouse %d listed twice in fallback_warehouses", id))
	}
	if !m.Type.AllowsFallback() {
		if len(m.FallbackWarehouses) > 0 {
			problems = append(problems, fmt.Sprintf("%s mappings cannot have fallback_warehouses", m.Type))
		}
		if m.EnableFallback {
			problems = append(problems, fmt.Sprintf("%s mappings cannot enable fallback", m.Type))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMapping, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateAgainst runs Validate and additionally requires every referenced
// warehouse to exist and be active in the catalog.
func ValidateAgainst(m models.WarehouseMapping, catalog []models.Warehouse) error {
	if err := Validate(m); err != nil {
		return err
	}
	active := make(map[int]bool, len(catalog))
	for _, w := range catalog {
		active[w.ID] = w.IsActive
	}
	var unknown []string
	for _, id := range append(append([]int{}, m.PrimaryWarehouses...), m.FallbackWarehouses...) {
		if !active[id] {
			unknown = append(unknown, fmt.Sprint(id))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: unknown or inactive warehouses %s", ErrInvalidMapping, strings.Join(unknown, ", "))
	}
	return nil
}

// Normalize returns the mapping as it is stored: nationwide pools are derived
// from the catalog rather than taken from the caller, and nil pools become empty.
func Normalize(m models.WarehouseMapping, catalog []models.Warehouse) models.WarehouseMapping {
	out := m.Clone()
	if out.Type == "" {
		out.Type = models.DefaultMappingStrategy
	}
	if out.Type == models.StrategyNationwide {
		sel := SelectStrategy(models.StrategyNationwide, Selection{}, activeOnly(catalog))
		out.PrimaryWarehouses = sel.Primary
		out.FallbackWarehouses = sel.Fallback
		out.EnableFallback = sel.EnableFallback
	}
	out.Notes = strings.TrimSpace(out.Notes)
	return out
}

// Default returns the mapping a product gets when nothing is stored for it
func Default(catalog []models.Warehouse) models.WarehouseMapping {
	return Normalize(models.WarehouseMapping{Type: models.DefaultMappingStrategy}, catalog)
}

func activeOnly(catalog []models.Warehouse) []models.Warehouse {
	out := make([]models.Warehouse, 0, len(catalog))
	for _, w := range catalog {
		if w.IsActive {
			out = append(out, w)
		}
	}
	return out
}

func firstDuplicate(ids []int) (int, bool) {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return 0, false
}
