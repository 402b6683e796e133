package mapping

import "github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"

// ToggleMembership removes id from set when present and appends it otherwise.
// The input slice is never modified.
func ToggleMembership(set []int, id int) []int {
	out := make([]int, 0, len(set)+1)
	found := false
	for _, v := range set {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

// Contains reports whether id is a member of set
func Contains(set []int, id int) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// SlotMismatch describes a warehouse sitting in a pool whose nominal type differs from its own
type SlotMismatch struct {
	WarehouseID int                  `json:"warehouse_id"`
	Slot        string               `json:"slot"`
	Type        models.WarehouseType `json:"type"`
}

// SlotMismatches lists zonal warehouses in the fallback pool and division
// warehouses in the primary pool. Mismatches are informational only.
func SlotMismatches(sel Selection, catalog []models.Warehouse) []SlotMismatch {
	types := make(map[int]models.WarehouseType, len(catalog))
	for _, w := range catalog {
		types[w.ID] = w.Type
	}
	var out []SlotMismatch
	for _, id := range sel.Primary {
		if t, ok := types[id]; ok && t != models.WarehouseTypeZonal {
			out = append(out, SlotMismatch{WarehouseID: id, Slot: "primary", Type: t})
		}
	}
	for _, id := range sel.Fallback {
		if t, ok := types[id]; ok && t != models.WarehouseTypeDivision {
			out = append(out, SlotMismatch{WarehouseID: id, Slot: "fallback", Type: t})
		}
	}
	return out
}
