package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MappingStrategy selects how a product's inventory is sourced from warehouses
type MappingStrategy string

const (
	StrategyNationwide        MappingStrategy = "nationwide"
	StrategyZonalWithFallback MappingStrategy = "zonal_with_fallback"
	StrategyZonalOnly         MappingStrategy = "zonal_only"
	StrategyDivisionOnly      MappingStrategy = "division_only"
	StrategyCustom            MappingStrategy = "custom"
)

// DefaultMappingStrategy applies to products that have never been mapped
const DefaultMappingStrategy = StrategyNationwide

// ErrUnknownStrategy is returned when a mapping type is not one of the known strategies
var ErrUnknownStrategy = errors.New("unknown warehouse mapping type")

// MappingStrategies lists every strategy in display order
var MappingStrategies = []MappingStrategy{
	StrategyNationwide,
	StrategyZonalWithFallback,
	StrategyZonalOnly,
	StrategyDivisionOnly,
	StrategyCustom,
}

// ParseMappingStrategy converts a stored or API value into a MappingStrategy.
// An empty value means the product has no mapping yet and resolves to the default.
func ParseMappingStrategy(s string) (MappingStrategy, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return DefaultMappingStrategy, nil
	}
	for _, st := range MappingStrategies {
		if string(st) == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// UnmarshalText rejects unknown strategies while decoding JSON
func (s *MappingStrategy) UnmarshalText(text []byte) error {
	v, err := ParseMappingStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Valid reports whether s is one of the known strategies. The empty value is not valid.
func (s MappingStrategy) Valid() bool {
	for _, st := range MappingStrategies {
		if s == st {
			return true
		}
	}
	return false
}

// AllowsFallback reports whether the strategy may carry a fallback pool at all
func (s MappingStrategy) AllowsFallback() bool {
	return s != StrategyZonalOnly && s != StrategyDivisionOnly
}

// WarehouseMapping is the full sourcing policy of one product.
// It is always persisted wholesale; there is no partial update.
type WarehouseMapping struct {
	Type               MappingStrategy `json:"warehouse_mapping_type"`
	PrimaryWarehouses  []int           `json:"primary_warehouses"`
	FallbackWarehouses []int           `json:"fallback_warehouses"`
	EnableFallback     bool            `json:"enable_fallback"`
	Notes              string          `json:"warehouse_notes"`
}

// Clone returns a deep copy so editors never share slices with their caller
func (m WarehouseMapping) Clone() WarehouseMapping {
	out := m
	out.PrimaryWarehouses = append([]int{}, m.PrimaryWarehouses...)
	out.FallbackWarehouses = append([]int{}, m.FallbackWarehouses...)
	return out
}

// ProductWarehouseMapping is a stored mapping together with its owning product
// Backed by tables `product_warehouse_mappings` and `product_warehouse_mapping_items`
type ProductWarehouseMapping struct {
	ProductID int `json:"product_id" db:"product_id"`
	WarehouseMapping
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Product is the slice of a catalog product the mapping editor works with
type Product struct {
	ID                   int     `json:"id" db:"product_id"`
	SKU                  string  `json:"sku" db:"sku"`
	Title                string  `json:"title" db:"title"`
	WarehouseMappingType *string `json:"warehouse_mapping_type,omitempty"`
	PrimaryWarehouses    []int   `json:"primary_warehouses,omitempty"`
	FallbackWarehouses   []int   `json:"fallback_warehouses,omitempty"`
	EnableFallback       bool    `json:"enable_fallback"`
	WarehouseNotes       string  `json:"warehouse_notes,omitempty"`
}

// StoredMapping returns the mapping fields carried on the product
func (p *Product) StoredMapping() (WarehouseMapping, error) {
	raw := ""
	if p.WarehouseMappingType != nil {
		raw = *p.WarehouseMappingType
	}
	st, err := ParseMappingStrategy(raw)
	if err != nil {
		return WarehouseMapping{}, err
	}
	return WarehouseMapping{
		Type:               st,
		PrimaryWarehouses:  append([]int{}, p.PrimaryWarehouses...),
		FallbackWarehouses: append([]int{}, p.FallbackWarehouses...),
		EnableFallback:     p.EnableFallback,
		Notes:              p.WarehouseNotes,
	}, nil
}

// ApplyMapping copies saved mapping fields onto the product
func (p *Product) ApplyMapping(m WarehouseMapping) {
	t := string(m.Type)
	p.WarehouseMappingType = &t
	p.PrimaryWarehouses = append([]int{}, m.PrimaryWarehouses...)
	p.FallbackWarehouses = append([]int{}, m.FallbackWarehouses...)
	p.EnableFallback = m.EnableFallback
	p.WarehouseNotes = m.Notes
}

// ErrorResponse is the failure envelope shared by the mapping endpoints
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
