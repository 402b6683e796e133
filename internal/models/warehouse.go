package models

import (
	"fmt"
	"strings"
	"time"
)

// WarehouseType represents the coverage tier of a warehouse (mirrors DB enum warehouse_type)
type WarehouseType string

const (
	WarehouseTypeZonal    WarehouseType = "zonal"
	WarehouseTypeDivision WarehouseType = "division"
)

// ParseWarehouseType converts an API value into a WarehouseType
func ParseWarehouseType(s string) (WarehouseType, error) {
	switch WarehouseType(strings.ToLower(strings.TrimSpace(s))) {
	case WarehouseTypeZonal:
		return WarehouseTypeZonal, nil
	case WarehouseTypeDivision:
		return WarehouseTypeDivision, nil
	default:
		return "", fmt.Errorf("unknown warehouse type %q", s)
	}
}

// Warehouse represents a stocking location in the inventory catalog
// Backed by table `warehouses`
type Warehouse struct {
	ID        int           `json:"id" db:"warehouse_id"`
	Type      WarehouseType `json:"type" db:"type"`
	Name      string        `json:"name" db:"name"`
	Location  string        `json:"location" db:"location"`
	IsActive  bool          `json:"is_active" db:"is_active"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// WarehouseInput is the admin payload for creating or updating a warehouse
type WarehouseInput struct {
	Name     string        `json:"name" binding:"required"`
	Type     WarehouseType `json:"type" binding:"required"`
	Location string        `json:"location"`
	IsActive *bool         `json:"is_active"`
}
