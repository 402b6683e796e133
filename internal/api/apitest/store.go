// Package apitest provides an in-memory Store for exercising the HTTP API in tests.
package apitest

import (
	"context"
	"sync"
	"time"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

// Store keeps warehouses, products and mappings in memory
type Store struct {
	mu         sync.Mutex
	warehouses []models.Warehouse
	products   map[int]bool
	mappings   map[int]models.ProductWarehouseMapping

	// SaveErr, when set, fails every SetProductWarehouseMapping call
	SaveErr error
	// ListErr, when set, fails every ListWarehouses call
	ListErr error
	Saves   int
}

// NewStore seeds the store with a catalog and known product ids
func NewStore(catalog []models.Warehouse, productIDs ...int) *Store {
	s := &Store{
		warehouses: append([]models.Warehouse{}, catalog...),
		products:   make(map[int]bool),
		mappings:   make(map[int]models.ProductWarehouseMapping),
	}
	for _, id := range productIDs {
		s.products[id] = true
	}
	return s
}

// SampleCatalog is two zonal warehouses and one division warehouse
func SampleCatalog() []models.Warehouse {
	return []models.Warehouse{
		{ID: 1, Type: models.WarehouseTypeZonal, Name: "North Zonal", Location: "Milan", IsActive: true},
		{ID: 2, Type: models.WarehouseTypeZonal, Name: "South Zonal", Location: "Naples", IsActive: true},
		{ID: 3, Type: models.WarehouseTypeDivision, Name: "Bergamo Division", Location: "Bergamo", IsActive: true},
	}
}

func (s *Store) Health(context.Context) error { return nil }

func (s *Store) ListWarehouses(_ context.Context, f db.WarehouseFilter) ([]models.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]models.Warehouse, 0, len(s.warehouses))
	for _, w := range s.warehouses {
		if !f.IncludeInactive && !w.IsActive {
			continue
		}
		if f.Type != nil && w.Type != *f.Type {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (s *Store) GetWarehouse(_ context.Context, id int) (*models.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.warehouses {
		if w.ID == id {
			w := w
			return &w, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *Store) CreateWarehouse(_ context.Context, in models.WarehouseInput) (*models.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := 1
	for _, w := range s.warehouses {
		if w.ID >= next {
			next = w.ID + 1
		}
	}
	active := in.IsActive == nil || *in.IsActive
	w := models.Warehouse{ID: next, Type: in.Type, Name: in.Name, Location: in.Location, IsActive: active, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.warehouses = append(s.warehouses, w)
	return &w, nil
}

func (s *Store) UpdateWarehouse(_ context.Context, id int, in models.WarehouseInput) (*models.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.warehouses {
		if s.warehouses[i].ID != id {
			continue
		}
		w := &s.warehouses[i]
		w.Name, w.Type, w.Location, w.UpdatedAt = in.Name, in.Type, in.Location, time.Now()
		if in.IsActive != nil {
			w.IsActive = *in.IsActive
		}
		out := *w
		return &out, nil
	}
	return nil, db.ErrNotFound
}

func (s *Store) DeactivateWarehouse(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.warehouses {
		if s.warehouses[i].ID == id {
			s.warehouses[i].IsActive = false
			return nil
		}
	}
	return db.ErrNotFound
}

func (s *Store) ProductExists(_ context.Context, productID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID], nil
}

func (s *Store) GetProductWarehouseMapping(_ context.Context, productID int) (*models.ProductWarehouseMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mappings[productID]
	if !ok {
		return nil, db.ErrNotFound
	}
	m.WarehouseMapping = m.WarehouseMapping.Clone()
	return &m, nil
}

func (s *Store) SetProductWarehouseMapping(_ context.Context, productID int, m models.WarehouseMapping) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return time.Time{}, s.SaveErr
	}
	if !s.products[productID] {
		return time.Time{}, db.ErrNotFound
	}
	now := time.Now().UTC()
	s.mappings[productID] = models.ProductWarehouseMapping{ProductID: productID, WarehouseMapping: m.Clone(), UpdatedAt: &now}
	s.Saves++
	return now, nil
}

// Mapping returns the stored mapping of a product
func (s *Store) Mapping(productID int) (models.WarehouseMapping, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mappings[productID]
	return m.WarehouseMapping.Clone(), ok
}
