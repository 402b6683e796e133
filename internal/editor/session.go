// Package editor keeps the local state of one product's warehouse mapping while
// an admin edits it. Nothing leaves the session until Save succeeds.
package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/logging"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/mapping"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
)

var (
	// ErrSessionClosed is returned by every operation after Close or a successful Save
	ErrSessionClosed = errors.New("editor session closed")
	// ErrNotEditable is returned when the current strategy fixes the pool being edited
	ErrNotEditable = errors.New("warehouse pool not editable for this strategy")
	// ErrSaveInProgress is returned when Save is called while another save is pending
	ErrSaveInProgress = errors.New("save already in progress")
)

// Saver persists a mapping; *client.Client implements it
type Saver interface {
	SaveMapping(ctx context.Context, productID int, m models.WarehouseMapping) error
}

// Session is one open mapping editor
type Session struct {
	mu      sync.Mutex
	product models.Product
	catalog []models.Warehouse
	state   models.WarehouseMapping
	saved   *models.WarehouseMapping
	closed  bool
	saving  bool
}

// Open seeds a session from the mapping fields stored on product.
// A missing or unrecognised type opens as nationwide.
func Open(product models.Product, catalog []models.Warehouse) *Session {
	stored, err := product.StoredMapping()
	if err != nil {
		logging.LogKV("warn", "stored mapping type not recognised, using default", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
		stored = models.WarehouseMapping{Type: models.DefaultMappingStrategy, Notes: product.WarehouseNotes}
	}
	if stored.Type == models.StrategyNationwide {
		stored = mapping.Normalize(stored, catalog)
	}
	return &Session{
		product: product,
		catalog: append([]models.Warehouse{}, catalog...),
		state:   stored.Clone(),
	}
}

// SelectStrategy switches strategy and resets the pools to its defaults
func (s *Session) SelectStrategy(strategy models.MappingStrategy) error {
	if !strategy.Valid() {
		return models.ErrUnknownStrategy
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	sel := mapping.SelectStrategy(strategy, mapping.SelectionOf(s.state), s.catalog)
	s.state.Type = strategy
	s.state.PrimaryWarehouses = sel.Primary
	s.state.FallbackWarehouses = sel.Fallback
	s.state.EnableFallback = sel.EnableFallback
	return nil
}

// TogglePrimary adds or removes a warehouse from the primary pool
func (s *Session) TogglePrimary(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state.Type == models.StrategyNationwide {
		return ErrNotEditable
	}
	s.state.PrimaryWarehouses = mapping.ToggleMembership(s.state.PrimaryWarehouses, id)
	return nil
}

// ToggleFallback adds or removes a warehouse from the fallback pool
func (s *Session) ToggleFallback(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state.Type == models.StrategyNationwide || !s.state.Type.AllowsFallback() {
		return ErrNotEditable
	}
	s.state.FallbackWarehouses = mapping.ToggleMembership(s.state.FallbackWarehouses, id)
	return nil
}

// SetEnableFallback flips the fallback switch
func (s *Session) SetEnableFallback(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state.Type == models.StrategyNationwide || (on && !s.state.Type.AllowsFallback()) {
		return ErrNotEditable
	}
	s.state.EnableFallback = on
	return nil
}

// SetNotes replaces the free-text notes
func (s *Session) SetNotes(notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.state.Notes = notes
	return nil
}

// Mapping returns a copy of the mapping as currently edited
func (s *Session) Mapping() models.WarehouseMapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// ShowSummary reports whether the summary panel is rendered
func (s *Session) ShowSummary() bool {
	m := s.Mapping()
	return mapping.ShouldShowSummary(m.PrimaryWarehouses, m.FallbackWarehouses, m.Type)
}

// Summary renders the review lines for the current mapping
func (s *Session) Summary() []string {
	m := s.Mapping()
	return mapping.Summarize(m.Type, m.PrimaryWarehouses, m.FallbackWarehouses, m.EnableFallback, mapping.CatalogLookup(s.catalog))
}

// Save sends the current mapping through saver. On failure the local state is
// kept and the session stays open so the user can try again. On success the
// session closes and the saved mapping is available from Saved.
func (s *Session) Save(ctx context.Context, saver Saver) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInProgress
	}
	s.saving = true
	productID := s.product.ID
	m := s.state.Clone()
	s.mu.Unlock()

	err := saver.SaveMapping(ctx, productID, m)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return err
	}
	if s.closed {
		// dismissed while the request was in flight
		return nil
	}
	s.saved = &m
	s.product.ApplyMapping(m)
	s.closed = true
	return nil
}

// Saved returns the mapping stored by a successful Save
func (s *Session) Saved() (models.WarehouseMapping, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return models.WarehouseMapping{}, false
	}
	return s.saved.Clone(), true
}

// Product returns the product the session was opened for, with the saved mapping applied
func (s *Session) Product() models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.product
}

// Close discards pending edits
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether the session accepts edits
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
