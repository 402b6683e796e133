package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/archive"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/events"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
	"github.com/gin-gonic/gin"
)

// Store is the persistence the handlers depend on; *db.Database implements it
type Store interface {
	Health(ctx context.Context) error
	ListWarehouses(ctx context.Context, f db.WarehouseFilter) ([]models.Warehouse, error)
	GetWarehouse(ctx context.Context, id int) (*models.Warehouse, error)
	CreateWarehouse(ctx context.Context, in models.WarehouseInput) (*models.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id int, in models.WarehouseInput) (*models.Warehouse, error)
	DeactivateWarehouse(ctx context.Context, id int) error
	ProductExists(ctx context.Context, productID int) (bool, error)
	GetProductWarehouseMapping(ctx context.Context, productID int) (*models.ProductWarehouseMapping, error)
	SetProductWarehouseMapping(ctx context.Context, productID int, m models.WarehouseMapping) (time.Time, error)
}

// EventPublisher announces saved mappings
type EventPublisher interface {
	PublishMappingChanged(ctx context.Context, ev events.MappingChanged) error
}

// SnapshotArchive keeps a history of saved mappings
type SnapshotArchive interface {
	Enabled() bool
	Put(ctx context.Context, s archive.Snapshot) (string, error)
}

// Handler holds the store and side channels and provides HTTP handlers
type Handler struct {
	store   Store
	events  EventPublisher
	archive SnapshotArchive
}

// NewHandler creates a new handler instance. store may be nil while the database is unavailable.
func NewHandler(store Store, publisher EventPublisher, snapshots SnapshotArchive) *Handler {
	return &Handler{store: store, events: publisher, archive: snapshots}
}

// Health handles GET /health and /ready
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "not initialized"})
		return
	}
	if err := h.store.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "inventory-service"})
}

// requireStore answers 503 when the database never came up
func (h *Handler) requireStore(c *gin.Context) bool {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Database unavailable"})
		return false
	}
	return true
}

func parseIDParam(c *gin.Context, name, label string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid " + label + " id"})
		return 0, false
	}
	return id, true
}
