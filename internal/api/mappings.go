package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/archive"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/events"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/logging"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/mapping"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
	"github.com/gin-gonic/gin"
)

// MappingSummary is the read-only review panel of a mapping
type MappingSummary struct {
	Show           bool                   `json:"show"`
	Lines          []string               `json:"lines"`
	SlotMismatches []mapping.SlotMismatch `json:"slot_mismatches,omitempty"`
}

func summaryOf(m models.WarehouseMapping, catalog []models.Warehouse) MappingSummary {
	lines := mapping.Summarize(m.Type, m.PrimaryWarehouses, m.FallbackWarehouses, m.EnableFallback, mapping.CatalogLookup(catalog))
	return MappingSummary{
		Show:           mapping.ShouldShowSummary(m.PrimaryWarehouses, m.FallbackWarehouses, m.Type),
		Lines:          lines,
		SlotMismatches: mapping.SlotMismatches(mapping.SelectionOf(m), catalog),
	}
}

// loadMapping returns the stored mapping, or the nationwide default for products never mapped.
// Nationwide pools always reflect the current active catalog. An unrecognised stored
// type is served as nationwide.
func (h *Handler) loadMapping(ctx context.Context, productID int, catalog []models.Warehouse) (*models.ProductWarehouseMapping, error) {
	stored, err := h.store.GetProductWarehouseMapping(ctx, productID)
	if err == nil {
		if !stored.Type.Valid() {
			logging.LogKV("warn", "stored mapping type not recognised, using default", map[string]interface{}{
				"product_id":   productID,
				"mapping_type": string(stored.Type),
			})
			stored.Type = models.DefaultMappingStrategy
		}
		if stored.Type == models.StrategyNationwide {
			stored.WarehouseMapping = mapping.Normalize(stored.WarehouseMapping, catalog)
		}
		return stored, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	exists, err := h.store.ProductExists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, db.ErrNotFound
	}
	return &models.ProductWarehouseMapping{ProductID: productID, WarehouseMapping: mapping.Default(catalog)}, nil
}

// GetProductWarehouseMapping handles GET /products/:id/warehouse-mapping
func (h *Handler) GetProductWarehouseMapping(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	catalog, err := h.store.ListWarehouses(ctx, db.WarehouseFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch warehouses"})
		return
	}
	m, err := h.loadMapping(ctx, productID, catalog)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Product not found"})
		return
	}
	if err != nil {
		logging.LogKV("error", "load warehouse mapping failed", map[string]interface{}{"product_id": productID, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch warehouse mapping"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mapping": m})
}

// GetProductWarehouseMappingSummary handles GET /products/:id/warehouse-mapping/summary
func (h *Handler) GetProductWarehouseMappingSummary(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	catalog, err := h.store.ListWarehouses(ctx, db.WarehouseFilter{IncludeInactive: true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch warehouses"})
		return
	}
	m, err := h.loadMapping(ctx, productID, catalog)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch warehouse mapping"})
		return
	}
	c.JSON(http.StatusOK, summaryOf(m.WarehouseMapping, catalog))
}

// SetProductWarehouseMapping handles PUT /products/:id/warehouse-mapping
// Body: { "warehouse_mapping_type": "custom", "primary_warehouses": [1], "fallback_warehouses": [3],
//
//	"enable_fallback": true, "warehouse_notes": "" }
func (h *Handler) SetProductWarehouseMapping(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}
	var body models.WarehouseMapping
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	catalog, err := h.store.ListWarehouses(ctx, db.WarehouseFilter{IncludeInactive: true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch warehouses"})
		return
	}
	m := mapping.Normalize(body, catalog)
	if err := mapping.ValidateAgainst(m, catalog); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	updatedAt, err := h.store.SetProductWarehouseMapping(ctx, productID, m)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Product not found"})
		return
	}
	if err != nil {
		logging.LogKV("error", "save warehouse mapping failed", map[string]interface{}{"product_id": productID, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save warehouse mapping"})
		return
	}

	actor := Actor(c)
	h.afterSave(ctx, productID, m, actor, updatedAt)

	logging.LogKV("info", "warehouse mapping saved", map[string]interface{}{
		"product_id":   productID,
		"mapping_type": string(m.Type),
		"primary":      len(m.PrimaryWarehouses),
		"fallback":     len(m.FallbackWarehouses),
		"changed_by":   actor,
	})
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"mapping": models.ProductWarehouseMapping{ProductID: productID, WarehouseMapping: m, UpdatedAt: &updatedAt},
	})
}

// afterSave archives and announces a stored mapping. Failures are logged only:
// the mapping is already committed.
func (h *Handler) afterSave(ctx context.Context, productID int, m models.WarehouseMapping, actor string, at time.Time) {
	if h.archive != nil && h.archive.Enabled() {
		loc, err := h.archive.Put(ctx, archive.Snapshot{ProductID: productID, Mapping: m, SavedBy: actor, SavedAt: at})
		if err != nil {
			logging.LogKV("warn", "mapping snapshot failed", map[string]interface{}{"product_id": productID, "error": err.Error()})
		} else {
			logging.LogKV("info", "mapping snapshot stored", map[string]interface{}{"product_id": productID, "location": loc})
		}
	}
	if h.events != nil {
		ev := events.MappingChanged{ProductID: productID, Mapping: m, ChangedBy: actor, ChangedAt: at}
		if err := h.events.PublishMappingChanged(ctx, ev); err != nil {
			logging.LogKV("warn", "mapping event failed", map[string]interface{}{"product_id": productID, "error": err.Error()})
		}
	}
}

type previewRequest struct {
	Strategy models.MappingStrategy `json:"warehouse_mapping_type"`
	Current  mapping.Selection      `json:"current"`
}

// PreviewStrategy handles POST /warehouse-mapping/preview
// Returns the default selection a strategy switch produces, plus its summary.
func (h *Handler) PreviewStrategy(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}
	if req.Strategy == "" {
		req.Strategy = models.DefaultMappingStrategy
	}
	catalog, err := h.store.ListWarehouses(c.Request.Context(), db.WarehouseFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch warehouses"})
		return
	}
	sel := mapping.SelectStrategy(req.Strategy, req.Current, catalog)
	m := models.WarehouseMapping{
		Type:               req.Strategy,
		PrimaryWarehouses:  sel.Primary,
		FallbackWarehouses: sel.Fallback,
		EnableFallback:     sel.EnableFallback,
	}
	c.JSON(http.StatusOK, gin.H{"selection": sel, "summary": summaryOf(m, catalog)})
}
