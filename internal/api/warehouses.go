package api

import (
	"errors"
	"net/http"

	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/logging"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/models"
	"github.com/gin-gonic/gin"
)

// ListWarehouses handles GET /warehouses
func (h *Handler) ListWarehouses(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	var f db.WarehouseFilter
	if raw := c.Query("type"); raw != "" {
		t, err := models.ParseWarehouseType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.Type = &t
	}
	f.IncludeInactive = c.Query("include_inactive") == "true" && IsAdmin(c)

	warehouses, err := h.store.ListWarehouses(c.Request.Context(), f)
	if err != nil {
		logging.LogKV("error", "list warehouses failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch warehouses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"warehouses": warehouses})
}

func bindWarehouseInput(c *gin.Context) (models.WarehouseInput, bool) {
	var req models.WarehouseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return req, false
	}
	t, err := models.ParseWarehouseType(string(req.Type))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return req, false
	}
	req.Type = t
	return req, true
}

// CreateWarehouse handles POST /warehouses
func (h *Handler) CreateWarehouse(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	req, ok := bindWarehouseInput(c)
	if !ok {
		return
	}
	w, err := h.store.CreateWarehouse(c.Request.Context(), req)
	if err != nil {
		logging.LogKV("error", "create warehouse failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create warehouse"})
		return
	}
	c.JSON(http.StatusCreated, w)
}

// UpdateWarehouse handles PUT /warehouses/:id
func (h *Handler) UpdateWarehouse(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	id, ok := parseIDParam(c, "id", "warehouse")
	if !ok {
		return
	}
	req, ok := bindWarehouseInput(c)
	if !ok {
		return
	}
	w, err := h.store.UpdateWarehouse(c.Request.Context(), id, req)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Warehouse not found"})
		return
	}
	if err != nil {
		logging.LogKV("error", "update warehouse failed", map[string]interface{}{"warehouse_id": id, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update warehouse"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeleteWarehouse handles DELETE /warehouses/:id by deactivating it
func (h *Handler) DeleteWarehouse(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	id, ok := parseIDParam(c, "id", "warehouse")
	if !ok {
		return
	}
	err := h.store.DeactivateWarehouse(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Warehouse not found"})
		return
	}
	if err != nil {
		logging.LogKV("error", "deactivate warehouse failed", map[string]interface{}{"warehouse_id": id, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete warehouse"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetWarehouse handles GET /warehouses/:id
func (h *Handler) GetWarehouse(c *gin.Context) {
	if !h.requireStore(c) {
		return
	}
	id, ok := parseIDParam(c, "id", "warehouse")
	if !ok {
		return
	}
	w, err := h.store.GetWarehouse(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Warehouse not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch warehouse"})
		return
	}
	c.JSON(http.StatusOK, w)
}
