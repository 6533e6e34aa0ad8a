package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/dto"
)

// InventoryHandler serves stock balances and the transaction log.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// ManufacturerStock handles GET /inventory/manufacturer
func (h *InventoryHandler) ManufacturerStock(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	filter, ok := h.stockFilter(c)
	if !ok {
		return
	}
	rows, err := h.service.ManufacturerStock(c.Request.Context(), actor, filter)
	respond(h.BaseHandler, c, http.StatusOK, rows, err)
}

// RetailerStock handles GET /inventory/retailer
func (h *InventoryHandler) RetailerStock(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	filter, ok := h.stockFilter(c)
	if !ok {
		return
	}
	rows, err := h.service.RetailerStock(c.Request.Context(), actor, filter)
	respond(h.BaseHandler, c, http.StatusOK, rows, err)
}

// Transactions handles GET /inventory/transactions
func (h *InventoryHandler) Transactions(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.TransactionQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	rows, err := h.service.Transactions(c.Request.Context(), actor, filter)
	respond(h.BaseHandler, c, http.StatusOK, dto.NewListResponse(rows, q.ToPage()), err)
}

func (h *InventoryHandler) stockFilter(c *gin.Context) (inventory.StockFilter, bool) {
	var q dto.StockQuery
	if !h.BindQuery(c, &q) {
		return inventory.StockFilter{}, false
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return filter, false
	}
	return filter, true
}
