package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/invoice"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler serves tax invoices.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.DocumentListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.InvoiceFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), actor, filter)
	respond(h.BaseHandler, c, http.StatusOK, dto.NewListResponse(items, filter.Page), err)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	invoiceID, ok := h.PathID(c)
	if !ok {
		return
	}
	inv, err := h.service.Get(c.Request.Context(), actor, invoiceID)
	respond(h.BaseHandler, c, http.StatusOK, inv, err)
}

// Generate handles POST /invoices
func (h *InvoiceHandler) Generate(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.GenerateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	grnID, err := dto.ParseID("grnId", req.GRNID)
	if err != nil {
		h.Error(c, err)
		return
	}
	inv, err := h.service.Generate(c.Request.Context(), actor, grnID, req.Interstate)
	respond(h.BaseHandler, c, http.StatusCreated, inv, err)
}
