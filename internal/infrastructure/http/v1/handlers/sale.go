package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/sale"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves retail sales and the commissions they earn.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// Record handles POST /sales
func (h *SaleHandler) Record(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	res, err := h.service.RecordSale(c.Request.Context(), actor, in)
	respond(h.BaseHandler, c, http.StatusCreated, res, err)
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.SaleListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	items, err := h.service.ListSales(c.Request.Context(), actor, filter)
	respond(h.BaseHandler, c, http.StatusOK, dto.NewListResponse(items, filter.Page), err)
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	saleID, ok := h.PathID(c)
	if !ok {
		return
	}
	s, err := h.service.GetSale(c.Request.Context(), actor, saleID)
	respond(h.BaseHandler, c, http.StatusOK, s, err)
}

// ListCommissions handles GET /commissions
func (h *SaleHandler) ListCommissions(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.CommissionListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	items, err := h.service.ListCommissions(c.Request.Context(), actor, filter)
	respond(h.BaseHandler, c, http.StatusOK, dto.NewListResponse(items, filter.Page), err)
}

// Summary handles GET /commissions/summary
func (h *SaleHandler) Summary(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	retailerID, err := dto.ParseOptionalID("retailerId", c.Query("retailerId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	rows, err := h.service.CommissionSummary(c.Request.Context(), actor, retailerID)
	respond(h.BaseHandler, c, http.StatusOK, rows, err)
}

// MarkPaid handles POST /commissions/:id/pay
func (h *SaleHandler) MarkPaid(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	commissionID, ok := h.PathID(c)
	if !ok {
		return
	}
	cm, err := h.service.MarkPaid(c.Request.Context(), actor, commissionID)
	respond(h.BaseHandler, c, http.StatusOK, cm, err)
}

// PayAll handles POST /commissions/pay-all
func (h *SaleHandler) PayAll(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.PayAllRequest
	if !h.BindJSON(c, &req) {
		return
	}
	retailerID, err := dto.ParseID("retailerId", req.RetailerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	n, total, err := h.service.MarkAllPaidForRetailer(c.Request.Context(), actor, retailerID)
	respond(h.BaseHandler, c, http.StatusOK, dto.NewPayAllResponse(n, total), err)
}
