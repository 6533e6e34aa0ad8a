package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/dispatch"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/dto"
)

// DispatchHandler serves dispatch orders and goods receipt notes.
type DispatchHandler struct {
	*BaseHandler
	service *dispatch.Service
	grns    *grn.Service
}

// NewDispatchHandler creates a new dispatch handler.
func NewDispatchHandler(base *BaseHandler, service *dispatch.Service, grns *grn.Service) *DispatchHandler {
	return &DispatchHandler{BaseHandler: base, service: service, grns: grns}
}

// List handles GET /dispatches
func (h *DispatchHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.DocumentListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.DispatchFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), actor, filter)
	respond(h.BaseHandler, c, http.StatusOK, dto.NewListResponse(items, filter.Page), err)
}

// Get handles GET /dispatches/:id
func (h *DispatchHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	dispatchID, ok := h.PathID(c)
	if !ok {
		return
	}
	order, err := h.service.Get(c.Request.Context(), actor, dispatchID)
	respond(h.BaseHandler, c, http.StatusOK, order, err)
}

// GetBySRN handles GET /srns/:id/dispatch
func (h *DispatchHandler) GetBySRN(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	srnID, ok := h.PathID(c)
	if !ok {
		return
	}
	order, err := h.service.GetBySRN(c.Request.Context(), actor, srnID)
	respond(h.BaseHandler, c, http.StatusOK, order, err)
}

// Create handles POST /dispatches
func (h *DispatchHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.CreateDispatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	srnID, err := dto.ParseID("srnId", req.SRNID)
	if err != nil {
		h.Error(c, err)
		return
	}
	order, err := h.service.CreateDispatch(c.Request.Context(), actor, srnID)
	respond(h.BaseHandler, c, http.StatusCreated, order, err)
}

// Execute handles POST /dispatches/:id/execute
func (h *DispatchHandler) Execute(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	dispatchID, ok := h.PathID(c)
	if !ok {
		return
	}
	order, err := h.service.Execute(c.Request.Context(), actor, dispatchID)
	respond(h.BaseHandler, c, http.StatusOK, order, err)
}

// ListGRNs handles GET /grns
func (h *DispatchHandler) ListGRNs(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.DocumentListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.GRNFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	items, err := h.grns.List(c.Request.Context(), actor, filter)
	respond(h.BaseHandler, c, http.StatusOK, dto.NewListResponse(items, filter.Page), err)
}

// GetGRN handles GET /grns/:id
func (h *DispatchHandler) GetGRN(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	grnID, ok := h.PathID(c)
	if !ok {
		return
	}
	doc, err := h.grns.Get(c.Request.Context(), actor, grnID)
	respond(h.BaseHandler, c, http.StatusOK, doc, err)
}

// ConfirmGRN handles POST /grns/:id/confirm
func (h *DispatchHandler) ConfirmGRN(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	grnID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.ConfirmGRNRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	doc, err := h.service.Confirm(c.Request.Context(), actor, grnID, in)
	respond(h.BaseHandler, c, http.StatusOK, doc, err)
}
