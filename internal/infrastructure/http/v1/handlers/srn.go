package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/srn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/dto"
)

// SRNHandler serves stock requisitions.
type SRNHandler struct {
	*BaseHandler
	service *srn.Service
}

// NewSRNHandler creates a new SRN handler.
func NewSRNHandler(base *BaseHandler, service *srn.Service) *SRNHandler {
	return &SRNHandler{BaseHandler: base, service: service}
}

// List handles GET /srns
func (h *SRNHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.DocumentListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.SRNFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), actor, filter)
	respond(h.BaseHandler, c, http.StatusOK, dto.NewListResponse(items, filter.Page), err)
}

// Get handles GET /srns/:id
func (h *SRNHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	srnID, ok := h.PathID(c)
	if !ok {
		return
	}
	doc, err := h.service.Get(c.Request.Context(), actor, srnID)
	respond(h.BaseHandler, c, http.StatusOK, doc, err)
}

// Create handles POST /srns
func (h *SRNHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.CreateSRNRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	doc, err := h.service.Create(c.Request.Context(), actor, in)
	respond(h.BaseHandler, c, http.StatusCreated, doc, err)
}

// Update handles PATCH /srns/:id
func (h *SRNHandler) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	srnID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.UpdateSRNRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	doc, err := h.service.UpdateDraft(c.Request.Context(), actor, srnID, in)
	respond(h.BaseHandler, c, http.StatusOK, doc, err)
}

// Submit handles POST /srns/:id/submit
func (h *SRNHandler) Submit(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	srnID, ok := h.PathID(c)
	if !ok {
		return
	}
	doc, err := h.service.Submit(c.Request.Context(), actor, srnID)
	respond(h.BaseHandler, c, http.StatusOK, doc, err)
}

// Decide handles POST /srns/:id/decision
func (h *SRNHandler) Decide(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	srnID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.SRNDecisionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	d, err := req.ToDecision()
	if err != nil {
		h.Error(c, err)
		return
	}
	doc, err := h.service.ProcessApproval(c.Request.Context(), actor, srnID, d)
	respond(h.BaseHandler, c, http.StatusOK, doc, err)
}
