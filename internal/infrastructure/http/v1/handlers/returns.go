package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/returns"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/dto"
)

// ReturnHandler serves retailer returns.
type ReturnHandler struct {
	*BaseHandler
	service *returns.Service
}

// NewReturnHandler creates a new return handler.
func NewReturnHandler(base *BaseHandler, service *returns.Service) *ReturnHandler {
	return &ReturnHandler{BaseHandler: base, service: service}
}

// List handles GET /returns
func (h *ReturnHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.DocumentListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ReturnFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), actor, filter)
	respond(h.BaseHandler, c, http.StatusOK, dto.NewListResponse(items, filter.Page), err)
}

// Get handles GET /returns/:id
func (h *ReturnHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	returnID, ok := h.PathID(c)
	if !ok {
		return
	}
	ret, err := h.service.Get(c.Request.Context(), actor, returnID)
	respond(h.BaseHandler, c, http.StatusOK, ret, err)
}

// Create handles POST /returns
func (h *ReturnHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	ret, err := h.service.Create(c.Request.Context(), actor, in)
	respond(h.BaseHandler, c, http.StatusCreated, ret, err)
}

// Review handles POST /returns/:id/review
func (h *ReturnHandler) Review(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	returnID, ok := h.PathID(c)
	if !ok {
		return
	}
	ret, err := h.service.MarkUnderReview(c.Request.Context(), actor, returnID)
	respond(h.BaseHandler, c, http.StatusOK, ret, err)
}

// Resolve handles POST /returns/:id/resolve
func (h *ReturnHandler) Resolve(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	returnID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.ResolveReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ret, err := h.service.Resolve(c.Request.Context(), actor, returnID, returns.Status(req.Resolution), req.Note)
	respond(h.BaseHandler, c, http.StatusOK, ret, err)
}
