package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/dto"
)

// MaterialHandler serves the material catalog and production recording.
type MaterialHandler struct {
	*BaseHandler
	service *material.Service
}

// NewMaterialHandler creates a new material handler.
func NewMaterialHandler(base *BaseHandler, service *material.Service) *MaterialHandler {
	return &MaterialHandler{BaseHandler: base, service: service}
}

// List handles GET /materials
func (h *MaterialHandler) List(c *gin.Context) {
	var q dto.MaterialListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, err := h.service.List(c.Request.Context(), q.ToFilter())
	respond(h.BaseHandler, c, http.StatusOK, dto.NewListResponse(items, q.ToPage()), err)
}

// Get handles GET /materials/:id. The parameter may also be a material code.
func (h *MaterialHandler) Get(c *gin.Context) {
	m, err := h.service.Resolve(c.Request.Context(), c.Param("id"))
	respond(h.BaseHandler, c, http.StatusOK, m, err)
}

// Create handles POST /materials
func (h *MaterialHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.CreateMaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.service.Create(c.Request.Context(), actor, req.ToInput())
	respond(h.BaseHandler, c, http.StatusCreated, m, err)
}

// Update handles PATCH /materials/:id
func (h *MaterialHandler) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	materialID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.UpdateMaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.service.Update(c.Request.Context(), actor, materialID, req.ToInput())
	respond(h.BaseHandler, c, http.StatusOK, m, err)
}

// SetActive handles POST /materials/:id/active
func (h *MaterialHandler) SetActive(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	materialID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.service.SetActive(c.Request.Context(), actor, materialID, *req.Active)
	respond(h.BaseHandler, c, http.StatusOK, m, err)
}

// RecordProduction handles POST /materials/:id/production
func (h *MaterialHandler) RecordProduction(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	materialID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.ProductionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	res, err := h.service.RecordProduction(c.Request.Context(), actor, in)
	respond(h.BaseHandler, c, http.StatusCreated, res, err)
}
