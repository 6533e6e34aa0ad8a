package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/auth"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles login and user administration.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.LoginResponse{Token: token, User: user})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), actor, actor.ID)
	respond(h.BaseHandler, c, http.StatusOK, user, err)
}

// CreateUser handles POST /users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), actor, req.ToDomain())
	respond(h.BaseHandler, c, http.StatusCreated, user, err)
}

// ListUsers handles GET /users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.UserListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), actor, q.ToFilter())
	respond(h.BaseHandler, c, http.StatusOK, dto.NewListResponse(users, q.ToPage()), err)
}

// GetUser handles GET /users/:id
func (h *AuthHandler) GetUser(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	userID, ok := h.PathID(c)
	if !ok {
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), actor, userID)
	respond(h.BaseHandler, c, http.StatusOK, user, err)
}

// SetActive handles POST /users/:id/active
func (h *AuthHandler) SetActive(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	userID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.SetActive(c.Request.Context(), actor, userID, *req.Active)
	respond(h.BaseHandler, c, http.StatusOK, user, err)
}
