package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/numerator"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/audit"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
	"github.com/harpreet-2146/FM-demo-sub001/internal/infrastructure/http/v1/dto"
)

// ActivityHandler serves the notification inbox, document history and
// document number sequences.
type ActivityHandler struct {
	*BaseHandler
	inbox     *notification.Service
	audit     *audit.Service
	numerator numerator.Generator
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(base *BaseHandler, inbox *notification.Service, audit *audit.Service, gen numerator.Generator) *ActivityHandler {
	return &ActivityHandler{BaseHandler: base, inbox: inbox, audit: audit, numerator: gen}
}

// Notifications handles GET /notifications
func (h *ActivityHandler) Notifications(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.InboxQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, err := h.inbox.List(c.Request.Context(), actor, q.UnreadOnly, q.Limit)
	if items == nil {
		items = []notification.Notification{}
	}
	respond(h.BaseHandler, c, http.StatusOK, items, err)
}

// MarkRead handles POST /notifications/read
func (h *ActivityHandler) MarkRead(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.MarkReadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ids, err := req.ToIDs()
	if err != nil {
		h.Error(c, err)
		return
	}
	n, err := h.inbox.MarkRead(c.Request.Context(), actor, ids)
	respond(h.BaseHandler, c, http.StatusOK, dto.MarkReadResponse{Updated: n}, err)
}

// History handles GET /history/:id
func (h *ActivityHandler) History(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	entityID, ok := h.PathID(c)
	if !ok {
		return
	}
	var q dto.HistoryQuery
	if !h.BindQuery(c, &q) {
		return
	}
	entries, err := h.audit.History(c.Request.Context(), actor, entityID, q.Limit)
	if entries == nil {
		entries = []audit.Entry{}
	}
	respond(h.BaseHandler, c, http.StatusOK, entries, err)
}

// Sequence handles GET /sequences/:prefix
func (h *ActivityHandler) Sequence(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		h.Error(c, err)
		return
	}
	prefix, err := numerator.ParsePrefix(c.Param("prefix"))
	if err != nil {
		h.Error(c, err)
		return
	}
	v, err := h.numerator.CurrentValue(c.Request.Context(), prefix)
	respond(h.BaseHandler, c, http.StatusOK, dto.SequenceResponse{Prefix: string(prefix), Value: v}, err)
}
