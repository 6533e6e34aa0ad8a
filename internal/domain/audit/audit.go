// Package audit keeps the document history trail.
//
// Every delivered notification is archived against the document it refers to,
// so the history of an SRN, dispatch, receipt, invoice or return can be read
// back in order.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
)

// Entry is one archived event.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	Action     string          `db:"action" json:"action"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Store persists entries. Implementations may compress large payloads.
type Store interface {
	AppendAudit(ctx context.Context, e Entry) error
	// AuditHistory returns entries of entityID, oldest first.
	AuditHistory(ctx context.Context, entityID id.ID, limit int) ([]Entry, error)
}

// EntityType derives the document kind from a notification type ("SRN_APPROVED" -> "srn").
func EntityType(t notification.Type) string {
	prefix, _, _ := strings.Cut(string(t), "_")
	switch prefix {
	case "PRODUCTION":
		return "material"
	}
	return strings.ToLower(prefix)
}

type payload struct {
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Recipients []id.ID `json:"recipients"`
}

// Sink archives every delivered message. It implements notification.Sink.
type Sink struct {
	store Store
}

// NewSink creates the archiving sink.
func NewSink(store Store) *Sink {
	return &Sink{store: store}
}

// Notify implements notification.Sink.
func (s *Sink) Notify(ctx context.Context, userIDs []id.ID, msg notification.Message) error {
	raw, err := json.Marshal(payload{Title: msg.Title, Message: msg.Message, Recipients: userIDs})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	return s.store.AppendAudit(ctx, Entry{
		ID:         id.New(),
		EntityType: EntityType(msg.Type),
		EntityID:   msg.ReferenceID,
		Action:     string(msg.Type),
		Payload:    raw,
		CreatedAt:  time.Now().UTC(),
	})
}

// Service reads document history. Admin only.
type Service struct {
	store Store
}

// NewService creates the history service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// History returns the trail of one document.
func (s *Service) History(ctx context.Context, actor security.Actor, entityID id.ID, limit int) ([]Entry, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.AuditHistory(ctx, entityID, limit)
}
