package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// Notification is one inbox row.
type Notification struct {
	ID          id.ID     `db:"id" json:"id"`
	UserID      id.ID     `db:"user_id" json:"userId"`
	Type        Type      `db:"type" json:"type"`
	Title       string    `db:"title" json:"title"`
	Message     string    `db:"message" json:"message"`
	ReferenceID id.ID     `db:"reference_id" json:"referenceId"`
	IsRead      bool      `db:"is_read" json:"isRead"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Store persists inbox rows.
type Store interface {
	InsertNotifications(ctx context.Context, rows ...Notification) error
	ListNotifications(ctx context.Context, userID id.ID, unreadOnly bool, limit int) ([]Notification, error)
	// MarkNotificationsRead flags rows of userID as read; nil ids marks all. Returns rows changed.
	MarkNotificationsRead(ctx context.Context, userID id.ID, ids []id.ID) (int64, error)
}

// InboxSink writes one inbox row per recipient.
type InboxSink struct {
	store Store
}

// NewInboxSink creates the sink.
func NewInboxSink(store Store) *InboxSink {
	return &InboxSink{store: store}
}

// Notify implements Sink.
func (s *InboxSink) Notify(ctx context.Context, userIDs []id.ID, msg Message) error {
	now := time.Now().UTC()
	rows := make([]Notification, len(userIDs))
	for i, uid := range userIDs {
		rows[i] = Notification{
			ID:          id.New(),
			UserID:      uid,
			Type:        msg.Type,
			Title:       msg.Title,
			Message:     msg.Message,
			ReferenceID: msg.ReferenceID,
			CreatedAt:   now,
		}
	}
	if err := s.store.InsertNotifications(ctx, rows...); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}

// Service is the read side of the inbox.
type Service struct {
	store Store
}

// NewService creates the inbox service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, actor security.Actor, unreadOnly bool, limit int) ([]Notification, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListNotifications(ctx, actor.ID, unreadOnly, limit)
}

// MarkRead flags the caller's notifications as read. Empty ids marks all.
func (s *Service) MarkRead(ctx context.Context, actor security.Actor, ids []id.ID) (int64, error) {
	if err := requireUser(actor); err != nil {
		return 0, err
	}
	n, err := s.store.MarkNotificationsRead(ctx, actor.ID, ids)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	logger.Debug(ctx, "notifications marked read", "count", n)
	return n, nil
}

func requireUser(actor security.Actor) error {
	if id.IsNil(actor.ID) {
		return apperror.NewUnauthorized("authentication required")
	}
	return nil
}
