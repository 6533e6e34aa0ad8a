package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/audit"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

var (
	_ notification.Store     = (*NotificationRepo)(nil)
	_ notification.Publisher = (*Outbox)(nil)
	_ audit.Store            = (*AuditRepo)(nil)
)

// NotificationRepo stores inbox rows.
type NotificationRepo struct {
	s *Store
}

// NewNotificationRepo creates the inbox store.
func (s *Store) NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{s: s}
}

func (r *NotificationRepo) InsertNotifications(ctx context.Context, rows ...notification.Notification) error {
	return r.s.write(ctx, func(st *state) error {
		st.inbox = append(st.inbox, rows...)
		return nil
	})
}

func (r *NotificationRepo) ListNotifications(ctx context.Context, userID id.ID, unreadOnly bool, limit int) ([]notification.Notification, error) {
	out := make([]notification.Notification, 0)
	err := r.s.read(ctx, func(st *state) error {
		for i := len(st.inbox) - 1; i >= 0 && len(out) < limit; i-- {
			n := st.inbox[i]
			if n.UserID != userID || (unreadOnly && n.IsRead) {
				continue
			}
			out = append(out, n)
		}
		return nil
	})
	return out, err
}

func (r *NotificationRepo) MarkNotificationsRead(ctx context.Context, userID id.ID, ids []id.ID) (int64, error) {
	var changed int64
	err := r.s.write(ctx, func(st *state) error {
		for i := range st.inbox {
			n := &st.inbox[i]
			if n.UserID != userID || n.IsRead {
				continue
			}
			if ids != nil && !slices.Contains(ids, n.ID) {
				continue
			}
			n.IsRead = true
			changed++
		}
		return nil
	})
	return changed, err
}

// Outbox records events in the transaction of the use case that raised them.
type Outbox struct {
	s *Store
}

// NewOutbox creates the outbox publisher.
func (s *Store) NewOutbox() *Outbox {
	return &Outbox{s: s}
}

// Publish implements notification.Publisher.
func (o *Outbox) Publish(ctx context.Context, event notification.Event) error {
	return o.s.write(ctx, func(st *state) error {
		st.outbox = append(st.outbox, outboxRow{event: event})
		return nil
	})
}

// Pending returns the number of undelivered events.
func (o *Outbox) Pending() int {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()
	return len(o.s.st.outbox)
}

// DeadLetters returns the number of events that exhausted their retries.
func (o *Outbox) DeadLetters() int {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()
	return len(o.s.st.deadLetters)
}

// OutboxRelay drains the outbox into a handler.
type OutboxRelay struct {
	s          *Store
	handler    notification.Handler
	batchSize  int
	maxRetries int
}

// NewOutboxRelay creates a relay delivering up to batchSize events per pass.
// An event failing maxRetries times is moved to the dead-letter list.
func (s *Store) NewOutboxRelay(handler notification.Handler, batchSize, maxRetries int) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &OutboxRelay{s: s, handler: handler, batchSize: batchSize, maxRetries: maxRetries}
}

// ProcessBatch delivers pending events in order and returns how many succeeded.
// Delivery runs outside the store lock so handlers may write to the store.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	var batch []outboxRow
	err := r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		st, _ := current(ctx)
		n := min(r.batchSize, len(st.outbox))
		batch = slices.Clone(st.outbox[:n])
		st.outbox = slices.Clone(st.outbox[n:])
		return nil
	})
	if err != nil || len(batch) == 0 {
		return 0, err
	}

	var failed, dead []outboxRow
	processed := 0
	for _, row := range batch {
		if err := r.handler.Dispatch(ctx, row.event); err != nil {
			row.attempts++
			row.lastErr = err.Error()
			logger.Warn(ctx, "outbox delivery failed",
				"event_id", row.event.ID,
				"type", row.event.Message.Type,
				"attempt", row.attempts,
				"error", err,
			)
			if row.attempts >= r.maxRetries {
				dead = append(dead, row)
			} else {
				failed = append(failed, row)
			}
			continue
		}
		processed++
	}

	if len(failed) > 0 || len(dead) > 0 {
		err = r.s.RunInTransaction(ctx, func(ctx context.Context) error {
			st, _ := current(ctx)
			st.outbox = append(failed, st.outbox...)
			st.deadLetters = append(st.deadLetters, dead...)
			return nil
		})
	}
	return processed, err
}

// AuditRepo stores the document history trail.
type AuditRepo struct {
	s *Store
}

// NewAuditRepo creates the audit store.
func (s *Store) NewAuditRepo() *AuditRepo {
	return &AuditRepo{s: s}
}

func (r *AuditRepo) AppendAudit(ctx context.Context, e audit.Entry) error {
	return r.s.write(ctx, func(st *state) error {
		e.Payload = slices.Clone(e.Payload)
		st.audit = append(st.audit, e)
		return nil
	})
}

func (r *AuditRepo) AuditHistory(ctx context.Context, entityID id.ID, limit int) ([]audit.Entry, error) {
	out := make([]audit.Entry, 0)
	err := r.s.read(ctx, func(st *state) error {
		for _, e := range st.audit {
			if e.EntityID == entityID {
				out = append(out, e)
			}
		}
		return nil
	})
	slices.SortStableFunc(out, func(a, b audit.Entry) int { return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano()) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}
