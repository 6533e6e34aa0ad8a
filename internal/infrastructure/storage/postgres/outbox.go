package postgres

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/audit"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxMessage represents a message in the transactional outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	Seq           int64        `db:"seq"`
	AggregateType string       `db:"aggregate_type"` // e.g. "srn", "dispatch"
	AggregateID   id.ID        `db:"aggregate_id"`   // referenced document
	EventType     string       `db:"event_type"`     // e.g. "SRN_APPROVED"
	Payload       []byte       `db:"payload"`        // JSON notification.Event
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

// newOutboxMessage serializes event into a pending message.
func newOutboxMessage(event notification.Event) (OutboxMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return OutboxMessage{
		ID:            event.ID,
		AggregateType: audit.EntityType(event.Message.Type),
		AggregateID:   event.Message.ReferenceID,
		EventType:     string(event.Message.Type),
		Payload:       payload,
		Status:        OutboxStatusPending,
		CreatedAt:     event.OccurredAt,
	}, nil
}

// Event decodes the payload.
func (m *OutboxMessage) Event() (notification.Event, error) {
	var event notification.Event
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return event, fmt.Errorf("decode outbox message %s: %w", m.ID, err)
	}
	return event, nil
}

// OutboxPublisher writes events to the outbox table. It implements
// notification.Publisher.
type OutboxPublisher struct {
	txManager *TxManager
}

var _ notification.Publisher = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txManager: txManager}
}

// Publish writes an event to the outbox within the current transaction, so it
// is delivered only if the use case commits. The insert runs under a
// savepoint: a failed write is reported without aborting the caller.
func (p *OutboxPublisher) Publish(ctx context.Context, event notification.Event) error {
	msg, err := newOutboxMessage(event)
	if err != nil {
		return err
	}

	return p.txManager.Savepoint(ctx, func(ctx context.Context) error {
		_, err := p.txManager.GetQuerier(ctx).Exec(ctx, `
			INSERT INTO sys_outbox (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, msg.Status, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert outbox message: %w", err)
		}
		return nil
	})
}

// RelayOptions tunes the relay.
type RelayOptions struct {
	BatchSize int
	// MaxRetries is the number of failed deliveries after which a message is
	// marked failed and becomes eligible for the dead-letter queue.
	MaxRetries int
	// Backoff is multiplied by the attempt number to schedule the next retry.
	Backoff time.Duration
	// Lease hides claimed messages from other relays while they are delivered.
	Lease time.Duration
}

func (o RelayOptions) withDefaults() RelayOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Minute
	}
	if o.Lease <= 0 {
		o.Lease = 30 * time.Second
	}
	return o
}

// OutboxRelay reads and processes messages from the outbox.
// Used by the background worker to hand events to the notification dispatcher.
type OutboxRelay struct {
	txManager *TxManager
	handler   notification.Handler
	opts      RelayOptions
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(txManager *TxManager, handler notification.Handler, opts RelayOptions) *OutboxRelay {
	return &OutboxRelay{
		txManager: txManager,
		handler:   handler,
		opts:      opts.withDefaults(),
	}
}

// ProcessBatch claims pending messages and delivers them in order.
// Returns number of delivered messages.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "outbox.process_batch")
	defer span.End()

	messages, err := r.claim(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "claim failed")
		return 0, err
	}
	span.SetAttributes(attribute.Int("outbox.claimed", len(messages)))

	processed := 0
	for i := range messages {
		if err := r.processMessage(ctx, &messages[i]); err != nil {
			logger.Warn(ctx, "outbox delivery failed",
				"message_id", messages[i].ID,
				"event_type", messages[i].EventType,
				"attempt", messages[i].RetryCount+1,
				"error", err,
			)
			continue
		}
		processed++
	}

	span.SetAttributes(attribute.Int("outbox.processed", processed))
	return processed, nil
}

// claim leases up to BatchSize due messages. Concurrent relays skip rows
// locked by each other and do not see leased rows until the lease expires.
func (r *OutboxRelay) claim(ctx context.Context) ([]OutboxMessage, error) {
	rows, err := r.txManager.Pool().Query(ctx, `
		UPDATE sys_outbox
		SET next_retry_at = $1
		WHERE id IN (
			SELECT id FROM sys_outbox
			WHERE status = $2
			  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
			ORDER BY seq
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, seq, aggregate_type, aggregate_id, event_type, payload, status,
		          retry_count, last_error, next_retry_at, created_at, published_at
	`, time.Now().UTC().Add(r.opts.Lease), OutboxStatusPending, r.opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("claim outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []OutboxMessage
	for rows.Next() {
		var msg OutboxMessage
		err := rows.Scan(
			&msg.ID, &msg.Seq, &msg.AggregateType, &msg.AggregateID, &msg.EventType,
			&msg.Payload, &msg.Status, &msg.RetryCount, &msg.LastError,
			&msg.NextRetryAt, &msg.CreatedAt, &msg.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox messages: %w", err)
	}

	slices.SortFunc(messages, func(a, b OutboxMessage) int { return cmp.Compare(a.Seq, b.Seq) })
	return messages, nil
}

// processMessage delivers one message. Every sink write of the delivery
// commits together.
func (r *OutboxRelay) processMessage(ctx context.Context, msg *OutboxMessage) error {
	err := func() error {
		event, err := msg.Event()
		if err != nil {
			return err
		}
		return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return r.handler.Dispatch(ctx, event)
		})
	}()

	if err != nil {
		attempt := msg.RetryCount + 1
		status := OutboxStatusPending
		if attempt >= r.opts.MaxRetries {
			status = OutboxStatusFailed
		}
		nextRetry := time.Now().UTC().Add(time.Duration(attempt) * r.opts.Backoff)

		_, updateErr := r.txManager.Pool().Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = $1,
			    last_error = $2,
			    next_retry_at = $3,
			    status = $4
			WHERE id = $5
		`, attempt, err.Error(), nextRetry, status, msg.ID)
		if updateErr != nil {
			return fmt.Errorf("update failed message: %w", updateErr)
		}
		return err
	}

	_, err = r.txManager.Pool().Exec(ctx, `
		UPDATE sys_outbox
		SET status = $1, published_at = $2
		WHERE id = $3
	`, OutboxStatusPublished, time.Now().UTC(), msg.ID)
	if err != nil {
		return fmt.Errorf("mark message published: %w", err)
	}
	return nil
}

// MoveToDLQ moves failed messages to the dead letter queue.
func (r *OutboxRelay) MoveToDLQ(ctx context.Context) (int64, error) {
	result, err := r.txManager.Pool().Exec(ctx, `
		WITH moved AS (
			DELETE FROM sys_outbox
			WHERE status = $1
			RETURNING id, aggregate_type, aggregate_id, event_type, payload,
			          retry_count, last_error, created_at
		)
		INSERT INTO sys_outbox_dlq (
			id, aggregate_type, aggregate_id, event_type, payload,
			retry_count, created_at, failed_at, failure_reason
		)
		SELECT id, aggregate_type, aggregate_id, event_type, payload,
		       retry_count, created_at, NOW(), last_error
		FROM moved
	`, OutboxStatusFailed)
	if err != nil {
		return 0, fmt.Errorf("move to DLQ: %w", err)
	}

	return result.RowsAffected(), nil
}

// PurgePublished deletes published messages older than retention.
func (r *OutboxRelay) PurgePublished(ctx context.Context, retention time.Duration) (int64, error) {
	result, err := r.txManager.Pool().Exec(ctx, `
		DELETE FROM sys_outbox
		WHERE status = $1 AND published_at < $2
	`, OutboxStatusPublished, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("purge published messages: %w", err)
	}
	return result.RowsAffected(), nil
}
