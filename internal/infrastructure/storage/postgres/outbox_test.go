package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
)

func TestOutboxMessageRoundTrip(t *testing.T) {
	ref := id.New()
	user := id.New()
	event := notification.NewEvent(
		notification.ToAdmins().And(notification.ToUsers(user)),
		notification.TypeSRNApproved, "SRN approved", "SRN-20260101-000001 approved", ref)

	msg, err := newOutboxMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.ID, msg.ID)
	assert.Equal(t, "srn", msg.AggregateType)
	assert.Equal(t, ref, msg.AggregateID)
	assert.Equal(t, "SRN_APPROVED", msg.EventType)
	assert.Equal(t, OutboxStatusPending, msg.Status)

	decoded, err := msg.Event()
	require.NoError(t, err)
	assert.Equal(t, event.Message, decoded.Message)
	assert.Equal(t, []id.ID{user}, decoded.Audience.UserIDs)
	assert.True(t, event.OccurredAt.Equal(decoded.OccurredAt))
}

func TestOutboxMessageRejectsGarbage(t *testing.T) {
	msg := OutboxMessage{ID: id.New(), Payload: []byte("{")}
	_, err := msg.Event()
	assert.Error(t, err)
}

func TestRelayOptionsDefaults(t *testing.T) {
	opts := RelayOptions{MaxRetries: 3}.withDefaults()

	assert.Equal(t, 100, opts.BatchSize)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, time.Minute, opts.Backoff)
	assert.Equal(t, 30*time.Second, opts.Lease)
}
