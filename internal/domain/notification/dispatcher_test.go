package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
)

type directory map[security.Role][]id.ID

func (d directory) ListActiveByRole(_ context.Context, role security.Role) ([]id.ID, error) {
	return d[role], nil
}

type recordingSink struct {
	calls [][]id.ID
	msgs  []notification.Message
	err   error
}

func (s *recordingSink) Notify(_ context.Context, userIDs []id.ID, msg notification.Message) error {
	s.calls = append(s.calls, userIDs)
	s.msgs = append(s.msgs, msg)
	return s.err
}

func TestDispatchResolvesAndDedupesAudience(t *testing.T) {
	admin, mfg, retailer := id.New(), id.New(), id.New()
	sink := &recordingSink{}
	d := notification.NewDispatcher(directory{security.RoleAdmin: {admin}}, sink)

	event := notification.NewEvent(
		notification.ToAdmins().And(notification.ToUsers(mfg, admin, retailer, mfg, id.Nil())),
		notification.TypeGRNConfirmed, "Goods received", "GRN-1", id.New(),
	)
	require.NoError(t, d.Dispatch(context.Background(), event))

	require.Len(t, sink.calls, 1)
	assert.Equal(t, []id.ID{admin, mfg, retailer}, sink.calls[0])
	assert.Equal(t, notification.TypeGRNConfirmed, sink.msgs[0].Type)
}

func TestDispatchSkipsEmptyAudience(t *testing.T) {
	sink := &recordingSink{}
	d := notification.NewDispatcher(directory{}, sink)

	err := d.Dispatch(context.Background(), notification.NewEvent(
		notification.ToAdmins(), notification.TypeSRNSubmitted, "t", "m", id.New()))
	require.NoError(t, err)
	assert.Empty(t, sink.calls)
}

func TestDispatchRunsEverySinkAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordingSink{err: boom}
	ok := &recordingSink{}
	d := notification.NewDispatcher(directory{}, failing, ok)

	err := d.Dispatch(context.Background(), notification.NewEvent(
		notification.ToUsers(id.New()), notification.TypeSRNRejected, "t", "m", id.New()))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ok.calls, 1)
}

type failingPublisher struct{ err error }

func (p failingPublisher) Publish(context.Context, notification.Event) error { return p.err }

func TestEmitSwallowsPublishErrors(t *testing.T) {
	assert.NotPanics(t, func() {
		notification.Emit(context.Background(), failingPublisher{err: errors.New("down")},
			notification.NewEvent(notification.ToAdmins(), notification.TypeSRNSubmitted, "t", "m", id.New()))
		notification.Emit(context.Background(), nil,
			notification.NewEvent(notification.ToAdmins(), notification.TypeSRNSubmitted, "t", "m", id.New()))
	})
}
