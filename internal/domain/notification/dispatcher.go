package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// Sink delivers a message to users. It is the notify(userIds, type, title, message, referenceId) port.
type Sink interface {
	Notify(ctx context.Context, userIDs []id.ID, msg Message) error
}

// Directory resolves role audiences.
type Directory interface {
	ListActiveByRole(ctx context.Context, role security.Role) ([]id.ID, error)
}

// Handler consumes events drained from an outbox. Dispatcher implements it.
type Handler interface {
	Dispatch(ctx context.Context, event Event) error
}

// Dispatcher turns events into per-user deliveries.
type Dispatcher struct {
	directory Directory
	sinks     []Sink
}

// NewDispatcher creates a dispatcher delivering to every sink.
func NewDispatcher(directory Directory, sinks ...Sink) *Dispatcher {
	return &Dispatcher{directory: directory, sinks: sinks}
}

// Dispatch resolves the audience and delivers to every sink.
// Errors from individual sinks are joined; other sinks still run.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	recipients, err := d.resolve(ctx, event.Audience)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		logger.Debug(ctx, "notification has no recipients", "type", event.Message.Type)
		return nil
	}

	var errs []error
	for _, sink := range d.sinks {
		if err := sink.Notify(ctx, recipients, event.Message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) resolve(ctx context.Context, audience Audience) ([]id.ID, error) {
	seen := make(map[id.ID]struct{})
	var out []id.ID
	add := func(uid id.ID) {
		if id.IsNil(uid) {
			return
		}
		if _, ok := seen[uid]; ok {
			return
		}
		seen[uid] = struct{}{}
		out = append(out, uid)
	}

	for _, role := range audience.Roles {
		ids, err := d.directory.ListActiveByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("resolve role %s: %w", role, err)
		}
		for _, uid := range ids {
			add(uid)
		}
	}
	for _, uid := range audience.UserIDs {
		add(uid)
	}
	return out, nil
}

// DirectPublisher delivers synchronously through a Dispatcher.
// Used when no outbox relay runs (in-memory deployments).
type DirectPublisher struct {
	dispatcher *Dispatcher
}

// NewDirectPublisher wraps dispatcher as a Publisher.
func NewDirectPublisher(dispatcher *Dispatcher) *DirectPublisher {
	return &DirectPublisher{dispatcher: dispatcher}
}

// Publish implements Publisher.
func (p *DirectPublisher) Publish(ctx context.Context, event Event) error {
	return p.dispatcher.Dispatch(ctx, event)
}
