// Package notification models the outbound notification side channel.
//
// Use cases emit Events through a Publisher. Delivery happens later, outside the
// business transaction: a Dispatcher resolves the audience and hands a Message
// to every Sink. A failed publish is logged and never fails the use case.
package notification

import (
	"context"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// Type classifies a notification.
type Type string

const (
	TypeSRNSubmitted       Type = "SRN_SUBMITTED"
	TypeSRNApproved        Type = "SRN_APPROVED"
	TypeSRNRejected        Type = "SRN_REJECTED"
	TypeDispatchCreated    Type = "DISPATCH_CREATED"
	TypeDispatchExecuted   Type = "DISPATCH_EXECUTED"
	TypeGRNConfirmed       Type = "GRN_CONFIRMED"
	TypeInvoiceGenerated   Type = "INVOICE_GENERATED"
	TypeReturnRaised       Type = "RETURN_RAISED"
	TypeReturnResolved     Type = "RETURN_RESOLVED"
	TypeProductionRecorded Type = "PRODUCTION_RECORDED"
)

// Audience is who should receive an event: everyone active in Roles plus UserIDs.
type Audience struct {
	Roles   []security.Role `json:"roles,omitempty"`
	UserIDs []id.ID         `json:"userIds,omitempty"`
}

// ToAdmins addresses all active admins.
func ToAdmins() Audience {
	return Audience{Roles: []security.Role{security.RoleAdmin}}
}

// ToUsers addresses specific users.
func ToUsers(userIDs ...id.ID) Audience {
	return Audience{UserIDs: userIDs}
}

// And merges two audiences.
func (a Audience) And(other Audience) Audience {
	return Audience{
		Roles:   append(append([]security.Role{}, a.Roles...), other.Roles...),
		UserIDs: append(append([]id.ID{}, a.UserIDs...), other.UserIDs...),
	}
}

// Message is the user-facing content of a notification.
type Message struct {
	Type        Type   `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	ReferenceID id.ID  `json:"referenceId"`
}

// Event is one outbound notification as recorded by a use case.
type Event struct {
	ID         id.ID     `json:"id"`
	Message    Message   `json:"message"`
	Audience   Audience  `json:"audience"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent stamps a new event.
func NewEvent(audience Audience, typ Type, title, message string, referenceID id.ID) Event {
	return Event{
		ID:         id.New(),
		Message:    Message{Type: typ, Title: title, Message: message, ReferenceID: referenceID},
		Audience:   audience,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher records events for later delivery.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Emit publishes event and swallows the error after logging it.
// A nil publisher drops the event.
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.Warn(ctx, "failed to publish notification",
			"type", event.Message.Type,
			"reference_id", event.Message.ReferenceID,
			"error", err,
		)
	}
}
