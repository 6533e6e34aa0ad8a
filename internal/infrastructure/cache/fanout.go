package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
)

// ChannelPrefix is the per-user pub/sub channel, followed by the user id.
const ChannelPrefix = "notifications:"

// Channel returns the pub/sub channel of userID.
func Channel(userID id.ID) string {
	return ChannelPrefix + userID.String()
}

// FanOut publishes each delivered message to the recipients' channels so
// connected clients can refresh their inbox. It implements notification.Sink.
type FanOut struct {
	client *redis.Client
}

var _ notification.Sink = (*FanOut)(nil)

// NewFanOut creates the sink.
func NewFanOut(client *redis.Client) *FanOut {
	return &FanOut{client: client}
}

// Notify implements notification.Sink. Messages are sent in one pipeline.
func (f *FanOut) Notify(ctx context.Context, userIDs []id.ID, msg notification.Message) error {
	if len(userIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	_, err = f.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, uid := range userIDs {
			p.Publish(ctx, Channel(uid), payload)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish notifications: %w", err)
	}
	return nil
}
