package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/health-records/internal/logger"
)

const defaultChannel = "health-records:changes"

type envelope struct {
	Instance string `json:"instance"`
	Event
}

// RedisBroadcaster publishes to the local hub and relays events between
// instances over a redis pub/sub channel.
type RedisBroadcaster struct {
	client   *redis.Client
	hub      *Hub
	channel  string
	instance string
}

// NewRedisBroadcaster wires hub to the shared channel
func NewRedisBroadcaster(client *redis.Client, hub *Hub) *RedisBroadcaster {
	return &RedisBroadcaster{
		client:   client,
		hub:      hub,
		channel:  defaultChannel,
		instance: uuid.NewString(),
	}
}

// Publish notifies local subscribers immediately and other instances via redis
func (b *RedisBroadcaster) Publish(ctx context.Context, ev Event) {
	b.hub.Publish(ctx, ev)

	payload, err := json.Marshal(envelope{Instance: b.instance, Event: ev})
	if err != nil {
		logger.Error("Failed to encode change event", "error", err)
		return
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		logger.Warn("Failed to relay change event", "error", err, "account_id", ev.AccountID, "topic", ev.Topic)
	}
}

// Run relays events published by other instances into the local hub until ctx ends
func (b *RedisBroadcaster) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Warn("Dropping malformed change event", "error", err)
				continue
			}
			if env.Instance == b.instance {
				continue
			}
			b.hub.Publish(ctx, env.Event)
		}
	}
}
