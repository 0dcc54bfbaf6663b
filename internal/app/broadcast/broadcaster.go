package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Broadcaster publishes a domain event to a named channel. Delivery reaches
// every session currently subscribed to the channel on any server instance;
// it is never guaranteed to reach disconnected sessions.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, event Event) error
}

// RedisBroadcaster implements Broadcaster over Redis pub/sub, so publishes
// fan out across all server instances sharing the Redis deployment.
type RedisBroadcaster struct {
	client *redis.Client
}

// NewRedisBroadcaster returns a Broadcaster publishing through the given client.
func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{client: client}
}

// Publish seals the event into its wire envelope and publishes it on channel.
func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, event Event) error {
	envelope, err := Seal(channel, event)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := b.client.Publish(ctx, channel, raw).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}

	return nil
}
