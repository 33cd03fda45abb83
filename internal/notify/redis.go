package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/example/room-reservations/internal/application"
)

// DefaultChannel is the Redis channel used when none is configured.
const DefaultChannel = "reservations:update_events"

// Broadcaster delivers an encoded frame to local subscribers.
type Broadcaster interface {
	Broadcast(data []byte) error
}

// PubSubClient is the subset of the go-redis client used by the relay.
type PubSubClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// RedisRelay publishes changes to a Redis channel and forwards every frame on
// that channel, including its own, to the local hub. Running one relay per
// instance gives every instance's subscribers every change exactly once.
type RedisRelay struct {
	client  PubSubClient
	channel string
	local   Broadcaster
	logger  *slog.Logger
}

// NewRedisRelay constructs a relay on channel.
func NewRedisRelay(client PubSubClient, channel string, local Broadcaster, logger *slog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		local:   local,
		logger:  logger.With("component", "notify.RedisRelay", "channel", channel),
	}
}

// Publish implements application.Notifier.
func (r *RedisRelay) Publish(ctx context.Context, change application.Change) error {
	data, err := EncodeChange(change)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("notify: redis publish: %w", err)
	}
	return nil
}

// Run subscribes to the channel and relays frames until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("notify: redis subscribe: %w", err)
	}
	r.logger.InfoContext(ctx, "relay subscribed")
	return r.relay(ctx, sub.Channel())
}

func (r *RedisRelay) relay(ctx context.Context, messages <-chan *redis.Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := r.local.Broadcast([]byte(msg.Payload)); err != nil {
				r.logger.WarnContext(ctx, "failed to relay frame", "error", err)
			}
		}
	}
}
