package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"user-import/core/reconcile"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the redis channel carrying applied namespaces.
const Channel = "user-import:applied"

// Redis announces applied imports to every process connected to the same redis.
type Redis struct {
	client  redis.UniversalClient
	channel string
	logger  *zap.Logger
}

// NewRedis creates a broadcaster on the default channel.
func NewRedis(client redis.UniversalClient, logger *zap.Logger) *Redis {
	return &Redis{client: client, channel: Channel, logger: logger}
}

// Publish announces that ns changed.
func (b *Redis) Publish(ctx context.Context, ns reconcile.Namespace) error {
	payload, err := json.Marshal(ns)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", ns, err)
	}
	return nil
}

// Subscribe calls fn for every announced namespace until ctx is done.
// It returns once the subscription is confirmed by redis.
func (b *Redis) Subscribe(ctx context.Context, fn func(reconcile.Namespace)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	go func() {
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ns reconcile.Namespace
				if err := json.Unmarshal([]byte(msg.Payload), &ns); err != nil {
					b.logger.Warn("Ignoring malformed broadcast", zap.String("payload", msg.Payload), zap.Error(err))
					continue
				}
				fn(ns)
			}
		}
	}()
	return nil
}
