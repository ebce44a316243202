package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/halcyonlabs/identity-service/internal/auth"
)

// RedisPublisher appends notification records to a Redis stream consumed
// by the mailer worker. Publishing is fire-and-forget from the caller's
// point of view: the stream decouples request latency from mail delivery.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

func (p *RedisPublisher) Publish(ctx context.Context, n auth.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"notification": payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}
