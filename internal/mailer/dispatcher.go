package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/halcyonlabs/identity-service/internal/auth"
	"github.com/halcyonlabs/identity-service/internal/logging"
)

// Sender is the mail backend the dispatcher hands decoded notifications to.
type Sender interface {
	SendVerificationEmail(ctx context.Context, toEmail, displayName, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, displayName, token string) error
}

// Dispatcher consumes notification records from the Redis stream the API
// publishes to and dispatches the corresponding emails. Delivery is at
// least once: messages are acknowledged only after a successful send, and
// a failed send leaves the entry pending for redelivery.
type Dispatcher struct {
	client   *redis.Client
	sender   Sender
	logger   *logging.Logger
	stream   string
	group    string
	consumer string
}

func NewDispatcher(client *redis.Client, sender Sender, logger *logging.Logger, stream, group, consumer string) *Dispatcher {
	return &Dispatcher{
		client:   client,
		sender:   sender,
		logger:   logger,
		stream:   stream,
		group:    group,
		consumer: consumer,
	}
}

// Run blocks reading the stream until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.ensureGroup(ctx); err != nil {
		return err
	}

	d.logger.Info("mail dispatcher started", "stream", d.stream, "group", d.group)

	for {
		streams, err := d.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    d.group,
			Consumer: d.consumer,
			Streams:  []string{d.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			if errors.Is(err, redis.Nil) {
				continue // block timeout, nothing to read
			}
			d.logger.Error("failed to read mail stream", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				d.handleMessage(ctx, msg)
			}
		}
	}
}

func (d *Dispatcher) ensureGroup(ctx context.Context) error {
	err := d.client.XGroupCreateMkStream(ctx, d.stream, d.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg redis.XMessage) {
	payload, ok := msg.Values["notification"].(string)
	if !ok {
		d.logger.Warn("malformed stream entry, dropping", "id", msg.ID)
		d.ack(ctx, msg.ID)
		return
	}

	var n auth.Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		d.logger.Warn("undecodable notification, dropping", "id", msg.ID, "error", err.Error())
		d.ack(ctx, msg.ID)
		return
	}

	var err error
	switch n.Kind {
	case auth.NotificationVerification:
		err = d.sender.SendVerificationEmail(ctx, n.To, n.DisplayName, n.Token)
	case auth.NotificationPasswordReset:
		err = d.sender.SendPasswordResetEmail(ctx, n.To, n.DisplayName, n.Token)
	default:
		d.logger.Warn("unknown notification kind, dropping", "id", msg.ID, "kind", string(n.Kind))
		d.ack(ctx, msg.ID)
		return
	}

	if err != nil {
		// Leave unacked so the pending entry can be retried or claimed.
		d.logger.Error("failed to send email", "id", msg.ID, "email", n.To, "error", err.Error())
		return
	}

	d.ack(ctx, msg.ID)
}

func (d *Dispatcher) ack(ctx context.Context, id string) {
	if err := d.client.XAck(ctx, d.stream, d.group, id).Err(); err != nil {
		d.logger.Error("failed to ack stream entry", "id", id, "error", err.Error())
	}
}
