package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel carrying invalidations.
const DefaultChannel = "kycreview:invalidate"

type invalidationMessage struct {
	Origin string    `json:"origin"`
	Tags   []Tag     `json:"tags"`
	At     time.Time `json:"at"`
}

// RedisBus shares tag invalidations between console processes over Redis
// pub/sub. Messages published by this process are ignored on receipt.
type RedisBus struct {
	client  *redis.Client
	channel string
	origin  string
	logger  *slog.Logger
}

// NewRedisBus creates a bus on channel. An empty channel uses DefaultChannel.
func NewRedisBus(client *redis.Client, channel string, logger *slog.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBus{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

// Origin identifies this process on the bus.
func (b *RedisBus) Origin() string { return b.origin }

// Publish implements Publisher.
func (b *RedisBus) Publish(ctx context.Context, tags []Tag) error {
	payload, err := json.Marshal(invalidationMessage{Origin: b.origin, Tags: tags, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode invalidation: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}
	return nil
}

// Run subscribes to the channel and calls apply for every invalidation
// published by a peer. It blocks until ctx is done.
func (b *RedisBus) Run(ctx context.Context, apply func(ctx context.Context, tags ...Tag)) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// Wait for the subscription to be confirmed before consuming.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.logger.InfoContext(ctx, "cache invalidation bus subscribed", "channel", b.channel, "origin", b.origin)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var m invalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				b.logger.WarnContext(ctx, "dropping malformed invalidation", "error", err)
				continue
			}
			if m.Origin == b.origin {
				continue
			}
			apply(ctx, m.Tags...)
		}
	}
}
