package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Publisher fans an Update out to the board's viewers
type Publisher interface {
	Publish(ctx context.Context, u Update) error
}

// Observer receives realtime counters. *metrics.Metrics satisfies it.
type Observer interface {
	ConnectionOpened()
	ConnectionClosed()
	RecordBroadcast(tag string)
}

type nopObserver struct{}

func (nopObserver) ConnectionOpened()      {}
func (nopObserver) ConnectionClosed()      {}
func (nopObserver) RecordBroadcast(string) {}

// LocalBroker delivers updates to connections held by this process only
type LocalBroker struct {
	hub      *Hub
	observer Observer
}

// NewLocalBroker creates an in-process broker. observer may be nil.
func NewLocalBroker(hub *Hub, observer Observer) *LocalBroker {
	if observer == nil {
		observer = nopObserver{}
	}
	return &LocalBroker{hub: hub, observer: observer}
}

// Publish broadcasts u to the board's group, skipping u.Origin
func (b *LocalBroker) Publish(_ context.Context, u Update) error {
	if u.At.IsZero() {
		u.At = time.Now().UTC()
	}
	b.hub.Broadcast(u.BoardID, u.Origin, updateFrame(u))
	b.observer.RecordBroadcast(u.Tag)
	return nil
}

// RedisBroker publishes updates on a per-board redis channel and delivers
// whatever arrives on those channels to the local hub, so viewers connected
// to any instance are notified
type RedisBroker struct {
	client   *redis.Client
	hub      *Hub
	prefix   string
	logger   *zap.Logger
	observer Observer
}

// NewRedisBroker creates a redis-backed broker. Channels are named
// prefix + boardID.
func NewRedisBroker(client *redis.Client, hub *Hub, prefix string, logger *zap.Logger, observer Observer) *RedisBroker {
	if prefix == "" {
		prefix = "board:"
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &RedisBroker{client: client, hub: hub, prefix: prefix, logger: logger, observer: observer}
}

// Channel returns the redis channel for a board
func (b *RedisBroker) Channel(boardID string) string {
	return b.prefix + boardID
}

// Publish sends u to the board's channel. Local delivery happens when the
// message comes back through Run.
func (b *RedisBroker) Publish(ctx context.Context, u Update) error {
	if u.At.IsZero() {
		u.At = time.Now().UTC()
	}
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}
	if err := b.client.Publish(ctx, b.Channel(u.BoardID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish update: %w", err)
	}
	b.observer.RecordBroadcast(u.Tag)
	return nil
}

// Run subscribes to every board channel and forwards messages to the hub
// until ctx is cancelled
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, b.prefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s*: %w", b.prefix, err)
	}
	b.logger.Info("Subscribed to board channels", zap.String("pattern", b.prefix+"*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.deliver(msg.Channel, msg.Payload)
		}
	}
}

func (b *RedisBroker) deliver(channel, payload string) {
	var u Update
	if err := json.Unmarshal([]byte(payload), &u); err != nil {
		b.logger.Warn("Dropping malformed board update",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return
	}
	if u.BoardID == "" {
		u.BoardID = strings.TrimPrefix(channel, b.prefix)
	}
	b.hub.Broadcast(u.BoardID, u.Origin, updateFrame(u))
}
