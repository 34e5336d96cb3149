// Package pubsub mirrors the in-process change bus across instances.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
)

// Bus is satisfied by *events.Bus.
type Bus interface {
	Publish(ch events.Change) bool
	Subscribe(h events.Handler) func()
}

// RedisBridge forwards local changes to the Redis channel of the same name
// and republishes changes from other instances locally. Every message is
// stamped with this instance's origin so it is never echoed back.
type RedisBridge struct {
	client *redis.Client
	bus    Bus
	origin string

	ctx         context.Context
	cancel      context.CancelFunc
	pubsub      *redis.PubSub
	unsubscribe func()
	wg          sync.WaitGroup
}

func NewRedisBridge(client *redis.Client, bus Bus) *RedisBridge {
	return &RedisBridge{
		client: client,
		bus:    bus,
		origin: uuid.NewString(),
	}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (b *RedisBridge) Origin() string {
	return b.origin
}

// Start subscribes to Redis and to the local bus. It returns once the Redis
// subscription is confirmed.
func (b *RedisBridge) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.pubsub = b.client.Subscribe(b.ctx, events.Topic)
	if _, err := b.pubsub.Receive(b.ctx); err != nil {
		b.pubsub.Close()
		b.cancel()
		return fmt.Errorf("subscribe %s: %w", events.Topic, err)
	}

	b.unsubscribe = b.bus.Subscribe(b.forward)

	b.wg.Add(1)
	go b.receive()

	log.Printf("[events] redis bridge started (origin %s)", b.origin)
	return nil
}

func (b *RedisBridge) forward(ch events.Change) {
	payload, ok := b.outgoing(ch)
	if !ok {
		return
	}
	if err := b.client.Publish(b.ctx, events.Topic, payload).Err(); err != nil {
		log.Printf("[events] redis publish %s failed: %v", ch.ID, err)
	}
}

func (b *RedisBridge) receive() {
	defer b.wg.Done()
	for msg := range b.pubsub.Channel() {
		ch, ok := b.incoming([]byte(msg.Payload))
		if !ok {
			continue
		}
		b.bus.Publish(ch)
	}
}

// outgoing encodes a locally originated change. Changes that arrived from
// another instance are not sent back out.
func (b *RedisBridge) outgoing(ch events.Change) ([]byte, bool) {
	if ch.Origin != "" && ch.Origin != b.origin {
		return nil, false
	}
	ch.Origin = b.origin

	payload, err := json.Marshal(ch)
	if err != nil {
		log.Printf("[events] encode %s: %v", ch.ID, err)
		return nil, false
	}
	return payload, true
}

// incoming decodes a Redis message, dropping our own and malformed ones.
func (b *RedisBridge) incoming(payload []byte) (events.Change, bool) {
	var ch events.Change
	if err := json.Unmarshal(payload, &ch); err != nil {
		log.Printf("[events] malformed redis message: %v", err)
		return events.Change{}, false
	}
	if ch.Origin == "" || ch.Origin == b.origin {
		return events.Change{}, false
	}
	return ch, true
}

// Close stops both directions and waits for the receiver to exit.
func (b *RedisBridge) Close() error {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	var err error
	if b.pubsub != nil {
		err = b.pubsub.Close()
	}
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	return err
}
