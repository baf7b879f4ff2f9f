package thread

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Broker carries change notifications from writers to live subscribers.
type Broker interface {
	Publish(ctx context.Context, key Key) error
	Listen(key Key) (<-chan struct{}, func())
}

const redisChannelPrefix = "surepay:thread:"

// RedisBroker fans notifications out across server instances: Publish goes
// through Redis pub/sub and every instance relays what it receives to its
// local Hub.
type RedisBroker struct {
	rdb    *redis.Client
	hub    *Hub
	pubsub *redis.PubSub
	log    *slog.Logger
	wg     sync.WaitGroup
}

// NewRedisBroker subscribes to all thread channels and starts relaying.
func NewRedisBroker(ctx context.Context, rdb *redis.Client, log *slog.Logger) (*RedisBroker, error) {
	if log == nil {
		log = slog.Default()
	}
	pubsub := rdb.PSubscribe(ctx, redisChannelPrefix+"*")
	// wait for the subscription to be confirmed so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	b := &RedisBroker{rdb: rdb, hub: NewHub(), pubsub: pubsub, log: log}
	b.wg.Add(1)
	go b.relay()
	return b, nil
}

func (b *RedisBroker) relay() {
	defer b.wg.Done()
	for msg := range b.pubsub.Channel() {
		key := Key(strings.TrimPrefix(msg.Channel, redisChannelPrefix))
		b.hub.Notify(key)
	}
	b.log.Info("redis thread relay stopped")
}

// Publish sends a change notification for key to every instance.
func (b *RedisBroker) Publish(ctx context.Context, key Key) error {
	return b.rdb.Publish(ctx, redisChannelPrefix+string(key), "changed").Err()
}

// Listen registers a local listener for key.
func (b *RedisBroker) Listen(key Key) (<-chan struct{}, func()) {
	return b.hub.Listen(key)
}

// Close stops relaying and waits for the relay goroutine.
func (b *RedisBroker) Close() error {
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}
