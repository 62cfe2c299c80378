package tenantdb

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/anyrent/shopkit/pkg/tenant"
)

// DefaultInvalidationChannel is the Redis pub/sub channel carrying
// tenant keys whose cached state must be discarded.
const DefaultInvalidationChannel = "tenant:invalidate"

// Publisher broadcasts tenant invalidation messages. Registration and
// billing flows publish after changing a tenant's status or connection
// string so every process drops its cached pool and metadata.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

// NewPublisher creates an invalidation publisher.
func NewPublisher(rdb *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultInvalidationChannel
	}
	return &Publisher{rdb: rdb, channel: channel}
}

// TenantChanged broadcasts that a tenant's registry record changed.
func (p *Publisher) TenantChanged(ctx context.Context, key string) error {
	return p.rdb.Publish(ctx, p.channel, key).Err()
}

// Invalidator subscribes to invalidation messages and evicts the
// tenant's connection pool and cached metadata in this process.
type Invalidator struct {
	rdb     *redis.Client
	channel string
	conns   *Conns
	meta    tenant.Cache
	log     *slog.Logger
}

// NewInvalidator creates an invalidation subscriber. meta may be nil
// when the process runs without a metadata cache.
func NewInvalidator(rdb *redis.Client, conns *Conns, meta tenant.Cache, log *slog.Logger, channel string) *Invalidator {
	if channel == "" {
		channel = DefaultInvalidationChannel
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Invalidator{rdb: rdb, channel: channel, conns: conns, meta: meta, log: log}
}

// Run consumes invalidation messages until the context is cancelled.
// Intended to run in its own goroutine for the process lifetime.
func (i *Invalidator) Run(ctx context.Context) error {
	sub := i.rdb.Subscribe(ctx, i.channel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			key := msg.Payload
			if key == "" {
				continue
			}
			i.conns.Evict(key)
			if i.meta != nil {
				i.meta.Delete(ctx, key)
			}
			i.log.InfoContext(ctx, "invalidated tenant caches", "tenant", key)
		}
	}
}
