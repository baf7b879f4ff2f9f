package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids (jti) until the token would have
// expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	Revoked(ctx context.Context, jti string) (bool, error)
}

// MemoryDenylist is a process-local Denylist.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist returns an empty MemoryDenylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: map[string]time.Time{}, now: time.Now}
}

// Revoke denies jti until the given time. Expired entries are pruned on
// every call.
func (d *MemoryDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for k, exp := range d.entries {
		if !exp.After(now) {
			delete(d.entries, k)
		}
	}
	if until.After(now) {
		d.entries[jti] = until
	}
	return nil
}

// Revoked reports whether jti is denied right now.
func (d *MemoryDenylist) Revoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.entries[jti]
	return ok && exp.After(d.now()), nil
}

const denylistPrefix = "surepay:revoked:"

// RedisDenylist shares revocations between server instances. Entries
// expire with the token they revoke.
type RedisDenylist struct {
	rdb *redis.Client
}

// NewRedisDenylist returns a RedisDenylist backed by rdb.
func NewRedisDenylist(rdb *redis.Client) *RedisDenylist {
	return &RedisDenylist{rdb: rdb}
}

// Revoke stores jti with a TTL that ends at until. Past times are a no-op.
func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, denylistPrefix+jti, 1, ttl).Err()
}

// Revoked reports whether a live entry exists for jti.
func (d *RedisDenylist) Revoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
