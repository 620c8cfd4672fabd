// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
)

// A Store maps cache keys to snapshots.
//
// TryGet returns the snapshot stored under key. It reports false, and
// no error, if there is none or it has expired. Set stores s under key
// for the given expiration; a non-positive expiration means the store's
// default. Implementations of Store must be safe for concurrent use by
// multiple goroutines.
type Store interface {
	TryGet(ctx context.Context, key string) (*Snapshot, bool, error)
	Set(ctx context.Context, key string, s *Snapshot, expiration time.Duration) error
}

// Memory is an in-process Store backed by ttlcache.
//
// Expired snapshots read as absent whether or not they have been
// evicted. Call Start to evict them in the background as well.
type Memory struct {
	items *ttlcache.Cache[string, *Snapshot]
}

// NewMemory returns an empty in-memory store. Snapshots stored with a
// non-positive expiration live for defaultTTL; if defaultTTL is also
// non-positive they never expire.
func NewMemory(defaultTTL time.Duration) *Memory {
	opts := []ttlcache.Option[string, *Snapshot]{
		ttlcache.WithDisableTouchOnHit[string, *Snapshot](),
	}
	if defaultTTL > 0 {
		opts = append(opts, ttlcache.WithTTL[string, *Snapshot](defaultTTL))
	}
	return &Memory{items: ttlcache.New[string, *Snapshot](opts...)}
}

// TryGet implements Store.
func (m *Memory) TryGet(_ context.Context, key string) (*Snapshot, bool, error) {
	item := m.items.Get(key)
	if item == nil || item.IsExpired() || item.Value().Expired(time.Now()) {
		return nil, false, nil
	}
	return item.Value(), true, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, s *Snapshot, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = ttlcache.DefaultTTL
	}
	m.items.Set(key, s, expiration)
	return nil
}

// Len returns the number of stored snapshots, including expired ones
// not yet evicted.
func (m *Memory) Len() int {
	return m.items.Len()
}

// Start evicts expired snapshots in the background until Stop is
// called. Start blocks, so call it in its own goroutine.
func (m *Memory) Start() {
	m.items.Start()
}

// Stop stops background eviction.
func (m *Memory) Stop() {
	m.items.Stop()
}

// A RedisClient is the subset of the go-redis client API used by the
// Redis store. *redis.Client, *redis.ClusterClient and every other
// redis.Cmdable satisfy it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis is a Store which keeps JSON-encoded snapshots in Redis, so that
// several processes share one cache.
type Redis struct {
	client RedisClient
	prefix string
}

// NewRedis returns a store using client. Every key is prefixed with
// prefix.
func NewRedis(client RedisClient, prefix string) *Redis {
	if client == nil {
		panic("actionx/cache: nil redis client")
	}
	return &Redis{client: client, prefix: prefix}
}

// TryGet implements Store.
func (r *Redis) TryGet(ctx context.Context, key string) (*Snapshot, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("actionx/cache: redis get: %w", err)
	}
	var s Snapshot
	if err = json.Unmarshal(b, &s); err != nil {
		return nil, false, fmt.Errorf("actionx/cache: corrupt snapshot under %q: %w", key, err)
	}
	if s.Expired(time.Now()) {
		return nil, false, nil
	}
	return &s, true, nil
}

// Set implements Store. A non-positive expiration stores the snapshot
// without a Redis expiry; it still reads as absent after its Expires
// instant.
func (r *Redis) Set(ctx context.Context, key string, s *Snapshot, expiration time.Duration) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("actionx/cache: encoding snapshot: %w", err)
	}
	if expiration < 0 {
		expiration = 0
	}
	if err = r.client.Set(ctx, r.prefix+key, b, expiration).Err(); err != nil {
		return fmt.Errorf("actionx/cache: redis set: %w", err)
	}
	return nil
}
