// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// readKeyPrefix namespaces read-model keys in Valkey.
	readKeyPrefix = "read:"

	// DefaultTTL bounds how long a read can be served without a re-fetch,
	// covering writes made by other processes.
	DefaultTTL = 5 * time.Minute
)

// Store is a byte-level cache backend.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, bool)
	Set(ctx context.Context, key Key, value []byte)
	Delete(ctx context.Context, keys ...Key) error
}

// ValkeyStore keeps cached reads in Valkey with a TTL.
type ValkeyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeyStore creates a store backed by the given Valkey client.
func NewValkeyStore(client *redis.Client, ttl time.Duration) *ValkeyStore {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &ValkeyStore{client: client, ttl: ttl}
}

// Get returns the cached bytes for key. Errors count as a miss.
func (s *ValkeyStore) Get(ctx context.Context, key Key) ([]byte, bool) {
	val, err := s.client.Get(ctx, readKeyPrefix+string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("read cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores value under key with the configured TTL.
func (s *ValkeyStore) Set(ctx context.Context, key Key, value []byte) {
	if err := s.client.Set(ctx, readKeyPrefix+string(key), value, s.ttl).Err(); err != nil {
		slog.Warn("read cache set error", "key", key, "error", err)
	}
}

// Delete removes keys in one round trip.
func (s *ValkeyStore) Delete(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = readKeyPrefix + string(k)
	}
	return s.client.Del(ctx, full...).Err()
}

// MemoryStore is an in-process Store, used when running without Valkey
// and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[Key]memoryEntry
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, entries: make(map[Key]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key Key) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (s *MemoryStore) Set(_ context.Context, key Key, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expires: time.Now().Add(s.ttl)}
}

func (s *MemoryStore) Delete(_ context.Context, keys ...Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}
