// Package cache holds serialized responses keyed by string. Values are opaque bytes
// so the in-process and redis backends are interchangeable.
package cache

import (
	"context"
	"time"
)

//go:generate mockgen -source=cache.go -destination=../mock/cache_mock.go -package=mock

// Store is a TTL cache. DeletePrefix bumps the generation of prefix before it
// removes keys, so a reader that captured the old Generation and builds its key
// from it can never write a stale entry where later readers look.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Generation(ctx context.Context, prefix string) (uint64, error)
	DeletePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
	Close() error
}

const defaultTTL = 5 * time.Second

// generationKeyPrefix sits outside every data prefix so DeletePrefix never removes it.
const generationKeyPrefix = "cachegen:"

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return defaultTTL
	}
	return ttl
}
