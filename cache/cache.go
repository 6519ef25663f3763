// Package cache remembers responses to idempotent create requests.
package cache

import (
	"context"
	"time"
)

const DefaultKeyPrefix = "assets:idempotency:"

// ResponseStore keeps response bodies keyed by an Idempotency-Key header.
// Put keeps the first body stored under a key until it expires.
type ResponseStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, body []byte) error
}

// DefaultTTL applies when a store is built with a non-positive ttl.
const DefaultTTL = 24 * time.Hour

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
