// Package cache provides a small JSON value cache with Redis and in-process backends.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores JSON-encodable values under string keys.
type Cache interface {
	// Get decodes the cached value into dest. It returns ErrMiss when nothing is cached.
	Get(ctx context.Context, key string, dest any) error
	// Set stores value for ttl. A zero ttl keeps the value until it is deleted.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Delete removes the keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
