// Package cache provides the key-value cache used for listing responses.
//
// The Cache interface has three implementations: Redis for production,
// Memory for tests and single-process runs, and Noop when caching is
// disabled. Which one is used is decided by the composition root. None
// of them propagate backend failures as anything other than an explicit
// Unavailable result or an ErrUnavailable-wrapped error, and callers are
// expected to treat both as a cache miss or a dropped write.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps every backend failure returned by Set, Delete,
// DeleteByPrefix and Ping.
var ErrUnavailable = errors.New("cache unavailable")

// Status is the outcome of a Get.
type Status int

const (
	// Miss means the backend answered and the key is absent.
	Miss Status = iota
	// Hit means Value holds the stored bytes.
	Hit
	// Unavailable means the backend could not be asked.
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Unavailable:
		return "unavailable"
	default:
		return "miss"
	}
}

// Result is returned by Get. Err is set only when Status is Unavailable.
type Result struct {
	Status Status
	Value  []byte
	Err    error
}

// Cache is a best-effort key-value store with expiry and prefix
// invalidation.
type Cache interface {
	Get(ctx context.Context, key string) Result
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
}

// Noop is the cache used when caching is disabled: every Get misses and
// every write succeeds without storing anything.
type Noop struct{}

func (Noop) Get(context.Context, string) Result                       { return Result{Status: Miss} }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error                     { return nil }
func (Noop) DeleteByPrefix(context.Context, string) error             { return nil }
func (Noop) Ping(context.Context) error                               { return nil }
