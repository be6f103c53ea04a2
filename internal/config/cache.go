package config

import "time"

// CacheConfig defines settings for the listing cache. When Enabled is false
// the services run against a no-op cache. TTL is the lifetime of a cached
// listing; writes invalidate listings long before it elapses.
type CacheConfig struct {
	Enabled bool          `env:"CACHE_ENABLED" envDefault:"true"`
	TTL     time.Duration `env:"CACHE_TTL" envDefault:"300s"`
}
