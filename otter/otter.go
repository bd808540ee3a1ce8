// Package otter backs the fsmhelper global store with an Otter cache.
//
// Otter's variable-TTL cache has no non-expiring write, and a ttl <= 0
// expires the entry immediately. Such writes are stored with [NoExpiry]
// instead, which keeps the fsmhelper.Cache contract.
package otter

import (
	"time"

	"github.com/maypok86/otter"

	"github.com/byte4ever/fsmhelper"
)

const (
	// DefaultMaxSize is used when the configuration leaves MaxSize unset.
	DefaultMaxSize = 10_000

	// NoExpiry is the TTL given to entries written with ttl <= 0. Otter
	// tracks expiry in 32-bit seconds, so it stays well below that range.
	NoExpiry = 10 * 365 * 24 * time.Hour
)

// store is the fsmhelper.Cache view of an Otter cache.
type store[K comparable, V any] struct {
	cache otter.CacheWithVariableTTL[K, V]
}

// MustNew builds a Cache with cfg.MaxSize entries (DefaultMaxSize when
// unset). It panics if Otter rejects the configuration.
//
//nolint:ireturn // generic type params K,V are idiomatic in Go
func MustNew[K comparable, V any](
	cfg fsmhelper.CacheConfig,
) fsmhelper.Cache[K, V] {
	size := cfg.MaxSize
	if size <= 0 {
		size = DefaultMaxSize
	}

	cache, err := otter.MustBuilder[K, V](size).
		WithVariableTTL().
		Build()
	if err != nil {
		panic("fsmhelper/otter: failed to build cache: " + err.Error())
	}

	return &store[K, V]{cache: cache}
}

// NewGlobal builds the global store of an engine integration.
//
//nolint:ireturn // GlobalStore is the contract handed to the engine
func NewGlobal(cfg fsmhelper.CacheConfig) fsmhelper.GlobalStore {
	return MustNew[string, any](cfg)
}

//nolint:ireturn // generic type parameter V, not an interface
func (s *store[K, V]) Get(key K) (V, bool) {
	return s.cache.Get(key)
}

func (s *store[K, V]) Set(key K, value V, ttl time.Duration) {
	s.cache.Set(key, value, effectiveTTL(ttl))
}

func (s *store[K, V]) Delete(key K) {
	s.cache.Delete(key)
}

func effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return NoExpiry
	}

	return ttl
}
