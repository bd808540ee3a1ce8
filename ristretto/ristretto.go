// Package ristretto backs the fsmhelper global store with a Ristretto cache.
//
// Ristretto admits writes asynchronously: a value set by one transaction
// may not be visible to a read issued immediately afterwards. That is
// compatible with the global store's advisory, last-write-wins contract.
// A zero TTL is Ristretto's own "no expiry", but a negative one makes it
// drop the write, so negative TTLs are stored as zero.
package ristretto

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/byte4ever/fsmhelper"
)

const (
	// DefaultMaxSize is used when the configuration leaves MaxSize unset.
	DefaultMaxSize = 10_000

	// countersPerEntry follows Ristretto's sizing advice for NumCounters.
	countersPerEntry = 10
	bufferItems      = 64
)

type (
	// Key is the comparable subset of Ristretto key types.
	Key interface {
		uint64 | string | byte | int | int32 | uint32 | int64
	}

	// store is the fsmhelper.Cache view of a Ristretto cache. Every entry
	// costs 1, so MaxSize is an entry count.
	store[K Key, V any] struct {
		cache *ristretto.Cache[K, V]
	}
)

// MustNew builds a Cache holding up to cfg.MaxSize entries (DefaultMaxSize
// when unset). It panics if Ristretto rejects the configuration.
//
//nolint:ireturn // generic type params K,V are idiomatic in Go
func MustNew[K Key, V any](cfg fsmhelper.CacheConfig) fsmhelper.Cache[K, V] {
	size := int64(cfg.MaxSize)
	if size <= 0 {
		size = DefaultMaxSize
	}

	cache, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters: size * countersPerEntry,
		MaxCost:     size,
		BufferItems: bufferItems,
	})
	if err != nil {
		panic("fsmhelper/ristretto: failed to build cache: " + err.Error())
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
	s.cache.SetWithTTL(key, value, 1, max(ttl, 0))
}

func (s *store[K, V]) Delete(key K) {
	s.cache.Del(key)
}
