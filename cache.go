package fsmhelper

import "time"

type (
	// Cache is a keyed store with per-entry expiry. Adapters in the otter
	// and ristretto sub-packages translate the TTL rule below onto their
	// library.
	Cache[K comparable, V any] interface {
		// Get returns the live entry under key.
		Get(key K) (V, bool)
		// Set stores value under key for ttl. A ttl <= 0 means the entry
		// never expires; it stays until overwritten, deleted or evicted for
		// capacity.
		Set(key K, value V, ttl time.Duration)
		// Delete removes the entry under key.
		Delete(key K)
	}

	// GlobalStore is the process-wide store shared by every transaction.
	// Access is last-write-wins: the facade adds no coordination on top of
	// it.
	GlobalStore = Cache[string, any]

	// CacheConfig sizes a global store and sets the TTL used by
	// [Facade.PutToGlobalDefault]. A zero TTL therefore stores entries
	// without expiry.
	CacheConfig struct {
		// Options holds adapter-specific settings.
		Options map[string]any
		// TTL is the default expiry of global entries.
		TTL time.Duration
		// MaxSize caps the number of entries.
		MaxSize int
	}
)
