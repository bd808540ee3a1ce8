package ristretto

import (
	"sync"
	"testing"
	"time"

	"github.com/byte4ever/fsmhelper"
	"github.com/byte4ever/fsmhelper/fsmtest"
)

// waitForAdmission gives ristretto time to process buffered writes.
func waitForAdmission() {
	//nolint:mnd // small sleep for ristretto's async admission policy
	time.Sleep(10 * time.Millisecond)
}

func newTestConfig() fsmhelper.CacheConfig {
	return fsmhelper.CacheConfig{
		MaxSize: 1000,
		TTL:     time.Minute,
	}
}

// ---------------------------------------------------------------------------
// Adapter basics
// ---------------------------------------------------------------------------

func TestNewDoesNotPanic(t *testing.T) {
	if cache := MustNew[string, string](newTestConfig()); cache == nil {
		t.Fatal("MustNew() returned nil")
	}
}

func TestSetGetDelete(t *testing.T) {
	cache := NewGlobal(newTestConfig())

	cache.Set("session", "abc", time.Minute)
	waitForAdmission()

	got, ok := cache.Get("session")
	if !ok {
		t.Fatal("Get(session) = _, false; want _, true")
	}

	if got != "abc" {
		t.Fatalf("Get(session) = %v, want %q", got, "abc")
	}

	cache.Delete("session")
	waitForAdmission()

	if _, ok = cache.Get("session"); ok {
		t.Fatal("Get(session) = _, true after Delete; want _, false")
	}
}

func TestGetMissingKeyReturnsFalse(t *testing.T) {
	cache := NewGlobal(newTestConfig())

	if _, ok := cache.Get("missing"); ok {
		t.Fatal("Get(missing) = _, true; want _, false")
	}
}

func TestZeroMaxSizeUsesDefault(t *testing.T) {
	cache := MustNew[uint64, string](fsmhelper.CacheConfig{})

	cache.Set(7, "seven", time.Minute)
	waitForAdmission()

	if got, ok := cache.Get(7); !ok || got != "seven" {
		t.Fatalf("Get(7) = %q, %v; want %q, true", got, ok, "seven")
	}
}

// ---------------------------------------------------------------------------
// Global store semantics
// ---------------------------------------------------------------------------

func TestFacadeReadsEntryWrittenByAnotherTransaction(t *testing.T) {
	global := NewGlobal(newTestConfig())

	writer := fsmhelper.New(fsmtest.New(fsmtest.WithGlobal(global)))
	reader := fsmhelper.New(fsmtest.New(fsmtest.WithGlobal(global)))

	writer.PutToGlobal("dictionary", []string{"a", "b"}, time.Minute)
	waitForAdmission()

	got := fsmhelper.GetFromGlobalOrDefault[[]string](reader, "dictionary", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("GetFromGlobalOrDefault(dictionary) = %v, want [a b]", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	cache := MustNew[int, int](newTestConfig())

	const goroutines = 50

	var wg sync.WaitGroup

	wg.Add(goroutines)

	for i := range goroutines {
		go func() {
			defer wg.Done()

			cache.Set(i, i*10, time.Minute)
			cache.Get(i)
		}()
	}

	wg.Wait()
}

func TestInterfaceCompliance(t *testing.T) {
	var _ fsmhelper.GlobalStore = NewGlobal(newTestConfig())
	var _ fsmhelper.Cache[uint64, string] = MustNew[uint64, string](newTestConfig())
}

// ---------------------------------------------------------------------------
// TTL contract
// ---------------------------------------------------------------------------

func TestNonPositiveTTLNeverExpires(t *testing.T) {
	cache := NewGlobal(newTestConfig())

	cache.Set("zero", 1, 0)
	cache.Set("negative", 2, -time.Second)
	waitForAdmission()

	if got, ok := cache.Get("zero"); !ok || got != 1 {
		t.Fatalf("Get(zero) = %v, %v; want 1, true", got, ok)
	}

	if got, ok := cache.Get("negative"); !ok || got != 2 {
		t.Fatalf("Get(negative) = %v, %v; want 2, true", got, ok)
	}
}

func TestPutToGlobalDefaultWithoutConfiguredTTL(t *testing.T) {
	global := NewGlobal(fsmhelper.CacheConfig{})
	f := fsmhelper.New(fsmtest.New(fsmtest.WithGlobal(global)))

	f.PutToGlobalDefault("currency", "EUR")
	waitForAdmission()

	if got := fsmhelper.GetFromGlobalOrDefault(f, "currency", ""); got != "EUR" {
		t.Fatalf("GetFromGlobalOrDefault(currency) = %q, want EUR", got)
	}
}
