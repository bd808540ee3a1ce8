package fsmhelper

import (
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// LoadConfig
// ---------------------------------------------------------------------------

func TestLoadConfigValid(t *testing.T) {
	cfg, err := LoadConfig("testdata/valid.json")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}

	if cfg.Catalog.Len() != 2 {
		t.Fatalf("catalog size = %d, want 2", cfg.Catalog.Len())
	}

	svc, ok := cfg.Catalog.Lookup("remote-api-sample")
	if !ok {
		t.Fatal("Lookup(remote-api-sample) = _, false")
	}

	want := Service{
		ID:      "remoteApiSample",
		Method:  "doSomeWork",
		Timeout: 10 * time.Second,
		Retries: 3,
	}
	if svc != want {
		t.Fatalf("service = %+v, want %+v", svc, want)
	}

	sub := cfg.Catalog.MustLookup("accounts-sub")
	if sub.Retries != 0 || sub.Method != "" {
		t.Fatalf("accounts-sub = %+v, want no retries and no method", sub)
	}

	if cfg.GlobalCache.TTL != 5*time.Minute || cfg.GlobalCache.MaxSize != 10000 {
		t.Fatalf("global cache = %+v", cfg.GlobalCache)
	}

	if !cfg.TrafficLogging {
		t.Fatal("TrafficLogging = false, want true")
	}

	if got := cfg.Catalog.Names(); len(got) != 2 || got[0] != "accounts-sub" {
		t.Fatalf("Names() = %v, want sorted names", got)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := LoadConfig("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want error for missing file")
	}

	if !strings.Contains(err.Error(), "fsmhelper: read config") {
		t.Fatalf("error = %q, want to contain %q",
			err.Error(), "fsmhelper: read config")
	}
}

func TestLoadConfigInvalidTimeout(t *testing.T) {
	_, err := LoadConfig("testdata/invalid_timeout.json")
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want timeout error")
	}

	if !strings.Contains(err.Error(), `service "broken"`) {
		t.Fatalf("error = %q, want it to name the service", err.Error())
	}
}

// ---------------------------------------------------------------------------
// ParseConfig validation
// ---------------------------------------------------------------------------

func TestParseConfigRejectsBadJSON(t *testing.T) {
	_, err := ParseConfig([]byte(`{"services": [`))
	if err == nil || !strings.Contains(err.Error(), "fsmhelper: parse config") {
		t.Fatalf("ParseConfig() error = %v, want parse error", err)
	}
}

func TestParseConfigValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		json string
		want string
	}{
		{
			name: "missing id",
			json: `{"services": {"s": {"timeout": "1s"}}}`,
			want: "id is required",
		},
		{
			name: "missing timeout",
			json: `{"services": {"s": {"id": "s"}}}`,
			want: "timeout is required",
		},
		{
			name: "non positive timeout",
			json: `{"services": {"s": {"id": "s", "timeout": "0s"}}}`,
			want: "must be positive",
		},
		{
			name: "negative retries",
			json: `{"services": {"s": {"id": "s", "timeout": "1s", "retries": -1}}}`,
			want: "must not be negative",
		},
		{
			name: "bad cache ttl",
			json: `{"services": {}, "global_cache": {"ttl": "later"}}`,
			want: "global_cache: ttl",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.json))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("ParseConfig() error = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"services": {}}`))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.TrafficLogging || cfg.GlobalCache.TTL != 0 || cfg.Catalog.Len() != 0 {
		t.Fatalf("defaults = %+v", cfg)
	}

	if got := len(cfg.Options()); got != 2 {
		t.Fatalf("len(Options()) = %d, want 2", got)
	}
}

func TestMustLookupPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustLookup(unknown) did not panic")
		}
	}()

	NewCatalog(nil).MustLookup("unknown")
}
