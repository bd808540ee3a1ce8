package fsmhelper

import (
	"errors"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

type (
	// configFile is the top-level JSON structure.
	configFile struct {
		Services       map[string]ServiceConfig `json:"services"`
		GlobalCache    *GlobalCacheConfig       `json:"global_cache,omitempty"`
		TrafficLogging *bool                    `json:"traffic_logging,omitempty"`
	}

	// ServiceConfig holds the decoded configuration of one catalog entry.
	// Export it to embed in your own app config structs, then call
	// [ServiceConfig.Build].
	ServiceConfig struct {
		// ID is the routing target.
		// Required. Example: "remoteApiSample".
		ID *string `json:"id,omitempty" yaml:"id,omitempty"`
		// Method is the invoked operation.
		// Optional. Example: "doSomeWork".
		Method *string `json:"method,omitempty" yaml:"method,omitempty"`
		// Timeout bounds the wait for a response.
		// Required. Parsed via time.ParseDuration. Example: "10s".
		Timeout *string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
		// Retries is the retry budget.
		// Optional, defaults to 0. Example: 3.
		Retries *int `json:"retries,omitempty" yaml:"retries,omitempty"`
	}

	// GlobalCacheConfig configures the process-wide store.
	GlobalCacheConfig struct {
		// Options holds adapter-specific settings.
		Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
		// TTL is the default expiry of global entries.
		// Optional. Parsed via time.ParseDuration. Example: "5m".
		TTL *string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
		// MaxSize is the maximum number of entries.
		// Optional. Example: 10000.
		MaxSize *int `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	}

	// Config is a loaded and validated configuration.
	Config struct {
		Catalog        *Catalog
		GlobalCache    CacheConfig
		TrafficLogging bool
	}
)

// LoadConfig reads a JSON configuration file. Every service is validated
// eagerly so errors surface at load time.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fsmhelper: read config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes and validates a JSON configuration.
func ParseConfig(data []byte) (*Config, error) {
	var raw configFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fsmhelper: parse config: %w", err)
	}

	services := make(map[string]Service, len(raw.Services))

	for name, sc := range raw.Services {
		svc, err := sc.Build()
		if err != nil {
			return nil, fmt.Errorf("fsmhelper: service %q: %w", name, err)
		}

		services[name] = svc
	}

	cfg := &Config{Catalog: NewCatalog(services)}

	if raw.GlobalCache != nil {
		cc, err := raw.GlobalCache.Build()
		if err != nil {
			return nil, fmt.Errorf("fsmhelper: global_cache: %w", err)
		}

		cfg.GlobalCache = cc
	}

	if raw.TrafficLogging != nil {
		cfg.TrafficLogging = *raw.TrafficLogging
	}

	return cfg, nil
}

// Build converts the decoded values into a [Service].
func (sc *ServiceConfig) Build() (Service, error) {
	if sc.ID == nil || *sc.ID == "" {
		return Service{}, errors.New("id is required")
	}

	if sc.Timeout == nil {
		return Service{}, errors.New("timeout is required")
	}

	timeout, err := time.ParseDuration(*sc.Timeout)
	if err != nil {
		return Service{}, fmt.Errorf("timeout: %w", err)
	}

	if timeout <= 0 {
		return Service{}, fmt.Errorf("timeout: must be positive, got %s", timeout)
	}

	svc := Service{ID: *sc.ID, Timeout: timeout}

	if sc.Method != nil {
		svc.Method = *sc.Method
	}

	if sc.Retries != nil {
		if *sc.Retries < 0 {
			return Service{}, fmt.Errorf(
				"retries: must not be negative, got %d",
				*sc.Retries,
			)
		}

		svc.Retries = *sc.Retries
	}

	return svc, nil
}

// Build converts the decoded values into a [CacheConfig].
func (gc *GlobalCacheConfig) Build() (CacheConfig, error) {
	cc := CacheConfig{Options: gc.Options}

	if gc.MaxSize != nil {
		cc.MaxSize = *gc.MaxSize
	}

	if gc.TTL != nil {
		ttl, err := time.ParseDuration(*gc.TTL)
		if err != nil {
			return CacheConfig{}, fmt.Errorf("ttl: %w", err)
		}

		cc.TTL = ttl
	}

	return cc, nil
}

// Options returns the facade options implied by the configuration.
func (c *Config) Options() []Option {
	return []Option{
		WithTrafficLogging(c.TrafficLogging),
		WithGlobalTTL(c.GlobalCache.TTL),
	}
}
