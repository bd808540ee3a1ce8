package fsmhelper

import (
	"log/slog"
	"time"
)

// ---------------------------------------------------------------------------
// Facade options
// ---------------------------------------------------------------------------

type (
	// Option configures a [Facade] or [RetryFacade].
	Option func(*facadeConfig)

	facadeConfig struct {
		logger      *slog.Logger
		hooks       *Hooks
		onExhausted func(*Facade) Action
		globalTTL   time.Duration
		traffic     bool
	}
)

// WithLogger sets the slog logger behind the facade's [Logger].
func WithLogger(l *slog.Logger) Option {
	return func(cfg *facadeConfig) {
		cfg.logger = l
	}
}

// WithHooks sets the lifecycle callbacks.
func WithHooks(h *Hooks) Option {
	return func(cfg *facadeConfig) {
		cfg.hooks = h
	}
}

// WithTrafficLogging turns request/reply/call traffic records on or off.
func WithTrafficLogging(on bool) Option {
	return func(cfg *facadeConfig) {
		cfg.traffic = on
	}
}

// WithGlobalTTL sets the expiry used by [Facade.PutToGlobalDefault].
func WithGlobalTTL(ttl time.Duration) Option {
	return func(cfg *facadeConfig) {
		cfg.globalTTL = ttl
	}
}

// OnRetriesExhausted replaces the default Finish action returned by
// [RetryFacade.RetryEndAction], e.g. with a compensating call or an abort.
func OnRetriesExhausted(fn func(f *Facade) Action) Option {
	return func(cfg *facadeConfig) {
		cfg.onExhausted = fn
	}
}

// ---------------------------------------------------------------------------
// Call options
// ---------------------------------------------------------------------------

type (
	// CallOption tunes a single outbound call.
	CallOption func(*callConfig)

	callConfig struct {
		headers    map[string]any
		moduleID   string
		timeout    time.Duration
		hasTimeout bool
	}
)

// WithHeaders sets the headers of the outbound message.
func WithHeaders(headers map[string]any) CallOption {
	return func(cfg *callConfig) {
		cfg.headers = headers
	}
}

// WithModule routes a remote call to the given module. An empty id means
// no routing constraint. Ignored by every call but [Facade.Call].
func WithModule(moduleID string) CallOption {
	return func(cfg *callConfig) {
		cfg.moduleID = moduleID
	}
}

// WithTimeout overrides the service timeout of a [Facade.ScriptCall].
//
// Deprecated: configure the timeout on the [Service] instead.
func WithTimeout(d time.Duration) CallOption {
	return func(cfg *callConfig) {
		cfg.timeout = d
		cfg.hasTimeout = true
	}
}

func newCallConfig(opts []CallOption) callConfig {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
