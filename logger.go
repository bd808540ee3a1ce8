package fsmhelper

import (
	"context"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
)

// LogKind classifies a log record.
type LogKind string

// Log kinds.
const (
	KindRequest     LogKind = "request"
	KindReply       LogKind = "reply"
	KindRemoteCall  LogKind = "remote call"
	KindRemoteRetry LogKind = "retries remote call"
	KindRemoteReply LogKind = "remote reply"
	KindMessage     LogKind = "message"
	KindException   LogKind = "exception"
	KindResult      LogKind = "result"
)

// LevelTrace sits below [slog.LevelDebug].
const LevelTrace = slog.Level(-8)

// Logger writes handler records with the transaction coordinates (script,
// tid, state, type) in front of every record.
//
// Traffic records (incoming requests, replies, outbound calls) are off by
// default because the engine already logs actions and events; turn them on
// with [Logger.SetTraffic].
type Logger struct {
	base    *slog.Logger
	ctx     Context
	traffic bool
}

// NewLogger binds base to the transaction described by ctx. A nil base
// falls back to [slog.Default].
func NewLogger(ctx Context, base *slog.Logger) *Logger {
	if base == nil {
		base = slog.Default()
	}

	return &Logger{base: base, ctx: ctx}
}

// SetTraffic turns traffic records on or off.
func (l *Logger) SetTraffic(on bool) { l.traffic = on }

// Traffic reports whether traffic records are on.
func (l *Logger) Traffic() bool { return l.traffic }

// Trace logs a message record at trace level.
func (l *Logger) Trace(msg string, args ...any) {
	l.log(LevelTrace, KindMessage, msg, args...)
}

// Debug logs a message record at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, KindMessage, msg, args...)
}

// Info logs a message record at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, KindMessage, msg, args...)
}

// Warn logs a message record at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, KindMessage, msg, args...)
}

// Error logs a message record at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, KindMessage, msg, args...)
}

// Exception logs err at error level under [KindException].
func (l *Logger) Exception(msg string, err error) {
	l.log(slog.LevelError, KindException, msg, "error", err)
}

// ---------------------------------------------------------------------------
// Traffic records
// ---------------------------------------------------------------------------

func (l *Logger) incomingRequest(body any) {
	if !l.trafficEnabled() {
		return
	}

	l.log(slog.LevelInfo, KindRequest, "incoming request",
		"payload", render(body))
}

func (l *Logger) outgoingReply(headers map[string]any, body any) {
	if !l.trafficEnabled() {
		return
	}

	l.log(slog.LevelInfo, KindReply, "outgoing reply",
		"headers", render(headers),
		"payload", render(body))
}

func (l *Logger) remoteRequest(
	svc Service,
	moduleID string,
	headers map[string]any,
	body any,
) {
	if !l.trafficEnabled() {
		return
	}

	args := []any{
		"service", svc.ID,
		"method", svc.Method,
		"timeout", svc.Timeout,
	}
	if moduleID != "" {
		args = append(args, "module_id", moduleID)
	}

	args = append(args, "headers", render(headers), "payload", render(body))
	l.log(slog.LevelInfo, KindRemoteCall, "remote call", args...)
}

func (l *Logger) remoteRequestNoResponse(
	svc Service,
	headers map[string]any,
	body any,
) {
	if !l.trafficEnabled() {
		return
	}

	l.log(slog.LevelInfo, KindRemoteCall, "remote call",
		"service", svc.ID,
		"method", svc.Method,
		"timeout", "without response",
		"headers", render(headers),
		"payload", render(body))
}

func (l *Logger) scriptRequest(
	svc Service,
	timeout any,
	headers map[string]any,
	body any,
) {
	if !l.trafficEnabled() {
		return
	}

	l.log(slog.LevelInfo, KindRemoteCall, "script call",
		"script", svc.ID,
		"method", svc.Method,
		"timeout", timeout,
		"headers", render(headers),
		"payload", render(body))
}

func (l *Logger) retriedRequest(
	svc Service,
	retriesLeft int,
	headers map[string]any,
	body any,
) {
	if !l.trafficEnabled() {
		return
	}

	l.log(slog.LevelInfo, KindRemoteRetry, "retried remote call",
		"service", svc.ID,
		"method", svc.Method,
		"retries_left", retriesLeft,
		"timeout", svc.Timeout,
		"headers", render(headers),
		"payload", render(body))
}

// RemoteReply logs the response of svc as a traffic record.
func (l *Logger) RemoteReply(svc Service, response any) {
	if !l.trafficEnabled() {
		return
	}

	l.log(slog.LevelInfo, KindRemoteReply, "remote reply",
		"service", svc.ID,
		"method", svc.Method,
		"payload", render(response))
}

func (l *Logger) trafficEnabled() bool {
	return l.traffic && l.base.Enabled(context.Background(), slog.LevelInfo)
}

func (l *Logger) log(level slog.Level, kind LogKind, msg string, args ...any) {
	ctx := context.Background()
	if !l.base.Enabled(ctx, level) {
		return
	}

	full := make([]any, 0, len(args)+8)
	full = append(full,
		"script", l.ctx.ServiceName(),
		"tid", l.ctx.TransactionID(),
		"state", l.ctx.CurrentState(),
		"type", string(kind),
	)
	full = append(full, args...)

	l.base.Log(ctx, level, msg, full...)
}

// render turns a payload into a single string for the log record.
func render(v any) string {
	if isNil(v) {
		return "null"
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}

	return string(data)
}
