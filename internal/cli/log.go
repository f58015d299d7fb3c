package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Applied 4 styles (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports codec, store and HTTP activity at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnEncode(_ context.Context, format string, size int, d time.Duration, err error) {
	h.codec("encode", format, size, d, err)
}

func (h *logHooks) OnDecode(_ context.Context, format string, size int, d time.Duration, err error) {
	h.codec("decode", format, size, d, err)
}

func (h *logHooks) codec(op, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug(op+" failed", "format", format, "bytes", size, "err", err)
		return
	}
	h.logger.Debug(op, "format", format, "bytes", size, "took", d.Round(time.Microsecond))
}

func (h *logHooks) OnStoreHit(_ context.Context, backend string, size int) {
	h.logger.Debug("store hit", "backend", backend, "bytes", size)
}

func (h *logHooks) OnStoreMiss(_ context.Context, backend string) {
	h.logger.Debug("store miss", "backend", backend)
}

func (h *logHooks) OnStorePut(_ context.Context, backend string, size int) {
	h.logger.Debug("store put", "backend", backend, "bytes", size)
}

func (h *logHooks) OnStoreRetry(_ context.Context, backend string, attempt int, err error) {
	h.logger.Warn("store retry", "backend", backend, "attempt", attempt, "err", err)
}

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "took", d.Round(time.Microsecond))
}
