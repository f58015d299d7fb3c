// Package observability lets a host program watch codec, store and HTTP
// activity without the library packages depending on a metrics backend.
//
// Libraries report events through the process-wide hooks:
//
//	start := time.Now()
//	data, err := encode(g)
//	observability.Codec().OnEncode(ctx, "binary", len(data), time.Since(start), err)
//
// The host installs its implementations once at startup. Install returns a
// function that puts the previous hooks back, which keeps tests isolated:
//
//	restore := observability.Install(observability.Hooks{Store: myStoreHooks})
//	defer restore()
//
// Until something is installed every hook is a no-op.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// CodecHooks receives events from graph encoders and decoders.
// format is "binary" or "json"; size is the payload length in bytes.
type CodecHooks interface {
	OnEncode(ctx context.Context, format string, size int, duration time.Duration, err error)
	OnDecode(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// StoreHooks receives events from snapshot stores. backend is the store
// name reported by store.Open ("file", "sqlite", "redis", ...).
type StoreHooks interface {
	OnStoreHit(ctx context.Context, backend string, size int)
	OnStoreMiss(ctx context.Context, backend string)
	OnStorePut(ctx context.Context, backend string, size int)
	// OnStoreRetry fires before each retry of a transient backend failure.
	OnStoreRetry(ctx context.Context, backend string, attempt int, err error)
}

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

type NoopCodecHooks struct{}

func (NoopCodecHooks) OnEncode(context.Context, string, int, time.Duration, error) {}
func (NoopCodecHooks) OnDecode(context.Context, string, int, time.Duration, error) {}

type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string, int)          {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string)              {}
func (NoopStoreHooks) OnStorePut(context.Context, string, int)          {}
func (NoopStoreHooks) OnStoreRetry(context.Context, string, int, error) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// Hooks bundles one implementation per event category. Nil fields leave the
// installed implementation for that category unchanged.
type Hooks struct {
	Codec CodecHooks
	Store StoreHooks
	HTTP  HTTPHooks
}

func noop() *Hooks {
	return &Hooks{Codec: NoopCodecHooks{}, Store: NoopStoreHooks{}, HTTP: NoopHTTPHooks{}}
}

var current atomic.Pointer[Hooks]

func init() { current.Store(noop()) }

// Install merges h over the current hooks and returns a function that
// restores the hooks that were in place before the call.
func Install(h Hooks) (restore func()) {
	for {
		old := current.Load()
		next := *old
		if h.Codec != nil {
			next.Codec = h.Codec
		}
		if h.Store != nil {
			next.Store = h.Store
		}
		if h.HTTP != nil {
			next.HTTP = h.HTTP
		}
		if current.CompareAndSwap(old, &next) {
			return func() { current.Store(old) }
		}
	}
}

// SetCodecHooks installs codec hooks. A nil h is ignored.
func SetCodecHooks(h CodecHooks) { Install(Hooks{Codec: h}) }

// SetStoreHooks installs store hooks. A nil h is ignored.
func SetStoreHooks(h StoreHooks) { Install(Hooks{Store: h}) }

// SetHTTPHooks installs HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { Install(Hooks{HTTP: h}) }

func Codec() CodecHooks { return current.Load().Codec }
func Store() StoreHooks { return current.Load().Store }
func HTTP() HTTPHooks   { return current.Load().HTTP }

// Reset restores every hook to its no-op default.
func Reset() { current.Store(noop()) }
