// Package observability provides hooks for metrics, tracing, and logging.
//
// Components emit events through the registered hooks; the defaults do
// nothing. A binary that wants metrics registers its own implementations
// once at startup:
//
//	func main() {
//	    observability.SetPaintHooks(&myPaintHooks{})
//	    observability.SetHTTPHooks(&myHTTPHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	err := display.Show(ctx, canvas)
//	observability.Paint().OnShow(ctx, display.Name(), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Paint Hooks
// =============================================================================

// PaintHooks receives events from the compositor.
type PaintHooks interface {
	// OnSelect is called once per selection attempt. err is nil when the
	// record and image for id loaded.
	OnSelect(ctx context.Context, id int64, err error)

	// OnCompose is called after the canvas was composed.
	OnCompose(ctx context.Context, id int64, strategy string, duration time.Duration, err error)

	// OnShow is called after the canvas was handed to a display.
	OnShow(ctx context.Context, display string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the fetcher's cache lookups.
// kind is "catalog", "record" or "image".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the museum API client.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response of any status.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records a transport failure.
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPaintHooks is a no-op implementation of PaintHooks.
type NoopPaintHooks struct{}

func (NoopPaintHooks) OnSelect(context.Context, int64, error)                         {}
func (NoopPaintHooks) OnCompose(context.Context, int64, string, time.Duration, error) {}
func (NoopPaintHooks) OnShow(context.Context, string, time.Duration, error)           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	paintHooks PaintHooks = NoopPaintHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetPaintHooks registers custom compositor hooks. Nil is ignored.
func SetPaintHooks(h PaintHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		paintHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Paint returns the registered compositor hooks.
func Paint() PaintHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return paintHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	paintHooks = NoopPaintHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
