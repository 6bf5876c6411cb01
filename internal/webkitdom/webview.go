// Package webkitdom implements the DOM boundary over an embedded WebKit
// webview: evaluated JavaScript for queries and scrolling, user-script
// injection for the in-page bootstrap, and script messages for readiness
// and navigation reports.
package webkitdom

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bnema/puregotk-webkit/webkit"
	"github.com/bnema/puregotk/v4/gio"
	"github.com/rs/zerolog"

	"github.com/dawaltconley/zotero-center-pdf/internal/logging"
)

// WebViewID identifies one webview; it doubles as the surface id.
type WebViewID uint64

// LoadEvent represents WebKit load events.
type LoadEvent int

const (
	LoadStarted    LoadEvent = LoadEvent(webkit.LoadStartedValue)
	LoadRedirected LoadEvent = LoadEvent(webkit.LoadRedirectedValue)
	LoadCommitted  LoadEvent = LoadEvent(webkit.LoadCommittedValue)
	LoadFinished   LoadEvent = LoadEvent(webkit.LoadFinishedValue)
)

type webViewRegistry struct {
	views   map[WebViewID]*WebView
	counter atomic.Uint64
	mu      sync.RWMutex
}

var globalRegistry = &webViewRegistry{
	views: make(map[WebViewID]*WebView),
}

func (r *webViewRegistry) register(wv *WebView) WebViewID {
	id := WebViewID(r.counter.Add(1))
	r.mu.Lock()
	r.views[id] = wv
	r.mu.Unlock()
	return id
}

func (r *webViewRegistry) unregister(id WebViewID) {
	r.mu.Lock()
	delete(r.views, id)
	r.mu.Unlock()
}

// LookupWebView returns a WebView by ID, or nil if not found.
func LookupWebView(id WebViewID) *WebView {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return globalRegistry.views[id]
}

// WebView wraps webkit.WebView with Go-level state and callbacks.
type WebView struct {
	id    WebViewID
	inner *webkit.WebView
	ucm   *webkit.UserContentManager

	destroyed atomic.Bool

	// OnLoadChanged is set by the bridge before any load starts.
	OnLoadChanged func(LoadEvent)

	logger zerolog.Logger
	mu     sync.Mutex

	// asyncCallbacks keeps references to async JS callbacks to prevent GC
	asyncCallbacks []interface{}
	signalIDs      []uint32
}

// NewWebView creates a webview and registers it.
func NewWebView(logger zerolog.Logger) (*WebView, error) {
	inner := webkit.NewWebView()
	if inner == nil {
		return nil, fmt.Errorf("failed to create webkit webview")
	}

	wv := &WebView{
		inner:  inner,
		ucm:    inner.GetUserContentManager(),
		logger: logger.With().Str("component", "webview").Logger(),
	}
	wv.id = globalRegistry.register(wv)
	wv.connectSignals()

	wv.logger.Debug().Uint64("id", uint64(wv.id)).Msg("webview created")
	return wv, nil
}

func (wv *WebView) connectSignals() {
	loadChangedCb := func(_ webkit.WebView, event webkit.LoadEvent) {
		if wv.OnLoadChanged != nil {
			wv.OnLoadChanged(LoadEvent(event))
		}
	}
	sigID := wv.inner.ConnectLoadChanged(&loadChangedCb)
	wv.signalIDs = append(wv.signalIDs, uint32(sigID))
}

// ID returns the unique identifier for this WebView.
func (wv *WebView) ID() WebViewID { return wv.id }

// UserContentManager returns the content manager for injection and
// messaging.
func (wv *WebView) UserContentManager() *webkit.UserContentManager { return wv.ucm }

// Widget returns the underlying webkit.WebView for GTK embedding.
func (wv *WebView) Widget() *webkit.WebView { return wv.inner }

// URI returns the current page URI.
func (wv *WebView) URI() string {
	if wv.destroyed.Load() {
		return ""
	}
	return wv.inner.GetUri()
}

// LoadURI loads the given URI.
func (wv *WebView) LoadURI(ctx context.Context, uri string) error {
	if wv.destroyed.Load() {
		return fmt.Errorf("webview %d is destroyed", wv.id)
	}
	wv.inner.LoadUri(uri)
	logging.FromContext(ctx).Debug().Str("uri", uri).Msg("loading URI")
	return nil
}

// IsDestroyed reports whether the webview has been destroyed.
func (wv *WebView) IsDestroyed() bool { return wv.destroyed.Load() }

// Destroy unregisters the webview. GTK reference counting releases the
// native resources.
func (wv *WebView) Destroy() {
	if wv.destroyed.Swap(true) {
		return
	}
	globalRegistry.unregister(wv.id)
	wv.logger.Debug().Uint64("id", uint64(wv.id)).Msg("webview destroyed")
}

// RunJavaScript executes script fire-and-forget. Errors are logged
// asynchronously; safe to call from signal handlers.
func (wv *WebView) RunJavaScript(ctx context.Context, scriptSrc string) {
	if wv.destroyed.Load() {
		return
	}
	log := logging.FromContext(ctx)

	cb := gio.AsyncReadyCallback(func(_ uintptr, resPtr uintptr, _ uintptr) {
		if resPtr == 0 {
			return
		}
		res := &gio.AsyncResultBase{Ptr: resPtr}
		if _, err := wv.inner.EvaluateJavascriptFinish(res); err != nil {
			log.Warn().Err(err).Uint64("webview_id", uint64(wv.id)).Msg("RunJavaScript: failed")
		}
	})
	wv.retain(cb)

	wv.inner.EvaluateJavascript(scriptSrc, -1, nil, nil, nil, &cb, 0)
}

// EvalJSON evaluates script and returns its result serialized as JSON. The
// script must evaluate to a JSON-serializable value; null maps to the
// literal "null". Blocks until WebKit finishes or ctx is cancelled.
func (wv *WebView) EvalJSON(ctx context.Context, scriptSrc string) (json.RawMessage, error) {
	if wv.destroyed.Load() {
		return nil, fmt.Errorf("webview %d is destroyed", wv.id)
	}

	type result struct {
		raw json.RawMessage
		err error
	}
	done := make(chan result, 1)

	cb := gio.AsyncReadyCallback(func(_ uintptr, resPtr uintptr, _ uintptr) {
		if resPtr == 0 {
			done <- result{err: fmt.Errorf("nil async result")}
			return
		}
		res := &gio.AsyncResultBase{Ptr: resPtr}
		value, err := wv.inner.EvaluateJavascriptFinish(res)
		if err != nil {
			done <- result{err: err}
			return
		}
		if value == nil {
			done <- result{raw: json.RawMessage("null")}
			return
		}
		if jscCtx := value.GetContext(); jscCtx != nil {
			if exc := jscCtx.GetException(); exc != nil {
				done <- result{err: fmt.Errorf("js exception: %s", exc.GetMessage())}
				return
			}
		}
		done <- result{raw: json.RawMessage(value.ToJson(0))}
	})
	wv.retain(cb)

	wv.inner.EvaluateJavascript(scriptSrc, -1, nil, nil, nil, &cb, 0)

	select {
	case r := <-done:
		return r.raw, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// retain prevents a callback from being GC'd before WebKit invokes it.
func (wv *WebView) retain(cb interface{}) {
	wv.mu.Lock()
	wv.asyncCallbacks = append(wv.asyncCallbacks, cb)
	wv.mu.Unlock()
}
