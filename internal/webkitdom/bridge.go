package webkitdom

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dawaltconley/zotero-center-pdf/internal/host"
	"github.com/dawaltconley/zotero-center-pdf/internal/logging"
	"github.com/dawaltconley/zotero-center-pdf/internal/script"
)

// Bridge turns webview lifecycle into host surface events: load-finished
// marks the surface usable and fires the rendered notification, the in-page
// ready beacon marks initialization complete, and page unload closes the
// surface.
type Bridge struct {
	facility *host.Facility
	injector *Injector
	router   *Router
	logger   zerolog.Logger
	baseCtx  context.Context

	// OnNavigated, when set, receives the viewer's own navigation reports.
	// Diagnostic only; centering is driven by the controller's installed
	// listeners.
	OnNavigated func(host.SurfaceID)

	mu       sync.Mutex
	surfaces map[WebViewID]*host.TabSurface
	attached map[WebViewID]bool
	// pendingReady buffers a ready beacon that arrives before the
	// top-level LoadFinished creates the surface. The beacon posts once;
	// losing it would strand the surface waiting for initialization.
	pendingReady map[WebViewID]bool
}

// NewBridge validates the script bundle and prepares the routing table.
func NewBridge(ctx context.Context, facility *host.Facility, stylesheet string, logger zerolog.Logger) (*Bridge, error) {
	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("script bundle: %w", err)
	}

	b := &Bridge{
		facility: facility,
		injector: NewInjector(stylesheet),
		router:   NewRouter(ctx),
		logger:   logger.With().Str("component", "webkit-bridge").Logger(),
		baseCtx:  ctx,
		surfaces:     make(map[WebViewID]*host.TabSurface),
		attached:     make(map[WebViewID]bool),
		pendingReady: make(map[WebViewID]bool),
	}

	mustRegister := func(msgType string, h MessageHandlerFunc) {
		if err := b.router.RegisterHandler(msgType, h); err != nil {
			panic(err) // static registration table; cannot fail at runtime
		}
	}

	mustRegister(script.MsgReaderReady, func(_ context.Context, id WebViewID, _ json.RawMessage) {
		b.readerReady(id)
	})
	mustRegister(script.MsgReaderNavigated, func(_ context.Context, id WebViewID, _ json.RawMessage) {
		if b.OnNavigated != nil {
			b.OnNavigated(host.SurfaceID(id))
		}
	})
	mustRegister(script.MsgReaderClosed, func(ctx context.Context, id WebViewID, _ json.RawMessage) {
		b.dropSurface(ctx, id)
	})

	return b, nil
}

// AttachWebView wires the router and injector into a webview exactly once
// and starts translating its load events. A second call is a no-op.
func (b *Bridge) AttachWebView(ctx context.Context, wv *WebView) error {
	if wv == nil {
		return fmt.Errorf("webview is nil")
	}

	b.mu.Lock()
	if b.attached[wv.ID()] {
		b.mu.Unlock()
		return nil
	}
	b.attached[wv.ID()] = true
	b.mu.Unlock()

	if _, err := b.router.Setup(wv.UserContentManager()); err != nil {
		b.mu.Lock()
		delete(b.attached, wv.ID()) // allow retry on next call
		b.mu.Unlock()
		return fmt.Errorf("setup message router: %w", err)
	}
	b.injector.Inject(ctx, wv.UserContentManager(), wv.ID())

	wv.OnLoadChanged = func(ev LoadEvent) {
		if ev == LoadFinished {
			b.surfaceRendered(wv)
		}
	}

	b.logger.Debug().Uint64("webview_id", uint64(wv.ID())).Msg("bridge attached to webview")
	return nil
}

// surfaceRendered builds a fresh surface for the finished load and fires
// the host's rendered notification.
func (b *Bridge) surfaceRendered(wv *WebView) {
	id := host.SurfaceID(wv.ID())
	kind := KindForURI(wv.URI())

	s := host.NewTabSurface(id, kind)
	s.SetDocument(NewDocument(wv, b.router))
	s.MarkUsable()

	b.publishSurface(wv.ID(), s)

	logging.Pluginf(logging.WithContext(b.baseCtx, b.logger), "surface %d rendered (%s)", id, kind)
}

// publishSurface stores the surface, replays a buffered ready beacon, and
// fires the rendered notification.
func (b *Bridge) publishSurface(id WebViewID, s *host.TabSurface) {
	b.mu.Lock()
	b.surfaces[id] = s
	ready := b.pendingReady[id]
	delete(b.pendingReady, id)
	b.mu.Unlock()

	if ready {
		s.MarkInitialized()
	}
	b.facility.EmitSurfaceRendered(b.baseCtx, s)
}

// readerReady resolves the surface's initialization signal. The beacon may
// beat LoadFinished out of the iframe; until the surface exists the flag is
// buffered and replayed by publishSurface.
func (b *Bridge) readerReady(id WebViewID) {
	b.mu.Lock()
	s := b.surfaces[id]
	if s == nil {
		b.pendingReady[id] = true
	}
	b.mu.Unlock()

	if s != nil {
		s.MarkInitialized()
	}
}

func (b *Bridge) dropSurface(ctx context.Context, id WebViewID) {
	b.mu.Lock()
	_, known := b.surfaces[id]
	delete(b.surfaces, id)
	delete(b.pendingReady, id)
	b.mu.Unlock()
	if known {
		b.facility.EmitSurfaceClosed(ctx, host.SurfaceID(id))
	}
}

// KindForURI classifies the document kind a URI displays.
func KindForURI(uri string) host.Kind {
	lower := strings.ToLower(uri)
	switch {
	case strings.Contains(lower, "pdf/web/viewer.html"),
		strings.HasSuffix(lower, ".pdf"):
		return host.KindReader
	case strings.Contains(lower, "/note/"):
		return host.KindNote
	default:
		return host.KindOther
	}
}
