package webkitdom

import (
	"context"

	"github.com/bnema/puregotk/v4/gio"
	"github.com/bnema/puregotk/v4/gtk"

	"github.com/dawaltconley/zotero-center-pdf/internal/logging"
)

const (
	defaultWidth  = 1280
	defaultHeight = 800
	windowTitle   = "centerpdf"
)

// ViewerApp hosts a single webview in a GTK window and routes its lifecycle
// through the bridge. It is the development harness for exercising the
// plugin against a live viewer page.
type ViewerApp struct {
	bridge *Bridge
	uri    string

	gtkApp *gtk.Application
	window *gtk.ApplicationWindow
	wv     *WebView
}

// NewViewerApp creates an app that opens uri on activation.
func NewViewerApp(bridge *Bridge, uri string) *ViewerApp {
	return &ViewerApp{bridge: bridge, uri: uri}
}

// Run starts the GTK main loop and blocks until it exits. Returns the
// process exit code.
func (a *ViewerApp) Run(ctx context.Context, args []string) int {
	log := logging.FromContext(ctx)

	a.gtkApp = gtk.NewApplication(nil, gio.GApplicationFlagsNoneValue)
	if a.gtkApp == nil {
		log.Error().Msg("failed to create GTK application")
		return 1
	}
	defer a.gtkApp.Unref()

	activateCb := func(_ gio.Application) {
		a.onActivate(ctx)
	}
	a.gtkApp.ConnectActivate(&activateCb)

	shutdownCb := func(_ gio.Application) {
		a.onShutdown(ctx)
	}
	a.gtkApp.ConnectShutdown(&shutdownCb)

	log.Info().Str("uri", a.uri).Msg("starting GTK main loop")
	return a.gtkApp.Run(len(args), args)
}

func (a *ViewerApp) onActivate(ctx context.Context) {
	log := logging.FromContext(ctx)

	a.window = gtk.NewApplicationWindow(a.gtkApp)
	if a.window == nil {
		log.Error().Msg("failed to create application window")
		return
	}
	title := windowTitle
	a.window.SetTitle(&title)
	a.window.SetDefaultSize(defaultWidth, defaultHeight)

	wv, err := NewWebView(*log)
	if err != nil {
		log.Error().Err(err).Msg("failed to create webview")
		return
	}
	a.wv = wv

	if err := a.bridge.AttachWebView(ctx, wv); err != nil {
		log.Error().Err(err).Msg("failed to attach bridge to webview")
		return
	}

	widget := wv.Widget()
	widget.SetHexpand(true)
	widget.SetVexpand(true)
	a.window.SetChild(&widget.Widget)

	if err := wv.LoadURI(ctx, a.uri); err != nil {
		log.Error().Err(err).Msg("failed to load URI")
	}

	a.window.Present()
}

func (a *ViewerApp) onShutdown(ctx context.Context) {
	logging.FromContext(ctx).Debug().Msg("GTK application shutting down")
	if a.wv != nil {
		a.wv.Destroy()
	}
}
