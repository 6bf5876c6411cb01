// Package script holds the JS bootstrap injected into viewer pages and a
// compile-time gate over it. The bootstrap only reports: it posts readiness
// and navigation messages to the plugin; all geometry and scrolling stays on
// the Go side.
package script

import (
	"fmt"

	"github.com/grafana/sobek"
)

// MessageHandlerName is the script-message handler the bootstrap posts to.
const MessageHandlerName = "centerpdf"

// Message types posted by the bootstrap.
const (
	MsgReaderReady     = "reader.ready"
	MsgReaderNavigated = "reader.navigated"
	MsgReaderClosed    = "reader.closed"
)

// readyBeacon polls for the viewer container and posts reader.ready once it
// exists. The poll stops itself either way when the document unloads.
const readyBeacon = `(function() {
  if (window.__centerpdf_ready_beacon) { return; }
  window.__centerpdf_ready_beacon = true;

  function post(type) {
    try {
      window.webkit.messageHandlers.centerpdf.postMessage({
        type: type,
        surface_id: window.__centerpdf_surface_id || 0
      });
    } catch (e) {}
  }

  var tries = 0;
  var timer = setInterval(function() {
    tries++;
    if (document.querySelector('#viewerContainer')) {
      clearInterval(timer);
      post('reader.ready');
      return;
    }
    if (tries > 600) { clearInterval(timer); }
  }, 50);

  window.addEventListener('unload', function() {
    clearInterval(timer);
    post('reader.closed');
  });
})();`

// navListeners attaches reporting listeners to the viewer's navigation
// controls. Each activation posts reader.navigated; the plugin defers the
// centering pass so the viewer's own scroll settles first.
const navListeners = `(function() {
  if (window.__centerpdf_nav_listeners) { return; }
  window.__centerpdf_nav_listeners = true;

  function post() {
    try {
      window.webkit.messageHandlers.centerpdf.postMessage({
        type: 'reader.navigated',
        surface_id: window.__centerpdf_surface_id || 0
      });
    } catch (e) {}
  }

  function hook(selector, event) {
    var el = document.querySelector(selector);
    if (el) { el.addEventListener(event, post); }
  }

  hook('button#previous', 'click');
  hook('button#next', 'click');
  hook('button#navigateBack', 'click');
  hook('input#pageNumber', 'change');
})();`

// Script is one injectable source with a label for diagnostics.
type Script struct {
	Name   string
	Source string
}

// Bundle returns every script the injector installs, in injection order.
func Bundle() []Script {
	return []Script{
		{Name: "ready-beacon", Source: readyBeacon},
		{Name: "nav-listeners", Source: navListeners},
	}
}

// Validate compiles every bundled script. Called at plugin construction so
// a malformed bundle fails fast instead of silently doing nothing inside
// the viewer.
func Validate() error {
	for _, s := range Bundle() {
		if _, err := sobek.Compile(s.Name, s.Source, true); err != nil {
			return fmt.Errorf("script %q does not compile: %w", s.Name, err)
		}
	}
	return nil
}
