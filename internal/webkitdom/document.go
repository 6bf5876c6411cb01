package webkitdom

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dawaltconley/zotero-center-pdf/internal/dom"
	"github.com/dawaltconley/zotero-center-pdf/internal/geometry"
	"github.com/dawaltconley/zotero-center-pdf/internal/host"
)

// scriptHost is the slice of the webview the DOM implementation evaluates
// against. *WebView implements it; tests substitute a scripted fake.
type scriptHost interface {
	EvalJSON(ctx context.Context, script string) (json.RawMessage, error)
	RunJavaScript(ctx context.Context, script string)
	IsDestroyed() bool
}

// Document implements dom.Document over evaluated JavaScript. A document is
// addressed by a JS expression ("document", or a frame's contentDocument
// chain); every query re-evaluates the expression so a torn-down tree
// simply yields null.
type Document struct {
	wv     scriptHost
	router *Router
	expr   string
}

// NewDocument returns the webview's top-level document.
func NewDocument(wv *WebView, router *Router) *Document {
	return &Document{wv: wv, router: router, expr: "document"}
}

func (d *Document) QuerySelector(ctx context.Context, sel string) (dom.Element, bool) {
	raw, err := d.wv.EvalJSON(ctx, fmt.Sprintf("!!((%s) && (%s).querySelector(%q))", d.expr, d.expr, sel))
	if err != nil || string(raw) != "true" {
		return nil, false
	}
	return &Element{
		wv:     d.wv,
		router: d.router,
		expr:   fmt.Sprintf("(%s).querySelector(%q)", d.expr, sel),
	}, true
}

func (d *Document) QuerySelectorAll(ctx context.Context, sel string) ([]dom.Element, error) {
	raw, err := d.wv.EvalJSON(ctx, fmt.Sprintf(
		"(function(){var doc=%s; return doc ? doc.querySelectorAll(%q).length : -1;})()", d.expr, sel))
	if err != nil {
		return nil, err
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("parse element count: %w", err)
	}
	if n < 0 {
		return nil, dom.ErrDocumentGone
	}

	elems := make([]dom.Element, 0, n)
	for i := 0; i < n; i++ {
		elems = append(elems, &Element{
			wv:     d.wv,
			router: d.router,
			expr:   fmt.Sprintf("(%s).querySelectorAll(%q)[%d]", d.expr, sel, i),
		})
	}
	return elems, nil
}

func (d *Document) Alive() bool {
	if d.wv.IsDestroyed() {
		return false
	}
	raw, err := d.wv.EvalJSON(context.Background(), fmt.Sprintf("!!(%s)", d.expr))
	return err == nil && string(raw) == "true"
}

// Element implements dom.Element by re-evaluating its address expression on
// every operation. Stale addresses evaluate to null and surface as errors
// or absent results, never faults.
type Element struct {
	wv     scriptHost
	router *Router
	expr   string
}

type metricsPayload struct {
	OffsetTop    float64 `json:"offset_top"`
	OffsetLeft   float64 `json:"offset_left"`
	ClientWidth  float64 `json:"client_width"`
	ClientHeight float64 `json:"client_height"`
	ScrollTop    float64 `json:"scroll_top"`
	ScrollLeft   float64 `json:"scroll_left"`
}

func (e *Element) Metrics(ctx context.Context) (geometry.Metrics, error) {
	js := fmt.Sprintf(`(function(){
  var el = %s;
  if (!el) { return null; }
  return {
    offset_top: el.offsetTop, offset_left: el.offsetLeft,
    client_width: el.clientWidth, client_height: el.clientHeight,
    scroll_top: el.scrollTop, scroll_left: el.scrollLeft
  };
})()`, e.expr)

	raw, err := e.wv.EvalJSON(ctx, js)
	if err != nil {
		return geometry.Metrics{}, err
	}
	if string(raw) == "null" {
		return geometry.Metrics{}, dom.ErrDocumentGone
	}

	var m metricsPayload
	if err := json.Unmarshal(raw, &m); err != nil {
		return geometry.Metrics{}, fmt.Errorf("parse metrics: %w", err)
	}
	return geometry.Metrics{
		OffsetTop:    m.OffsetTop,
		OffsetLeft:   m.OffsetLeft,
		ClientWidth:  m.ClientWidth,
		ClientHeight: m.ClientHeight,
		ScrollTop:    m.ScrollTop,
		ScrollLeft:   m.ScrollLeft,
	}, nil
}

func (e *Element) ScrollTo(ctx context.Context, top, left float64) error {
	// Absolute, non-animated scroll so we never compound with the
	// viewer's own scrolling.
	js := fmt.Sprintf(`(function(){
  var el = %s;
  if (!el) { return; }
  el.scrollTop = %g;
  el.scrollLeft = %g;
})()`, e.expr, top, left)

	e.wv.RunJavaScript(ctx, js)
	return nil
}

func (e *Element) On(ctx context.Context, event string, fn func()) error {
	token := e.router.NewEventToken(fn)
	js := fmt.Sprintf(`(function(){
  var el = %s;
  if (!el) { return; }
  el.addEventListener(%q, function() {
    try {
      window.webkit.messageHandlers.centerpdf.postMessage({
        type: 'dom.event', payload: { token: %d }
      });
    } catch (err) {}
  });
})()`, e.expr, event, token)

	e.wv.RunJavaScript(ctx, js)
	return nil
}

func (e *Element) ContentDocument(ctx context.Context) (dom.Document, bool) {
	raw, err := e.wv.EvalJSON(ctx, fmt.Sprintf(
		"(function(){var el=%s; return !!(el && el.tagName === 'IFRAME' && el.contentDocument);})()", e.expr))
	if err != nil || string(raw) != "true" {
		return nil, false
	}
	return &Document{
		wv:     e.wv,
		router: e.router,
		expr:   fmt.Sprintf("(%s).contentDocument", e.expr),
	}, true
}

func (e *Element) WhenLoaded(ctx context.Context) error {
	// Listener first, readyState second. WebKit runs evaluations in
	// submission order, so a load that completes between the two still
	// fires the already-installed listener; checking first would let the
	// event slip through unheard.
	loaded := host.NewLatch()
	if err := e.On(ctx, "load", loaded.Resolve); err != nil {
		return err
	}

	raw, err := e.wv.EvalJSON(ctx, fmt.Sprintf(
		"(function(){var el=%s; return !!(el && el.contentDocument && el.contentDocument.readyState === 'complete');})()",
		e.expr))
	if err != nil {
		return err
	}
	if string(raw) == "true" {
		return nil
	}
	return loaded.Wait(ctx)
}
