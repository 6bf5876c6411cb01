// Package domtest provides a scriptable in-memory DOM for exercising the
// attachment controller and centering path without a real viewer.
package domtest

import (
	"context"
	"sync"

	"github.com/dawaltconley/zotero-center-pdf/internal/dom"
	"github.com/dawaltconley/zotero-center-pdf/internal/geometry"
)

// Doc is an in-memory dom.Document. Selectors are matched literally against
// the keys elements were registered under.
type Doc struct {
	mu    sync.Mutex
	elems map[string][]*Elem
	dead  bool
}

// NewDoc returns an empty live document.
func NewDoc() *Doc {
	return &Doc{elems: make(map[string][]*Elem)}
}

// Add registers an element under a selector key and returns it.
func (d *Doc) Add(sel string, el *Elem) *Elem {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elems[sel] = append(d.elems[sel], el)
	return el
}

// Remove drops every element registered under sel.
func (d *Doc) Remove(sel string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.elems, sel)
}

// Kill marks the document torn down; subsequent lookups return absent.
func (d *Doc) Kill() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dead = true
}

func (d *Doc) QuerySelector(_ context.Context, sel string) (dom.Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dead || len(d.elems[sel]) == 0 {
		return nil, false
	}
	return d.elems[sel][0], true
}

func (d *Doc) QuerySelectorAll(_ context.Context, sel string) ([]dom.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dead {
		return nil, dom.ErrDocumentGone
	}
	out := make([]dom.Element, 0, len(d.elems[sel]))
	for _, el := range d.elems[sel] {
		out = append(out, el)
	}
	return out, nil
}

func (d *Doc) Alive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.dead
}

// Elem is an in-memory dom.Element.
type Elem struct {
	mu sync.Mutex

	M geometry.Metrics

	// Inner makes the element behave as a frame.
	Inner *Doc
	// LoadGate, when non-nil, makes WhenLoaded block until the channel is
	// closed. Nil means already loaded.
	LoadGate <-chan struct{}

	listeners map[string][]func()
	scrolls   []geometry.ScrollTarget
}

// NewElem returns an element with the given metrics.
func NewElem(m geometry.Metrics) *Elem {
	return &Elem{M: m}
}

func (e *Elem) Metrics(context.Context) (geometry.Metrics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.M, nil
}

func (e *Elem) ScrollTo(_ context.Context, top, left float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolls = append(e.scrolls, geometry.ScrollTarget{Top: top, Left: left})
	e.M.ScrollTop = top
	e.M.ScrollLeft = left
	return nil
}

// Scrolls returns every ScrollTo issued against the element.
func (e *Elem) Scrolls() []geometry.ScrollTarget {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]geometry.ScrollTarget, len(e.scrolls))
	copy(out, e.scrolls)
	return out
}

func (e *Elem) On(_ context.Context, event string, fn func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]func())
	}
	e.listeners[event] = append(e.listeners[event], fn)
	return nil
}

// Fire invokes every listener attached for event and reports how many ran.
func (e *Elem) Fire(event string) int {
	e.mu.Lock()
	fns := append([]func(){}, e.listeners[event]...)
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// ListenerCount returns the number of listeners attached for event.
func (e *Elem) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}

func (e *Elem) ContentDocument(context.Context) (dom.Document, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Inner == nil {
		return nil, false
	}
	return e.Inner, true
}

func (e *Elem) WhenLoaded(ctx context.Context) error {
	e.mu.Lock()
	gate := e.LoadGate
	e.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
