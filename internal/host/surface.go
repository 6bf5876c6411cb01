package host

import (
	"context"
	"sync"

	"github.com/dawaltconley/zotero-center-pdf/internal/dom"
)

// SurfaceID uniquely identifies one embedded document-viewing instance for
// its lifetime (a tab or session id in the host).
type SurfaceID uint64

// Kind tags the document kind a surface displays. Only reader surfaces
// carry a paginated viewer.
type Kind int

const (
	KindOther Kind = iota
	KindReader
	KindNote
)

func (k Kind) String() string {
	switch k {
	case KindReader:
		return "reader"
	case KindNote:
		return "note"
	default:
		return "other"
	}
}

// Surface is an opaque handle to one embedded viewing instance. Owned by
// the host; the plugin only observes it.
type Surface interface {
	ID() SurfaceID
	Kind() Kind

	// WhenUsable resolves once the surface can be interacted with.
	WhenUsable(ctx context.Context) error
	// WhenInitialized resolves once the surface's own initialization has
	// completed. Always awaited after WhenUsable.
	WhenInitialized(ctx context.Context) error

	// Document returns the surface's content document, or false when the
	// surface has been torn down.
	Document(ctx context.Context) (dom.Document, bool)
}

// Latch is a one-shot readiness signal.
type Latch struct {
	once sync.Once
	ch   chan struct{}
}

// NewLatch returns an unresolved latch.
func NewLatch() *Latch {
	return &Latch{ch: make(chan struct{})}
}

// Resolve marks the latch resolved. Idempotent.
func (l *Latch) Resolve() {
	l.once.Do(func() { close(l.ch) })
}

// Resolved reports whether the latch has fired.
func (l *Latch) Resolved() bool {
	select {
	case <-l.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until the latch resolves or ctx is cancelled.
func (l *Latch) Wait(ctx context.Context) error {
	select {
	case <-l.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TabSurface is the concrete surface used by the WebKit bridge and by
// tests: readiness latches plus a settable content document.
type TabSurface struct {
	id   SurfaceID
	kind Kind

	usable      *Latch
	initialized *Latch

	mu  sync.Mutex
	doc dom.Document
}

// NewTabSurface creates an unready surface of the given kind.
func NewTabSurface(id SurfaceID, kind Kind) *TabSurface {
	return &TabSurface{
		id:          id,
		kind:        kind,
		usable:      NewLatch(),
		initialized: NewLatch(),
	}
}

func (s *TabSurface) ID() SurfaceID { return s.id }
func (s *TabSurface) Kind() Kind    { return s.kind }

// MarkUsable resolves the "surface usable" signal.
func (s *TabSurface) MarkUsable() { s.usable.Resolve() }

// MarkInitialized resolves the "initialization complete" signal.
func (s *TabSurface) MarkInitialized() { s.initialized.Resolve() }

// SetDocument attaches the surface's content document.
func (s *TabSurface) SetDocument(doc dom.Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

func (s *TabSurface) WhenUsable(ctx context.Context) error {
	return s.usable.Wait(ctx)
}

func (s *TabSurface) WhenInitialized(ctx context.Context) error {
	return s.initialized.Wait(ctx)
}

func (s *TabSurface) Document(context.Context) (dom.Document, bool) {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	if doc == nil || !doc.Alive() {
		return nil, false
	}
	return doc, true
}
