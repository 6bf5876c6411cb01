// Package dom defines the boundary to the embedded viewer's document tree.
// The plugin never owns this tree; it queries it, listens to it, and nudges
// its scroll position. Implementations must tolerate a torn-down document:
// lookups on a dead tree return absent, never fault.
package dom

import (
	"context"
	"errors"

	"github.com/dawaltconley/zotero-center-pdf/internal/geometry"
)

// ErrDocumentGone reports that the backing document was torn down while an
// operation was in flight. Callers treat it like any other lookup failure.
var ErrDocumentGone = errors.New("dom: document gone")

// Document is one content document, either a surface's outer document or a
// frame's inner document.
type Document interface {
	// QuerySelector returns the first element matching sel, or false when
	// nothing matches or the document is gone.
	QuerySelector(ctx context.Context, sel string) (Element, bool)

	// QuerySelectorAll returns every element matching sel in document
	// order. A gone document yields ErrDocumentGone.
	QuerySelectorAll(ctx context.Context, sel string) ([]Element, error)

	// Alive reports whether the document is still attached to a live
	// surface.
	Alive() bool
}

// Element is one node in a content document.
type Element interface {
	// Metrics reads the element's current layout snapshot.
	Metrics(ctx context.Context) (geometry.Metrics, error)

	// ScrollTo sets the element's absolute scroll position. Only
	// meaningful for scrollable containers.
	ScrollTo(ctx context.Context, top, left float64) error

	// On attaches a handler for a DOM event ("click", "change", ...).
	On(ctx context.Context, event string, fn func()) error

	// ContentDocument returns the nested document when the element is a
	// frame, false otherwise.
	ContentDocument(ctx context.Context) (Document, bool)

	// WhenLoaded blocks until the element's load event has fired. Only
	// meaningful for frames; resolves immediately if already loaded.
	WhenLoaded(ctx context.Context) error
}
