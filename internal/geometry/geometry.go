// Package geometry computes current-page identification and centering
// offsets for a paginated viewer. Pure functions over layout snapshots;
// no state, no DOM access.
package geometry

import "math"

// PageTopTolerance is the maximum distance, in layout units, between a
// page's top offset and the viewport's scroll top for the page to count as
// current. Wide enough to absorb sub-pixel rounding, narrow enough that two
// pages cannot both qualify at typical page heights.
const PageTopTolerance = 5.0

// Metrics is a layout snapshot of one element relative to its scroll frame.
// The same struct serves viewports (scroll fields populated) and pages
// (offset fields populated). Snapshots are read fresh for every computation;
// the underlying renderer may add, remove, or move pages at any time.
type Metrics struct {
	OffsetTop    float64
	OffsetLeft   float64
	ClientWidth  float64
	ClientHeight float64
	ScrollTop    float64
	ScrollLeft   float64
}

// ScrollTarget is an absolute {top, left} scroll position.
type ScrollTarget struct {
	Top  float64
	Left float64
}

// CurrentPage returns the index of the page whose top edge sits at (or
// within PageTopTolerance of) the viewport's current scroll top. Pages are
// iterated in document order, which is top-to-bottom render order, so the
// first match wins. Returns false when no page qualifies, e.g. mid-scroll
// or before the viewer has laid out.
func CurrentPage(viewport Metrics, pages []Metrics) (int, bool) {
	for i, page := range pages {
		if math.Abs(page.OffsetTop-viewport.ScrollTop) < PageTopTolerance {
			return i, true
		}
	}
	return 0, false
}

// CenterOffset returns the scroll position that centers page within
// viewport. Slack is half the size difference per axis; when the page is
// smaller than the viewport the slack goes negative, which pulls the target
// back so the page stays visually centered instead of pinned to its
// top-left corner.
func CenterOffset(viewport, page Metrics) ScrollTarget {
	return ScrollTarget{
		Top:  page.OffsetTop + (page.ClientHeight-viewport.ClientHeight)/2,
		Left: page.OffsetLeft + (page.ClientWidth-viewport.ClientWidth)/2,
	}
}
