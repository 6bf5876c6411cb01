package dom

import (
	"context"
	"fmt"

	"github.com/dawaltconley/zotero-center-pdf/internal/geometry"
)

// Viewport reads layout snapshots from a scrollable container and the page
// elements rendered inside it. The page set is re-queried on every snapshot;
// the renderer virtualizes pages and nothing read here survives a
// navigation.
type Viewport struct {
	doc          Document
	container    Element
	pageSelector string
}

// NewViewport wraps a discovered scroll container. doc is the document the
// container lives in, used to re-query page elements.
func NewViewport(doc Document, container Element, pageSelector string) *Viewport {
	return &Viewport{
		doc:          doc,
		container:    container,
		pageSelector: pageSelector,
	}
}

// Snapshot reads the container metrics and the metrics of every page
// element, in document order.
func (v *Viewport) Snapshot(ctx context.Context) (geometry.Metrics, []geometry.Metrics, error) {
	vp, err := v.container.Metrics(ctx)
	if err != nil {
		return geometry.Metrics{}, nil, fmt.Errorf("viewport metrics: %w", err)
	}

	elems, err := v.doc.QuerySelectorAll(ctx, v.pageSelector)
	if err != nil {
		return geometry.Metrics{}, nil, fmt.Errorf("query pages: %w", err)
	}

	pages := make([]geometry.Metrics, 0, len(elems))
	for _, el := range elems {
		m, err := el.Metrics(ctx)
		if err != nil {
			return geometry.Metrics{}, nil, fmt.Errorf("page metrics: %w", err)
		}
		pages = append(pages, m)
	}
	return vp, pages, nil
}

// ScrollTo sets the container's absolute scroll position.
func (v *Viewport) ScrollTo(ctx context.Context, top, left float64) error {
	return v.container.ScrollTo(ctx, top, left)
}
