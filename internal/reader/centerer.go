// Package reader drives re-centering of the current page inside an attached
// viewer surface.
package reader

import (
	"context"

	"github.com/dawaltconley/zotero-center-pdf/internal/geometry"
	"github.com/dawaltconley/zotero-center-pdf/internal/logging"
	"github.com/rs/zerolog"
)

// Snapshotter is the slice of the viewport the centerer needs: a fresh
// layout snapshot and an absolute scroll sink. *dom.Viewport implements it.
type Snapshotter interface {
	Snapshot(ctx context.Context) (geometry.Metrics, []geometry.Metrics, error)
	ScrollTo(ctx context.Context, top, left float64) error
}

// Centerer centers the current page of one viewport. Stateless between
// invocations; every call reads a fresh snapshot.
type Centerer struct {
	viewport Snapshotter
	logger   zerolog.Logger
}

// NewCenterer creates a centerer for a discovered viewport.
func NewCenterer(viewport Snapshotter, logger zerolog.Logger) *Centerer {
	return &Centerer{
		viewport: viewport,
		logger:   logger.With().Str("component", "centerer").Logger(),
	}
}

// CenterCurrentPage identifies the current page and scrolls the viewport so
// the page is centered. Every failure is non-fatal: a missing current page
// is expected transiently during rapid navigation, and snapshot or scroll
// errors mean the surface is on its way out. Nothing propagates.
func (c *Centerer) CenterCurrentPage(ctx context.Context) {
	ctx = logging.WithContext(ctx, c.logger)

	vp, pages, err := c.viewport.Snapshot(ctx)
	if err != nil {
		logging.Pluginf(ctx, "viewport snapshot failed: %v", err)
		return
	}

	idx, ok := geometry.CurrentPage(vp, pages)
	if !ok {
		logging.Pluginf(ctx, "could not identify current page")
		return
	}

	target := geometry.CenterOffset(vp, pages[idx])
	if err := c.viewport.ScrollTo(ctx, target.Top, target.Left); err != nil {
		logging.Pluginf(ctx, "scroll to {%g, %g} failed: %v", target.Top, target.Left, err)
		return
	}

	c.logger.Debug().
		Int("page", idx).
		Float64("top", target.Top).
		Float64("left", target.Left).
		Msg("centered current page")
}
