package reader

import (
	"context"
	"errors"
	"testing"

	"github.com/dawaltconley/zotero-center-pdf/internal/geometry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeViewport struct {
	vp      geometry.Metrics
	pages   []geometry.Metrics
	snapErr error
	scrolls []geometry.ScrollTarget
}

func (f *fakeViewport) Snapshot(context.Context) (geometry.Metrics, []geometry.Metrics, error) {
	return f.vp, f.pages, f.snapErr
}

func (f *fakeViewport) ScrollTo(_ context.Context, top, left float64) error {
	f.scrolls = append(f.scrolls, geometry.ScrollTarget{Top: top, Left: left})
	return nil
}

func TestCenterCurrentPageScrollsToExactTarget(t *testing.T) {
	// Scenario A: 800x600 viewport, full-size page at offsetTop=1200,
	// scrollTop already at 1200.
	fv := &fakeViewport{
		vp: geometry.Metrics{ClientWidth: 800, ClientHeight: 600, ScrollTop: 1200},
		pages: []geometry.Metrics{
			{OffsetTop: 0, OffsetLeft: 0, ClientWidth: 800, ClientHeight: 600},
			{OffsetTop: 1200, OffsetLeft: 0, ClientWidth: 800, ClientHeight: 600},
		},
	}

	c := NewCenterer(fv, zerolog.Nop())
	c.CenterCurrentPage(context.Background())

	require.Len(t, fv.scrolls, 1)
	require.Equal(t, geometry.ScrollTarget{Top: 1200, Left: 0}, fv.scrolls[0])
}

func TestCenterCurrentPageCentersNarrowPage(t *testing.T) {
	// Scenario B: page width 400 in an 800-wide viewport, offsetLeft 200.
	fv := &fakeViewport{
		vp: geometry.Metrics{ClientWidth: 800, ClientHeight: 600, ScrollTop: 1200},
		pages: []geometry.Metrics{
			{OffsetTop: 1200, OffsetLeft: 200, ClientWidth: 400, ClientHeight: 600},
		},
	}

	c := NewCenterer(fv, zerolog.Nop())
	c.CenterCurrentPage(context.Background())

	require.Len(t, fv.scrolls, 1)
	require.Equal(t, geometry.ScrollTarget{Top: 1200, Left: 0}, fv.scrolls[0])
}

func TestCenterCurrentPageNoCurrentPageSkipsScroll(t *testing.T) {
	fv := &fakeViewport{
		vp: geometry.Metrics{ClientWidth: 800, ClientHeight: 600, ScrollTop: 300},
		pages: []geometry.Metrics{
			{OffsetTop: 0, ClientWidth: 800, ClientHeight: 600},
			{OffsetTop: 610, ClientWidth: 800, ClientHeight: 600},
		},
	}

	c := NewCenterer(fv, zerolog.Nop())
	c.CenterCurrentPage(context.Background())

	require.Empty(t, fv.scrolls, "no scroll call may be issued without a current page")
}

func TestCenterCurrentPageSnapshotErrorIsSwallowed(t *testing.T) {
	fv := &fakeViewport{snapErr: errors.New("document gone")}

	c := NewCenterer(fv, zerolog.Nop())
	c.CenterCurrentPage(context.Background())

	require.Empty(t, fv.scrolls)
}
