package webkitdom

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dawaltconley/zotero-center-pdf/internal/host"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	f := host.NewFacility(zerolog.Nop())
	b, err := NewBridge(context.Background(), f, "", zerolog.Nop())
	require.NoError(t, err)
	return b
}

func TestReadyBeaconBeforeLoadFinishedIsBuffered(t *testing.T) {
	b := newTestBridge(t)
	s := host.NewTabSurface(1, host.KindReader)

	// The iframe's beacon posts once, ~50ms after document-end; the
	// top-level LoadFinished can arrive later. The single post must
	// survive until the surface exists.
	b.readerReady(1)
	b.publishSurface(1, s)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.WhenInitialized(ctx))
}

func TestReadyBeaconAfterSurfaceResolvesDirectly(t *testing.T) {
	b := newTestBridge(t)
	s := host.NewTabSurface(2, host.KindReader)

	b.publishSurface(2, s)
	b.readerReady(2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.WhenInitialized(ctx))
}

func TestDroppedSurfaceClearsBufferedReady(t *testing.T) {
	b := newTestBridge(t)

	// Beacon from a page that unloads before its surface is ever
	// published; the stale flag must not initialize the next load.
	b.readerReady(3)
	b.dropSurface(context.Background(), 3)

	s := host.NewTabSurface(3, host.KindReader)
	b.publishSurface(3, s)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, s.WhenInitialized(ctx), context.DeadlineExceeded)
}
