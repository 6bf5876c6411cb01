package host

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func runFacility(t *testing.T) (*Facility, context.Context) {
	t.Helper()
	f := NewFacility(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = f.Run(ctx) }()
	return f, ctx
}

func TestRegisterRejectsDuplicateListener(t *testing.T) {
	f := NewFacility(zerolog.Nop())
	l := ListenerFunc(func(context.Context, Event) {})

	require.NoError(t, f.RegisterEventListener(EventSurfaceRendered, l, "plugin"))
	require.Error(t, f.RegisterEventListener(EventSurfaceRendered, l, "plugin"))
}

func TestUnregisterRemovesListener(t *testing.T) {
	f, ctx := runFacility(t)

	seen := make(chan SurfaceID, 4)
	l := ListenerFunc(func(_ context.Context, ev Event) { seen <- ev.SurfaceID })

	require.NoError(t, f.RegisterEventListener(EventSurfaceRendered, l, "plugin"))
	f.EmitSurfaceRendered(ctx, NewTabSurface(1, KindReader))
	f.Barrier()
	require.Len(t, seen, 1)

	require.NoError(t, f.UnregisterEventListener(EventSurfaceRendered, l))
	f.EmitSurfaceRendered(ctx, NewTabSurface(2, KindReader))
	f.Barrier()
	require.Len(t, seen, 1, "unregistered listener must not fire")

	require.Error(t, f.UnregisterEventListener(EventSurfaceRendered, l))
}

func TestEmitDispatchesOnLoopGoroutine(t *testing.T) {
	f, ctx := runFacility(t)

	got := make(chan Event, 1)
	require.NoError(t, f.RegisterEventListener(EventSurfaceClosed,
		ListenerFunc(func(_ context.Context, ev Event) { got <- ev }), "plugin"))

	f.EmitSurfaceClosed(ctx, 42)
	f.Barrier()

	require.Len(t, got, 1)
	ev := <-got
	require.Equal(t, EventSurfaceClosed, ev.Name)
	require.Equal(t, SurfaceID(42), ev.SurfaceID)
	require.Nil(t, ev.Surface)
}

func TestLatchResolveIsIdempotent(t *testing.T) {
	l := NewLatch()
	require.False(t, l.Resolved())

	l.Resolve()
	l.Resolve()
	require.True(t, l.Resolved())
	require.NoError(t, l.Wait(context.Background()))
}

func TestLatchWaitHonorsContext(t *testing.T) {
	l := NewLatch()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

func TestTabSurfaceReadinessOrder(t *testing.T) {
	s := NewTabSurface(7, KindReader)
	s.MarkUsable()
	s.MarkInitialized()

	require.NoError(t, s.WhenUsable(context.Background()))
	require.NoError(t, s.WhenInitialized(context.Background()))

	_, ok := s.Document(context.Background())
	require.False(t, ok, "surface without a document reports absent")
}
