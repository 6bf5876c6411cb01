// Package host models the host application's event facility and its
// document surfaces. The plugin consumes this boundary; it never creates
// surfaces itself.
package host

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// Event names dispatched by the facility.
const (
	EventSurfaceRendered = "surface-rendered"
	EventSurfaceClosed   = "surface-closed"
)

// Event is one host notification.
type Event struct {
	Name      string
	Surface   Surface // set for rendered events
	SurfaceID SurfaceID
}

// Listener receives host events on the dispatch goroutine.
type Listener interface {
	HandleEvent(ctx context.Context, ev Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ctx context.Context, ev Event)

// HandleEvent calls f(ctx, ev).
func (f ListenerFunc) HandleEvent(ctx context.Context, ev Event) { f(ctx, ev) }

type registration struct {
	listener Listener
	ownerID  string
}

// Facility is a single-goroutine event dispatcher. All listener work and
// every task handed to Post runs on the loop goroutine, one turn at a time;
// there is no parallel dispatch.
type Facility struct {
	logger zerolog.Logger

	mu        sync.Mutex
	listeners map[string][]registration

	tasks chan func()
}

// NewFacility creates an idle facility. Run must be called for events to
// flow.
func NewFacility(logger zerolog.Logger) *Facility {
	return &Facility{
		logger:    logger.With().Str("component", "host-facility").Logger(),
		listeners: make(map[string][]registration),
		tasks:     make(chan func(), 256),
	}
}

// RegisterEventListener adds a listener for an event name. Registering the
// same listener twice for the same event is rejected; the caller owns
// exactly one registration at a time.
func (f *Facility) RegisterEventListener(event string, l Listener, ownerID string) error {
	if event == "" {
		return errors.New("event name cannot be empty")
	}
	if l == nil {
		return errors.New("listener cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.listeners[event] {
		if sameListener(reg.listener, l) {
			return fmt.Errorf("listener already registered for %q", event)
		}
	}
	f.listeners[event] = append(f.listeners[event], registration{listener: l, ownerID: ownerID})
	f.logger.Debug().Str("event", event).Str("owner", ownerID).Msg("listener registered")
	return nil
}

// UnregisterEventListener removes a previously registered listener.
func (f *Facility) UnregisterEventListener(event string, l Listener) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	regs := f.listeners[event]
	for i, reg := range regs {
		if sameListener(reg.listener, l) {
			f.listeners[event] = append(regs[:i:i], regs[i+1:]...)
			f.logger.Debug().Str("event", event).Str("owner", reg.ownerID).Msg("listener unregistered")
			return nil
		}
	}
	return fmt.Errorf("no such listener registered for %q", event)
}

// EmitSurfaceRendered queues a rendered notification for dispatch.
func (f *Facility) EmitSurfaceRendered(ctx context.Context, s Surface) {
	f.emit(ctx, Event{Name: EventSurfaceRendered, Surface: s, SurfaceID: s.ID()})
}

// EmitSurfaceClosed queues a closed notification for dispatch.
func (f *Facility) EmitSurfaceClosed(ctx context.Context, id SurfaceID) {
	f.emit(ctx, Event{Name: EventSurfaceClosed, SurfaceID: id})
}

func (f *Facility) emit(ctx context.Context, ev Event) {
	f.Post(func() {
		f.mu.Lock()
		regs := append([]registration(nil), f.listeners[ev.Name]...)
		f.mu.Unlock()

		for _, reg := range regs {
			reg.listener.HandleEvent(ctx, ev)
		}
	})
}

// Post enqueues fn for the loop's next free turn. Safe from any goroutine.
func (f *Facility) Post(fn func()) {
	if fn == nil {
		return
	}
	f.tasks <- fn
}

// Barrier blocks until every task queued before it has run. Test and
// shutdown aid.
func (f *Facility) Barrier() {
	done := make(chan struct{})
	f.Post(func() { close(done) })
	<-done
}

// Run executes queued tasks until ctx is cancelled. It owns the dispatch
// goroutine; nothing else runs listener code.
func (f *Facility) Run(ctx context.Context) error {
	f.logger.Debug().Msg("dispatch loop started")
	for {
		select {
		case <-ctx.Done():
			f.logger.Debug().Msg("dispatch loop stopped")
			return ctx.Err()
		case fn := <-f.tasks:
			fn()
		}
	}
}

// sameListener compares listener identity. Pointer receivers compare by
// pointer; ListenerFunc values compare by code pointer, since func types
// are not == comparable.
func sameListener(a, b Listener) bool {
	if a == nil || b == nil {
		return false
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	if ra.Kind() == reflect.Func {
		return ra.Pointer() == rb.Pointer()
	}
	if !ra.Type().Comparable() {
		return false
	}
	return a == b
}
