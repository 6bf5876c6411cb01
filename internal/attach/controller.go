// Package attach installs re-centering behavior on reader surfaces. One
// lifecycle state machine per surface: wait for readiness, locate the viewer
// scaffolding inside the embedded frame, hook the navigation controls, and
// defer a centering pass after every navigation.
package attach

import (
	"context"
	"sync"
	"time"

	"github.com/dawaltconley/zotero-center-pdf/internal/dom"
	"github.com/dawaltconley/zotero-center-pdf/internal/host"
	"github.com/dawaltconley/zotero-center-pdf/internal/logging"
	"github.com/dawaltconley/zotero-center-pdf/internal/mainloop"
	"github.com/dawaltconley/zotero-center-pdf/internal/reader"
	"github.com/rs/zerolog"
)

// Selectors into the embedded viewer. The viewer's markup is fixed; these
// are not configurable.
const (
	FrameSelector     = `iframe[src="pdf/web/viewer.html"]`
	ContainerSelector = "#viewerContainer"
	PageSelector      = ".pdfViewer .page"

	PreviousSelector   = "button#previous"
	NextSelector       = "button#next"
	BackSelector       = "button#navigateBack"
	PageNumberSelector = "input#pageNumber"
)

// State of one surface's attachment lifecycle.
type State int

const (
	StateUnseen State = iota
	StateAwaitingReady
	StateAwaitingScaffold
	StateAttached
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateAwaitingReady:
		return "awaiting-ready"
	case StateAwaitingScaffold:
		return "awaiting-scaffold"
	case StateAttached:
		return "attached"
	case StateDetached:
		return "detached"
	default:
		return "unseen"
	}
}

// Notice is a lifecycle transition report, consumed by the monitor UI.
type Notice struct {
	SurfaceID host.SurfaceID
	State     State
	Detail    string
	At        time.Time
}

// EventBus is the slice of the host facility the controller needs.
type EventBus interface {
	RegisterEventListener(event string, l host.Listener, ownerID string) error
	UnregisterEventListener(event string, l host.Listener) error
	Post(fn func())
}

type record struct {
	state    State
	centerer *reader.Centerer
}

// Controller owns the per-surface attachment records and the single
// process-wide registration with the host facility.
type Controller struct {
	bus       EventBus
	coalescer *mainloop.Coalescer
	logger    zerolog.Logger
	ownerID   string
	notify    func(Notice)

	mu      sync.Mutex
	records map[host.SurfaceID]*record
	started bool

	runCtx context.Context
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotify registers a sink for lifecycle notices. The sink runs on
// whichever goroutine transitions the state; it must not block.
func WithNotify(fn func(Notice)) Option {
	return func(c *Controller) { c.notify = fn }
}

// NewController creates a controller bound to the host facility. ownerID
// identifies the plugin's registration to the host.
func NewController(bus EventBus, ownerID string, logger zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		bus:     bus,
		logger:  logger.With().Str("component", "attach-controller").Logger(),
		ownerID: ownerID,
		records: make(map[host.SurfaceID]*record),
	}
	c.coalescer = mainloop.NewCoalescer(bus.Post)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start installs the controller's single event registration. Exactly one
// registration may exist at a time; a second Start without Stop fails.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.runCtx = logging.WithContext(ctx, c.logger)
	c.mu.Unlock()

	if err := c.bus.RegisterEventListener(host.EventSurfaceRendered, c, c.ownerID); err != nil {
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		return err
	}
	if err := c.bus.RegisterEventListener(host.EventSurfaceClosed, c, c.ownerID); err != nil {
		_ = c.bus.UnregisterEventListener(host.EventSurfaceRendered, c)
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		return err
	}

	logging.Pluginf(c.runCtx, "started")
	return nil
}

// Stop removes the event registration. Surfaces already attached keep their
// installed listeners; the host tears those down with the surface.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.started = false
	ctx := c.runCtx
	c.mu.Unlock()

	if err := c.bus.UnregisterEventListener(host.EventSurfaceRendered, c); err != nil {
		return err
	}
	if err := c.bus.UnregisterEventListener(host.EventSurfaceClosed, c); err != nil {
		return err
	}

	logging.Pluginf(ctx, "stopped")
	return nil
}

// HandleEvent implements host.Listener. Runs on the facility's dispatch
// goroutine; the attachment sequence itself runs on its own goroutine so the
// readiness waits never stall dispatch.
func (c *Controller) HandleEvent(ctx context.Context, ev host.Event) {
	switch ev.Name {
	case host.EventSurfaceRendered:
		if ev.Surface == nil {
			return
		}
		// Surfaces of other kinds are ignored entirely; no state is
		// created for them.
		if ev.Surface.Kind() != host.KindReader {
			return
		}
		go c.attach(c.context(), ev.Surface)
	case host.EventSurfaceClosed:
		c.release(ev.SurfaceID)
	}
}

// States returns a snapshot of every tracked surface's state.
func (c *Controller) States() map[host.SurfaceID]State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[host.SurfaceID]State, len(c.records))
	for id, r := range c.records {
		out[id] = r.state
	}
	return out
}

// attach drives one surface from rendered to attached. Every lookup failure
// is non-fatal: log, drop the record, and let a later rendered notification
// start over.
func (c *Controller) attach(ctx context.Context, s host.Surface) {
	id := s.ID()
	ctx = logging.WithSurfaceID(ctx, uint64(id))

	if !c.begin(id) {
		logging.Pluginf(ctx, "surface %d already attached or attaching; skipping", id)
		return
	}

	if err := s.WhenUsable(ctx); err != nil {
		c.abandon(ctx, id, "wait for usable: %v", err)
		return
	}
	if err := s.WhenInitialized(ctx); err != nil {
		c.abandon(ctx, id, "wait for initialization: %v", err)
		return
	}

	doc, ok := s.Document(ctx)
	if !ok {
		c.abandon(ctx, id, "content document unavailable")
		return
	}

	frame, ok := doc.QuerySelector(ctx, FrameSelector)
	if !ok {
		c.abandon(ctx, id, "viewer frame %q not found", FrameSelector)
		return
	}

	frameDoc, ok := frame.ContentDocument(ctx)
	if !ok {
		c.abandon(ctx, id, "element %q is not a frame", FrameSelector)
		return
	}

	c.transition(id, StateAwaitingScaffold, "")

	container, ok := frameDoc.QuerySelector(ctx, ContainerSelector)
	if !ok {
		// Not laid out yet: wait for the frame's load event, then
		// re-query once.
		if err := frame.WhenLoaded(ctx); err != nil {
			c.abandon(ctx, id, "wait for frame load: %v", err)
			return
		}
		container, ok = frameDoc.QuerySelector(ctx, ContainerSelector)
		if !ok {
			c.abandon(ctx, id, "viewer container %q not found after frame load", ContainerSelector)
			return
		}
	}

	viewport := dom.NewViewport(frameDoc, container, PageSelector)
	centerer := reader.NewCenterer(viewport, c.logger.With().Uint64("surface_id", uint64(id)).Logger())

	c.installListeners(ctx, id, frameDoc, centerer)

	c.mu.Lock()
	if r := c.records[id]; r != nil {
		r.state = StateAttached
		r.centerer = centerer
	}
	c.mu.Unlock()
	c.emitNotice(id, StateAttached, "")

	logging.Pluginf(ctx, "attached to surface %d", id)
}

// installListeners hooks the navigation controls. A missing individual
// control is logged and skipped; the attachment still counts as long as the
// container was found.
func (c *Controller) installListeners(ctx context.Context, id host.SurfaceID, doc dom.Document, centerer *reader.Centerer) {
	hooks := []struct {
		selector string
		event    string
	}{
		{PreviousSelector, "click"},
		{NextSelector, "click"},
		{BackSelector, "click"},
		{PageNumberSelector, "change"},
	}

	for _, h := range hooks {
		el, ok := doc.QuerySelector(ctx, h.selector)
		if !ok {
			logging.Pluginf(ctx, "control %q not found; skipping", h.selector)
			continue
		}
		if err := el.On(ctx, h.event, func() { c.scheduleCenter(id, centerer) }); err != nil {
			logging.Pluginf(ctx, "listen %s on %q: %v", h.event, h.selector, err)
		}
	}
}

// scheduleCenter defers one centering pass to the loop's next turn,
// coalesced per surface so navigation bursts center once.
func (c *Controller) scheduleCenter(id host.SurfaceID, centerer *reader.Centerer) {
	c.coalescer.Post(mainloop.Key(id), func() {
		centerer.CenterCurrentPage(c.context())
	})
}

// context returns the run context installed by Start. runCtx is rewritten
// on every Start, and listeners installed before a Stop/Start cycle still
// call in; the read has to hold the lock.
func (c *Controller) context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runCtx == nil {
		return context.Background()
	}
	return c.runCtx
}

// begin claims the attachment slot for a surface. Returns false when an
// attempt is already in flight or the surface is attached; the per-surface
// record is an idempotency check, not a mutex.
func (c *Controller) begin(id host.SurfaceID) bool {
	c.mu.Lock()
	if r, ok := c.records[id]; ok && r.state != StateDetached {
		c.mu.Unlock()
		return false
	}
	c.records[id] = &record{state: StateAwaitingReady}
	c.mu.Unlock()

	c.emitNotice(id, StateAwaitingReady, "")
	return true
}

// abandon logs a diagnostic and drops the record so a later rendered
// notification restarts the sequence from scratch.
func (c *Controller) abandon(ctx context.Context, id host.SurfaceID, format string, args ...any) {
	logging.Pluginf(ctx, format, args...)
	c.mu.Lock()
	delete(c.records, id)
	c.mu.Unlock()
	c.emitNotice(id, StateUnseen, "attachment abandoned")
}

// release drops all bookkeeping for a destroyed surface.
func (c *Controller) release(id host.SurfaceID) {
	c.coalescer.Drop(mainloop.Key(id))
	c.mu.Lock()
	_, known := c.records[id]
	delete(c.records, id)
	c.mu.Unlock()
	if known {
		c.emitNotice(id, StateDetached, "surface closed")
	}
}

func (c *Controller) transition(id host.SurfaceID, state State, detail string) {
	c.mu.Lock()
	if r := c.records[id]; r != nil {
		r.state = state
	}
	c.mu.Unlock()
	c.emitNotice(id, state, detail)
}

func (c *Controller) emitNotice(id host.SurfaceID, state State, detail string) {
	if c.notify == nil {
		return
	}
	c.notify(Notice{SurfaceID: id, State: state, Detail: detail, At: time.Now()})
}
