// Package mainloop provides next-turn task scheduling for deferred
// re-centering. Centering must run after the viewer's own scroll and layout
// pass, never synchronously inside the navigation event.
package mainloop

import "sync"

// Key identifies a coalescing slot; one slot per surface keeps a burst of
// navigations on the same surface down to a single centering pass.
type Key uint64

// Coalescer merges bursts of same-key tasks into one posted callback. post
// hands the callback to the run loop for execution on its next turn.
type Coalescer struct {
	mu        sync.Mutex
	pending   map[Key]bool
	callbacks map[Key]func()
	post      func(func())
	destroyed bool
}

func NewCoalescer(post func(func())) *Coalescer {
	if post == nil {
		panic("mainloop.NewCoalescer: post function cannot be nil")
	}

	return &Coalescer{
		pending:   make(map[Key]bool),
		callbacks: make(map[Key]func()),
		post:      post,
	}
}

// Post schedules fn for the next loop turn. A later Post with the same key
// before the turn runs replaces the callback without scheduling again, so
// only the latest task executes.
func (c *Coalescer) Post(key Key, fn func()) {
	if fn == nil {
		return
	}

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.callbacks[key] = fn
	if c.pending[key] {
		c.mu.Unlock()
		return
	}
	c.pending[key] = true
	post := c.post
	c.mu.Unlock()

	post(func() {
		c.mu.Lock()
		if c.destroyed {
			delete(c.pending, key)
			delete(c.callbacks, key)
			c.mu.Unlock()
			return
		}
		fn := c.callbacks[key]
		delete(c.pending, key)
		delete(c.callbacks, key)
		c.mu.Unlock()

		if fn != nil {
			fn()
		}
	})
}

// Drop discards any pending task for key. Used when a surface closes with a
// centering pass still queued.
func (c *Coalescer) Drop(key Key) {
	c.mu.Lock()
	delete(c.pending, key)
	delete(c.callbacks, key)
	c.mu.Unlock()
}

// Destroy drops all pending work and refuses new posts.
func (c *Coalescer) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.pending = map[Key]bool{}
	c.callbacks = map[Key]func(){}
	c.mu.Unlock()
}
