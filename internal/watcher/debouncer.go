package watcher

import (
	"sync"
	"time"
)

// Debouncer collects events and flushes them once no new event has arrived
// for the window, or as soon as maxBatch distinct paths are pending. Later
// events for a path replace earlier ones.
type Debouncer struct {
	window   time.Duration
	maxBatch int
	events   map[string]FileEvent
	order    []string
	mu       sync.Mutex
	timer    *time.Timer
	onFlush  func([]FileEvent)
	stopped  bool
}

// NewDebouncer creates a debouncer calling onFlush with each batch in
// first-seen order.
func NewDebouncer(window time.Duration, maxBatch int, onFlush func([]FileEvent)) *Debouncer {
	return &Debouncer{
		window:   window,
		maxBatch: maxBatch,
		events:   make(map[string]FileEvent),
		onFlush:  onFlush,
	}
}

// Add queues event and restarts the window.
func (d *Debouncer) Add(event FileEvent) {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if _, ok := d.events[event.Path]; !ok {
		d.order = append(d.order, event.Path)
	}
	d.events[event.Path] = event

	if d.maxBatch > 0 && len(d.events) >= d.maxBatch {
		d.flushLocked()
		return
	}

	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if !d.stopped {
			d.flushLocked()
		} else {
			d.mu.Unlock()
		}
	})

	d.mu.Unlock()
}

// flushLocked must be called with mu held; it releases it.
func (d *Debouncer) flushLocked() {
	events := make([]FileEvent, 0, len(d.order))
	for _, path := range d.order {
		events = append(events, d.events[path])
	}

	d.events = make(map[string]FileEvent)
	d.order = nil

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.mu.Unlock()

	if len(events) > 0 && d.onFlush != nil {
		d.onFlush(events)
	}
}

// Pending returns the number of queued paths.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

// Stop flushes what is pending and ignores later events.
func (d *Debouncer) Stop() {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if len(d.events) > 0 {
		d.flushLocked()
	} else {
		d.mu.Unlock()
	}
}
