package simradio

import (
	"maps"
	"slices"
	"sync"
)

// queue runs submitted functions one at a time, in submission order, on a
// background goroutine. A goroutine is only alive while work is pending.
type queue struct {
	mu      sync.Mutex
	pending []func()
	running bool
}

func newQueue() *queue {
	return &queue{}
}

func (q *queue) submit(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, fn)
	if !q.running {
		q.running = true
		go q.drain()
	}
}

func (q *queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		fn := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()
	}
}

// handlers is a set of callbacks keyed by registration id.
type handlers[T any] struct {
	mu     sync.Mutex
	nextID uint64
	fns    map[uint64]T
}

func (h *handlers[T]) add(fn T) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fns == nil {
		h.fns = make(map[uint64]T)
	}
	id := h.nextID
	h.nextID++
	h.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.fns, id)
			h.mu.Unlock()
		})
	}
}

// snapshot returns the registered callbacks in registration order.
func (h *handlers[T]) snapshot() []T {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]T, 0, len(h.fns))
	for _, id := range slices.Sorted(maps.Keys(h.fns)) {
		out = append(out, h.fns[id])
	}
	return out
}

func (h *handlers[T]) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = nil
}
