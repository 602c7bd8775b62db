package session

import "sync"

type observer[T any] struct {
	id int
	fn func(T)
}

// StateCell holds the latest value and replays it to new observers
type StateCell[T any] struct {
	mu        sync.Mutex
	value     T
	set       bool
	observers []observer[T]
	nextID    int
}

// Set stores v and delivers it to every observer, in registration order
func (c *StateCell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.set = true
	observers := append([]observer[T](nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		o.fn(v)
	}
}

// Get returns the latest value, if any
func (c *StateCell[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.set
}

// Observe registers fn and immediately replays the latest value to it
func (c *StateCell[T]) Observe(fn func(T)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers = append(c.observers, observer[T]{id: id, fn: fn})
	value, set := c.value, c.set
	c.mu.Unlock()

	if set {
		fn(value)
	}
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.observers = removeObserver(c.observers, id)
	}
}

// EffectQueue delivers each value once. Values emitted while nobody observes
// are held and flushed to the first observer that attaches.
type EffectQueue[T any] struct {
	mu        sync.Mutex
	pending   []T
	observers []observer[T]
	nextID    int
}

// Emit delivers v to current observers, or holds it if there are none
func (q *EffectQueue[T]) Emit(v T) {
	q.mu.Lock()
	if len(q.observers) == 0 {
		q.pending = append(q.pending, v)
		q.mu.Unlock()
		return
	}
	observers := append([]observer[T](nil), q.observers...)
	q.mu.Unlock()

	for _, o := range observers {
		o.fn(v)
	}
}

// Observe registers fn, flushing any held values to it first
func (q *EffectQueue[T]) Observe(fn func(T)) (cancel func()) {
	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.observers = append(q.observers, observer[T]{id: id, fn: fn})
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, v := range pending {
		fn(v)
	}
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.observers = removeObserver(q.observers, id)
	}
}

func removeObserver[T any](observers []observer[T], id int) []observer[T] {
	for i, o := range observers {
		if o.id == id {
			return append(observers[:i:i], observers[i+1:]...)
		}
	}
	return observers
}
