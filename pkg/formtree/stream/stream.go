// Package stream provides per-node multicast notification channels for
// formtree controls.
//
// A Stream is node-scoped state with a clear lifecycle: it is created when
// its owning control is constructed and garbage-collected with it. Streams
// are deliberately not a process-wide bus - each control owns its own
// value-changed and status-changed streams.
//
// Delivery is synchronous: Emit invokes every active handler before
// returning, in subscription order. Handlers must not block.
package stream

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Stream is a multicast channel carrying values of type T.
// It is safe for concurrent use.
type Stream[T any] struct {
	mu    sync.Mutex
	order []string
	subs  map[string]*Subscription[T]
}

// New creates an empty stream.
func New[T any]() *Stream[T] {
	return &Stream[T]{
		subs: make(map[string]*Subscription[T]),
	}
}

// Subscription represents an active handler registration on a stream.
type Subscription[T any] struct {
	id     string
	fn     func(T)
	paused atomic.Bool
	stream *Stream[T]
}

// Subscribe registers a handler invoked on every emission.
// Panics if fn is nil.
func (s *Stream[T]) Subscribe(fn func(T)) *Subscription[T] {
	if fn == nil {
		panic("stream: handler cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription[T]{
		id:     fmt.Sprintf("sub-%s", uuid.New().String()[:8]),
		fn:     fn,
		stream: s,
	}
	s.subs[sub.id] = sub
	s.order = append(s.order, sub.id)
	return sub
}

// Emit delivers v to every active, unpaused subscription in subscription
// order. Handlers run on the calling goroutine; Emit returns after the last
// handler returns.
func (s *Stream[T]) Emit(v T) {
	s.mu.Lock()
	fns := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		sub, ok := s.subs[id]
		if !ok || sub.paused.Load() {
			continue
		}
		fns = append(fns, sub.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of active subscriptions.
func (s *Stream[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Unsubscribe removes the subscription. Safe to call more than once.
func (sub *Subscription[T]) Unsubscribe() {
	s := sub.stream
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub.id]; !ok {
		return
	}
	delete(s.subs, sub.id)
	for i, id := range s.order {
		if id == sub.id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Pause temporarily stops delivery to this subscription.
func (sub *Subscription[T]) Pause() {
	sub.paused.Store(true)
}

// Resume continues delivery after a pause.
func (sub *Subscription[T]) Resume() {
	sub.paused.Store(false)
}

// IsPaused returns true if the subscription is paused.
func (sub *Subscription[T]) IsPaused() bool {
	return sub.paused.Load()
}
