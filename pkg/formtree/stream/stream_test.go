package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStream_EmitDeliversInOrder verifies synchronous delivery in
// subscription order.
func TestStream_EmitDeliversInOrder(t *testing.T) {
	s := New[int]()

	var got []string
	s.Subscribe(func(v int) { got = append(got, "first") })
	s.Subscribe(func(v int) { got = append(got, "second") })

	s.Emit(1)

	assert.Equal(t, []string{"first", "second"}, got)
}

// TestStream_EmitValue verifies the value reaches every handler.
func TestStream_EmitValue(t *testing.T) {
	s := New[string]()

	var a, b string
	s.Subscribe(func(v string) { a = v })
	s.Subscribe(func(v string) { b = v })

	s.Emit("hello")

	assert.Equal(t, "hello", a)
	assert.Equal(t, "hello", b)
}

// TestStream_EmitNoSubscribers verifies emitting into the void is safe.
func TestStream_EmitNoSubscribers(t *testing.T) {
	s := New[int]()
	assert.NotPanics(t, func() { s.Emit(1) })
}

// TestStream_Unsubscribe verifies a removed handler no longer fires.
func TestStream_Unsubscribe(t *testing.T) {
	s := New[int]()

	var count int
	sub := s.Subscribe(func(int) { count++ })

	s.Emit(1)
	sub.Unsubscribe()
	s.Emit(2)

	assert.Equal(t, 1, count)
	assert.Zero(t, s.Len())
}

// TestStream_Unsubscribe_Idempotent verifies double unsubscribe is safe.
func TestStream_Unsubscribe_Idempotent(t *testing.T) {
	s := New[int]()
	sub := s.Subscribe(func(int) {})

	sub.Unsubscribe()
	assert.NotPanics(t, sub.Unsubscribe)
}

// TestStream_PauseResume verifies paused subscriptions skip delivery
// without losing their slot.
func TestStream_PauseResume(t *testing.T) {
	s := New[int]()

	var got []int
	sub := s.Subscribe(func(v int) { got = append(got, v) })

	s.Emit(1)
	sub.Pause()
	assert.True(t, sub.IsPaused())
	s.Emit(2)
	sub.Resume()
	assert.False(t, sub.IsPaused())
	s.Emit(3)

	assert.Equal(t, []int{1, 3}, got)
	assert.Equal(t, 1, s.Len(), "paused subscriptions stay registered")
}

// TestStream_SubscribeNil_Panics verifies the nil-handler contract.
func TestStream_SubscribeNil_Panics(t *testing.T) {
	s := New[int]()
	assert.PanicsWithValue(t, "stream: handler cannot be nil", func() {
		s.Subscribe(nil)
	})
}

// TestStream_UnsubscribeDuringEmit verifies a handler may remove itself
// mid-delivery.
func TestStream_UnsubscribeDuringEmit(t *testing.T) {
	s := New[int]()

	var count int
	var sub *Subscription[int]
	sub = s.Subscribe(func(int) {
		count++
		sub.Unsubscribe()
	})

	s.Emit(1)
	s.Emit(2)

	assert.Equal(t, 1, count)
}
