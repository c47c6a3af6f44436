package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdateHub_BroadcastDoesNotWaitForStalledListener(t *testing.T) {
	hub := NewUpdateHub()
	stalled := &updateListener{send: make(chan []byte, 1)}
	hub.add(stalled)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Broadcast()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a listener that is not reading")
	}
	assert.Len(t, stalled.send, 1)
	assert.Equal(t, UpdateEvent, string(<-stalled.send))
}

func TestUpdateHub_RemoveIsIdempotent(t *testing.T) {
	hub := NewUpdateHub()
	l := &updateListener{send: make(chan []byte, 1)}
	hub.add(l)

	hub.remove(l)
	assert.NotPanics(t, func() { hub.remove(l) })
	assert.Equal(t, 0, hub.Count())

	_, open := <-l.send
	assert.False(t, open)
}
