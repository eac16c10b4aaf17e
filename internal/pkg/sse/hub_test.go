package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesOnlyRecipient(t *testing.T) {
	hub := NewHub(4)

	alice, cleanupA := hub.Subscribe("alice")
	defer cleanupA()
	bob, cleanupB := hub.Subscribe("bob")
	defer cleanupB()

	hub.Publish(Event{UserID: "alice", Name: "notification", Data: "hi"})

	select {
	case ev := <-alice:
		assert.Equal(t, "hi", ev.Data)
	default:
		t.Fatal("alice did not receive the event")
	}

	select {
	case <-bob:
		t.Fatal("bob received an event addressed to alice")
	default:
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(1)
	ch, cleanup := hub.Subscribe("u")
	defer cleanup()

	hub.Publish(Event{UserID: "u", Data: 1})
	hub.Publish(Event{UserID: "u", Data: 2})

	ev := <-ch
	assert.Equal(t, 1, ev.Data)
	assert.Len(t, ch, 0)
}

func TestHubCleanupAndClose(t *testing.T) {
	hub := NewHub(1)
	_, cleanup := hub.Subscribe("u")
	ch2, _ := hub.Subscribe("u")
	assert.Equal(t, 2, hub.SubscriberCount("u"))

	cleanup()
	cleanup()
	assert.Equal(t, 1, hub.SubscriberCount("u"))

	hub.Close()
	_, open := <-ch2
	assert.False(t, open)

	late, lateCleanup := hub.Subscribe("u")
	lateCleanup()
	_, open = <-late
	require.False(t, open)
}
