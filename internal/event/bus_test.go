package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitReachesSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	bus.Emit(TypeDeletionMarked, "alice", map[string]string{"uid": "uid-1"})

	select {
	case e := <-ch:
		assert.Equal(t, TypeDeletionMarked, e.Type)
		assert.Equal(t, "alice", e.ActorID)
		assert.NotEmpty(t, e.ID)
		_, err := time.Parse(time.RFC3339Nano, e.Timestamp)
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, unsubscribe := bus.Subscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.Emit(TypeSweepCompleted, "system", nil)
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	_, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	// Overfill the subscriber buffer; publishes must return regardless.
	for i := 0; i < 150; i++ {
		bus.Emit(TypeDeletionDirect, "system", i)
	}
}
