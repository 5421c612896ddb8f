package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversSynchronously(t *testing.T) {
	bus := NewBus()

	var got []Event
	unsubscribe := bus.Subscribe(func(e Event) {
		got = append(got, e)
	})
	defer unsubscribe()

	bus.Publish(Event{Type: TypeConnectionStateChanged, ConnectionState: "connecting"})
	bus.Publish(Event{Type: TypeConnectionStateChanged, ConnectionState: "connected"})

	assert.Len(t, got, 2)
	assert.Equal(t, "connecting", got[0].ConnectionState)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	unsubscribe := bus.Subscribe(func(Event) { count++ })

	bus.Publish(Event{Type: TypeTransactionStateChanged})
	unsubscribe()
	unsubscribe() // second call is a no-op
	bus.Publish(Event{Type: TypeTransactionStateChanged})

	assert.Equal(t, 1, count)
}

func TestBusReset(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.Subscribe(func(Event) { count++ })
	bus.Reset()
	bus.Publish(Event{Type: TypeMultiSigProgress})

	assert.Zero(t, count)
}
