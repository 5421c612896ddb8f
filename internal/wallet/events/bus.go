package events

import (
	"sync"
	"time"
)

// Type is the kind of a lifecycle event.
type Type string

const (
	// TypeConnectionStateChanged fires on every connection state transition.
	TypeConnectionStateChanged Type = "connection_state_changed"

	// TypeTransactionStateChanged fires on every transaction state transition.
	TypeTransactionStateChanged Type = "transaction_state_changed"

	// TypeMultiSigProgress fires when a signature is collected for an open
	// multi-signature record.
	TypeMultiSigProgress Type = "multisig_progress"
)

// Event is one connection- or transaction-state change notification.
type Event struct {
	Type      Type
	Timestamp time.Time

	// connection fields
	ProviderID      string
	ConnectionState string

	// transaction fields
	Fingerprint       string
	TransactionStatus string

	// multisig progress
	CollectedSignatures int
	RequiredSignatures  int

	// Err carries the classified error of an error transition, nil otherwise.
	Err error
}

// Callback handles one event. Delivery is synchronous; callbacks must be fast
// and hand longer work to their own goroutines.
type Callback func(Event)

// Bus delivers events to registered listeners. Subscribing returns an
// unsubscribe handle; there is no ambient global bus.
type Bus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]Callback
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[int]Callback)}
}

// Subscribe registers cb and returns a handle that removes it again.
// Unsubscribing twice is harmless.
func (b *Bus) Subscribe(cb Callback) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = cb
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
}

// Publish delivers e synchronously to all current subscribers. A zero
// timestamp is filled in.
func (b *Bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	callbacks := make([]Callback, 0, len(b.subscribers))
	for _, cb := range b.subscribers {
		callbacks = append(callbacks, cb)
	}
	b.mu.RUnlock()

	for _, cb := range callbacks {
		cb(e)
	}
}

// Reset drops all subscribers.
func (b *Bus) Reset() {
	b.mu.Lock()
	b.subscribers = make(map[int]Callback)
	b.mu.Unlock()
}
