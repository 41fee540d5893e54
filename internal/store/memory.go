package store

import (
	"sync"
	"sync/atomic"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 16

// MemoryStore is an in-memory implementation of [Store].
//
// The current snapshot sits behind an atomic pointer, so Publish is a single
// pointer swap and Current never blocks on a writer.
//
// Subscribers receive snapshots via buffered channels. Sends are non-blocking;
// if a subscriber's buffer is full, the snapshot is dropped for that
// subscriber to prevent blocking the publisher.
type MemoryStore struct {
	current     atomic.Pointer[Snapshot]
	subscribers map[chan Snapshot]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a [MemoryStore] holding initial as its current
// snapshot.
func NewMemoryStore(initial Snapshot) *MemoryStore {
	m := &MemoryStore{
		subscribers: make(map[chan Snapshot]struct{}),
	}
	m.current.Store(&initial)
	return m
}

// Publish stores snapshot as the current value and notifies subscribers.
func (m *MemoryStore) Publish(snapshot Snapshot) {
	m.current.Store(&snapshot)
	m.notifySubscribers(snapshot)
}

// Current returns the latest published snapshot.
func (m *MemoryStore) Current() Snapshot {
	return *m.current.Load()
}

// Subscribe creates a new subscription.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Snapshot) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the snapshot to all active subscribers without
// blocking.
func (m *MemoryStore) notifySubscribers(snapshot Snapshot) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- snapshot:
		default:
			// subscriber is slow, drop the snapshot
		}
	}
}
