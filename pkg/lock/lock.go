// Package lock provides per-key mutual exclusion for booking mutations.
package lock

import (
	"fmt"
	"sync"
)

// KeyedMutex serializes critical sections by string key. Mutexes are
// created on first use and kept for the process lifetime: the key space
// (booking IDs, event/ticket pairs) is bounded by the working set.
type KeyedMutex struct {
	locks sync.Map // map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

// Lock acquires the mutex for key and returns it for deferred unlock:
//
//	mu := locks.Lock(key)
//	defer mu.Unlock()
func (m *KeyedMutex) Lock(key string) *sync.Mutex {
	actual, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu
}

// TicketKey builds the lock key for capacity check-and-append sections
func TicketKey(eventID, ticketID int64) string {
	return fmt.Sprintf("ticket:%d:%d", eventID, ticketID)
}

// BookingKey builds the lock key for cancel/check-in sections
func BookingKey(bookingID string) string {
	return "booking:" + bookingID
}
