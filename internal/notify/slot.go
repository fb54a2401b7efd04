// Package notify implements the single-slot status mailbox shown to the user.
package notify

import (
	"sync"

	"github.com/starford/orderlist/internal/models"
)

// Observer is called after every change of the slot, with the slot's lock
// held, so observers see changes in the order they were applied. ok is false
// when the slot was cleared. An observer must not call back into the slot.
type Observer func(n models.Notification, ok bool)

// Slot holds at most one notification. A new notification replaces any
// unacknowledged one; only Ack clears it.
type Slot struct {
	mu       sync.Mutex
	current  models.Notification
	set      bool
	observer Observer
}

// NewSlot returns an empty slot. observer may be nil.
func NewSlot(observer Observer) *Slot {
	return &Slot{observer: observer}
}

// Post stores n, overwriting the previous value.
func (s *Slot) Post(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current, s.set = n, true
	if s.observer != nil {
		s.observer(n, true)
	}
}

// Success posts a success notification.
func (s *Slot) Success(msg string) {
	s.Post(models.Notification{Message: msg, Kind: models.KindSuccess})
}

// Error posts an error notification.
func (s *Slot) Error(msg string) {
	s.Post(models.Notification{Message: msg, Kind: models.KindError})
}

// Current returns the pending notification, if any.
func (s *Slot) Current() (models.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.set
}

// Ack clears the slot. Acknowledging an empty slot is a no-op.
func (s *Slot) Ack() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return
	}
	s.current, s.set = models.Notification{}, false
	if s.observer != nil {
		s.observer(models.Notification{}, false)
	}
}
