package frame

import "sync"

// Slot is a single-slot, most-recent-wins mailbox between the capture loop and
// the analysis worker. Publish overwrites unconditionally; frames that are never
// taken are silently dropped. That loss is the backpressure policy: the analysis
// worker always sees the freshest frame, and memory stays bounded at one frame.
type Slot struct {
	mu     sync.Mutex
	frame  Frame
	filled bool
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Publish replaces the slot contents with f. O(1), never blocks on the reader.
func (s *Slot) Publish(f Frame) {
	s.mu.Lock()
	s.frame = f
	s.filled = true
	s.mu.Unlock()
}

// TakeLatest returns a copy of the most recently published frame.
// ok is false if nothing has been published yet. The copy means the caller owns
// the returned frame outright; the slot may be overwritten immediately after.
func (s *Slot) TakeLatest() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.filled {
		return Frame{}, false
	}
	return s.frame.Clone(), true
}
