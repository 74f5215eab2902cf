package storefront

import "sync"

// Sequencer hands out increasing request numbers per panel so a response
// can be dropped when a newer request for the same panel was dispatched
// after it.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// NewSequencer returns an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next records a new dispatch for panel and returns its number.
func (s *Sequencer) Next(panel string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[panel]++
	return s.latest[panel]
}

// Current reports whether seq is still the latest dispatch for panel.
func (s *Sequencer) Current(panel string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[panel] == seq
}
