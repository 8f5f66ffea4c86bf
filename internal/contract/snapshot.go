package contract

import "sync/atomic"

// Snapshot publishes the current contract to concurrent readers.
//
// The lifecycle writer builds a complete new contract value and swaps it
// in atomically; gate evaluations and status queries read whatever value
// is current and never observe a partially-merged contract.
type Snapshot struct {
	current atomic.Pointer[Contract]
}

// NewSnapshot returns an empty holder. Current returns nil until the
// first Publish.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Publish replaces the visible contract in one atomic store.
func (s *Snapshot) Publish(c *Contract) {
	s.current.Store(c)
}

// Current returns the last published contract, or nil before the first
// build. Callers must treat the returned value as immutable.
func (s *Snapshot) Current() *Contract {
	return s.current.Load()
}
