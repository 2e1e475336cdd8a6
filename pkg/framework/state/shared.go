// Package state holds the per-instance values shared between the real-time
// processing path and the control-surface query path.
package state

import "sync"

// Mode is the instrument's operating mode selector.
type Mode uint8

// NumModes is the number of selectable modes (0 through 8).
const NumModes = 9

// Valid reports whether m is one of the selectable modes.
func (m Mode) Valid() bool {
	return m < NumModes
}

// Snapshot is a consistent copy of both shared values.
type Snapshot struct {
	Mode     Mode
	Position float64 // quarter notes
}

// Shared guards the mode and transport position of one plugin instance.
//
// Every method holds the lock only for a field copy. Nothing inside the
// critical section allocates or can panic.
//
// SetMode stores whatever it is given. Writers inside this module only ever
// pass table values; use Mode.Valid when accepting modes from elsewhere.
type Shared struct {
	mu       sync.Mutex
	mode     Mode
	position float64
}

// NewShared creates a holder with mode 0 and position 0.
func NewShared() *Shared {
	return &Shared{}
}

// SetMode overwrites the current mode.
func (s *Shared) SetMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// SetPosition overwrites the current transport position.
func (s *Shared) SetPosition(ppq float64) {
	s.mu.Lock()
	s.position = ppq
	s.mu.Unlock()
}

// Mode returns the current mode.
func (s *Shared) Mode() Mode {
	s.mu.Lock()
	m := s.mode
	s.mu.Unlock()
	return m
}

// Position returns the current transport position in quarter notes.
func (s *Shared) Position() float64 {
	s.mu.Lock()
	p := s.position
	s.mu.Unlock()
	return p
}

// Snapshot returns mode and position read under a single lock acquisition.
func (s *Shared) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{Mode: s.mode, Position: s.position}
	s.mu.Unlock()
	return snap
}
