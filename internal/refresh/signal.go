// Package refresh provides the invalidation signal for the todo list view.
package refresh

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Signal is a versioned invalidation counter for the list view. Versions are
// only comparable within one epoch; a new Signal, as after a server restart,
// starts a new epoch at version zero.
type Signal struct {
	epoch   string
	version atomic.Uint64
}

// New creates a signal with a fresh epoch.
func New() *Signal {
	return &Signal{epoch: uuid.NewString()}
}

// Epoch identifies this signal's version sequence.
func (s *Signal) Epoch() string {
	return s.epoch
}

// Invalidate bumps the version.
func (s *Signal) Invalidate() {
	s.version.Add(1)
}

// Version returns the current version.
func (s *Signal) Version() uint64 {
	return s.version.Load()
}
