package system

import (
	"errors"
	"fmt"
)

var (
	// ErrUnbound is returned by setters when the system has no store.
	ErrUnbound = errors.New("system: not bound to a store")

	// ErrNotList is returned by SetAt when the stored value is not a list.
	ErrNotList = errors.New("system: value is not a list")

	// ErrIndex is returned by SetAt for a negative index.
	ErrIndex = errors.New("system: index out of range")
)

// ShrinkError is the panic value raised when an array setter would store
// fewer entries than are already stored. It marks a programming error:
// arrays such as unlock flags and best scores only ever grow.
type ShrinkError struct {
	Key    string
	Stored int
	New    int
}

func (e *ShrinkError) Error() string {
	return fmt.Sprintf("system: array %q would shrink from %d to %d entries", e.Key, e.Stored, e.New)
}
