// Package fifo creates and opens the named pipe that a run writes into.
package fifo

import "errors"

// Mode is the permission set of FIFOs created by Ensure (owner rwx).
const Mode = 0o700

var (
	// ErrNotFIFO is returned when the path exists but is not a named pipe.
	ErrNotFIFO = errors.New("not a FIFO")

	ErrUnsupported = errors.New("FIFO creation is not supported on this platform")
)
