// Package affinity restricts the process to a single CPU core.
//
// Pinning is a one-shot, process-wide side effect: there is no way to undo
// it for the rest of the run.
package affinity

import "errors"

var (
	ErrCoreNotFound = errors.New("core not found")
	ErrUnsupported  = errors.New("CPU affinity is not supported on this platform")
)

// Pinner restricts scheduling of the current process to one core.
type Pinner interface {
	Pin(core int) error
}

// Binder is the Pinner backed by the scheduler affinity syscalls.
type Binder struct{}

func (Binder) Pin(core int) error {
	return Pin(core)
}
