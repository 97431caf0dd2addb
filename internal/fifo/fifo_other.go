//go:build !unix

package fifo

import (
	"os"

	"github.com/rs/zerolog"
)

// Named pipes (FIFOs) are a Unix-specific feature.
func Ensure(path string, log zerolog.Logger) (bool, error) {
	return false, ErrUnsupported
}

func Acquire(path string, log zerolog.Logger) (*os.File, error) {
	return nil, ErrUnsupported
}
