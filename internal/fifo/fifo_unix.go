//go:build unix

package fifo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// Ensure makes sure a FIFO exists at path, creating it with Mode when
// nothing is there. An existing FIFO is reused as is; any other kind of
// node is rejected with ErrNotFIFO.
func Ensure(path string, log zerolog.Logger) (created bool, err error) {
	fi, err := os.Stat(path)
	switch {
	case err == nil:
		if fi.Mode()&fs.ModeNamedPipe == 0 {
			return false, fmt.Errorf("%s is a %s: %w", path, describe(fi.Mode()), ErrNotFIFO)
		}
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		log.Info().Str("path", path).Msg("FIFO does not exist, creating it")
		if err := unix.Mkfifo(path, Mode); err != nil {
			return false, &fs.PathError{Op: "mkfifo", Path: path, Err: err}
		}
		return true, nil
	default:
		return false, err
	}
}

// Acquire ensures the FIFO exists and opens it write-only. The open blocks
// until some other process opens the same path for reading.
func Acquire(path string, log zerolog.Logger) (*os.File, error) {
	if _, err := Ensure(path, log); err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Msgf("Opening FIFO: %s", path)
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", path).Msg("reader attached")
	return f, nil
}

func describe(m fs.FileMode) string {
	switch {
	case m.IsDir():
		return "directory"
	case m.IsRegular():
		return "regular file"
	case m&fs.ModeSocket != 0:
		return "socket"
	case m&fs.ModeCharDevice != 0:
		return "character device"
	case m&fs.ModeDevice != 0:
		return "block device"
	default:
		return m.Type().String()
	}
}
