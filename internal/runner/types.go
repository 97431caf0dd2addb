package runner

import (
	"time"

	"pipegen/internal/stats"
)

// Config describes one write run. It is not modified after the run starts.
type Config struct {
	Name      string        // FIFO path
	Duration  time.Duration // total run time
	Count     int           // bytes per write
	Delay     time.Duration // pause after each write
	ByteValue byte          // fill value of every payload byte

	// Core is the CPU index to pin to; nil leaves scheduling alone.
	Core *int

	Progress  bool
	OutPrefix string
}

// RunResult is what a finished (or aborted) run produced.
type RunResult struct {
	ID        string         `json:"id"`
	StartedAt time.Time      `json:"started_at"`
	Elapsed   time.Duration  `json:"elapsed"`
	Stats     stats.Snapshot `json:"stats"`
	Timeline  []stats.Bucket `json:"timeline"`
}
