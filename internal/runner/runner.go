package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"pipegen/internal/stats"

	"github.com/google/uuid"
)

// StatsSnapshot is sent over the progress channel
type StatsSnapshot struct {
	Elapsed time.Duration
	stats.Snapshot
}

// StatsUpdateChan is the channel type
type StatsUpdateChan chan StatsSnapshot

type Runner struct {
	Cfg   Config
	Stats *stats.Stats

	// Progress channel, nil when nobody is listening
	Updates StatsUpdateChan

	payload []byte
	start   time.Time
}

// NewRunner prepares a runner for cfg. updates may be nil.
func NewRunner(cfg Config, updates StatsUpdateChan) *Runner {
	return &Runner{
		Cfg:     cfg,
		Stats:   stats.NewStats(),
		Updates: updates,
		payload: Payload(cfg.Count, cfg.ByteValue),
	}
}

// Payload returns count bytes, each equal to b.
func Payload(count int, b byte) []byte {
	if count <= 0 {
		return []byte{}
	}
	return bytes.Repeat([]byte{b}, count)
}

// StartTickLoop starts a goroutine that pushes stats updates
func (r *Runner) StartTickLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sendUpdate()
			}
		}
	}()
}

func (r *Runner) sendUpdate() {
	s := StatsSnapshot{
		Elapsed:  time.Since(r.start),
		Snapshot: r.Stats.Snapshot(),
	}

	// Non-blocking send
	select {
	case r.Updates <- s:
	default:
		// Drop update if channel full
	}
}

// Run writes the payload to w every Delay until Duration has elapsed.
// The budget is checked before each write against the monotonic clock.
// The first failed or short write ends the run; the result still
// describes everything written up to that point.
func (r *Runner) Run(ctx context.Context, w io.Writer) (*RunResult, error) {
	r.start = time.Now()

	if r.Updates != nil {
		tickCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		r.StartTickLoop(tickCtx, 200*time.Millisecond)
	}

	err := r.loop(ctx, w)
	return r.result(), err
}

func (r *Runner) loop(ctx context.Context, w io.Writer) error {
	for time.Since(r.start) < r.Cfg.Duration {
		if err := ctx.Err(); err != nil {
			return err
		}

		t0 := time.Now()
		n, err := w.Write(r.payload)
		if err == nil && n < len(r.payload) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return fmt.Errorf("write %d bytes: %w", len(r.payload), err)
		}
		done := time.Now()
		r.Stats.AddWrite(done.Sub(r.start), n, done.Sub(t0))

		if r.Cfg.Delay > 0 {
			time.Sleep(r.Cfg.Delay)
		}
	}
	return nil
}

func (r *Runner) result() *RunResult {
	return &RunResult{
		ID:        uuid.New().String(),
		StartedAt: r.start,
		Elapsed:   time.Since(r.start),
		Stats:     r.Stats.Snapshot(),
		Timeline:  r.Stats.Timeline(),
	}
}
