package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingWriter accepts ok writes, then fails every write after.
type failingWriter struct {
	ok     int
	writes int
	err    error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > w.ok {
		return 0, w.err
	}
	return len(p), nil
}

// shortWriter drops the last byte of every write.
type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return len(p) - 1, nil
}

func TestPayload(t *testing.T) {
	assert.Equal(t, []byte{7, 7, 7, 7}, Payload(4, 7))
	assert.Equal(t, []byte{0xff}, Payload(1, 0xff))
	assert.Empty(t, Payload(0, 1))
}

func TestRunZeroDurationWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(Config{Duration: 0, Count: 4, ByteValue: 7}, nil)

	res, err := r.Run(context.Background(), &buf)
	require.NoError(t, err)

	assert.Zero(t, buf.Len())
	assert.Zero(t, res.Stats.Writes)
	assert.Empty(t, res.Timeline)
	assert.NotEmpty(t, res.ID)
}

func TestRunWritesFullPayloads(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Duration:  100 * time.Millisecond,
		Count:     4,
		Delay:     10 * time.Millisecond,
		ByteValue: 7,
	}
	r := NewRunner(cfg, nil)

	res, err := r.Run(context.Background(), &buf)
	require.NoError(t, err)

	require.NotZero(t, res.Stats.Writes)
	assert.Equal(t, int(res.Stats.Writes)*4, buf.Len())
	assert.Equal(t, uint64(buf.Len()), res.Stats.Bytes)
	assert.Equal(t, bytes.Repeat([]byte{7}, buf.Len()), buf.Bytes())
	// one write per delay at most
	assert.LessOrEqual(t, res.Stats.Writes, uint64(11))
}

func TestRunHonoursDuration(t *testing.T) {
	cfg := Config{
		Duration: 150 * time.Millisecond,
		Count:    1,
		Delay:    20 * time.Millisecond,
	}
	r := NewRunner(cfg, nil)

	start := time.Now()
	res, err := r.Run(context.Background(), io.Discard)
	require.NoError(t, err)
	took := time.Since(start)

	assert.GreaterOrEqual(t, took, cfg.Duration)
	assert.Less(t, took, cfg.Duration+cfg.Delay+200*time.Millisecond)
	assert.GreaterOrEqual(t, res.Elapsed, cfg.Duration)
}

func TestRunZeroDelayWritesUntilBudget(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(Config{Duration: 20 * time.Millisecond, Count: 2, ByteValue: 1}, nil)

	res, err := r.Run(context.Background(), &buf)
	require.NoError(t, err)

	assert.Greater(t, res.Stats.Writes, uint64(1))
	assert.Equal(t, int(res.Stats.Writes)*2, buf.Len())
}

func TestRunStopsOnWriteError(t *testing.T) {
	boom := errors.New("broken pipe")
	w := &failingWriter{ok: 2, err: boom}
	r := NewRunner(Config{Duration: time.Minute, Count: 1}, nil)

	start := time.Now()
	res, err := r.Run(context.Background(), w)

	require.ErrorIs(t, err, boom)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 3, w.writes)
	assert.Equal(t, uint64(2), res.Stats.Writes)
}

func TestRunShortWriteIsFatal(t *testing.T) {
	r := NewRunner(Config{Duration: time.Minute, Count: 3}, nil)

	res, err := r.Run(context.Background(), shortWriter{})

	require.ErrorIs(t, err, io.ErrShortWrite)
	assert.Zero(t, res.Stats.Writes)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Config{Duration: time.Minute, Count: 1}, nil)
	_, err := r.Run(ctx, io.Discard)

	require.ErrorIs(t, err, context.Canceled)
}

func TestRunBlocksOnSlowReader(t *testing.T) {
	pr, pw := io.Pipe()
	defer pr.Close()

	go func() {
		buf := make([]byte, 1)
		for {
			time.Sleep(20 * time.Millisecond)
			if _, err := pr.Read(buf); err != nil {
				return
			}
		}
	}()

	r := NewRunner(Config{Duration: 150 * time.Millisecond, Count: 1}, nil)
	res, err := r.Run(context.Background(), pw)
	require.NoError(t, err)

	assert.NotZero(t, res.Stats.Writes)
	assert.GreaterOrEqual(t, res.Stats.MaxWriteUs, int64(10*time.Millisecond/time.Microsecond))
}

func TestRunReaderGoneFailsRun(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		buf := make([]byte, 1)
		pr.Read(buf)
		pr.Close()
	}()

	r := NewRunner(Config{Duration: time.Minute, Count: 1}, nil)
	res, err := r.Run(context.Background(), pw)

	require.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Equal(t, uint64(1), res.Stats.Writes)
}

func TestRunSendsProgress(t *testing.T) {
	updates := make(StatsUpdateChan, 16)
	r := NewRunner(Config{Duration: 500 * time.Millisecond, Count: 1, Delay: time.Millisecond}, updates)

	_, err := r.Run(context.Background(), io.Discard)
	require.NoError(t, err)

	select {
	case s := <-updates:
		assert.NotZero(t, s.Elapsed)
	default:
		t.Fatal("expected at least one progress update")
	}
}
