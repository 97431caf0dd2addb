package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats holds the counters of a single write loop.
type Stats struct {
	Writes uint64
	Bytes  uint64

	// Time each write call spent blocked, in microseconds.
	// A draining reader keeps this near zero; a slow one pushes it up.
	WriteLatency *Histogram

	mu       sync.Mutex
	timeline []Bucket
}

// Bucket counts the writes completed during one second of the run.
type Bucket struct {
	Second int    `json:"second"`
	Writes uint64 `json:"writes"`
	Bytes  uint64 `json:"bytes"`
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Writes uint64 `json:"writes"`
	Bytes  uint64 `json:"bytes"`

	P50WriteUs  int64   `json:"p50_write_us"`
	P90WriteUs  int64   `json:"p90_write_us"`
	P99WriteUs  int64   `json:"p99_write_us"`
	MaxWriteUs  int64   `json:"max_write_us"`
	MeanWriteUs float64 `json:"mean_write_us"`
}

func NewStats() *Stats {
	return &Stats{
		WriteLatency: NewHistogram(),
	}
}

// AddWrite records a completed write of n bytes that finished at offset
// `at` from the start of the run and blocked for `blocked`.
func (s *Stats) AddWrite(at time.Duration, n int, blocked time.Duration) {
	atomic.AddUint64(&s.Writes, 1)
	atomic.AddUint64(&s.Bytes, uint64(n))
	s.WriteLatency.Record(blocked)

	sec := int(at / time.Second)
	if sec < 0 {
		sec = 0
	}

	s.mu.Lock()
	for len(s.timeline) <= sec {
		s.timeline = append(s.timeline, Bucket{Second: len(s.timeline)})
	}
	s.timeline[sec].Writes++
	s.timeline[sec].Bytes += uint64(n)
	s.mu.Unlock()
}

// Timeline returns a copy of the per-second buckets. Seconds without
// writes before the last active second are present with zero counts.
func (s *Stats) Timeline() []Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]Bucket, len(s.timeline))
	copy(res, s.timeline)
	return res
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Writes:      atomic.LoadUint64(&s.Writes),
		Bytes:       atomic.LoadUint64(&s.Bytes),
		P50WriteUs:  s.WriteLatency.ValueAtQuantile(50),
		P90WriteUs:  s.WriteLatency.ValueAtQuantile(90),
		P99WriteUs:  s.WriteLatency.ValueAtQuantile(99),
		MaxWriteUs:  s.WriteLatency.Max(),
		MeanWriteUs: s.WriteLatency.Mean(),
	}
}

// Rate returns writes per second over elapsed.
func (s Snapshot) Rate(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Writes) / elapsed.Seconds()
}

// Throughput returns bytes per second over elapsed.
func (s Snapshot) Throughput(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Bytes) / elapsed.Seconds()
}
