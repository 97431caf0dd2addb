package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram is a thread-safe wrapper around hdrhistogram.
// Values are microseconds.
type Histogram struct {
	hist *hdrhistogram.Histogram
	mu   sync.Mutex
}

func NewHistogram() *Histogram {
	// 1us to 10min, 3 significant figures. A write into a full pipe can
	// block for as long as the reader stalls.
	h := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)
	return &Histogram{hist: h}
}

// Record records d, clamped to the trackable range.
func (h *Histogram) Record(d time.Duration) error {
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if max := h.hist.HighestTrackableValue(); us > max {
		us = max
	}
	return h.hist.RecordValue(us)
}

func (h *Histogram) ValueAtQuantile(q float64) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.ValueAtQuantile(q)
}

func (h *Histogram) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.Mean()
}

func (h *Histogram) Max() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.Max()
}

func (h *Histogram) TotalCount() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.TotalCount()
}
