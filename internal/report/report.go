// Package report writes the optional run reports selected with --out.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"pipegen/internal/runner"
	"pipegen/internal/stats"
)

// Summary is the JSON document written to <prefix>_summary.json.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartedAt time.Time `json:"started_at"`

	DurationSec float64 `json:"duration_sec"`
	ElapsedSec  float64 `json:"elapsed_sec"`
	Count       int     `json:"count"`
	DelayUs     int64   `json:"delay_us"`
	ByteValue   byte    `json:"byte_value"`
	Core        *int    `json:"core,omitempty"`

	WritesPerSec float64 `json:"writes_per_sec"`
	BytesPerSec  float64 `json:"bytes_per_sec"`

	stats.Snapshot
}

// NewSummary combines the run's configuration with its result.
func NewSummary(cfg runner.Config, res *runner.RunResult) Summary {
	return Summary{
		ID:           res.ID,
		Name:         cfg.Name,
		StartedAt:    res.StartedAt,
		DurationSec:  cfg.Duration.Seconds(),
		ElapsedSec:   res.Elapsed.Seconds(),
		Count:        cfg.Count,
		DelayUs:      cfg.Delay.Microseconds(),
		ByteValue:    cfg.ByteValue,
		Core:         cfg.Core,
		WritesPerSec: res.Stats.Rate(res.Elapsed),
		BytesPerSec:  res.Stats.Throughput(res.Elapsed),
		Snapshot:     res.Stats,
	}
}

// ExportSummary writes the JSON summary to filename.
func ExportSummary(cfg runner.Config, res *runner.RunResult, filename string) error {
	data, err := json.MarshalIndent(NewSummary(cfg, res), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// ExportTimeline writes one CSV row per second of the run.
// Schema: second,writes,bytes
func ExportTimeline(timeline []stats.Bucket, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"second", "writes", "bytes"}); err != nil {
		return err
	}
	for _, b := range timeline {
		record := []string{
			strconv.Itoa(b.Second),
			strconv.FormatUint(b.Writes, 10),
			strconv.FormatUint(b.Bytes, 10),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// Export writes both reports next to prefix and returns their paths.
func Export(cfg runner.Config, res *runner.RunResult, prefix string) ([]string, error) {
	summary := prefix + "_summary.json"
	timeline := prefix + "_timeline.csv"

	if err := ExportSummary(cfg, res, summary); err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	if err := ExportTimeline(res.Timeline, timeline); err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	return []string{summary, timeline}, nil
}
