package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/rs/zerolog"

	"pipegen/internal/affinity"
	"pipegen/internal/report"
	"pipegen/internal/runner"
	"pipegen/internal/styles"
)

// Stage names the step of a run that failed.
type Stage string

const (
	StageAffinity Stage = "setting core affinity"
	StageOpen     Stage = "opening FIFO"
	StageRun      Stage = "running FIFO"
)

// Error is a fatal run error tagged with the stage it came from.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Deps are the side-effecting collaborators of Start.
type Deps struct {
	Pinner  affinity.Pinner
	Acquire func(path string) (io.WriteCloser, error)
	Out     io.Writer
	Log     zerolog.Logger
}

// Start pins (when asked), acquires the FIFO and runs the write loop on the
// calling goroutine, locked to its OS thread. The first error ends the run.
func Start(ctx context.Context, cfg runner.Config, deps Deps) (*runner.RunResult, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log := deps.Log

	if cfg.Core != nil {
		if err := deps.Pinner.Pin(*cfg.Core); err != nil {
			return nil, &Error{Stage: StageAffinity, Err: err}
		}
		log.Info().Int("core", *cfg.Core).Msg("Pinned to core")
	}

	pipe, err := deps.Acquire(cfg.Name)
	if err != nil {
		return nil, &Error{Stage: StageOpen, Err: err}
	}

	log.Info().Msgf("Running FIFO for %d seconds", int64(cfg.Duration/time.Second))

	var (
		updates runner.StatsUpdateChan
		done    = make(chan struct{})
		wg      sync.WaitGroup
	)
	if cfg.Progress {
		updates = make(runner.StatsUpdateChan, 16)
		wg.Add(1)
		go func() {
			defer wg.Done()
			monitor(deps.Out, cfg.Duration, updates, done)
		}()
	}

	r := runner.NewRunner(cfg, updates)
	res, runErr := r.Run(ctx, pipe)
	close(done)
	wg.Wait()

	closeErr := pipe.Close()
	if runErr != nil {
		return res, &Error{Stage: StageRun, Err: runErr}
	}
	if closeErr != nil {
		return res, &Error{Stage: StageRun, Err: closeErr}
	}

	printSummary(deps.Out, res)
	handleAutoReport(deps.Out, log, cfg, res)
	return res, nil
}

// monitor renders a progress line for every update until done is closed.
func monitor(out io.Writer, total time.Duration, updates runner.StatsUpdateChan, done <-chan struct{}) {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(24))
	printed := false

	for {
		select {
		case <-done:
			if printed {
				fmt.Fprintln(out)
			}
			return
		case s := <-updates:
			fmt.Fprintf(out, "\r%s | %s/%s | Writes: %d | Bytes: %d | P99 write: %dµs",
				bar.ViewAs(completion(s.Elapsed, total)),
				s.Elapsed.Round(time.Second), total,
				s.Writes, s.Bytes, s.P99WriteUs,
			)
			printed = true
		}
	}
}

func completion(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	pct := elapsed.Seconds() / total.Seconds()
	if pct > 1 {
		pct = 1
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

func printSummary(out io.Writer, res *runner.RunResult) {
	s := res.Stats
	rule := styles.Rule.Render(strings.Repeat("=", 60))
	const w = 14

	fmt.Fprintf(out, "\n%s\n%s\n", styles.Title.Render("FIFO RUN RESULTS"), rule)
	fmt.Fprintln(out, styles.Field("Run ID", w, res.ID))
	fmt.Fprintln(out, styles.Field("Elapsed", w, res.Elapsed.Round(time.Millisecond).String()))
	fmt.Fprintln(out, styles.Field("Writes", w, fmt.Sprintf("%d", s.Writes)))
	fmt.Fprintln(out, styles.Field("Bytes", w, fmt.Sprintf("%d", s.Bytes)))
	fmt.Fprintln(out, styles.Field("Write Rate", w, fmt.Sprintf("%.1f/s", s.Rate(res.Elapsed))))
	fmt.Fprintln(out, styles.Field("Throughput", w, formatBytes(s.Throughput(res.Elapsed))+"/s"))

	if s.Writes > 0 {
		fmt.Fprintf(out, "\n%s\n", styles.Title.Render("WRITE LATENCY (µs)"))
		fmt.Fprintln(out, styles.Field("P50", w, fmt.Sprintf("%d", s.P50WriteUs)))
		fmt.Fprintln(out, styles.Field("P90", w, fmt.Sprintf("%d", s.P90WriteUs)))
		fmt.Fprintln(out, styles.Field("P99", w, fmt.Sprintf("%d", s.P99WriteUs)))
		fmt.Fprintln(out, styles.Field("Max", w, fmt.Sprintf("%d", s.MaxWriteUs)))
	}

	if len(res.Timeline) > 1 {
		line := styles.NewSparkline(60, "Writes per second", styles.Warn)
		for _, b := range res.Timeline {
			line.Add(b.Writes)
		}
		fmt.Fprintf(out, "\n%s\n", line.View())
	}
	fmt.Fprintln(out, rule)
}

func handleAutoReport(out io.Writer, log zerolog.Logger, cfg runner.Config, res *runner.RunResult) {
	if cfg.OutPrefix == "" {
		return
	}

	files, err := report.Export(cfg, res, cfg.OutPrefix)
	if err != nil {
		log.Warn().Err(err).Str("prefix", cfg.OutPrefix).Msg("could not write reports")
		return
	}
	fmt.Fprintf(out, "Reports saved to %s\n", strings.Join(files, ", "))
}

func formatBytes(v float64) string {
	units := []string{"B", "KiB", "MiB", "GiB"}
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}
