// Package batch drives one transcoding run over an input directory: it
// classifies the files, fans them out to the pipeline pool, and reports.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gwlsn/reelshrink/internal/jobs"
	"github.com/gwlsn/reelshrink/internal/logger"
	"github.com/gwlsn/reelshrink/internal/naming"
	"github.com/gwlsn/reelshrink/internal/scan"
	"github.com/gwlsn/reelshrink/internal/store"
)

// ErrNoSupportedFiles is returned when the input directory holds no video
// the pipeline can read. No pool is started in that case.
var ErrNoSupportedFiles = errors.New("no supported video files")

// Runner executes batches. Prober and Encoder are required; Store is
// optional and disables run history when nil.
type Runner struct {
	Prober   jobs.Prober
	Encoder  jobs.Encoder
	Workers  int // pool size, already resolved against the CPU count
	Threads  int // ffmpeg -threads per encode
	Store    store.Store
	Reporter *Reporter
}

// Report is everything known about a finished run
type Report struct {
	RunID          string
	InputDir       string
	OutputDir      string
	Workers        int
	Threads        int
	Classification *scan.Classification
	Results        []jobs.Result // input order
	Summary        jobs.Summary
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Elapsed returns the wall-clock duration of the run
func (r *Report) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Run classifies inputDir, transcodes every supported file into outputDir
// and waits for all of them. Asset failures are reported in the Report,
// never returned; an error means the run could not start.
func (r *Runner) Run(ctx context.Context, inputDir, outputDir string) (*Report, error) {
	reporter := r.Reporter
	if reporter == nil {
		reporter = NewReporter(io.Discard)
	}

	class, err := scan.Classify(inputDir)
	if err != nil {
		return nil, err
	}
	reporter.Classification(class)

	if len(class.Supported) == 0 {
		return nil, ErrNoSupportedFiles
	}

	outAbs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", outputDir, err)
	}

	assets := BuildAssets(class.Supported)
	report := &Report{
		RunID:          uuid.NewString(),
		InputDir:       class.Dir,
		OutputDir:      outAbs,
		Workers:        jobs.ClampWorkerCount(r.Workers, len(assets)),
		Threads:        max(1, r.Threads),
		Classification: class,
		StartedAt:      time.Now(),
	}

	log := logger.With("run_id", report.RunID)
	log.Info("Batch started", "assets", len(assets), "workers", report.Workers, "threads", report.Threads)
	reporter.Start(report, len(assets))

	pipeline := jobs.NewPipeline(r.Prober, r.Encoder, outAbs, report.Threads)
	report.Results = jobs.RunAll(ctx, assets, report.Workers, pipeline)
	report.Summary = jobs.Summarize(report.Results)
	report.FinishedAt = time.Now()

	log.Info("Batch finished",
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed,
		"elapsed", report.Elapsed().Round(time.Millisecond))
	reporter.Summary(report)

	if r.Store != nil {
		if err := r.Store.SaveRun(report.run()); err != nil {
			// The batch itself finished; history is best effort.
			log.Error("Failed to save run history", "error", err)
		} else {
			log.Debug("Run history saved")
		}
	}

	return report, nil
}

// BuildAssets turns classified entries into pipeline assets with unique,
// normalized output names, preserving order.
func BuildAssets(entries []scan.Entry) []jobs.Asset {
	resolver := naming.NewResolver()
	assets := make([]jobs.Asset, 0, len(entries))
	for _, e := range entries {
		name := resolver.Reserve(e.Path, naming.Stem(e.Name))
		assets = append(assets, jobs.Asset{
			Path: e.Path,
			Name: name,
			Ext:  e.Ext,
			Size: e.Size,
		})
	}
	return assets
}

func (r *Report) run() *store.Run {
	return &store.Run{
		ID:         r.RunID,
		InputDir:   r.InputDir,
		OutputDir:  r.OutputDir,
		Workers:    r.Workers,
		Threads:    r.Threads,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Summary:    r.Summary,
		Results:    r.Results,
	}
}
