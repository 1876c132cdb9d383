package batch

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gwlsn/reelshrink/internal/scan"
	"github.com/gwlsn/reelshrink/internal/store"
)

// Reporter prints the human-readable console report. It is not meant to
// be parsed.
type Reporter struct {
	w io.Writer
}

// NewReporter writes the report to w
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// Classification prints the supported files per extension and every ignored entry.
func (r *Reporter) Classification(c *scan.Classification) {
	r.printf("Scanned %s: %d entries, %d supported\n", c.Dir, c.Total(), len(c.Supported))

	counts := c.ByExtension()
	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		r.printf("  %-6s %d\n", ext, counts[ext])
	}

	if len(c.Unsupported) > 0 {
		r.printf("Ignored %d unsupported:\n", len(c.Unsupported))
		for _, e := range c.Unsupported {
			r.printf("  - %s\n", e.Name)
		}
	}
	if len(c.Supported) == 0 {
		r.printf("Nothing to do.\n")
	}
}

// Start announces the pool before any work begins.
func (r *Reporter) Start(rep *Report, assets int) {
	r.printf("\nConverting %d file(s) with %d worker(s), %d ffmpeg thread(s) each\n", assets, rep.Workers, rep.Threads)
	r.printf("Output: %s\n", rep.OutputDir)
	r.printf("Run ID: %s\n\n", rep.RunID)
}

// Summary prints per-file sizes, the failures and the batch totals.
func (r *Reporter) Summary(rep *Report) {
	s := rep.Summary

	r.printf("\n=== Summary ===\n")
	for _, res := range rep.Results {
		if !res.OK() {
			continue
		}
		retry := ""
		if res.WebMAttempts > 1 {
			retry = " (re-encoded)"
		}
		r.printf("  %s -> %s: %.2fMB, MP4 %.2fMB (%.1f%%), WebM %.2fMB (%.1f%%)%s\n",
			res.Filename, res.Name,
			res.OriginalMB(), res.MP4MB(), res.MP4Ratio(), res.WebMMB(), res.WebMRatio(), retry)
	}

	r.printf("Converted: %d/%d\n", s.Succeeded, s.Total)
	if s.Failed > 0 {
		r.printf("Failed: %d\n", s.Failed)
		for _, f := range s.Failures {
			r.printf("  - %s: %s\n", f.Filename, f.Error)
		}
	}

	if s.Succeeded > 0 {
		r.printf("\nTotal sizes:\n")
		r.printf("  Original: %.2fMB (%s)\n", s.OriginalMB(), humanize.IBytes(uint64(s.OriginalSize)))
		r.printf("  MP4: %.2fMB (ratio: %.1f%%)\n", s.MP4MB(), s.MP4Ratio())
		r.printf("  WebM: %.2fMB (ratio: %.1f%%)\n", s.WebMMB(), s.WebMRatio())
		if s.WebMRetries > 0 {
			r.printf("  WebM re-encoded at lower bitrate: %d\n", s.WebMRetries)
		}
	}

	r.printf("Elapsed: %s\n", rep.Elapsed().Round(time.Second))
}

// History prints past runs, newest first.
func (r *Reporter) History(runs []*store.Run) {
	if len(runs) == 0 {
		r.printf("No recorded runs.\n")
		return
	}
	for _, run := range runs {
		s := run.Summary
		r.printf("%s  %s  %d/%d converted  %s -> %s  MP4 %.1f%%  WebM %.1f%%  (%s)\n",
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.ID, s.Succeeded, s.Total,
			humanize.IBytes(uint64(s.OriginalSize)), humanize.IBytes(uint64(s.MP4Size+s.WebMSize)),
			s.MP4Ratio(), s.WebMRatio(),
			humanize.Time(run.StartedAt))
	}
}
