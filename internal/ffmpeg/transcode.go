package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gwlsn/reelshrink/internal/logger"
)

// EncodeError represents an ffmpeg failure with the captured diagnostics
type EncodeError struct {
	Profile Profile
	Err     error
	Stderr  string // Full stderr output
}

func (e *EncodeError) Error() string {
	return e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Tail returns the last n non-empty stderr lines joined by " | ", or the
// underlying error text when ffmpeg printed nothing.
func (e *EncodeError) Tail(n int) string {
	return StderrTail(e.Stderr, n, e.Err)
}

// StderrTail trims stderr to its last n lines for logs and result messages.
func StderrTail(stderr string, n int, fallback error) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		if fallback != nil {
			return fallback.Error()
		}
		return ""
	}
	lines := strings.Split(stderr, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, " | ")
}

// Transcoder wraps ffmpeg transcoding functionality
type Transcoder struct {
	ffmpegPath string
	timeout    time.Duration // 0 = no limit
}

// NewTranscoder creates a new Transcoder with the given ffmpeg path.
// timeout bounds each invocation; 0 disables the limit.
func NewTranscoder(ffmpegPath string, timeout time.Duration) *Transcoder {
	return &Transcoder{ffmpegPath: ffmpegPath, timeout: timeout}
}

// Encode runs one ffmpeg invocation and blocks until it exits. On failure
// the partial output file is removed and an *EncodeError is returned.
func (t *Transcoder) Encode(ctx context.Context, job EncodeJob) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.ffmpegPath, job.Args...)

	logger.Debug("FFmpeg command", "profile", job.Profile, "args", strings.Join(job.Args, " "))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Run(); err != nil {
		// Clean up partial output file
		os.Remove(job.Output)

		encErr := &EncodeError{
			Profile: job.Profile,
			Err:     fmt.Errorf("ffmpeg failed: %w", err),
			Stderr:  stderr.String(),
		}
		if ctx.Err() == context.DeadlineExceeded {
			encErr.Err = fmt.Errorf("ffmpeg timed out after %v: %w", t.timeout, err)
		}
		logger.Error("FFmpeg failed", "profile", job.Profile, "error", err, "stderr", encErr.Tail(5))
		return encErr
	}

	logger.Debug("FFmpeg finished", "profile", job.Profile, "output", job.Output, "elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}
