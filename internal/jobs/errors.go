package jobs

import (
	"errors"
	"fmt"

	"github.com/gwlsn/reelshrink/internal/ffmpeg"
	"github.com/gwlsn/reelshrink/internal/planner"
)

// Sentinel errors carried by failed results.
// These can be checked with errors.Is().
var (
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	ErrZeroDuration        = planner.ErrZeroDuration
	ErrMP4Encode           = errors.New("mp4 encode error")
	ErrMP4Missing          = errors.New("mp4 output missing")
	ErrWebMEncode          = errors.New("webm encode error")
	ErrCancelled           = errors.New("cancelled")
	ErrInternal            = errors.New("internal error")
)

// stderrLines is how much ffmpeg output a failure message keeps.
const stderrLines = 3

// encodeError wraps an encoder failure under sentinel, keeping the stderr tail.
func encodeError(sentinel, err error) error {
	var encErr *ffmpeg.EncodeError
	if errors.As(err, &encErr) {
		return fmt.Errorf("%w: %s", sentinel, encErr.Tail(stderrLines))
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

// panicError converts a recovered panic value into an internal error.
func panicError(v any) error {
	return fmt.Errorf("%w: panic: %v", ErrInternal, v)
}
