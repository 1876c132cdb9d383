// Package planner turns probe metadata into encoder targets.
package planner

import (
	"errors"
	"math"
)

// Size budget for a 1080x1920 delivery file.
const (
	// MaxTargetSizeMB caps the payload regardless of clip length.
	MaxTargetSizeMB = 12.0

	// SizeBudgetMBPerSec scales the payload with duration below the cap.
	SizeBudgetMBPerSec = 0.2

	// MaxBitrate is the video bitrate ceiling in bits per second.
	MaxBitrate int64 = 3_000_000
)

// Output geometry. The source is scaled to cover the viewport, then center-cropped.
const (
	OutputWidth  = 1080
	OutputHeight = 1920
	CropFilter   = "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920"
)

// ErrZeroDuration means no bitrate can be derived because the clip has no length.
var ErrZeroDuration = errors.New("zero duration")

// EncodePlan holds the per-asset encoder targets. It is derived fresh for
// every asset and never shared.
type EncodePlan struct {
	TargetBitrate int64 // bits per second
	Threads       int
	Filter        string
}

// TargetSizeMB returns the size budget for a clip of durationSec seconds.
func TargetSizeMB(durationSec float64) float64 {
	return math.Min(MaxTargetSizeMB, durationSec*SizeBudgetMBPerSec)
}

// TargetBitrate maps a clip duration to a video bitrate that keeps the
// output within TargetSizeMB, capped at MaxBitrate.
func TargetBitrate(durationSec float64) (int64, error) {
	if durationSec <= 0 || math.IsNaN(durationSec) || math.IsInf(durationSec, 0) {
		return 0, ErrZeroDuration
	}

	sizeBits := TargetSizeMB(durationSec) * 8 * 1024 * 1024
	bitrate := int64(math.Floor(sizeBits / durationSec))
	if bitrate > MaxBitrate {
		bitrate = MaxBitrate
	}
	// Clips longer than ~3 years would floor to 0 bps.
	if bitrate < 1 {
		bitrate = 1
	}
	return bitrate, nil
}

// NewPlan builds the encode plan for a clip. threads below 1 are raised to 1.
func NewPlan(durationSec float64, threads int) (EncodePlan, error) {
	bitrate, err := TargetBitrate(durationSec)
	if err != nil {
		return EncodePlan{}, err
	}
	if threads < 1 {
		threads = 1
	}
	return EncodePlan{
		TargetBitrate: bitrate,
		Threads:       threads,
		Filter:        CropFilter,
	}, nil
}
