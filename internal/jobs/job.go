package jobs

import (
	"path/filepath"
)

// Stage is a step of the per-asset pipeline
type Stage string

const (
	StageProbing        Stage = "probing"
	StagePlanning       Stage = "planning"
	StageEncodingMP4    Stage = "encoding_mp4"
	StageEncodingWebM   Stage = "encoding_webm"
	StageComparing      Stage = "comparing"
	StageReencodingWebM Stage = "reencoding_webm"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// Status is the outcome of an asset
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Asset is one input file scheduled for transcoding
type Asset struct {
	Path string `json:"path"` // absolute input path
	Name string `json:"name"` // unique normalized output base name
	Ext  string `json:"ext"`
	Size int64  `json:"size"`
}

// Filename returns the input file's base name
func (a Asset) Filename() string {
	return filepath.Base(a.Path)
}

// Result is the outcome of processing one Asset
type Result struct {
	Filename     string  `json:"filename"`
	Source       string  `json:"source"`
	Name         string  `json:"name"`
	Status       Status  `json:"status"`
	Stage        Stage   `json:"stage"` // last stage reached
	OriginalSize int64   `json:"original_size"`
	MP4Size      int64   `json:"mp4_size,omitempty"`
	WebMSize     int64   `json:"webm_size,omitempty"`
	Duration     float64 `json:"duration,omitempty"` // source seconds
	WebMAttempts int     `json:"webm_attempts"`
	Error        string  `json:"error,omitempty"`
	Cause        error   `json:"-"`
}

const bytesPerMB = 1024 * 1024

func toMB(n int64) float64 {
	return float64(n) / bytesPerMB
}

// OK returns true for a successful result
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

func (r Result) OriginalMB() float64 { return toMB(r.OriginalSize) }
func (r Result) MP4MB() float64      { return toMB(r.MP4Size) }
func (r Result) WebMMB() float64     { return toMB(r.WebMSize) }

// MP4Ratio is the MP4 size as a percentage of the original.
func (r Result) MP4Ratio() float64 {
	return percent(r.MP4Size, r.OriginalSize)
}

// WebMRatio is the WebM size as a percentage of the original.
func (r Result) WebMRatio() float64 {
	return percent(r.WebMSize, r.OriginalSize)
}

func percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func newResult(asset Asset) Result {
	return Result{
		Filename:     asset.Filename(),
		Source:       asset.Path,
		Name:         asset.Name,
		Status:       StatusFailed,
		Stage:        StageProbing,
		OriginalSize: asset.Size,
	}
}

// fail marks r as failed with cause, which should wrap a package sentinel.
func (r Result) fail(cause error) Result {
	r.Status = StatusFailed
	r.Error = cause.Error()
	r.Cause = cause
	return r
}
