package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gwlsn/reelshrink/internal/logger"
)

// Metadata is what the pipeline needs to know about a source video.
type Metadata struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Duration float64 `json:"duration"` // seconds
}

// ffprobeOutput represents the JSON output from ffprobe
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Width    flexNumber `json:"width"`
	Height   flexNumber `json:"height"`
	Duration flexNumber `json:"duration"`
}

// flexNumber accepts a JSON number or a numeric string. ffprobe prints
// dimensions as numbers and durations as strings.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	*n = flexNumber(strings.Trim(string(b), `"`))
	return nil
}

// float returns the value, or 0 if it is missing, unparseable or negative.
func (n flexNumber) float() float64 {
	if n == "" {
		return 0
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func (n flexNumber) int() int {
	return int(n.float())
}

var errNoVideoStream = errors.New("no video stream")

// Prober wraps ffprobe functionality
type Prober struct {
	ffprobePath string
}

// NewProber creates a new Prober with the given ffprobe path
func NewProber(ffprobePath string) *Prober {
	return &Prober{ffprobePath: ffprobePath}
}

// Probe returns the first video stream's dimensions and duration.
// Any failure yields ok == false; the reason is only logged, never returned,
// so one unreadable file cannot take down a batch.
func (p *Prober) Probe(ctx context.Context, path string) (Metadata, bool) {
	meta, err := p.probe(ctx, path)
	if err != nil {
		logger.Debug("Probe failed", "file", path, "error", err)
		return Metadata{}, false
	}
	return meta, true
}

func (p *Prober) probe(ctx context.Context, path string) (Metadata, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,duration",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Metadata{}, fmt.Errorf("ffprobe failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Metadata{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeOutput(output)
}

// parseProbeOutput decodes ffprobe JSON. Missing numeric fields become 0;
// a zero duration is left for the planner to reject.
func parseProbeOutput(data []byte) (Metadata, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return Metadata{}, errNoVideoStream
	}

	s := out.Streams[0]
	return Metadata{
		Width:    s.Width.int(),
		Height:   s.Height.int(),
		Duration: s.Duration.float(),
	}, nil
}
