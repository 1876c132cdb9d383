package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func getTestdataPath() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata")
}

func TestParseProbeOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Metadata
	}{
		{
			"typical ffprobe output",
			`{"programs":[],"streams":[{"width":1920,"height":1080,"duration":"12.480000"}]}`,
			Metadata{Width: 1920, Height: 1080, Duration: 12.48},
		},
		{
			"numeric duration",
			`{"streams":[{"width":720,"height":1280,"duration":30}]}`,
			Metadata{Width: 720, Height: 1280, Duration: 30},
		},
		{
			"missing duration defaults to zero",
			`{"streams":[{"width":1080,"height":1920}]}`,
			Metadata{Width: 1080, Height: 1920},
		},
		{
			"missing everything",
			`{"streams":[{}]}`,
			Metadata{},
		},
		{
			"N/A duration",
			`{"streams":[{"width":640,"height":480,"duration":"N/A"}]}`,
			Metadata{Width: 640, Height: 480},
		},
		{
			"null fields",
			`{"streams":[{"width":null,"height":null,"duration":null}]}`,
			Metadata{},
		},
		{
			"only first stream used",
			`{"streams":[{"width":100,"height":200,"duration":"1.5"},{"width":1,"height":1,"duration":"9"}]}`,
			Metadata{Width: 100, Height: 200, Duration: 1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeOutput([]byte(tt.input))
			if err != nil {
				t.Fatalf("parseProbeOutput failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestParseProbeOutputErrors(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`{"streams":[]}`,
		`{}`,
		`{"streams":[{"width":1920`,
	}
	for _, in := range inputs {
		if _, err := parseProbeOutput([]byte(in)); err == nil {
			t.Errorf("parseProbeOutput(%q) expected error", in)
		}
	}
}

func TestProbeMissingBinary(t *testing.T) {
	prober := NewProber(filepath.Join(t.TempDir(), "no-such-ffprobe"))

	meta, ok := prober.Probe(context.Background(), "/nonexistent/file.mp4")
	if ok {
		t.Errorf("expected probe to be unavailable, got %+v", meta)
	}
	if meta != (Metadata{}) {
		t.Errorf("expected zero metadata, got %+v", meta)
	}
}

func TestProbeNonExistent(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	prober := NewProber("ffprobe")
	if _, ok := prober.Probe(context.Background(), "/nonexistent/file.mp4"); ok {
		t.Error("expected unavailable metadata for non-existent file")
	}
}

func TestProbe(t *testing.T) {
	testFile := filepath.Join(getTestdataPath(), "test_x264.mkv")

	// Skip if test file doesn't exist
	if _, err := os.Stat(testFile); os.IsNotExist(err) {
		t.Skipf("test file not found: %s", testFile)
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	prober := NewProber("ffprobe")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	meta, ok := prober.Probe(ctx, testFile)
	if !ok {
		t.Fatal("Probe returned unavailable metadata")
	}
	if meta.Width == 0 || meta.Height == 0 {
		t.Errorf("expected dimensions, got %+v", meta)
	}
	if meta.Duration <= 0 {
		t.Errorf("expected positive duration, got %v", meta.Duration)
	}
}
