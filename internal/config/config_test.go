package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def := DefaultConfig()
	if *cfg != *def {
		t.Errorf("expected defaults %+v, got %+v", def, cfg)
	}
	if cfg.InputDir != "videos_input" || cfg.OutputDir != "videos_output" {
		t.Errorf("unexpected default dirs %s, %s", cfg.InputDir, cfg.OutputDir)
	}
}

func TestLoadAppliesDefaultsForEmptyValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
input_dir: /data/in
workers: -2
encoder_threads: 3
encode_timeout: 45m
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.InputDir != "/data/in" {
		t.Errorf("expected input_dir from file, got %s", cfg.InputDir)
	}
	if cfg.OutputDir != "videos_output" || cfg.FFmpegPath != "ffmpeg" || cfg.FFprobePath != "ffprobe" || cfg.LogLevel != "info" {
		t.Errorf("expected defaults for empty values, got %+v", cfg)
	}
	if cfg.Workers != 0 {
		t.Errorf("negative workers should reset to auto, got %d", cfg.Workers)
	}
	if cfg.EncoderThreads != 3 {
		t.Errorf("expected 3 threads, got %d", cfg.EncoderThreads)
	}

	timeout, err := cfg.Timeout()
	if err != nil || timeout != 45*time.Minute {
		t.Errorf("expected 45m timeout, got %v (err %v)", timeout, err)
	}
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "workers: [1, 2\n"},
		{"wrong type", "workers: many\n"},
		{"bad timeout", "encode_timeout: soon\n"},
		{"negative timeout", "encode_timeout: -5m\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.EncodeTimeout = "1h"
	cfg.HistoryDB = "/var/lib/reelshrink/history.db"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestTimeout(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
		wantErr  bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"90s", 90 * time.Second, false},
		{"2h", 2 * time.Hour, false},
		{"-1s", 0, true},
		{"ten minutes", 0, true},
	}

	for _, tt := range tests {
		cfg := &Config{EncodeTimeout: tt.value}
		got, err := cfg.Timeout()
		if (err != nil) != tt.wantErr {
			t.Errorf("Timeout(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("Timeout(%q) = %v, expected %v", tt.value, got, tt.expected)
		}
	}
}

func TestConcurrency(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		threads         int
		cpus            int
		expectedWorkers int
		expectedThreads int
	}{
		{"auto on 8 cores", 0, 0, 8, 7, 4},
		{"auto on 1 core", 0, 0, 1, 1, 1},
		{"explicit values win", 2, 6, 8, 2, 6},
		{"explicit workers only", 3, 0, 4, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Workers: tt.workers, EncoderThreads: tt.threads}
			w, th := cfg.Concurrency(tt.cpus)
			if w != tt.expectedWorkers || th != tt.expectedThreads {
				t.Errorf("Concurrency(%d) = (%d, %d), expected (%d, %d)",
					tt.cpus, w, th, tt.expectedWorkers, tt.expectedThreads)
			}
		})
	}
}
