package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gwlsn/reelshrink/internal/jobs"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// InputDir is the directory scanned (non-recursively) for source videos
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the mp4/ and webm/ subdirectories
	OutputDir string `yaml:"output_dir"`

	// Workers is the number of concurrent transcodes (0 = CPU count - 1)
	Workers int `yaml:"workers"`

	// EncoderThreads is passed to ffmpeg as -threads (0 = CPU count / 2)
	EncoderThreads int `yaml:"encoder_threads"`

	// FFmpegPath is the path to ffmpeg binary (default: "ffmpeg")
	FFmpegPath string `yaml:"ffmpeg_path"`

	// FFprobePath is the path to ffprobe binary (default: "ffprobe")
	FFprobePath string `yaml:"ffprobe_path"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// EncodeTimeout bounds a single ffmpeg invocation, e.g. "30m".
	// Empty or "0" means no limit.
	EncodeTimeout string `yaml:"encode_timeout"`

	// HistoryDB is the SQLite file where finished runs are recorded.
	// Empty disables run history.
	HistoryDB string `yaml:"history_db"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		InputDir:    "videos_input",
		OutputDir:   "videos_output",
		Workers:     0, // auto
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		LogLevel:    "info",
	}
}

// Load reads config from a YAML file, applying defaults for missing values
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file - use defaults
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Apply defaults for empty values
	if cfg.InputDir == "" {
		cfg.InputDir = "videos_input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "videos_output"
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Workers < 0 {
		cfg.Workers = 0
	}
	if cfg.EncoderThreads < 0 {
		cfg.EncoderThreads = 0
	}
	if _, err := cfg.Timeout(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to a YAML file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Timeout parses EncodeTimeout. Zero means unbounded.
func (c *Config) Timeout() (time.Duration, error) {
	if c.EncodeTimeout == "" || c.EncodeTimeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.EncodeTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid encode_timeout %q: %w", c.EncodeTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid encode_timeout %q: must not be negative", c.EncodeTimeout)
	}
	return d, nil
}

// Concurrency returns the worker pool size and ffmpeg thread count for a host
// with the given number of logical CPUs. Explicit config values win.
func (c *Config) Concurrency(cpus int) (workers, threads int) {
	workers = c.Workers
	if workers <= 0 {
		workers = jobs.WorkerCount(cpus)
	}
	threads = c.EncoderThreads
	if threads <= 0 {
		threads = jobs.EncoderThreads(cpus)
	}
	return workers, threads
}
