package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/gwlsn/reelshrink/internal/batch"
	"github.com/gwlsn/reelshrink/internal/config"
	"github.com/gwlsn/reelshrink/internal/ffmpeg"
	"github.com/gwlsn/reelshrink/internal/host"
	"github.com/gwlsn/reelshrink/internal/logger"
	"github.com/gwlsn/reelshrink/internal/store"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file (default: ./config/reelshrink.yaml)")
	inputDir := flag.String("input", "", "Input directory (default: videos_input)")
	outputDir := flag.String("output", "", "Output directory (default: videos_output)")
	workers := flag.Int("workers", 0, "Concurrent transcodes (default: CPU count - 1)")
	threads := flag.Int("threads", 0, "ffmpeg threads per encode (default: CPU count / 2)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	historyDB := flag.String("history", "", "SQLite file recording finished runs")
	listHistory := flag.Bool("list-history", false, "Print recorded runs and exit")
	flag.Parse()

	// Determine config path
	cfgPath := *configPath
	if cfgPath == "" {
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			cfgPath = envPath
		} else {
			cfgPath = "config/reelshrink.yaml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Init("info")
		logger.Error("Could not load config", "path", cfgPath, "error", err)
		return 1
	}

	// Flags override the file
	if *inputDir != "" {
		cfg.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *threads > 0 {
		cfg.EncoderThreads = *threads
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *historyDB != "" {
		cfg.HistoryDB = *historyDB
	}

	logger.Init(cfg.LogLevel)

	timeout, err := cfg.Timeout()
	if err != nil {
		logger.Error("Invalid config", "error", err)
		return 1
	}

	var history store.Store
	if cfg.HistoryDB != "" {
		sqliteStore, err := store.NewSQLiteStore(cfg.HistoryDB)
		if err != nil {
			logger.Error("Failed to open run history", "path", cfg.HistoryDB, "error", err)
			return 1
		}
		defer sqliteStore.Close()
		history = sqliteStore
	}

	reporter := batch.NewReporter(os.Stdout)

	if *listHistory {
		if history == nil {
			logger.Error("No history database configured (use -history or history_db)")
			return 1
		}
		runs, err := history.ListRuns(20)
		if err != nil {
			logger.Error("Failed to read run history", "error", err)
			return 1
		}
		reporter.History(runs)
		return 0
	}

	hw := host.Describe()
	nWorkers, nThreads := cfg.Concurrency(hw.LogicalCPUs)

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                        REELSHRINK                         ║")
	fmt.Println("║        Vertical MP4 + WebM batches for the web            ║")
	versionLine := fmt.Sprintf("v%s", Version)
	padding := 59 - len(versionLine)
	fmt.Printf("║%*s%s%*s║\n", padding/2, "", versionLine, (padding+1)/2, "")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Input:        %s\n", cfg.InputDir)
	fmt.Printf("  Output:       %s\n", cfg.OutputDir)
	fmt.Printf("  Config:       %s\n", cfgPath)
	fmt.Printf("  CPU:          %s (%d logical, %d physical)\n", hw.CPUModel, hw.LogicalCPUs, hw.PhysicalCPUs)
	if hw.TotalMemory > 0 {
		fmt.Printf("  Memory:       %s\n", humanize.IBytes(hw.TotalMemory))
	}
	fmt.Printf("  Workers:      %d\n", nWorkers)
	fmt.Printf("  Threads:      %d per encode\n", nThreads)
	if timeout > 0 {
		fmt.Printf("  Timeout:      %s per encode\n", timeout)
	}
	fmt.Printf("  FFmpeg:       %s\n", cfg.FFmpegPath)
	fmt.Printf("  FFprobe:      %s\n", cfg.FFprobePath)
	if cfg.HistoryDB != "" {
		fmt.Printf("  History:      %s\n", cfg.HistoryDB)
	}
	fmt.Println()

	// SIGINT/SIGTERM cancel the batch; running ffmpeg processes are killed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	support, err := ffmpeg.DetectEncoders(ctx, cfg.FFmpegPath)
	if err != nil {
		logger.Warn("Could not query ffmpeg encoders", "error", err)
	} else if missing := support.Missing(); len(missing) > 0 {
		logger.Warn("ffmpeg lacks required encoders, affected encodes will fail", "missing", missing)
	}

	logger.Info("Reelshrink started", "version", Version, "workers", nWorkers, "threads", nThreads)

	runner := &batch.Runner{
		Prober:   ffmpeg.NewProber(cfg.FFprobePath),
		Encoder:  ffmpeg.NewTranscoder(cfg.FFmpegPath, timeout),
		Workers:  nWorkers,
		Threads:  nThreads,
		Store:    history,
		Reporter: reporter,
	}

	if _, err := runner.Run(ctx, cfg.InputDir, cfg.OutputDir); err != nil {
		if errors.Is(err, batch.ErrNoSupportedFiles) {
			logger.Info("No supported video files found", "input", cfg.InputDir)
			return 0
		}
		logger.Error("Batch could not start", "error", err)
		return 1
	}

	if ctx.Err() != nil {
		fmt.Println("\n  Interrupted, remaining files were cancelled.")
	}
	return 0
}
