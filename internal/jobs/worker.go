package jobs

import (
	"context"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/gwlsn/reelshrink/internal/logger"
)

// Processor handles one asset. *Pipeline is the production implementation.
type Processor interface {
	Process(ctx context.Context, asset Asset) Result
}

// ProcessorFunc adapts a function to Processor
type ProcessorFunc func(ctx context.Context, asset Asset) Result

func (f ProcessorFunc) Process(ctx context.Context, asset Asset) Result {
	return f(ctx, asset)
}

// RunAll processes every asset on a pool of at most workers goroutines and
// waits for all of them. results[i] always belongs to assets[i]. A panic or
// a cancelled context fails only the affected assets.
func RunAll(ctx context.Context, assets []Asset, workers int, proc Processor) []Result {
	results := make([]Result, len(assets))
	if len(assets) == 0 {
		return results
	}

	workers = ClampWorkerCount(workers, len(assets))
	logger.Info("Worker pool started", "workers", workers, "assets", len(assets))

	// Plain Group: one asset failing must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(workers)
	for i, asset := range assets {
		g.Go(func() error {
			results[i] = runOne(ctx, asset, proc)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func runOne(ctx context.Context, asset Asset, proc Processor) (res Result) {
	defer func() {
		if v := recover(); v != nil {
			logger.Error("Pipeline panicked", "file", asset.Filename(), "panic", v, "stack", string(debug.Stack()))
			res = newResult(asset).fail(panicError(v))
		}
	}()

	if ctx.Err() != nil {
		return newResult(asset).fail(ErrCancelled)
	}
	return proc.Process(ctx, asset)
}
