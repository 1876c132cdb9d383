package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/gwlsn/reelshrink/internal/ffmpeg"
	"github.com/gwlsn/reelshrink/internal/logger"
	"github.com/gwlsn/reelshrink/internal/planner"
)

// Prober reads stream metadata. ok == false means no usable metadata.
type Prober interface {
	Probe(ctx context.Context, path string) (meta ffmpeg.Metadata, ok bool)
}

// Encoder runs a single encode to completion.
type Encoder interface {
	Encode(ctx context.Context, job ffmpeg.EncodeJob) error
}

// Output subdirectories under the batch output directory
const (
	MP4Dir  = "mp4"
	WebMDir = "webm"
)

// Pipeline turns one Asset into an MP4 and a WebM
type Pipeline struct {
	prober    Prober
	encoder   Encoder
	outputDir string
	threads   int
}

// NewPipeline creates a pipeline writing under outputDir with the given
// per-encode thread count.
func NewPipeline(prober Prober, encoder Encoder, outputDir string, threads int) *Pipeline {
	return &Pipeline{
		prober:    prober,
		encoder:   encoder,
		outputDir: outputDir,
		threads:   max(1, threads),
	}
}

// MP4Path returns where the MP4 for name is written
func (p *Pipeline) MP4Path(name string) string {
	return filepath.Join(p.outputDir, MP4Dir, name+".mp4")
}

// WebMPath returns where the WebM for name is written
func (p *Pipeline) WebMPath(name string) string {
	return filepath.Join(p.outputDir, WebMDir, name+".webm")
}

// Process runs the asset through probing, planning, the MP4 encode, the WebM
// encode and at most one lower-bitrate WebM retry. It always returns a Result;
// failures are reported in it, never as a Go error.
func (p *Pipeline) Process(ctx context.Context, asset Asset) Result {
	log := logger.With("file", asset.Filename())
	res := newResult(asset)

	mp4Path := p.MP4Path(asset.Name)
	webmPath := p.WebMPath(asset.Name)

	var (
		meta ffmpeg.Metadata
		plan planner.EncodePlan
	)

	stage := StageProbing
	for {
		if ctx.Err() != nil {
			log.Info("Asset cancelled", "stage", stage)
			return res.fail(ErrCancelled)
		}
		res.Stage = stage

		switch stage {
		case StageProbing:
			m, ok := p.prober.Probe(ctx, asset.Path)
			if !ok {
				if ctx.Err() != nil {
					continue
				}
				log.Warn("No usable metadata, skipping")
				return res.fail(ErrMetadataUnavailable)
			}
			meta = m
			res.Duration = m.Duration
			log.Debug("Probed", "width", m.Width, "height", m.Height, "duration", m.Duration)
			stage = StagePlanning

		case StagePlanning:
			var err error
			plan, err = planner.NewPlan(meta.Duration, p.threads)
			if err != nil {
				log.Warn("Cannot plan encode", "error", err)
				return res.fail(err)
			}
			log.Info("Planned encode",
				"duration", fmt.Sprintf("%.1fs", meta.Duration),
				"bitrate", humanize.SI(float64(plan.TargetBitrate), "bps"),
				"threads", plan.Threads)
			stage = StageEncodingMP4

		case StageEncodingMP4:
			if err := p.prepareOutputDirs(); err != nil {
				return res.fail(fmt.Errorf("%w: %v", ErrMP4Encode, err))
			}
			log.Info("Encoding MP4", "output", mp4Path)
			if err := p.encoder.Encode(ctx, ffmpeg.MP4Job(asset.Path, mp4Path, plan)); err != nil {
				if ctx.Err() != nil {
					continue
				}
				return res.fail(encodeError(ErrMP4Encode, err))
			}
			stage = StageEncodingWebM

		case StageEncodingWebM:
			size, err := fileSize(mp4Path)
			if err != nil {
				log.Error("MP4 missing after encode", "output", mp4Path, "error", err)
				return res.fail(ErrMP4Missing)
			}
			res.MP4Size = size

			log.Info("Encoding WebM", "output", webmPath)
			res.WebMAttempts++
			job := ffmpeg.WebMJob(mp4Path, webmPath, plan, ffmpeg.PrimaryWebMRates(plan.TargetBitrate))
			if err := p.encoder.Encode(ctx, job); err != nil {
				if ctx.Err() != nil {
					continue
				}
				return res.fail(encodeError(ErrWebMEncode, err))
			}
			stage = StageComparing

		case StageComparing:
			size, err := fileSize(webmPath)
			if err != nil {
				return res.fail(fmt.Errorf("%w: output missing", ErrWebMEncode))
			}
			res.WebMSize = size

			// A second oversized WebM is accepted as is.
			if res.WebMSize > res.MP4Size && res.WebMAttempts == 1 {
				stage = StageReencodingWebM
			} else {
				stage = StageDone
			}

		case StageReencodingWebM:
			log.Warn("WebM larger than MP4, re-encoding at a lower bitrate",
				"mp4", humanize.IBytes(uint64(res.MP4Size)),
				"webm", humanize.IBytes(uint64(res.WebMSize)))
			res.WebMAttempts++
			job := ffmpeg.WebMJob(mp4Path, webmPath, plan, ffmpeg.DowngradeWebMRates(plan.TargetBitrate))
			if err := p.encoder.Encode(ctx, job); err != nil {
				if ctx.Err() != nil {
					continue
				}
				return res.fail(encodeError(ErrWebMEncode, err))
			}
			stage = StageComparing

		case StageDone:
			res.Status = StatusSuccess
			log.Info("Asset complete",
				"original", humanize.IBytes(uint64(res.OriginalSize)),
				"mp4", fmt.Sprintf("%s (%.1f%%)", humanize.IBytes(uint64(res.MP4Size)), res.MP4Ratio()),
				"webm", fmt.Sprintf("%s (%.1f%%)", humanize.IBytes(uint64(res.WebMSize)), res.WebMRatio()))
			return res

		default:
			return res.fail(fmt.Errorf("%w: unknown stage %q", ErrInternal, stage))
		}
	}
}

func (p *Pipeline) prepareOutputDirs() error {
	for _, dir := range []string{MP4Dir, WebMDir} {
		if err := os.MkdirAll(filepath.Join(p.outputDir, dir), 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
