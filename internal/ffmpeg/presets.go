package ffmpeg

import (
	"strconv"

	"github.com/gwlsn/reelshrink/internal/planner"
)

// Profile names the delivery variant an encode produces.
type Profile string

const (
	ProfileMP4  Profile = "mp4"
	ProfileWebM Profile = "webm"
)

// EncodeJob is one ffmpeg invocation. Args excludes the binary itself and
// ends with Output.
type EncodeJob struct {
	Profile Profile
	Input   string
	Output  string
	Args    []string
}

// WebMRates is the VP9 bitrate triple in bits per second.
type WebMRates struct {
	Bitrate int64
	MinRate int64
	MaxRate int64
}

// Fixed encoder settings shared by every asset.
const (
	mp4CRF        = "20"
	mp4Preset     = "medium"
	mp4AudioRate  = "128k"
	mp4SampleRate = "48000"

	webmAudioRate = "96k"
	webmGOP       = "240"
)

// PrimaryWebMRates is the first WebM attempt: 0.9x target, floor 0.6x,
// ceiling at the target.
func PrimaryWebMRates(target int64) WebMRates {
	return WebMRates{
		Bitrate: scale(target, 0.9),
		MinRate: scale(target, 0.6),
		MaxRate: target,
	}
}

// DowngradeWebMRates is the single retry used when the first WebM came out
// larger than the MP4.
func DowngradeWebMRates(target int64) WebMRates {
	return WebMRates{
		Bitrate: scale(target, 0.7),
		MinRate: scale(target, 0.4),
		MaxRate: scale(target, 0.8),
	}
}

func scale(v int64, f float64) int64 {
	return int64(float64(v) * f)
}

// MP4Job builds the H.264/AAC encode: CRF with a hard bitrate ceiling and a
// 2x buffer, BT.709 tags, moov atom up front for progressive playback.
func MP4Job(input, output string, plan planner.EncodePlan) EncodeJob {
	rate := plan.TargetBitrate
	args := []string{
		"-y",
		"-i", input,
		"-threads", strconv.Itoa(plan.Threads),
		"-vf", plan.Filter + ",format=yuv420p",
		"-c:v", "libx264",
		"-crf", mp4CRF,
		"-preset", mp4Preset,
		"-profile:v", "main",
		"-level", "4.0",
		"-maxrate", strconv.FormatInt(rate, 10),
		"-bufsize", strconv.FormatInt(rate*2, 10),
		"-movflags", "+faststart",
		"-color_primaries", "bt709",
		"-color_trc", "bt709",
		"-colorspace", "bt709",
		"-c:a", "aac",
		"-b:a", mp4AudioRate,
		"-ar", mp4SampleRate,
		"-ac", "2",
		output,
	}
	return EncodeJob{Profile: ProfileMP4, Input: input, Output: output, Args: args}
}

// WebMJob builds the VP9/Opus encode. input is the finished MP4, which is
// already cropped, so no filter is applied here.
func WebMJob(input, output string, plan planner.EncodePlan, rates WebMRates) EncodeJob {
	args := []string{
		"-y",
		"-i", input,
		"-threads", strconv.Itoa(plan.Threads),
		"-c:v", "libvpx-vp9",
		"-b:v", strconv.FormatInt(rates.Bitrate, 10),
		"-minrate", strconv.FormatInt(rates.MinRate, 10),
		"-maxrate", strconv.FormatInt(rates.MaxRate, 10),
		"-tile-columns", "2",
		"-frame-parallel", "1",
		"-row-mt", "1",
		"-speed", "1",
		"-auto-alt-ref", "1",
		"-lag-in-frames", "25",
		"-g", webmGOP,
		"-pix_fmt", "yuv420p",
		"-c:a", "libopus",
		"-b:a", webmAudioRate,
		output,
	}
	return EncodeJob{Profile: ProfileWebM, Input: input, Output: output, Args: args}
}
