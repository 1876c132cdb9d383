package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// RequiredEncoders are the ffmpeg encoders MP4Job and WebMJob reference.
var RequiredEncoders = []string{"libx264", "aac", "libvpx-vp9", "libopus"}

// EncoderSupport maps an encoder name to whether the ffmpeg build has it.
type EncoderSupport map[string]bool

// Missing returns the required encoders the build lacks, in RequiredEncoders order.
func (s EncoderSupport) Missing() []string {
	var missing []string
	for _, name := range RequiredEncoders {
		if !s[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// DetectEncoders asks ffmpeg which of RequiredEncoders it was built with.
// An error means ffmpeg itself could not be run.
func DetectEncoders(ctx context.Context, ffmpegPath string) (EncoderSupport, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegPath, "-encoders", "-hide_banner")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list ffmpeg encoders: %w", err)
	}

	available := parseEncoderList(string(output))
	support := make(EncoderSupport, len(RequiredEncoders))
	for _, name := range RequiredEncoders {
		support[name] = available[name]
	}
	return support, nil
}

// parseEncoderList reads `ffmpeg -encoders` output. Encoder rows look like
// " V....D libx264   libx264 H.264 ..."; the legend above the "------"
// separator is skipped.
func parseEncoderList(output string) map[string]bool {
	names := make(map[string]bool)
	inList := false

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !inList {
			inList = strings.HasPrefix(line, "---")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			names[fields[1]] = true
		}
	}
	return names
}
