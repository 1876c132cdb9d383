package ffmpeg

import (
	"context"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleEncoders = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 A....D aac                  AAC (Advanced Audio Coding)
 A....D libmp3lame           libmp3lame MP3 (MPEG audio layer 3) (codec mp3)
`

func TestParseEncoderList(t *testing.T) {
	names := parseEncoderList(sampleEncoders)

	for _, want := range []string{"libx264", "libvpx-vp9", "aac", "libmp3lame"} {
		if !names[want] {
			t.Errorf("expected %s to be listed", want)
		}
	}
	// Legend rows must not be taken for encoders
	if names["="] || names["Video"] {
		t.Error("legend parsed as encoder")
	}
	if names["libopus"] {
		t.Error("libopus is not in the sample")
	}
}

func TestEncoderSupportMissing(t *testing.T) {
	support := EncoderSupport{"libx264": true, "aac": true, "libvpx-vp9": true}
	if got := support.Missing(); !reflect.DeepEqual(got, []string{"libopus"}) {
		t.Errorf("Missing() = %v, expected [libopus]", got)
	}

	full := EncoderSupport{"libx264": true, "aac": true, "libvpx-vp9": true, "libopus": true}
	if got := full.Missing(); len(got) != 0 {
		t.Errorf("expected nothing missing, got %v", got)
	}
}

func TestDetectEncodersMissingBinary(t *testing.T) {
	_, err := DetectEncoders(context.Background(), filepath.Join(t.TempDir(), "no-ffmpeg"))
	if err == nil {
		t.Error("expected error for missing ffmpeg")
	}
}

func TestDetectEncoders(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	support, err := DetectEncoders(context.Background(), "ffmpeg")
	if err != nil {
		t.Fatalf("DetectEncoders failed: %v", err)
	}
	if len(support) != len(RequiredEncoders) {
		t.Errorf("expected %d entries, got %d", len(RequiredEncoders), len(support))
	}
}
