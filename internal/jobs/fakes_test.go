package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gwlsn/reelshrink/internal/ffmpeg"
)

type fakeProber struct {
	meta  map[string]ffmpeg.Metadata
	calls atomic.Int32
}

func (f *fakeProber) Probe(_ context.Context, path string) (ffmpeg.Metadata, bool) {
	f.calls.Add(1)
	m, ok := f.meta[path]
	return m, ok
}

// fakeEncoder writes an output file of a configured size instead of running
// ffmpeg. Sizes are per attempt for each profile; the last entry repeats.
type fakeEncoder struct {
	sizes   map[ffmpeg.Profile][]int64
	failAt  map[ffmpeg.Profile]int // 1-based attempt that fails, 0 = never
	noWrite map[ffmpeg.Profile]bool

	mu   sync.Mutex
	jobs []ffmpeg.EncodeJob
}

func newFakeEncoder(mp4 int64, webm ...int64) *fakeEncoder {
	return &fakeEncoder{
		sizes: map[ffmpeg.Profile][]int64{
			ffmpeg.ProfileMP4:  {mp4},
			ffmpeg.ProfileWebM: webm,
		},
		failAt:  map[ffmpeg.Profile]int{},
		noWrite: map[ffmpeg.Profile]bool{},
	}
}

func (f *fakeEncoder) Encode(_ context.Context, job ffmpeg.EncodeJob) error {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	attempt := f.countLocked(job.Profile, job.Output)
	f.mu.Unlock()

	if f.failAt[job.Profile] == attempt {
		os.Remove(job.Output)
		return &ffmpeg.EncodeError{
			Profile: job.Profile,
			Err:     errors.New("ffmpeg failed: exit status 1"),
			Stderr:  "Input #0, mov\nInvalid data found when processing input\n",
		}
	}
	if f.noWrite[job.Profile] {
		return nil
	}

	sizes := f.sizes[job.Profile]
	size := sizes[min(attempt, len(sizes))-1]
	return os.WriteFile(job.Output, make([]byte, size), 0644)
}

func (f *fakeEncoder) countLocked(profile ffmpeg.Profile, output string) int {
	n := 0
	for _, j := range f.jobs {
		if j.Profile == profile && j.Output == output {
			n++
		}
	}
	return n
}

// calls returns the jobs of profile whose output belongs to name
func (f *fakeEncoder) calls(profile ffmpeg.Profile, name string) []ffmpeg.EncodeJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ffmpeg.EncodeJob
	for _, j := range f.jobs {
		base := filepath.Base(j.Output)
		if j.Profile == profile && strings.TrimSuffix(base, filepath.Ext(base)) == name {
			out = append(out, j)
		}
	}
	return out
}

func (f *fakeEncoder) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func testAsset(name string, size int64) Asset {
	return Asset{
		Path: filepath.Join("/videos", name+".mov"),
		Name: name,
		Ext:  ".mov",
		Size: size,
	}
}
