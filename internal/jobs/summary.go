package jobs

// Failure names one failed asset
type Failure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// Summary aggregates a batch. Size totals cover successful assets only.
type Summary struct {
	Total        int       `json:"total"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	OriginalSize int64     `json:"original_size"`
	MP4Size      int64     `json:"mp4_size"`
	WebMSize     int64     `json:"webm_size"`
	WebMRetries  int       `json:"webm_retries"`
	Failures     []Failure `json:"failures,omitempty"`
}

// Summarize reduces results, in order, to a Summary
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if !r.OK() {
			s.Failed++
			s.Failures = append(s.Failures, Failure{Filename: r.Filename, Error: r.Error})
			continue
		}
		s.Succeeded++
		s.OriginalSize += r.OriginalSize
		s.MP4Size += r.MP4Size
		s.WebMSize += r.WebMSize
		if r.WebMAttempts > 1 {
			s.WebMRetries++
		}
	}
	return s
}

func (s Summary) OriginalMB() float64 { return toMB(s.OriginalSize) }
func (s Summary) MP4MB() float64      { return toMB(s.MP4Size) }
func (s Summary) WebMMB() float64     { return toMB(s.WebMSize) }

// MP4Ratio is total MP4 size as a percentage of the total original size,
// or 0 when nothing succeeded.
func (s Summary) MP4Ratio() float64 {
	return percent(s.MP4Size, s.OriginalSize)
}

// WebMRatio is total WebM size as a percentage of the total original size.
func (s Summary) WebMRatio() float64 {
	return percent(s.WebMSize, s.OriginalSize)
}
