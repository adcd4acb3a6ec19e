package analysis

import "time"

// Stats summarizes one series.
type Stats struct {
	Samples     int
	TotalBytes  int64
	Duration    time.Duration // baseline to last receive event
	TimeToFirst time.Duration // baseline to first receive event
	BytesPerSec float64
}

// Stats computes the summary for the series. An empty series yields the
// zero value.
func (s *Series) Stats() Stats {
	if len(s.Samples) == 0 {
		return Stats{}
	}

	first := s.Samples[0]
	last := s.Samples[len(s.Samples)-1]

	st := Stats{
		Samples:     len(s.Samples),
		TotalBytes:  last.Bytes,
		Duration:    last.Elapsed,
		TimeToFirst: first.Elapsed,
	}
	if secs := last.Elapsed.Seconds(); secs > 0 {
		st.BytesPerSec = float64(last.Bytes) / secs
	}
	return st
}
