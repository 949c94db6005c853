package logging

// ProgressSampler thins out "N of M done" lines to one per step percent.
// Not safe for concurrent use.
type ProgressSampler struct {
	step int
	last int
}

// NewProgressSampler emits whenever progress enters a new step-percent band.
// step <= 0 means 10.
func NewProgressSampler(step int) *ProgressSampler {
	if step <= 0 {
		step = 10
	}
	return &ProgressSampler{step: step, last: -1}
}

// ShouldLog reports whether done of total deserves a line. The first item
// and the last always do.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil || total <= 0 {
		return true
	}
	band := done * 100 / total / s.step
	if done >= total {
		band = 100/s.step + 1
	}
	if band <= s.last {
		return false
	}
	s.last = band
	return true
}

// Reset starts a new batch.
func (s *ProgressSampler) Reset() {
	if s != nil {
		s.last = -1
	}
}
