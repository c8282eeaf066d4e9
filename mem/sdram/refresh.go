package sdram

// RefreshScheduler raises the refresh-due flag at a fixed cadence. It is a
// saturating counter that counts controller cycles since the refresh was
// last due. While a refresh is pending the counter keeps counting up to two
// thresholds, so a refresh served late does not delay the next one.
type RefreshScheduler struct {
	threshold int
	counter   int
	due       bool
}

// NewRefreshScheduler creates a scheduler that raises the flag every
// threshold cycles.
func NewRefreshScheduler(threshold int) *RefreshScheduler {
	if threshold <= 0 {
		panic("refresh threshold must be positive")
	}

	return &RefreshScheduler{threshold: threshold}
}

// Tick counts one cycle. It returns true in the cycle the flag rises.
func (s *RefreshScheduler) Tick() (raised bool) {
	if s.counter < 2*s.threshold {
		s.counter++
	}

	if s.counter >= s.threshold && !s.due {
		s.due = true
		return true
	}

	return false
}

// Due tells if a refresh should be issued at the next decision point.
func (s *RefreshScheduler) Due() bool {
	return s.due
}

// Counter returns the number of cycles counted since the last refresh. It
// exceeds the threshold by the time a due refresh has been waiting.
func (s *RefreshScheduler) Counter() int {
	return s.counter
}

// Threshold returns the number of cycles between two refreshes.
func (s *RefreshScheduler) Threshold() int {
	return s.threshold
}

// RefreshExecuted clears the flag. A refresh that was due re-bases the counter
// by one threshold and keeps the cycles it waited. A refresh issued before it
// was due restarts the count.
func (s *RefreshScheduler) RefreshExecuted() {
	if s.counter >= s.threshold {
		s.counter -= s.threshold
	} else {
		s.counter = 0
	}

	s.due = s.counter >= s.threshold
}

// Reset clears the counter and the flag.
func (s *RefreshScheduler) Reset() {
	s.counter = 0
	s.due = false
}
