package application

import (
	"errors"
	"time"
)

// SampleScheduler paces one sampling window. It fires the acquisition
// callback at exactly totalSamples evenly spaced instants, anchored to the
// moment Run is called. The wait is an active spin on the monotonic clock
// rather than a sleep: timing fidelity against the AC waveform matters more
// here than CPU efficiency, and a sleep-based yield can overshoot by more
// than a sample interval. No instant is ever skipped or coalesced.
type SampleScheduler struct {
	total    int
	interval time.Duration
	now      func() time.Time
}

// SchedulerOption configures a SampleScheduler.
type SchedulerOption func(*SampleScheduler)

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) SchedulerOption {
	return func(s *SampleScheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSampleScheduler constructs a scheduler for a window of totalSamples
// instants spaced by interval.
func NewSampleScheduler(totalSamples int, interval time.Duration, opts ...SchedulerOption) (*SampleScheduler, error) {
	if totalSamples <= 0 {
		return nil, errors.New("sample scheduler: total samples must be positive")
	}
	if interval <= 0 {
		return nil, errors.New("sample scheduler: interval must be positive")
	}
	s := &SampleScheduler{total: totalSamples, interval: interval, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run drives one window. acquire is invoked synchronously once per instant
// with the instant index; the call blocks until the whole window completes.
func (s *SampleScheduler) Run(acquire func(index int)) {
	anchor := s.now()
	for i := 0; i < s.total; i++ {
		target := anchor.Add(time.Duration(i) * s.interval)
		for s.now().Before(target) {
			// busy wait; see type comment
		}
		acquire(i)
	}
}
