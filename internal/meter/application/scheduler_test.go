package application

import (
	"testing"
	"time"
)

// tickingClock advances a fixed step on every read so the spin wait
// terminates without real elapsed time.
type tickingClock struct {
	now  time.Time
	step time.Duration
}

func (c *tickingClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func TestSampleSchedulerServicesEverySlot(t *testing.T) {
	clock := &tickingClock{now: time.Unix(0, 0), step: 10 * time.Microsecond}
	sched, err := NewSampleScheduler(100, time.Millisecond, WithNowFunc(clock.Now))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	var indexes []int
	sched.Run(func(index int) {
		indexes = append(indexes, index)
	})

	if len(indexes) != 100 {
		t.Fatalf("acquisitions: got %d, want 100", len(indexes))
	}
	for i, index := range indexes {
		if index != i {
			t.Fatalf("slot %d serviced out of order as %d", i, index)
		}
	}
}

func TestSampleSchedulerSpacing(t *testing.T) {
	clock := &tickingClock{now: time.Unix(0, 0), step: 50 * time.Microsecond}
	sched, err := NewSampleScheduler(10, time.Millisecond, WithNowFunc(clock.Now))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	var at []time.Time
	sched.Run(func(int) {
		at = append(at, clock.now)
	})

	for i := 1; i < len(at); i++ {
		gap := at[i].Sub(at[i-1])
		if gap < time.Millisecond-2*clock.step || gap > time.Millisecond+2*clock.step {
			t.Fatalf("gap %d: got %s, want ~1ms", i, gap)
		}
	}
}

func TestSampleSchedulerRejectsBadArgs(t *testing.T) {
	if _, err := NewSampleScheduler(0, time.Millisecond); err == nil {
		t.Fatal("zero total samples accepted")
	}
	if _, err := NewSampleScheduler(10, 0); err == nil {
		t.Fatal("zero interval accepted")
	}
}
