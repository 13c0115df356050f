package meter

import (
	"math"
	"testing"
	"time"
)

func validConfig() SamplingWindowConfig {
	return SamplingWindowConfig{
		SamplesPerCycle:    200,
		Cycles:             5,
		LineFrequencyHz:    50,
		ADCMax:             4095,
		ADCRefVolts:        3.3,
		VoltageCalibration: 250,
		CurrentSensitivity: 0.066,
		CurrentOffsetVolts: 1.65,
		NoiseFloorAmps:     0.05,
		AlertThreshold:     0.85,
	}
}

func TestValidateCatchesEachField(t *testing.T) {
	mutations := map[string]func(*SamplingWindowConfig){
		"samples per cycle":   func(c *SamplingWindowConfig) { c.SamplesPerCycle = 0 },
		"cycles":              func(c *SamplingWindowConfig) { c.Cycles = -1 },
		"line frequency":      func(c *SamplingWindowConfig) { c.LineFrequencyHz = 0 },
		"adc full scale":      func(c *SamplingWindowConfig) { c.ADCMax = 0 },
		"adc reference":       func(c *SamplingWindowConfig) { c.ADCRefVolts = -3.3 },
		"voltage calibration": func(c *SamplingWindowConfig) { c.VoltageCalibration = 0 },
		"current sensitivity": func(c *SamplingWindowConfig) { c.CurrentSensitivity = 0 },
		"noise floor":         func(c *SamplingWindowConfig) { c.NoiseFloorAmps = -0.1 },
		"threshold zero":      func(c *SamplingWindowConfig) { c.AlertThreshold = 0 },
		"threshold above one": func(c *SamplingWindowConfig) { c.AlertThreshold = 1.5 },
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for name, mutate := range mutations {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: invalid value accepted", name)
		}
	}
}

func TestSampleInterval(t *testing.T) {
	cfg := validConfig()
	if got := cfg.TotalSamples(); got != 1000 {
		t.Fatalf("total samples: got %d, want 1000", got)
	}
	// 200 samples across a 20ms cycle
	if got := cfg.SampleInterval(); got != 100*time.Microsecond {
		t.Fatalf("sample interval: got %s, want 100µs", got)
	}
}

func TestClampPowerFactor(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.87, 0.87},
		{-0.87, 0.87},
		{1.2, 1},
		{-3, 1},
		{0, 0},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := ClampPowerFactor(tc.in); got != tc.want {
			t.Fatalf("clamp(%v): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestReactiveFrom(t *testing.T) {
	if got := ReactiveFrom(5, 3); got != 4 {
		t.Fatalf("reactive(5,3): got %v, want 4", got)
	}
	// real slightly above apparent from rounding must not produce NaN
	if got := ReactiveFrom(3, 3.0000001); got != 0 {
		t.Fatalf("clipped radicand: got %v, want 0", got)
	}
}

func TestSnapshotMetrics(t *testing.T) {
	snap := Snapshot{Phases: [3]PhaseMetrics{{VoltageRMS: 1}, {VoltageRMS: 2}, {VoltageRMS: 3}}}
	if got := snap.Metrics(PhaseY).VoltageRMS; got != 2 {
		t.Fatalf("phase Y: got %v, want 2", got)
	}
	if got := snap.Metrics("X"); got != (PhaseMetrics{}) {
		t.Fatalf("unknown phase: got %+v, want zero", got)
	}
}
