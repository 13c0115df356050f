package application

import (
	"math"
	"testing"

	meter "pfmon/internal/meter/domain"
)

func TestAggregateIdenticalPhases(t *testing.T) {
	phase := feedSinusoids(testWindowConfig(), 230, 10, 30)
	totals := Aggregate([3]meter.PhaseMetrics{phase, phase, phase})

	if math.Abs(totals.OverallPowerFactor-phase.PowerFactor) > 1e-9 {
		t.Fatalf("overall pf: got %.6f, want phase pf %.6f", totals.OverallPowerFactor, phase.PowerFactor)
	}
	if math.Abs(totals.RealPower-3*phase.RealPower) > 1e-6 {
		t.Fatalf("total real power: got %.4f, want %.4f", totals.RealPower, 3*phase.RealPower)
	}
	if math.Abs(totals.ApparentPower-3*phase.ApparentPower) > 1e-6 {
		t.Fatalf("total apparent power: got %.4f, want %.4f", totals.ApparentPower, 3*phase.ApparentPower)
	}
}

func TestAggregateRecomputesReactive(t *testing.T) {
	phases := [3]meter.PhaseMetrics{
		feedSinusoids(testWindowConfig(), 230, 10, 0),
		feedSinusoids(testWindowConfig(), 230, 8, 45),
		feedSinusoids(testWindowConfig(), 230, 6, 60),
	}
	totals := Aggregate(phases)

	want := meter.ReactiveFrom(totals.ApparentPower, totals.RealPower)
	if totals.ReactivePower != want {
		t.Fatalf("total reactive: got %.4f, want recomputed %.4f", totals.ReactivePower, want)
	}
	var summed float64
	for _, p := range phases {
		summed += p.ReactivePower
	}
	// summed per-phase reactive is not the model's total
	if math.Abs(totals.ReactivePower-summed) < 1e-9 {
		t.Fatalf("total reactive unexpectedly equals per-phase sum: %.4f", summed)
	}
}

func TestAggregateZeroApparent(t *testing.T) {
	totals := Aggregate([3]meter.PhaseMetrics{})
	if totals.OverallPowerFactor != 0 || totals.RealPower != 0 || totals.ApparentPower != 0 || totals.ReactivePower != 0 {
		t.Fatalf("zero phases: want all-zero totals, got %+v", totals)
	}
}
