package application

import meter "pfmon/internal/meter/domain"

// Aggregate combines the three phase results into system totals. Real and
// apparent power are arithmetic sums across phases; total reactive power is
// recomputed from those sums, since per-phase reactive values are not
// additive under this model.
func Aggregate(phases [3]meter.PhaseMetrics) meter.Totals {
	t := meter.Totals{}
	for _, p := range phases {
		t.RealPower += p.RealPower
		t.ApparentPower += p.ApparentPower
	}
	if t.ApparentPower > 0 {
		t.OverallPowerFactor = meter.ClampPowerFactor(t.RealPower / t.ApparentPower)
	}
	t.ReactivePower = meter.ReactiveFrom(t.ApparentPower, t.RealPower)
	return t
}
