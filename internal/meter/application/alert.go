package application

import meter "pfmon/internal/meter/domain"

// loadEpsilon excludes the dead-band: a phase reporting exactly zero power
// factor is unloaded, not inefficient.
const loadEpsilon = 0.01

// AlertEvaluator flags cycles where any loaded phase runs below the power
// factor threshold. Each cycle's decision is independent; there is no
// hysteresis or debouncing.
type AlertEvaluator struct {
	threshold float64
}

// NewAlertEvaluator constructs an evaluator for a threshold in (0,1].
func NewAlertEvaluator(threshold float64) AlertEvaluator {
	return AlertEvaluator{threshold: threshold}
}

// Evaluate reports whether any phase has epsilon < pf < threshold.
func (e AlertEvaluator) Evaluate(phases [3]meter.PhaseMetrics) bool {
	for _, p := range phases {
		if p.PowerFactor > loadEpsilon && p.PowerFactor < e.threshold {
			return true
		}
	}
	return false
}
