package meter

import "math"

// Phase identifies one leg of the three-phase supply.
type Phase string

const (
	PhaseR Phase = "R"
	PhaseY Phase = "Y"
	PhaseB Phase = "B"
)

// Phases lists the three phases in acquisition order.
var Phases = [3]Phase{PhaseR, PhaseY, PhaseB}

// PhaseMetrics holds the derived electrical quantities for one phase over one
// sampling window. A window with current at or below the noise floor yields
// the RMS values with all power fields and the power factor forced to zero.
type PhaseMetrics struct {
	VoltageRMS    float64
	CurrentRMS    float64
	PowerFactor   float64
	RealPower     float64
	ApparentPower float64
	ReactivePower float64
}

// Totals combines the three phase results into system-wide figures.
type Totals struct {
	OverallPowerFactor float64
	RealPower          float64
	ApparentPower      float64
	ReactivePower      float64
}

// Snapshot is the immutable result of one full measurement cycle. It is
// assembled once per cycle and handed by value to the publish boundary.
type Snapshot struct {
	Phases      [3]PhaseMetrics
	Totals      Totals
	AlertRaised bool
}

// Metrics returns the metrics for a phase, or a zero value for an unknown one.
func (s Snapshot) Metrics(p Phase) PhaseMetrics {
	for i, phase := range Phases {
		if phase == p {
			return s.Phases[i]
		}
	}
	return PhaseMetrics{}
}

// ClampPowerFactor bounds a raw P/S ratio to the [0,1] range expected of a
// power factor. NaN (zero apparent power upstream) resolves to 0.
func ClampPowerFactor(ratio float64) float64 {
	if math.IsNaN(ratio) {
		return 0
	}
	pf := math.Abs(ratio)
	if pf > 1 {
		return 1
	}
	return pf
}

// ReactiveFrom recomputes reactive power from apparent and real power,
// clipping the radicand at zero so rounding can never produce NaN.
func ReactiveFrom(apparent, real float64) float64 {
	return math.Sqrt(math.Max(0, apparent*apparent-real*real))
}
