package application

import (
	"math"

	meter "pfmon/internal/meter/domain"
)

// PhaseEngine reduces the raw sample stream of one phase to PhaseMetrics.
// Samples are normalized and accumulated as running sums so the window needs
// no per-sample storage; one engine instance serves one window and is
// discarded afterwards.
type PhaseEngine struct {
	cfg   meter.SamplingWindowConfig
	count int
	sumV2 float64
	sumI2 float64
	sumVI float64
}

// NewPhaseEngine constructs an engine for one sampling window. The config is
// assumed to be validated.
func NewPhaseEngine(cfg meter.SamplingWindowConfig) *PhaseEngine {
	return &PhaseEngine{cfg: cfg}
}

// Add consumes one raw sample pair. Voltage codes are scaled to the reference
// range and re-centered on the midpoint; current codes are scaled the same
// way and converted to amperes through the sensor's offset and sensitivity.
func (e *PhaseEngine) Add(voltageCode, currentCode float64) {
	v := voltageCode/e.cfg.ADCMax*e.cfg.ADCRefVolts - e.cfg.ADCRefVolts/2
	i := (currentCode/e.cfg.ADCMax*e.cfg.ADCRefVolts - e.cfg.CurrentOffsetVolts) / e.cfg.CurrentSensitivity

	e.sumV2 += v * v
	e.sumI2 += i * i
	e.sumVI += v * i
	e.count++
}

// Finalize derives the phase metrics from the accumulated sums. Degenerate
// windows (no samples, current within the noise floor, zero apparent power)
// resolve to zero power fields rather than NaN or infinities. The noise-floor
// cut is a dead-band: an idle channel and a disconnected sensor are
// indistinguishable here, both read as zero load.
func (e *PhaseEngine) Finalize() meter.PhaseMetrics {
	if e.count == 0 {
		return meter.PhaseMetrics{}
	}
	n := float64(e.count)

	m := meter.PhaseMetrics{
		VoltageRMS: math.Sqrt(e.sumV2/n) * e.cfg.VoltageCalibration,
		CurrentRMS: math.Sqrt(e.sumI2 / n),
	}
	if m.CurrentRMS <= e.cfg.NoiseFloorAmps {
		return m
	}

	real := e.sumVI / n * e.cfg.VoltageCalibration
	apparent := m.VoltageRMS * m.CurrentRMS
	if apparent <= 0 {
		return m
	}

	m.RealPower = real
	m.ApparentPower = apparent
	m.PowerFactor = meter.ClampPowerFactor(real / apparent)
	m.ReactivePower = meter.ReactiveFrom(apparent, real)
	return m
}
