package meter

import (
	"errors"
	"time"
)

// SamplingWindowConfig fixes the acquisition and calibration parameters for
// the lifetime of the process. It is validated once before the core is
// constructed and never mutated afterwards.
type SamplingWindowConfig struct {
	// SamplesPerCycle is the number of sample pairs taken per AC cycle.
	SamplesPerCycle int
	// Cycles is the number of AC cycles covered by one sampling window.
	Cycles int
	// LineFrequencyHz is the nominal AC supply frequency.
	LineFrequencyHz float64

	// ADCMax is the full-scale ADC code.
	ADCMax float64
	// ADCRefVolts is the ADC reference voltage; codes map linearly onto
	// [0, ADCRefVolts] and the midpoint is treated as signal zero.
	ADCRefVolts float64

	// VoltageCalibration scales the divider-level RMS voltage back to mains
	// volts.
	VoltageCalibration float64
	// CurrentSensitivity is the current sensor output in volts per ampere.
	CurrentSensitivity float64
	// CurrentOffsetVolts is the sensor output at zero current.
	CurrentOffsetVolts float64

	// NoiseFloorAmps is the dead-band: windows whose RMS current is at or
	// below it report zero power and power factor.
	NoiseFloorAmps float64
	// AlertThreshold is the power factor below which a loaded phase raises
	// the alert.
	AlertThreshold float64
}

// Validate checks the configuration before the core is built. The engine
// itself assumes a valid config and has no fatal-error path.
func (c SamplingWindowConfig) Validate() error {
	if c.SamplesPerCycle <= 0 {
		return errors.New("sampling config: samples per cycle must be positive")
	}
	if c.Cycles <= 0 {
		return errors.New("sampling config: cycle count must be positive")
	}
	if c.LineFrequencyHz <= 0 {
		return errors.New("sampling config: line frequency must be positive")
	}
	if c.ADCMax <= 0 {
		return errors.New("sampling config: adc full scale must be positive")
	}
	if c.ADCRefVolts <= 0 {
		return errors.New("sampling config: adc reference must be positive")
	}
	if c.VoltageCalibration <= 0 {
		return errors.New("sampling config: voltage calibration must be positive")
	}
	if c.CurrentSensitivity <= 0 {
		return errors.New("sampling config: current sensitivity must be positive")
	}
	if c.NoiseFloorAmps < 0 {
		return errors.New("sampling config: noise floor must not be negative")
	}
	if c.AlertThreshold <= 0 || c.AlertThreshold > 1 {
		return errors.New("sampling config: alert threshold must be in (0,1]")
	}
	return nil
}

// TotalSamples is the number of sample pairs in one window.
func (c SamplingWindowConfig) TotalSamples() int {
	return c.SamplesPerCycle * c.Cycles
}

// SampleInterval is the spacing between acquisition instants.
func (c SamplingWindowConfig) SampleInterval() time.Duration {
	period := time.Duration(float64(time.Second) / c.LineFrequencyHz)
	return period * time.Duration(c.Cycles) / time.Duration(c.TotalSamples())
}
