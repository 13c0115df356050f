package acquisition

import (
	"errors"
	"math"
	"math/rand"

	meter "pfmon/internal/meter/domain"
)

// PhaseSignal describes the synthetic waveform for one phase.
type PhaseSignal struct {
	VoltageRMS float64
	CurrentRMS float64
	// CurrentLagDeg is the angle by which current lags voltage; 0 gives unity
	// power factor, 90 gives a purely reactive load.
	CurrentLagDeg float64
}

// SimulatedSource synthesizes three-phase sinusoid ADC codes so the engine
// can run end to end without hardware. Each channel advances its own sample
// clock on every read, matching the one-read-per-instant contract. Not safe
// for concurrent use; the acquisition loop is single-threaded.
type SimulatedSource struct {
	cfg       meter.SamplingWindowConfig
	signals   [3]PhaseSignal
	interval  float64
	noiseCode float64
	rng       *rand.Rand
	calls     [6]int
}

// NewSimulatedSource constructs a source. noiseCode is the standard deviation
// of gaussian code noise; zero disables it.
func NewSimulatedSource(cfg meter.SamplingWindowConfig, signals [3]PhaseSignal, noiseCode float64, seed int64) (*SimulatedSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, sig := range signals {
		if sig.VoltageRMS < 0 || sig.CurrentRMS < 0 {
			return nil, errors.New("simulated source: negative rms")
		}
	}
	return &SimulatedSource{
		cfg:       cfg,
		signals:   signals,
		interval:  cfg.SampleInterval().Seconds(),
		noiseCode: noiseCode,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// ReadCode implements SampleReader.
func (s *SimulatedSource) ReadCode(ch Channel) float64 {
	n := s.calls[ch]
	s.calls[ch] = n + 1

	phase := int(ch) / 2
	sig := s.signals[phase]
	t := float64(n) * s.interval
	angle := 2*math.Pi*s.cfg.LineFrequencyHz*t - float64(phase)*2*math.Pi/3

	var sensorVolts float64
	if int(ch)%2 == 0 {
		mains := math.Sqrt2 * sig.VoltageRMS * math.Sin(angle)
		sensorVolts = mains/s.cfg.VoltageCalibration + s.cfg.ADCRefVolts/2
	} else {
		amps := math.Sqrt2 * sig.CurrentRMS * math.Sin(angle-sig.CurrentLagDeg*math.Pi/180)
		sensorVolts = amps*s.cfg.CurrentSensitivity + s.cfg.CurrentOffsetVolts
	}

	code := sensorVolts / s.cfg.ADCRefVolts * s.cfg.ADCMax
	if s.noiseCode > 0 {
		code += s.rng.NormFloat64() * s.noiseCode
	}
	if code < 0 {
		return 0
	}
	if code > s.cfg.ADCMax {
		return s.cfg.ADCMax
	}
	return code
}

// Rewind resets every channel clock to the start of a window.
func (s *SimulatedSource) Rewind() {
	s.calls = [6]int{}
}
