package application

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"pfmon/internal/meter/acquisition"
	meter "pfmon/internal/meter/domain"
)

// SignalConfig describes one simulated phase.
type SignalConfig struct {
	VoltageRMS    float64 `yaml:"voltage_rms"`
	CurrentRMS    float64 `yaml:"current_rms"`
	CurrentLagDeg float64 `yaml:"current_lag_deg"`
}

// SamplingConfig mirrors meter.SamplingWindowConfig in yaml form.
type SamplingConfig struct {
	SamplesPerCycle    int     `yaml:"samples_per_cycle"`
	Cycles             int     `yaml:"cycles"`
	LineFrequencyHz    float64 `yaml:"line_frequency_hz"`
	ADCMax             float64 `yaml:"adc_max"`
	ADCRefVolts        float64 `yaml:"adc_ref_volts"`
	VoltageCalibration float64 `yaml:"voltage_calibration"`
	CurrentSensitivity float64 `yaml:"current_sensitivity"`
	CurrentOffsetVolts float64 `yaml:"current_offset_volts"`
	NoiseFloorAmps     float64 `yaml:"noise_floor_amps"`
	AlertThreshold     float64 `yaml:"alert_threshold"`
}

// Config is the meter daemon configuration. Defaults describe a 12-bit ADC
// board measuring a 230 V / 50 Hz supply through a 30 A hall sensor.
type Config struct {
	Sampling           SamplingConfig  `yaml:"sampling"`
	CollectorURL       string          `yaml:"collector_url"`
	IngestSecret       string          `yaml:"ingest_secret"`
	PublishIntervalRaw string          `yaml:"publish_interval"`
	Simulation         SimulationBlock `yaml:"simulation"`

	// PublishInterval is PublishIntervalRaw parsed; resolved by LoadConfig.
	PublishInterval time.Duration `yaml:"-"`
}

// SimulationBlock configures the synthetic sample source.
type SimulationBlock struct {
	Enabled   bool            `yaml:"enabled"`
	NoiseCode float64         `yaml:"noise_code"`
	Seed      int64           `yaml:"seed"`
	Signals   [3]SignalConfig `yaml:"signals"`
}

// LoadConfig loads the daemon config from the yaml file named by METER_CONFIG
// with env overrides, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		Sampling: SamplingConfig{
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
		},
		CollectorURL:    getenvDefault("COLLECTOR_URL", "http://localhost:8080/api/data"),
		IngestSecret:    os.Getenv("INGEST_HMAC_SECRET"),
		PublishInterval: getenvDuration("PUBLISH_INTERVAL", 2*time.Second),
		Simulation: SimulationBlock{
			Enabled: true,
			Seed:    1,
			Signals: [3]SignalConfig{
				{VoltageRMS: 230, CurrentRMS: 2.0, CurrentLagDeg: 18},
				{VoltageRMS: 231, CurrentRMS: 2.4, CurrentLagDeg: 26},
				{VoltageRMS: 229, CurrentRMS: 1.8, CurrentLagDeg: 12},
			},
		},
	}

	if path := os.Getenv("METER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.PublishIntervalRaw != "" {
		parsed, err := time.ParseDuration(cfg.PublishIntervalRaw)
		if err != nil {
			return cfg, err
		}
		cfg.PublishInterval = parsed
	}
	if threshold := getenvFloat("PF_ALERT_THRESHOLD", 0); threshold > 0 {
		cfg.Sampling.AlertThreshold = threshold
	}

	window := cfg.Window()
	if err := window.Validate(); err != nil {
		return cfg, err
	}
	if cfg.CollectorURL == "" {
		return cfg, errors.New("meter config: collector url is required")
	}
	if cfg.PublishInterval < 0 {
		return cfg, errors.New("meter config: negative publish interval")
	}
	return cfg, nil
}

// Window converts the yaml sampling block to the domain config.
func (c Config) Window() meter.SamplingWindowConfig {
	return meter.SamplingWindowConfig{
		SamplesPerCycle:    c.Sampling.SamplesPerCycle,
		Cycles:             c.Sampling.Cycles,
		LineFrequencyHz:    c.Sampling.LineFrequencyHz,
		ADCMax:             c.Sampling.ADCMax,
		ADCRefVolts:        c.Sampling.ADCRefVolts,
		VoltageCalibration: c.Sampling.VoltageCalibration,
		CurrentSensitivity: c.Sampling.CurrentSensitivity,
		CurrentOffsetVolts: c.Sampling.CurrentOffsetVolts,
		NoiseFloorAmps:     c.Sampling.NoiseFloorAmps,
		AlertThreshold:     c.Sampling.AlertThreshold,
	}
}

// Signals converts the simulation block to acquisition signal descriptions.
func (c Config) Signals() [3]acquisition.PhaseSignal {
	var signals [3]acquisition.PhaseSignal
	for i, sig := range c.Simulation.Signals {
		signals[i] = acquisition.PhaseSignal{
			VoltageRMS:    sig.VoltageRMS,
			CurrentRMS:    sig.CurrentRMS,
			CurrentLagDeg: sig.CurrentLagDeg,
		}
	}
	return signals
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
