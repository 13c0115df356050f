package application

import (
	"context"
	"errors"
	"log"
	"sync"

	collector "pfmon/internal/collector/domain"
	"pfmon/internal/collector/notify"
)

// ReadingAppender receives every accepted reading for durable logging.
type ReadingAppender interface {
	Append(reading collector.Reading, threshold float64) error
}

// ReadingBroadcaster pushes accepted readings to live stream clients.
type ReadingBroadcaster interface {
	Broadcast(reading collector.Reading)
}

// AlertNotifier delivers low power factor notifications.
type AlertNotifier interface {
	Notify(ctx context.Context, event notify.Event)
}

// Service owns the bounded in-memory reading log and drives the side effects
// of accepting a reading: spreadsheet append, live stream fan-out, and the
// low-PF notification policy. History beyond the ring is deliberately not
// kept.
type Service struct {
	threshold float64
	capacity  int
	logger    *log.Logger

	appender    ReadingAppender
	broadcaster ReadingBroadcaster
	notifier    AlertNotifier

	mu       sync.Mutex
	readings []collector.Reading
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithAppender attaches a durable reading log.
func WithAppender(appender ReadingAppender) ServiceOption {
	return func(s *Service) { s.appender = appender }
}

// WithBroadcaster attaches a live stream broadcaster.
func WithBroadcaster(broadcaster ReadingBroadcaster) ServiceOption {
	return func(s *Service) { s.broadcaster = broadcaster }
}

// WithNotifier attaches an alert notifier.
func WithNotifier(notifier AlertNotifier) ServiceOption {
	return func(s *Service) { s.notifier = notifier }
}

// NewService constructs the collector service.
func NewService(threshold float64, capacity int, logger *log.Logger, opts ...ServiceOption) (*Service, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, errors.New("collector service: threshold must be in (0,1]")
	}
	if capacity <= 0 {
		return nil, errors.New("collector service: capacity must be positive")
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{threshold: threshold, capacity: capacity, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Threshold returns the configured power factor threshold.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// Record accepts one reading: stores it in the ring, appends it to the
// durable log, fans it out to stream clients, and applies the notification
// policy. The reading is stored even when a side effect fails.
func (s *Service) Record(ctx context.Context, reading collector.Reading) {
	s.mu.Lock()
	s.readings = append(s.readings, reading)
	if len(s.readings) > s.capacity {
		s.readings = s.readings[len(s.readings)-s.capacity:]
	}
	s.mu.Unlock()

	if s.appender != nil {
		if err := s.appender.Append(reading, s.threshold); err != nil {
			s.logger.Printf("reading log: append error: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(reading)
	}
	if s.notifier != nil {
		if event, ok := s.alertEvent(reading); ok {
			s.notifier.Notify(ctx, event)
		}
	}
}

// alertEvent applies the notification policy: notify when any phase is loaded
// but under the threshold, or when the overall power factor falls below it.
func (s *Service) alertEvent(reading collector.Reading) (notify.Event, bool) {
	event := notify.Event{
		Timestamp: reading.Timestamp,
		OverallPF: reading.OverallPF,
		Threshold: s.threshold,
	}
	for i, block := range reading.Blocks() {
		if block.PowerFactor > 0.01 && block.PowerFactor < s.threshold {
			event.LowPhases = append(event.LowPhases, notify.LowPhase{
				Phase:       collector.PhaseNames[i],
				PowerFactor: block.PowerFactor,
			})
		}
	}
	if len(event.LowPhases) == 0 && reading.OverallPF >= s.threshold {
		return notify.Event{}, false
	}
	return event, true
}

// Latest returns the most recent reading.
func (s *Service) Latest() (collector.Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.readings) == 0 {
		return collector.Reading{}, false
	}
	return s.readings[len(s.readings)-1], true
}

// Recent returns up to count readings, oldest first. count <= 0 returns all.
func (s *Service) Recent(count int) []collector.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	if count <= 0 || count > len(s.readings) {
		count = len(s.readings)
	}
	out := make([]collector.Reading, count)
	copy(out, s.readings[len(s.readings)-count:])
	return out
}

// Count returns the number of retained readings.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readings)
}

// Stats summarizes the retained readings. Power factor aggregates skip
// readings where the respective pf is zero, so dead-band windows do not skew
// the figures.
func (s *Service) Stats() collector.Stats {
	readings := s.Recent(0)

	stats := collector.Stats{
		Count:     len(readings),
		Threshold: s.threshold,
		Phases:    make(map[string]collector.PhaseStats, len(collector.PhaseNames)),
	}

	for i, name := range collector.PhaseNames {
		var ps collector.PhaseStats
		var pfSum, vSum, cSum float64
		var pfCount int
		for _, reading := range readings {
			block := reading.Blocks()[i]
			vSum += block.Voltage
			cSum += block.Current
			if block.PowerFactor > 0 {
				pfSum += block.PowerFactor
				pfCount++
				if ps.MinPF == 0 || block.PowerFactor < ps.MinPF {
					ps.MinPF = block.PowerFactor
				}
				if block.PowerFactor > ps.MaxPF {
					ps.MaxPF = block.PowerFactor
				}
				if block.PowerFactor < s.threshold {
					ps.LowPFCount++
				}
			}
		}
		if pfCount > 0 {
			ps.AvgPF = pfSum / float64(pfCount)
		}
		if len(readings) > 0 {
			ps.AvgVoltage = vSum / float64(len(readings))
			ps.AvgCurrent = cSum / float64(len(readings))
		}
		stats.Phases[name] = ps
	}

	var pfSum float64
	var pfCount int
	for _, reading := range readings {
		if reading.OverallPF <= 0 {
			continue
		}
		pfSum += reading.OverallPF
		pfCount++
		if stats.Overall.MinPF == 0 || reading.OverallPF < stats.Overall.MinPF {
			stats.Overall.MinPF = reading.OverallPF
		}
		if reading.OverallPF > stats.Overall.MaxPF {
			stats.Overall.MaxPF = reading.OverallPF
		}
	}
	if pfCount > 0 {
		stats.Overall.AvgPF = pfSum / float64(pfCount)
	}
	return stats
}
