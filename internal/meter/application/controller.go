package application

import (
	"context"
	"errors"
	"log"
	"time"

	"pfmon/internal/meter/acquisition"
	meter "pfmon/internal/meter/domain"
)

// SnapshotPublisher is the publish boundary. Publish may block for unbounded
// network latency; the controller tolerates that and does not retry.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap meter.Snapshot) error
}

// CycleState names the controller's position in the measurement sequence.
type CycleState string

const (
	StateIdle        CycleState = "idle"
	StateSampling    CycleState = "sampling"
	StateAggregating CycleState = "aggregating"
	StateEvaluating  CycleState = "evaluating"
	StatePublishing  CycleState = "publishing"
)

// Controller runs the measurement cycle: sample each phase in turn, combine,
// evaluate the alert, publish. Everything happens on the calling goroutine;
// phase windows never overlap, and a window always runs to completion once
// started. The time of the last publish is a controller field gating the next
// cycle start, not shared state.
type Controller struct {
	cfg       meter.SamplingWindowConfig
	reader    acquisition.SampleReader
	publisher SnapshotPublisher
	evaluator AlertEvaluator
	logger    *log.Logger

	publishInterval time.Duration
	lastPublish     time.Time
	state           CycleState
	now             func() time.Time
	schedOpts       []SchedulerOption
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerClock overrides the clock used for cycle gating, for tests.
func WithControllerClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSchedulerOptions forwards options to each per-phase scheduler.
func WithSchedulerOptions(opts ...SchedulerOption) ControllerOption {
	return func(c *Controller) {
		c.schedOpts = opts
	}
}

// NewController constructs a cycle controller.
func NewController(cfg meter.SamplingWindowConfig, reader acquisition.SampleReader, publisher SnapshotPublisher, publishInterval time.Duration, logger *log.Logger, opts ...ControllerOption) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reader == nil {
		return nil, errors.New("cycle controller: nil sample reader")
	}
	if publisher == nil {
		return nil, errors.New("cycle controller: nil publisher")
	}
	if publishInterval < 0 {
		return nil, errors.New("cycle controller: negative publish interval")
	}
	if logger == nil {
		logger = log.Default()
	}
	c := &Controller{
		cfg:             cfg,
		reader:          reader,
		publisher:       publisher,
		evaluator:       NewAlertEvaluator(cfg.AlertThreshold),
		logger:          logger,
		publishInterval: publishInterval,
		state:           StateIdle,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns the controller's current position in the cycle.
func (c *Controller) State() CycleState {
	return c.state
}

// RunCycle executes one full measurement cycle and returns the snapshot it
// produced. The snapshot is returned even when publishing fails; the publish
// error is reported and the next cycle simply starts later.
func (c *Controller) RunCycle(ctx context.Context) (meter.Snapshot, error) {
	var phases [3]meter.PhaseMetrics

	c.state = StateSampling
	for idx, phase := range meter.Phases {
		metrics, err := c.samplePhase(phase)
		if err != nil {
			c.state = StateIdle
			return meter.Snapshot{}, err
		}
		phases[idx] = metrics
	}

	c.state = StateAggregating
	totals := Aggregate(phases)

	c.state = StateEvaluating
	alert := c.evaluator.Evaluate(phases)

	snap := meter.Snapshot{Phases: phases, Totals: totals, AlertRaised: alert}

	c.state = StatePublishing
	err := c.publisher.Publish(ctx, snap)
	c.lastPublish = c.now()
	c.state = StateIdle
	return snap, err
}

// samplePhase runs one window for one phase. The scheduler is built fresh so
// each phase anchors to its own acquisition start.
func (c *Controller) samplePhase(phase meter.Phase) (meter.PhaseMetrics, error) {
	sched, err := NewSampleScheduler(c.cfg.TotalSamples(), c.cfg.SampleInterval(), c.schedOpts...)
	if err != nil {
		return meter.PhaseMetrics{}, err
	}
	voltageCh, currentCh := acquisition.PhaseChannels(phase)
	engine := NewPhaseEngine(c.cfg)
	sched.Run(func(int) {
		engine.Add(c.reader.ReadCode(voltageCh), c.reader.ReadCode(currentCh))
	})
	return engine.Finalize(), nil
}

// Run loops cycles until the context is cancelled, pacing them by the publish
// interval measured from the end of the previous publish.
func (c *Controller) Run(ctx context.Context) {
	for {
		if err := c.waitForGate(ctx); err != nil {
			return
		}
		snap, err := c.RunCycle(ctx)
		if err != nil {
			c.logger.Printf("measurement cycle: publish error: %v", err)
			continue
		}
		c.logger.Printf("measurement cycle: overall_pf=%.3f total_p=%.1fW alert=%t",
			snap.Totals.OverallPowerFactor, snap.Totals.RealPower, snap.AlertRaised)
	}
}

func (c *Controller) waitForGate(ctx context.Context) error {
	if c.lastPublish.IsZero() || c.publishInterval == 0 {
		return ctx.Err()
	}
	due := c.lastPublish.Add(c.publishInterval)
	wait := due.Sub(c.now())
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
