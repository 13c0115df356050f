package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"pfmon/internal/observability/metrics"
)

// LowPhase names one phase running under the threshold.
type LowPhase struct {
	Phase       string
	PowerFactor float64
}

// Event describes a low power factor condition worth notifying about.
type Event struct {
	Timestamp string
	OverallPF float64
	Threshold float64
	LowPhases []LowPhase
}

// Channel delivers rendered notification content.
type Channel interface {
	Send(ctx context.Context, content string) error
}

// Clock provides time for the cooldown gate.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Notifier renders low-PF events and delivers them through a channel, holding
// a cooldown between sends so a persistently bad load does not flood the
// channel. Each cycle's alert decision is independent; the cooldown lives
// here, not in the measurement core.
type Notifier struct {
	channel  Channel
	template *Template
	logger   *log.Logger
	clock    Clock
	cooldown time.Duration

	mu       sync.Mutex
	lastSent time.Time
}

// Option configures the notifier.
type Option func(*Notifier)

// WithCooldown sets the minimum interval between notifications.
func WithCooldown(interval time.Duration) Option {
	return func(n *Notifier) {
		if interval > 0 {
			n.cooldown = interval
		}
	}
}

// WithClock overrides the default clock.
func WithClock(clock Clock) Option {
	return func(n *Notifier) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// NewNotifier constructs a notifier. A nil template falls back to the default.
func NewNotifier(channel Channel, template *Template, logger *log.Logger, opts ...Option) (*Notifier, error) {
	if channel == nil {
		return nil, errors.New("pf notify: nil channel")
	}
	if template == nil {
		defaultTemplate, err := NewTemplate("")
		if err != nil {
			return nil, err
		}
		template = defaultTemplate
	}
	if logger == nil {
		logger = log.Default()
	}
	n := &Notifier{
		channel:  channel,
		template: template,
		logger:   logger,
		clock:    systemClock{},
		cooldown: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify delivers the event unless the cooldown suppresses it.
func (n *Notifier) Notify(ctx context.Context, event Event) {
	if n == nil || n.channel == nil {
		return
	}
	n.mu.Lock()
	now := n.clock.Now()
	if !n.lastSent.IsZero() && now.Sub(n.lastSent) < n.cooldown {
		n.mu.Unlock()
		return
	}
	n.lastSent = now
	n.mu.Unlock()

	content, err := n.template.Render(event)
	if err != nil {
		n.logger.Printf("pf notify: render error: %v", err)
		metrics.IncNotification("error")
		return
	}
	if err := n.channel.Send(ctx, content); err != nil {
		n.logger.Printf("pf notify: send error: %v", err)
		metrics.IncNotification("error")
		return
	}
	metrics.IncNotification("success")
}
