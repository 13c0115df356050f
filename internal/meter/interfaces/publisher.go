package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"pfmon/internal/auth"
	meter "pfmon/internal/meter/domain"
)

// WirePhase is the per-phase block of the snapshot wire shape. Values are
// rounded before encoding: voltage to 2 decimals, current and power factor to
// 3, power figures to 2.
type WirePhase struct {
	Voltage       float64 `json:"voltage"`
	Current       float64 `json:"current"`
	PowerFactor   float64 `json:"power_factor"`
	RealPower     float64 `json:"real_power"`
	ApparentPower float64 `json:"apparent_power"`
	ReactivePower float64 `json:"reactive_power"`
}

// WireSnapshot is the JSON body accepted by the collector's ingest endpoint.
type WireSnapshot struct {
	PhaseR             WirePhase `json:"phase_r"`
	PhaseY             WirePhase `json:"phase_y"`
	PhaseB             WirePhase `json:"phase_b"`
	OverallPF          float64   `json:"overall_pf"`
	TotalRealPower     float64   `json:"total_real_power"`
	TotalApparentPower float64   `json:"total_apparent_power"`
	TotalReactivePower float64   `json:"total_reactive_power"`
	AlertRaised        bool      `json:"alert_raised"`
}

// EncodeSnapshot converts a snapshot to its wire form.
func EncodeSnapshot(snap meter.Snapshot) WireSnapshot {
	return WireSnapshot{
		PhaseR:             encodePhase(snap.Metrics(meter.PhaseR)),
		PhaseY:             encodePhase(snap.Metrics(meter.PhaseY)),
		PhaseB:             encodePhase(snap.Metrics(meter.PhaseB)),
		OverallPF:          round(snap.Totals.OverallPowerFactor, 3),
		TotalRealPower:     round(snap.Totals.RealPower, 2),
		TotalApparentPower: round(snap.Totals.ApparentPower, 2),
		TotalReactivePower: round(snap.Totals.ReactivePower, 2),
		AlertRaised:        snap.AlertRaised,
	}
}

func encodePhase(m meter.PhaseMetrics) WirePhase {
	return WirePhase{
		Voltage:       round(m.VoltageRMS, 2),
		Current:       round(m.CurrentRMS, 3),
		PowerFactor:   round(m.PowerFactor, 3),
		RealPower:     round(m.RealPower, 2),
		ApparentPower: round(m.ApparentPower, 2),
		ReactivePower: round(m.ReactivePower, 2),
	}
}

func round(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(value*scale) / scale
}

// HTTPPublisher posts snapshots to the collector, signing each request with
// the ingest secret. It reports failure as an error and never retries; a
// missed snapshot is simply superseded by the next cycle's.
type HTTPPublisher struct {
	url    string
	secret []byte
	client *http.Client
	now    func() time.Time
}

// HTTPPublisherOption configures an HTTPPublisher.
type HTTPPublisherOption func(*HTTPPublisher)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPPublisherOption {
	return func(p *HTTPPublisher) {
		if client != nil {
			p.client = client
		}
	}
}

// WithPublisherClock overrides the signing timestamp clock, for tests.
func WithPublisherClock(now func() time.Time) HTTPPublisherOption {
	return func(p *HTTPPublisher) {
		if now != nil {
			p.now = now
		}
	}
}

// NewHTTPPublisher constructs a publisher posting to url.
func NewHTTPPublisher(url string, secret []byte, opts ...HTTPPublisherOption) (*HTTPPublisher, error) {
	if url == "" {
		return nil, errors.New("snapshot publisher: empty url")
	}
	p := &HTTPPublisher{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish implements application.SnapshotPublisher.
func (p *HTTPPublisher) Publish(ctx context.Context, snap meter.Snapshot) error {
	body, err := json.Marshal(EncodeSnapshot(snap))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if len(p.secret) > 0 {
		timestamp := strconv.FormatInt(p.now().Unix(), 10)
		req.Header.Set("X-Ingest-Timestamp", timestamp)
		req.Header.Set("X-Ingest-Signature", auth.SignIngest(p.secret, timestamp, body))
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("snapshot publisher: collector returned %d", resp.StatusCode)
	}
	return nil
}
