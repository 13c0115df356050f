package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	collector "pfmon/internal/collector/domain"
	"pfmon/internal/collector/notify"
)

type stubAppender struct {
	rows []collector.Reading
	err  error
}

func (a *stubAppender) Append(reading collector.Reading, _ float64) error {
	a.rows = append(a.rows, reading)
	return a.err
}

type stubBroadcaster struct {
	readings []collector.Reading
}

func (b *stubBroadcaster) Broadcast(reading collector.Reading) {
	b.readings = append(b.readings, reading)
}

type stubNotifier struct {
	events []notify.Event
}

func (n *stubNotifier) Notify(_ context.Context, event notify.Event) {
	n.events = append(n.events, event)
}

func healthyReading(overallPF float64) collector.Reading {
	block := collector.PhaseReading{Voltage: 230, Current: 5, PowerFactor: 0.95, RealPower: 1092.5, ApparentPower: 1150, ReactivePower: 359.1}
	return collector.Reading{
		Timestamp: "2026-08-23 10:00:00",
		PhaseR:    block,
		PhaseY:    block,
		PhaseB:    block,
		OverallPF: overallPF,
	}
}

func TestServiceRingTrimsToCapacity(t *testing.T) {
	svc, err := NewService(0.85, 3, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	for i := 0; i < 5; i++ {
		r := healthyReading(0.95)
		r.Timestamp = fmt.Sprintf("2026-08-23 10:00:%02d", i)
		svc.Record(context.Background(), r)
	}

	if svc.Count() != 3 {
		t.Fatalf("retained readings: got %d, want 3", svc.Count())
	}
	recent := svc.Recent(0)
	if recent[0].Timestamp != "2026-08-23 10:00:02" {
		t.Fatalf("oldest retained: got %q, want the third reading", recent[0].Timestamp)
	}
	latest, ok := svc.Latest()
	if !ok || latest.Timestamp != "2026-08-23 10:00:04" {
		t.Fatalf("latest: got %q ok=%t", latest.Timestamp, ok)
	}
}

func TestServiceRecentReturnsOldestFirst(t *testing.T) {
	svc, err := NewService(0.85, 10, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	for i := 0; i < 4; i++ {
		r := healthyReading(0.95)
		r.Timestamp = fmt.Sprintf("2026-08-23 11:00:%02d", i)
		svc.Record(context.Background(), r)
	}

	recent := svc.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("recent(2): got %d readings", len(recent))
	}
	if recent[0].Timestamp != "2026-08-23 11:00:02" || recent[1].Timestamp != "2026-08-23 11:00:03" {
		t.Fatalf("recent order: got %q then %q", recent[0].Timestamp, recent[1].Timestamp)
	}
}

func TestServiceSideEffects(t *testing.T) {
	appender := &stubAppender{}
	broadcaster := &stubBroadcaster{}
	svc, err := NewService(0.85, 10, nil, WithAppender(appender), WithBroadcaster(broadcaster))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.Record(context.Background(), healthyReading(0.95))

	if len(appender.rows) != 1 {
		t.Fatalf("appended rows: got %d, want 1", len(appender.rows))
	}
	if len(broadcaster.readings) != 1 {
		t.Fatalf("broadcasts: got %d, want 1", len(broadcaster.readings))
	}
}

func TestServiceStoresReadingWhenAppendFails(t *testing.T) {
	appender := &stubAppender{err: errors.New("disk full")}
	svc, err := NewService(0.85, 10, nil, WithAppender(appender))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.Record(context.Background(), healthyReading(0.95))

	if svc.Count() != 1 {
		t.Fatal("reading dropped on append error")
	}
}

func TestServiceNotificationPolicy(t *testing.T) {
	cases := []struct {
		name       string
		mutate     func(*collector.Reading)
		wantNotify bool
		wantPhases int
	}{
		{"healthy", func(r *collector.Reading) {}, false, 0},
		{"one phase low", func(r *collector.Reading) { r.PhaseY.PowerFactor = 0.5 }, true, 1},
		{"overall low", func(r *collector.Reading) { r.OverallPF = 0.7 }, true, 0},
		{"idle phase ignored", func(r *collector.Reading) { r.PhaseB.PowerFactor = 0 }, false, 0},
		{"two phases low", func(r *collector.Reading) {
			r.PhaseR.PowerFactor = 0.6
			r.PhaseB.PowerFactor = 0.4
		}, true, 2},
	}
	for _, tc := range cases {
		notifier := &stubNotifier{}
		svc, err := NewService(0.85, 10, nil, WithNotifier(notifier))
		if err != nil {
			t.Fatalf("%s: new service: %v", tc.name, err)
		}
		reading := healthyReading(0.95)
		tc.mutate(&reading)
		svc.Record(context.Background(), reading)

		if got := len(notifier.events) == 1; got != tc.wantNotify {
			t.Fatalf("%s: notified=%t, want %t", tc.name, got, tc.wantNotify)
		}
		if tc.wantNotify && len(notifier.events[0].LowPhases) != tc.wantPhases {
			t.Fatalf("%s: low phases: got %d, want %d", tc.name, len(notifier.events[0].LowPhases), tc.wantPhases)
		}
	}
}

func TestServiceStatsSkipsIdleWindows(t *testing.T) {
	svc, err := NewService(0.85, 10, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	loaded := healthyReading(0.95)
	loaded.PhaseR.PowerFactor = 0.9
	svc.Record(context.Background(), loaded)

	low := healthyReading(0.7)
	low.PhaseR.PowerFactor = 0.6
	svc.Record(context.Background(), low)

	idle := healthyReading(0)
	idle.PhaseR = collector.PhaseReading{Voltage: 230}
	idle.PhaseY = collector.PhaseReading{Voltage: 230}
	idle.PhaseB = collector.PhaseReading{Voltage: 230}
	svc.Record(context.Background(), idle)

	stats := svc.Stats()
	if stats.Count != 3 {
		t.Fatalf("count: got %d, want 3", stats.Count)
	}
	r := stats.Phases["R"]
	if math.Abs(r.AvgPF-0.75) > 1e-9 {
		t.Fatalf("phase R avg pf: got %v, want 0.75 (idle window skipped)", r.AvgPF)
	}
	if r.MinPF != 0.6 || r.MaxPF != 0.9 {
		t.Fatalf("phase R pf range: got [%v, %v], want [0.6, 0.9]", r.MinPF, r.MaxPF)
	}
	if r.LowPFCount != 1 {
		t.Fatalf("phase R low pf count: got %d, want 1", r.LowPFCount)
	}
	if math.Abs(stats.Overall.AvgPF-0.825) > 1e-9 {
		t.Fatalf("overall avg pf: got %v, want 0.825", stats.Overall.AvgPF)
	}
	if stats.Overall.MinPF != 0.7 || stats.Overall.MaxPF != 0.95 {
		t.Fatalf("overall pf range: got [%v, %v]", stats.Overall.MinPF, stats.Overall.MaxPF)
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(0, 10, nil); err == nil {
		t.Fatal("zero threshold accepted")
	}
	if _, err := NewService(1.2, 10, nil); err == nil {
		t.Fatal("threshold above 1 accepted")
	}
	if _, err := NewService(0.85, 0, nil); err == nil {
		t.Fatal("zero capacity accepted")
	}
}
