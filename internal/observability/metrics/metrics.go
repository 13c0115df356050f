package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "pfmon_"

	resultSuccess = "success"
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestErrors   *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	readingAlerts prometheus.Counter
	overallPF     prometheus.Gauge
	totalRealW    prometheus.Gauge

	notificationsTotal *prometheus.CounterVec

	exportTotal *prometheus.CounterVec

	streamClients prometheus.Gauge
)

// Init registers collector metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total snapshot ingest requests by result",
			},
			[]string{"result"},
		)
		ingestErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_errors_total",
				Help: "Total snapshot ingest errors by reason",
			},
			[]string{"reason"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Snapshot ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		readingAlerts = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "reading_alerts_total",
				Help: "Total accepted readings carrying a raised alert",
			},
		)
		overallPF = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "overall_power_factor",
				Help: "Overall power factor of the latest reading",
			},
		)
		totalRealW = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "total_real_power_watts",
				Help: "Total real power of the latest reading",
			},
		)

		notificationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "Total low power factor notifications by result",
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total readings export operations by format and result",
			},
			[]string{"format", "result"},
		)

		streamClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "stream_clients",
				Help: "Connected SSE stream clients",
			},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestErrors,
			ingestLatency,
			readingAlerts,
			overallPF,
			totalRealW,
			notificationsTotal,
			exportTotal,
			streamClients,
		)
	})
}

// ObserveIngest records ingest request duration and result.
func ObserveIngest(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ingestRequests != nil {
		ingestRequests.WithLabelValues(result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncIngestError increments the ingest error counter.
func IncIngestError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if ingestErrors != nil {
		ingestErrors.WithLabelValues(reason).Inc()
	}
}

// ObserveReading updates the latest-reading gauges.
func ObserveReading(overall float64, totalReal float64, alert bool) {
	if overallPF != nil {
		overallPF.Set(overall)
	}
	if totalRealW != nil {
		totalRealW.Set(totalReal)
	}
	if alert && readingAlerts != nil {
		readingAlerts.Inc()
	}
}

// IncNotification increments the notification counter.
func IncNotification(result string) {
	if result == "" {
		result = resultSuccess
	}
	if notificationsTotal != nil {
		notificationsTotal.WithLabelValues(result).Inc()
	}
}

// IncExport increments the export counter.
func IncExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

// SetStreamClients sets the connected stream client gauge.
func SetStreamClients(count int) {
	if streamClients != nil {
		streamClients.Set(float64(count))
	}
}
