package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pfmon/internal/auth"
	"pfmon/internal/collector/application"
	"pfmon/internal/collector/infrastructure/excel"
	collectorhttp "pfmon/internal/collector/interfaces/http"
	"pfmon/internal/collector/notify"
	"pfmon/internal/observability/metrics"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init()

	excelLog, err := excel.NewLog(cfg.ExcelPath)
	if err != nil {
		logger.Fatalf("excel log error: %v", err)
	}

	broker := collectorhttp.NewSSEBroker()

	channels := []notify.Channel{collectorhttp.NewAlertStreamChannel(broker)}
	if cfg.NotifyWebhookURL != "" {
		webhook, err := notify.NewWebhookChannel(cfg.NotifyWebhookURL)
		if err != nil {
			logger.Fatalf("notify webhook error: %v", err)
		}
		channels = append(channels, webhook)
	}
	tpl, err := notify.NewTemplate(cfg.NotifyTemplate)
	if err != nil {
		logger.Fatalf("notify template error: %v", err)
	}
	notifier, err := notify.NewNotifier(notify.NewMultiChannel(channels...), tpl, logger, notify.WithCooldown(cfg.NotifyCooldown))
	if err != nil {
		logger.Fatalf("notifier error: %v", err)
	}

	opts := []application.ServiceOption{
		application.WithAppender(excelLog),
		application.WithBroadcaster(broker),
		application.WithNotifier(notifier),
	}

	service, err := application.NewService(cfg.Threshold, cfg.MaxReadings, logger, opts...)
	if err != nil {
		logger.Fatalf("collector service error: %v", err)
	}

	ingestHandler, err := collectorhttp.NewIngestHandler(service, logger)
	if err != nil {
		logger.Fatalf("ingest handler error: %v", err)
	}

	var ingest http.Handler = ingestHandler
	if cfg.IngestSecret != "" {
		ingestAuth := auth.NewIngestAuthMiddleware([]byte(cfg.IngestSecret), time.Duration(cfg.IngestSkewSeconds)*time.Second)
		ingest = ingestAuth.Wrap(ingestHandler)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/data", ingest)
	mux.Handle("/api/readings", collectorhttp.NewReadingsHandler(service))
	mux.Handle("/api/latest", collectorhttp.NewLatestHandler(service))
	mux.Handle("/api/stats", collectorhttp.NewStatsHandler(service))
	mux.Handle("/api/stream", collectorhttp.NewStreamHandler(broker))
	mux.Handle("/api/exports/readings.xlsx", collectorhttp.NewExportXLSXHandler(service))
	mux.Handle("/api/exports/readings.pdf", collectorhttp.NewExportPDFHandler(service))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var handler http.Handler = mux
	if cfg.JWTSecret != "" {
		policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/data"}, nil)
		handler = auth.NewMiddleware([]byte(cfg.JWTSecret), policy).Wrap(mux)
	}

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(handler, logger)}
	logger.Printf("collector listening on %s threshold=%.2f excel=%s", cfg.HTTPAddr, cfg.Threshold, cfg.ExcelPath)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	HTTPAddr          string
	Threshold         float64
	MaxReadings       int
	ExcelPath         string
	NotifyWebhookURL  string
	NotifyTemplate    string
	NotifyCooldown    time.Duration
	JWTSecret         string
	IngestSecret      string
	IngestSkewSeconds int
}

func loadConfig() config {
	cfg := config{
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		Threshold:         getenvFloatDefault("PF_THRESHOLD", 0.85),
		MaxReadings:       getenvIntDefault("MAX_READINGS", 500),
		ExcelPath:         getenvDefault("EXCEL_PATH", "power_factor_log.xlsx"),
		NotifyWebhookURL:  getenvDefault("NOTIFY_WEBHOOK_URL", ""),
		NotifyTemplate:    getenvDefault("NOTIFY_TEMPLATE", ""),
		NotifyCooldown:    getenvDuration("NOTIFY_COOLDOWN", 30*time.Second),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		IngestSecret:      getenvDefault("INGEST_HMAC_SECRET", ""),
		IngestSkewSeconds: getenvIntDefault("INGEST_MAX_SKEW_SECONDS", 300),
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		log.Fatal("PF_THRESHOLD must be in (0,1]")
	}
	if cfg.MaxReadings <= 0 {
		log.Fatal("MAX_READINGS must be positive")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
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

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
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

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps the SSE stream working through the logging wrapper.
func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
