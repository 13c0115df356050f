package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"pfmon/internal/collector/application"
	collector "pfmon/internal/collector/domain"
	"pfmon/internal/observability/metrics"
)

// IngestHandler accepts snapshot POSTs from the meter daemon.
type IngestHandler struct {
	service *application.Service
	logger  *log.Logger
	now     func() time.Time
}

// NewIngestHandler constructs an ingest handler.
func NewIngestHandler(service *application.Service, logger *log.Logger) (*IngestHandler, error) {
	if service == nil {
		return nil, errors.New("snapshot ingest: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &IngestHandler{service: service, logger: logger, now: time.Now}, nil
}

// ServeHTTP handles POST /api/data. Blocks missing from the payload stay
// zero-valued; the server attaches the arrival timestamp.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := h.now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Printf("snapshot ingest: read body error: %v", err)
		metrics.IncIngestError("read_body")
		metrics.ObserveIngest("error", h.now().Sub(start))
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var reading collector.Reading
	if err := json.Unmarshal(body, &reading); err != nil {
		h.logger.Printf("snapshot ingest: decode error: %v", err)
		metrics.IncIngestError("decode")
		metrics.ObserveIngest("error", h.now().Sub(start))
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	reading.Timestamp = start.Format(collector.TimestampLayout)

	h.service.Record(r.Context(), reading)
	metrics.ObserveReading(reading.OverallPF, reading.TotalRealPower, reading.AlertRaised)
	metrics.ObserveIngest("success", h.now().Sub(start))

	h.logger.Printf("reading accepted: overall_pf=%.3f total_p=%.1fW alert=%t",
		reading.OverallPF, reading.TotalRealPower, reading.AlertRaised)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ReadingsHandler serves recent readings.
type ReadingsHandler struct {
	service *application.Service
}

// NewReadingsHandler constructs a readings handler.
func NewReadingsHandler(service *application.Service) *ReadingsHandler {
	return &ReadingsHandler{service: service}
}

// ServeHTTP handles GET /api/readings.
func (h *ReadingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	count := 50
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "count must be a positive integer", http.StatusBadRequest)
			return
		}
		count = parsed
	}
	resp := map[string]any{
		"readings":    h.service.Recent(count),
		"threshold":   h.service.Threshold(),
		"total_count": h.service.Count(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// LatestHandler serves the most recent reading.
type LatestHandler struct {
	service *application.Service
}

// NewLatestHandler constructs a latest handler.
func NewLatestHandler(service *application.Service) *LatestHandler {
	return &LatestHandler{service: service}
}

// ServeHTTP handles GET /api/latest.
func (h *LatestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	resp := map[string]any{"reading": nil, "threshold": h.service.Threshold()}
	if reading, ok := h.service.Latest(); ok {
		resp["reading"] = reading
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// StatsHandler serves reading statistics.
type StatsHandler struct {
	service *application.Service
}

// NewStatsHandler constructs a stats handler.
func NewStatsHandler(service *application.Service) *StatsHandler {
	return &StatsHandler{service: service}
}

// ServeHTTP handles GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.service.Stats())
}
