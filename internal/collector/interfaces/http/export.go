package http

import (
	"net/http"

	"pfmon/internal/collector/application"
	"pfmon/internal/collector/interfaces"
	"pfmon/internal/observability/metrics"
)

// ExportXLSXHandler serves the recent readings as a downloadable workbook.
type ExportXLSXHandler struct {
	service *application.Service
}

// NewExportXLSXHandler constructs an export handler.
func NewExportXLSXHandler(service *application.Service) *ExportXLSXHandler {
	return &ExportXLSXHandler{service: service}
}

// ServeHTTP handles GET /api/exports/readings.xlsx.
func (h *ExportXLSXHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	data, err := interfaces.BuildReadingsXLSX(h.service.Recent(0), h.service.Threshold())
	if err != nil {
		metrics.IncExport("xlsx", "error")
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.IncExport("xlsx", "success")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="readings.xlsx"`)
	_, _ = w.Write(data)
}

// ExportPDFHandler serves a summary report of recent readings.
type ExportPDFHandler struct {
	service *application.Service
}

// NewExportPDFHandler constructs an export handler.
func NewExportPDFHandler(service *application.Service) *ExportPDFHandler {
	return &ExportPDFHandler{service: service}
}

// ServeHTTP handles GET /api/exports/readings.pdf.
func (h *ExportPDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	data, err := interfaces.BuildReadingsPDF(h.service.Recent(0), h.service.Stats())
	if err != nil {
		metrics.IncExport("pdf", "error")
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.IncExport("pdf", "success")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="readings.pdf"`)
	_, _ = w.Write(data)
}
