// Package http serves the interactive dashboard: a single page whose
// controls re-run the full pipeline on every change, plus the JSON data
// API behind it, report export, and the operational endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MidoraAholo/weather-dashboard/internal/domain"
	"github.com/MidoraAholo/weather-dashboard/internal/observability"
	"github.com/MidoraAholo/weather-dashboard/internal/pipeline"
	"github.com/MidoraAholo/weather-dashboard/internal/report"
)

// PipelineRunner executes analysis runs and reports readiness.
type PipelineRunner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
	CheckReadiness(ctx context.Context) error
}

// Defaults are the control values the dashboard starts from; every one
// can be overridden per request.
type Defaults struct {
	Source      string
	Threshold   float64
	RollingDays int
	Bins        int
}

// Server exposes the dashboard UI, data API, and health/metrics routes.
type Server struct {
	httpServer *http.Server
	pipeline   PipelineRunner
	pdf        *report.PDFRenderer
	defaults   Defaults
	reportDir  string
	metrics    *observability.Metrics
	logger     *slog.Logger
	tmpl       *template.Template
}

// NewServer creates the dashboard HTTP server.
func NewServer(addr string, pipe PipelineRunner, pdf *report.PDFRenderer, defaults Defaults, reportDir string, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		pipeline:  pipe,
		pdf:       pdf,
		defaults:  defaults,
		reportDir: reportDir,
		metrics:   metrics,
		logger:    logger,
		tmpl:      template.Must(template.New("dashboard").Parse(dashboardHTML)),
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/run", s.handleRun)
	mux.HandleFunc("POST /api/export", s.handleExport)
	mux.Handle("GET /reports/", http.StripPrefix("/reports/", http.FileServer(http.Dir(reportDir))))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type dashboardData struct {
	Title       string
	Source      string
	Threshold   float64
	RollingDays int
	Bins        int
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := dashboardData{
		Title:       "Station Weather Dashboard",
		Source:      s.defaults.Source,
		Threshold:   s.defaults.Threshold,
		RollingDays: s.defaults.RollingDays,
		Bins:        s.defaults.Bins,
	}
	if err := s.tmpl.Execute(w, data); err != nil {
		s.logger.Error("dashboard template failed", "error", err)
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r, s.defaults)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// exportResponse reports the written report files. PDFError is set when
// HTML succeeded but the PDF conversion failed; the HTML stays valid.
type exportResponse struct {
	HTML     string `json:"html"`
	PDF      string `json:"pdf,omitempty"`
	PDFError string `json:"pdf_error,omitempty"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r, s.defaults)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}

	rep := report.Build("Station weather report", result.Source, result.Stats,
		result.Summaries, result.Anomalies, result.Charts)

	name := "report-" + rep.GeneratedAt.UTC().Format("20060102-150405") + "-" + rep.ID[:8]
	htmlPath := filepath.Join(s.reportDir, name+".html")
	if err := report.SaveHTML(htmlPath, rep); err != nil {
		s.metrics.ReportErrors.Inc()
		s.logger.Error("report html failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.metrics.ReportsRendered.WithLabelValues("html").Inc()

	resp := exportResponse{HTML: name + ".html"}
	if r.URL.Query().Get("format") == "pdf" {
		pdfPath := filepath.Join(s.reportDir, name+".pdf")
		if err := s.pdf.Render(r.Context(), htmlPath, pdfPath); err != nil {
			s.metrics.ReportErrors.Inc()
			s.logger.Warn("pdf conversion failed, html report kept", "error", err)
			resp.PDFError = err.Error()
		} else {
			s.metrics.ReportsRendered.WithLabelValues("pdf").Inc()
			resp.PDF = name + ".pdf"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.pipeline.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// parseRequest builds a pipeline request from query parameters, filling
// gaps from the configured defaults.
func parseRequest(r *http.Request, defaults Defaults) (pipeline.Request, error) {
	q := r.URL.Query()

	req := pipeline.Request{
		Source:      defaults.Source,
		Threshold:   defaults.Threshold,
		RollingDays: defaults.RollingDays,
		Bins:        defaults.Bins,
	}

	if v := q.Get("source"); v != "" {
		req.Source = v
	}
	if req.Source == "" {
		return pipeline.Request{}, errors.New("source is required")
	}

	if v := q.Get("fields"); v != "" {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.Fields = append(req.Fields, f)
			}
		}
	}

	if v := q.Get("threshold"); v != "" {
		k, err := strconv.ParseFloat(v, 64)
		if err != nil || k < 0 {
			return pipeline.Request{}, fmt.Errorf("invalid threshold %q", v)
		}
		req.Threshold = k
	}
	if v := q.Get("rolling"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return pipeline.Request{}, fmt.Errorf("invalid rolling window %q", v)
		}
		req.RollingDays = n
	}
	if v := q.Get("bins"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return pipeline.Request{}, fmt.Errorf("invalid bins %q", v)
		}
		req.Bins = n
	}

	var err error
	if req.Start, err = parseDay(q.Get("start")); err != nil {
		return pipeline.Request{}, err
	}
	if req.End, err = parseDay(q.Get("end")); err != nil {
		return pipeline.Request{}, err
	}
	if !req.End.IsZero() {
		// A date-only end bound includes the whole day, so sub-daily
		// readings on the end date are not cut off at midnight.
		req.End = req.End.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	req.Reload = q.Get("reload") == "true"

	return req, nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// statusFor maps pipeline errors to HTTP status codes: bad sources and
// empty selections are the client's problem, everything else is ours.
func statusFor(err error) int {
	var loadErr *domain.LoadError
	var analysisErr *domain.AnalysisError
	if errors.As(err, &loadErr) || errors.As(err, &analysisErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
