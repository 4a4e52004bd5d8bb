// Package report renders analysis results into an HTML document and
// optionally converts it to PDF with an external tool. HTML output is
// the primary artifact: a PDF failure never invalidates it.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/MidoraAholo/weather-dashboard/internal/domain"
	"github.com/MidoraAholo/weather-dashboard/internal/viz"
)

// Report is everything the template needs for one rendered document.
type Report struct {
	ID          string
	Title       string
	GeneratedAt time.Time
	Source      string
	Stats       domain.ParseStats
	Summaries   []domain.Summary
	Anomalies   []domain.Anomaly
	Charts      []viz.ChartSpec
}

// Build assembles a Report with a fresh ID and a generation timestamp
// from the domain clock.
func Build(title, source string, stats domain.ParseStats, summaries []domain.Summary, anomalies []domain.Anomaly, charts []viz.ChartSpec) Report {
	return Report{
		ID:          uuid.NewString(),
		Title:       title,
		GeneratedAt: domain.Now(),
		Source:      source,
		Stats:       stats,
		Summaries:   summaries,
		Anomalies:   anomalies,
		Charts:      charts,
	}
}

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	// %.6g keeps enough precision that re-parsing the tables recovers
	// the original values within floating-point tolerance.
	"fmtNum": func(v float64) string { return fmt.Sprintf("%.6g", v) },
	"fmtDay": func(t time.Time) string { return t.Format("2006-01-02") },
	"fmtTS":  func(t time.Time) string { return t.Format("2006-01-02 15:04 MST") },
	"js": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		return template.JS(b), err //nolint:gosec // marshaled from typed specs, not user HTML
	},
}).Parse(reportHTML))

// WriteHTML renders the report document to w. A template failure is a
// *domain.RenderError.
func WriteHTML(w io.Writer, rep Report) error {
	if err := tmpl.Execute(w, rep); err != nil {
		return &domain.RenderError{Op: "html", Err: err}
	}
	return nil
}

// SaveHTML writes the report document to path, creating parent
// directories as needed.
func SaveHTML(path string, rep Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.RenderError{Op: "html", Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &domain.RenderError{Op: "html", Err: err}
	}
	defer f.Close()

	if err := WriteHTML(f, rep); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return &domain.RenderError{Op: "html", Err: err}
	}
	return nil
}
