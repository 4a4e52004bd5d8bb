package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/MidoraAholo/weather-dashboard/internal/adapter/http"
	"github.com/MidoraAholo/weather-dashboard/internal/loader"
	"github.com/MidoraAholo/weather-dashboard/internal/observability"
	"github.com/MidoraAholo/weather-dashboard/internal/pipeline"
	"github.com/MidoraAholo/weather-dashboard/internal/report"
)

func writeStationFile(t *testing.T, days int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "station.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	fmt.Fprintln(f, "date,T,PRCP")
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		temp := 10.0 + float64(i%10)
		if i == days/2 {
			temp = 55.0
		}
		fmt.Fprintf(f, "%s,%.1f,%.1f\n", day.Format("2006-01-02"), temp, float64(i%4))
	}
	return path
}

func newTestServer(t *testing.T, source string) (*httpadapter.Server, string) {
	t.Helper()

	logger := slog.Default()
	metrics := observability.NewMetricsForTesting()
	pipe := pipeline.New(loader.New(5*time.Second, logger), logger, metrics)
	reportDir := t.TempDir()

	defaults := httpadapter.Defaults{Source: source, Threshold: 3.0, RollingDays: 0, Bins: 0}
	pdf := report.NewPDFRenderer("definitely-not-installed-tool", logger)
	return httpadapter.NewServer(":0", pipe, pdf, defaults, reportDir, metrics, logger), reportDir
}

func get(srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t, writeStationFile(t, 30))

	rec := get(srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReflectsPipelineState(t *testing.T) {
	srv, _ := newTestServer(t, writeStationFile(t, 30))

	rec := get(srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(srv, "/api/run")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(srv, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, writeStationFile(t, 30))

	rec := get(srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDashboardPage(t *testing.T) {
	source := writeStationFile(t, 30)
	srv, _ := newTestServer(t, source)

	rec := get(srv, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Station Weather Dashboard")
	assert.Contains(t, rec.Body.String(), source)
	assert.Contains(t, rec.Body.String(), "chart.js")
}

func TestRunReturnsAnalysis(t *testing.T) {
	srv, _ := newTestServer(t, writeStationFile(t, 400))

	rec := get(srv, "/api/run")
	require.Equal(t, http.StatusOK, rec.Code)

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, 400, result.Stats.RowsRead)
	assert.ElementsMatch(t, []string{"T", "PRCP"}, result.Fields)
	require.Len(t, result.Anomalies, 1)
	assert.InDelta(t, 55.0, result.Anomalies[0].Value, 1e-9)
	assert.NotEmpty(t, result.Charts)
}

// The dashboard page reads the run response with fixed key names; a
// renamed struct tag silently breaks every table and chart it draws.
func TestRunResponseKeysMatchDashboard(t *testing.T) {
	srv, _ := newTestServer(t, writeStationFile(t, 400))

	rec := get(srv, "/api/run?bins=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	for _, key := range []string{"stats", "summaries", "anomalies", "charts", "first_time", "last_time"} {
		assert.Contains(t, body, key)
	}

	stats := body["stats"].(map[string]any)
	assert.Contains(t, stats, "rows_read")
	assert.Contains(t, stats, "rows_skipped")

	summaries := body["summaries"].([]any)
	require.NotEmpty(t, summaries)
	for _, key := range []string{"field", "count", "mean", "min", "max", "std_dev"} {
		assert.Contains(t, summaries[0].(map[string]any), key)
	}

	anomalies := body["anomalies"].([]any)
	require.NotEmpty(t, anomalies)
	for _, key := range []string{"time", "field", "value", "score", "reason"} {
		assert.Contains(t, anomalies[0].(map[string]any), key)
	}

	charts := body["charts"].([]any)
	require.NotEmpty(t, charts)
	for _, key := range []string{"id", "kind", "title"} {
		assert.Contains(t, charts[0].(map[string]any), key)
	}
}

func TestRunQueryParamsOverrideDefaults(t *testing.T) {
	srv, _ := newTestServer(t, writeStationFile(t, 400))

	rec := get(srv, "/api/run?fields=T&start=2020-02-01&end=2020-02-10&threshold=1000&bins=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, []string{"T"}, result.Fields)
	assert.Equal(t, 10, result.Summaries[0].Count)
	assert.Empty(t, result.Anomalies)
}

func TestRunBadParams(t *testing.T) {
	srv, _ := newTestServer(t, writeStationFile(t, 30))

	tests := []struct {
		name   string
		target string
	}{
		{"bad threshold", "/api/run?threshold=abc"},
		{"negative threshold", "/api/run?threshold=-1"},
		{"bad date", "/api/run?start=01/02/2020"},
		{"bad bins", "/api/run?bins=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(srv, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRunMissingSource(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := get(srv, "/api/run")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunLoadFailureReturns422(t *testing.T) {
	srv, _ := newTestServer(t, "/nonexistent/station.csv")

	rec := get(srv, "/api/run")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "/nonexistent/station.csv")
}

func TestRunEndDateIncludesWholeDay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hourly.csv")
	data := "date,T\n" +
		"2020-01-01 06:00:00,5\n" +
		"2020-01-01 18:00:00,7\n" +
		"2020-01-02 06:00:00,9\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	srv, _ := newTestServer(t, path)

	rec := get(srv, "/api/run?end=2020-01-01")
	require.Equal(t, http.StatusOK, rec.Code)

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Summaries, 1)
	assert.Equal(t, 2, result.Summaries[0].Count)
	assert.Equal(t, 7.0, result.Summaries[0].Max)
}

func TestRunRecoversAfterFailedLoad(t *testing.T) {
	source := writeStationFile(t, 30)
	srv, _ := newTestServer(t, "/nonexistent/station.csv")

	rec := get(srv, "/api/run")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = get(srv, "/api/run?source="+source)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunEmptySelectionReturns422(t *testing.T) {
	srv, _ := newTestServer(t, writeStationFile(t, 30))

	rec := get(srv, "/api/run?start=1990-01-01&end=1990-12-31")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExportWritesHTMLReport(t *testing.T) {
	srv, reportDir := newTestServer(t, writeStationFile(t, 60))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		HTML     string `json:"html"`
		PDF      string `json:"pdf"`
		PDFError string `json:"pdf_error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.HTML)
	assert.Empty(t, resp.PDF)
	assert.Empty(t, resp.PDFError)

	data, err := os.ReadFile(filepath.Join(reportDir, resp.HTML))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Station weather report")

	rec = get(srv, "/reports/"+resp.HTML)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportPDFToolMissingKeepsHTML(t *testing.T) {
	srv, reportDir := newTestServer(t, writeStationFile(t, 60))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export?format=pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		HTML     string `json:"html"`
		PDF      string `json:"pdf"`
		PDFError string `json:"pdf_error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.PDFError)
	assert.Empty(t, resp.PDF)

	_, err := os.Stat(filepath.Join(reportDir, resp.HTML))
	assert.NoError(t, err)
}

type failingPipeline struct{}

func (failingPipeline) Run(_ context.Context, _ pipeline.Request) (pipeline.Result, error) {
	return pipeline.Result{}, fmt.Errorf("boom")
}

func (failingPipeline) CheckReadiness(_ context.Context) error { return nil }

func TestRunInternalErrorReturns500(t *testing.T) {
	logger := slog.Default()
	srv := httpadapter.NewServer(":0", failingPipeline{},
		report.NewPDFRenderer("wkhtmltopdf", logger),
		httpadapter.Defaults{Source: "x", Threshold: 3}, t.TempDir(),
		observability.NewMetricsForTesting(), logger)

	rec := get(srv, "/api/run")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
