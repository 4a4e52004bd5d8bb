// Package loader resolves a station data source, local path or HTTP(S)
// URL, into a parsed domain.Table.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MidoraAholo/weather-dashboard/internal/domain"
)

// TableLoader loads a source into a table with parse-quality stats.
type TableLoader interface {
	Load(ctx context.Context, source string) (domain.Table, domain.ParseStats, error)
}

// Loader fetches and parses station files. Remote sources are fetched
// over plain HTTP(S) with a request-scoped timeout; everything else is
// treated as a local path.
type Loader struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Loader. The timeout bounds each remote fetch.
func New(timeout time.Duration, logger *slog.Logger) *Loader {
	return &Loader{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Load reads the source and parses it into a time-ordered table.
// Unreachable sources and sources with no valid rows return a
// *domain.LoadError.
func (l *Loader) Load(ctx context.Context, source string) (domain.Table, domain.ParseStats, error) {
	start := time.Now()

	body, err := l.open(ctx, source)
	if err != nil {
		return domain.Table{}, domain.ParseStats{}, &domain.LoadError{Source: source, Err: err}
	}
	defer body.Close()

	table, stats, err := domain.ParseTable(body, source)
	if err != nil {
		return domain.Table{}, stats, err
	}

	l.logger.Info("source loaded",
		"source", source,
		"rows_read", stats.RowsRead,
		"rows_skipped", stats.RowsSkipped,
		"fields", len(table.Fields),
		"duration", time.Since(start),
	)
	return table, stats, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if isURL(source) {
		return l.fetch(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (l *Loader) fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("fetch: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
