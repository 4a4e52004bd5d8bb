// Package pipeline runs the complete load-analyze-visualize pass behind
// every dashboard interaction. Each Run is synchronous and self-contained:
// no state survives it beyond the loader's cache.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MidoraAholo/weather-dashboard/internal/domain"
	"github.com/MidoraAholo/weather-dashboard/internal/loader"
	"github.com/MidoraAholo/weather-dashboard/internal/observability"
	"github.com/MidoraAholo/weather-dashboard/internal/viz"
)

// Sustained extreme runs and low-precipitation seasons are flagged with
// fixed thresholds: hot spells above the 90th percentile and cold spells
// below the 10th, each lasting at least three consecutive days; season
// totals cover April through September with the lowest fifth of years
// marked.
const (
	hotPercentile  = 90
	coldPercentile = 10
	spellMinDays   = 3

	seasonStartMonth  = time.April
	seasonEndMonth    = time.September
	droughtPercentile = 20
)

// SourceInvalidator is implemented by loaders whose cache can be bypassed
// for an explicit reload.
type SourceInvalidator interface {
	Invalidate(source string)
}

// Request carries one interaction's inputs. Zero values mean "use the
// table's full extent" for Start/End and "all fields" for Fields;
// Threshold is used as given, since k = 0 is a meaningful boundary.
type Request struct {
	Source      string
	Fields      []string
	Threshold   float64
	Start       time.Time
	End         time.Time
	RollingDays int
	Bins        int
	Reload      bool
}

// Result is the complete output of one pipeline pass.
type Result struct {
	Source    string                    `json:"source"`
	Stats     domain.ParseStats         `json:"stats"`
	Fields    []string                  `json:"fields"`
	AllFields []string                  `json:"all_fields"`
	FirstTime time.Time                 `json:"first_time"`
	LastTime  time.Time                 `json:"last_time"`
	Summaries []domain.Summary          `json:"summaries"`
	Anomalies []domain.Anomaly          `json:"anomalies"`
	Trends    map[string]float64        `json:"trends,omitempty"`
	Records   map[string]domain.Records `json:"records,omitempty"`
	Charts    []viz.ChartSpec           `json:"charts"`
}

// Pipeline orchestrates loader, analyzer, and visualizer for one station
// session.
type Pipeline struct {
	loader  loader.TableLoader
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline with the given loader and observability.
func New(l loader.TableLoader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:  l,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once at least one pipeline run has
// succeeded, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no pipeline run has succeeded yet")
	}
	return nil
}

// Run executes one complete pass: load the source, filter to the
// requested fields and date range, summarize, flag anomalies, and build
// charts. The error is a *domain.LoadError or *domain.AnalysisError the
// caller can classify.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	result, err := p.run(ctx, req)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues(outcome(err)).Inc()
		p.logger.Warn("pipeline run failed", "source", req.Source, "error", err)
		return Result{}, err
	}

	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.Anomalies.Add(float64(len(result.Anomalies)))
	p.ready.Store(true)

	p.logger.Info("pipeline run complete",
		"source", req.Source,
		"readings", result.Stats.RowsRead-result.Stats.RowsSkipped,
		"fields", len(result.Fields),
		"anomalies", len(result.Anomalies),
		"duration", time.Since(start),
	)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, req Request) (Result, error) {
	if req.Reload {
		if inv, ok := p.loader.(SourceInvalidator); ok {
			inv.Invalidate(req.Source)
		}
	}

	table, stats, err := p.loader.Load(ctx, req.Source)
	if err != nil {
		return Result{}, err
	}
	p.metrics.RowsRead.Add(float64(stats.RowsRead))
	p.metrics.RowsSkipped.Add(float64(stats.RowsSkipped))

	full := table
	table = table.FilterRange(req.Start, req.End)
	if len(req.Fields) > 0 {
		table = table.FilterFields(req.Fields)
	}
	if table.Empty() {
		return Result{}, &domain.AnalysisError{Op: "filter", Err: domain.ErrEmptyTable}
	}

	summaries, err := domain.Summarize(table, table.Fields)
	if err != nil {
		return Result{}, err
	}
	anomalies := domain.DetectAnomalies(table, summaries, req.Threshold)

	first, last := table.TimeRange()
	multiMonth := first.Year() != last.Year() || first.Month() != last.Month()

	trends := make(map[string]float64)
	records := make(map[string]domain.Records, len(summaries))
	charts := make([]viz.ChartSpec, 0, 3*len(summaries))
	for _, s := range summaries {
		var rolling []domain.Point
		if req.RollingDays > 0 {
			rolling = domain.RollingMean(table, s.Field, req.RollingDays)
		}
		hotSpells := domain.DetectSpells(table, s.Field, hotPercentile, spellMinDays, true)
		coldSpells := domain.DetectSpells(table, s.Field, coldPercentile, spellMinDays, false)
		charts = append(charts, viz.TimeSeries(table, s.Field, rolling, anomalies, hotSpells, coldSpells))
		if req.Bins > 0 {
			charts = append(charts, viz.Histogram(table, s.Field, req.Bins))
		}
		if multiMonth {
			charts = append(charts, viz.MonthlyDistribution(table, s.Field))
		}
		if domain.IsPrecipitation(s.Field) {
			totals := domain.SeasonTotals(table, s.Field, seasonStartMonth, seasonEndMonth, droughtPercentile)
			if len(totals) > 0 {
				charts = append(charts, viz.SeasonTotalsChart(s.Field, totals))
			}
		}
		if slope, ok := domain.EstimateTrend(table, s.Field); ok {
			trends[s.Field] = slope
		}
		if rec, ok := domain.FieldRecords(table, s.Field); ok {
			records[s.Field] = rec
		}
	}
	if len(trends) == 0 {
		trends = nil
	}
	return Result{
		Source:    req.Source,
		Stats:     stats,
		Fields:    table.Fields,
		AllFields: full.Fields,
		FirstTime: first,
		LastTime:  last,
		Summaries: summaries,
		Anomalies: anomalies,
		Trends:    trends,
		Records:   records,
		Charts:    charts,
	}, nil
}

func outcome(err error) string {
	var loadErr *domain.LoadError
	var analysisErr *domain.AnalysisError
	switch {
	case errors.As(err, &loadErr):
		return "load_error"
	case errors.As(err, &analysisErr):
		return "analysis_error"
	default:
		return "error"
	}
}
