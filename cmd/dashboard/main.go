// Command dashboard serves the interactive single-station weather
// dashboard: a web shell over the load-analyze-visualize pipeline with
// report export.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/MidoraAholo/weather-dashboard/internal/adapter/http"
	"github.com/MidoraAholo/weather-dashboard/internal/config"
	"github.com/MidoraAholo/weather-dashboard/internal/loader"
	"github.com/MidoraAholo/weather-dashboard/internal/observability"
	"github.com/MidoraAholo/weather-dashboard/internal/pipeline"
	"github.com/MidoraAholo/weather-dashboard/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	base := loader.New(cfg.FetchTimeout, logger)
	cached := loader.NewCachedLoader(base, cfg.LoaderCacheSize, metrics)
	pipe := pipeline.New(cached, logger, metrics)
	pdf := report.NewPDFRenderer(cfg.PDFTool, logger)

	defaults := httpadapter.Defaults{
		Source:      cfg.DefaultSource,
		Threshold:   cfg.AnomalyThreshold,
		RollingDays: cfg.RollingWindowDays,
		Bins:        cfg.HistogramBins,
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, pipe, pdf, defaults, cfg.ReportDir, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
