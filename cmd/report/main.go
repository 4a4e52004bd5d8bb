// Command report runs the analysis pipeline once and writes the report
// to disk, without starting the dashboard server.
//
// Usage:
//
//	go run ./cmd/report -source data/station.csv -out report.html
//	go run ./cmd/report -source https://example.org/station.csv \
//	  -fields T,PRCP -threshold 2.5 -start 2020-01-01 -end 2020-12-31 \
//	  -out report.html -pdf report.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/MidoraAholo/weather-dashboard/internal/loader"
	"github.com/MidoraAholo/weather-dashboard/internal/observability"
	"github.com/MidoraAholo/weather-dashboard/internal/pipeline"
	"github.com/MidoraAholo/weather-dashboard/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	source := flag.String("source", "", "station data file path or URL")
	fields := flag.String("fields", "", "comma-separated field filter (default all)")
	threshold := flag.Float64("threshold", 3.0, "anomaly threshold in standard deviations")
	start := flag.String("start", "", "range start, YYYY-MM-DD")
	end := flag.String("end", "", "range end, YYYY-MM-DD")
	rolling := flag.Int("rolling", 30, "rolling mean window in days, 0 to disable")
	bins := flag.Int("bins", 20, "histogram bin count, 0 to disable")
	title := flag.String("title", "Station weather report", "report title")
	out := flag.String("out", "report.html", "output HTML path")
	pdf := flag.String("pdf", "", "also convert to PDF at this path")
	pdfTool := flag.String("pdf-tool", "wkhtmltopdf", "HTML to PDF converter binary")
	timeout := flag.Duration("timeout", 30*time.Second, "fetch timeout for URL sources")
	flag.Parse()

	if *source == "" {
		flag.Usage()
		return fmt.Errorf("-source is required")
	}

	req := pipeline.Request{
		Source:      *source,
		Threshold:   *threshold,
		RollingDays: *rolling,
		Bins:        *bins,
	}
	if *fields != "" {
		for _, f := range strings.Split(*fields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.Fields = append(req.Fields, f)
			}
		}
	}
	var err error
	if req.Start, err = parseDay(*start); err != nil {
		return err
	}
	if req.End, err = parseDay(*end); err != nil {
		return err
	}
	if !req.End.IsZero() {
		// The end date is inclusive of the whole day.
		req.End = req.End.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	metrics := observability.NewMetrics()
	pipe := pipeline.New(loader.New(*timeout, logger), logger, metrics)

	ctx := context.Background()
	result, err := pipe.Run(ctx, req)
	if err != nil {
		return err
	}

	rep := report.Build(*title, result.Source, result.Stats,
		result.Summaries, result.Anomalies, result.Charts)
	if err := report.SaveHTML(*out, rep); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d readings, %d anomalies\n",
		*out, result.Stats.RowsRead-result.Stats.RowsSkipped, len(result.Anomalies))

	if *pdf != "" {
		renderer := report.NewPDFRenderer(*pdfTool, logger)
		if err := renderer.Render(ctx, *out, *pdf); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *pdf)
	}
	return nil
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
