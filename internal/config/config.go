package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Default pipeline inputs, overridable per request from the dashboard.
	DefaultSource     string
	AnomalyThreshold  float64
	RollingWindowDays int
	HistogramBins     int

	FetchTimeout    time.Duration
	LoaderCacheSize int

	ReportDir string
	PDFTool   string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := envDuration("FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	threshold, err := envFloat("ANOMALY_THRESHOLD", 3.0)
	if err != nil {
		return nil, err
	}
	rollingDays, err := envInt("ROLLING_WINDOW_DAYS", 30)
	if err != nil {
		return nil, err
	}
	bins, err := envInt("HISTOGRAM_BINS", 20)
	if err != nil {
		return nil, err
	}
	cacheSize, err := envInt("LOADER_CACHE_SIZE", 8)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:          envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		DefaultSource:     os.Getenv("DEFAULT_SOURCE"),
		AnomalyThreshold:  threshold,
		RollingWindowDays: rollingDays,
		HistogramBins:     bins,
		FetchTimeout:      fetchTimeout,
		LoaderCacheSize:   cacheSize,
		ReportDir:         envOrDefault("REPORT_DIR", "reports"),
		PDFTool:           envOrDefault("PDF_TOOL", "wkhtmltopdf"),
	}

	if cfg.AnomalyThreshold < 0 {
		return nil, errors.New("ANOMALY_THRESHOLD must not be negative")
	}
	if cfg.RollingWindowDays < 1 {
		return nil, errors.New("ROLLING_WINDOW_DAYS must be at least 1")
	}
	if cfg.HistogramBins < 1 {
		return nil, errors.New("HISTOGRAM_BINS must be at least 1")
	}
	if cfg.LoaderCacheSize < 1 {
		return nil, errors.New("LOADER_CACHE_SIZE must be at least 1")
	}
	if cfg.ReportDir == "" {
		return nil, errors.New("REPORT_DIR is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}
