package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/ngmaloney/fishing-log/internal/conditions"
	"github.com/ngmaloney/fishing-log/internal/config"
	"github.com/ngmaloney/fishing-log/internal/database"
	"github.com/ngmaloney/fishing-log/internal/depth"
	"github.com/ngmaloney/fishing-log/internal/locations"
	"github.com/ngmaloney/fishing-log/internal/logging"
	"github.com/ngmaloney/fishing-log/internal/observability"
	"github.com/ngmaloney/fishing-log/internal/openmeteo"
	"github.com/ngmaloney/fishing-log/internal/session"
	"github.com/ngmaloney/fishing-log/internal/ui"
	"github.com/ngmaloney/fishing-log/internal/usgs"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (defaults to $FISHLOG_CONFIG)")
	location := flag.String("location", "", "Name of a saved location to open directly")
	exportDir := flag.String("export-dir", ".", "Directory catch logs are exported to")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logOut := os.Stderr
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: logOut})

	db, err := database.Open(cfg.Locations.DSN)
	if err != nil {
		fmt.Printf("Error opening location store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	registry := locations.NewRegistry(db)
	if cfg.Locations.Seed {
		if err := registry.Seed(ctx); err != nil {
			fmt.Printf("Error seeding locations: %v\n", err)
			os.Exit(1)
		}
	}
	if cfg.Locations.Shapefile != "" {
		n, err := registry.ImportShapefile(ctx, cfg.Locations.Shapefile)
		if err != nil {
			fmt.Printf("Error importing %s: %v\n", cfg.Locations.Shapefile, err)
			os.Exit(1)
		}
		logging.Info().Int("added", n).Str("shapefile", cfg.Locations.Shapefile).Msg("imported locations")
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	if cfg.Metrics.Addr != "" {
		srv := observability.NewMetricsServer(cfg.Metrics.Addr, reg)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	clock := clockwork.NewRealClock()
	fetcher := conditions.NewFetcher(
		usgs.NewClient(cfg.USGS.BaseURL, cfg.HTTP.Timeout, cfg.HTTP.RatePerSecond, clock),
		openmeteo.NewClient(cfg.Weather.BaseURL, cfg.HTTP.Timeout, cfg.HTTP.RatePerSecond, clock),
		conditions.Options{
			DefaultGageHeight: cfg.USGS.DefaultGageHeight,
			FailureThreshold:  cfg.Breaker.FailureThreshold,
			OpenTimeout:       cfg.Breaker.OpenTimeout,
			Clock:             clock,
			Metrics:           metrics,
		},
	)

	m := ui.NewModel(ui.Deps{
		Registry:        registry,
		Session:         session.New(clock, metrics),
		Fetcher:         fetcher,
		Estimator:       depth.NewEstimator(fetcher),
		Config:          cfg,
		Clock:           clock,
		ExportDir:       *exportDir,
		InitialLocation: *location,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}
