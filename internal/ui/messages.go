package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/fishing-log/internal/catchlog"
	"github.com/ngmaloney/fishing-log/internal/conditions"
	"github.com/ngmaloney/fishing-log/internal/depth"
	"github.com/ngmaloney/fishing-log/internal/locations"
	"github.com/ngmaloney/fishing-log/internal/logging"
	"github.com/ngmaloney/fishing-log/internal/models"
)

// Message types for async operations

// locationsLoadedMsg is sent when the registry has been read
type locationsLoadedMsg struct {
	locations []models.Location
}

// snapshotFetchedMsg is sent when river and weather data have been fetched.
// Upstream failures arrive as warnings on the snapshot, never as errors.
type snapshotFetchedMsg struct {
	location string
	snapshot *conditions.Snapshot
}

// depthEstimatedMsg is sent when the depth estimate for a spot is ready
type depthEstimatedMsg struct {
	location string
	estimate depth.Estimate
}

// nearbyMsg carries the closest other saved spot, nil when none is in range
type nearbyMsg struct {
	location string
	match    *locations.Match
}

// exportedMsg is sent when an outing has been written to disk
type exportedMsg struct {
	path string
	err  error
}

// errMsg reports a failure the UI cannot recover from inline
type errMsg struct {
	err error
}

const (
	fetchTimeout      = 30 * time.Second // every upstream call made from the UI
	registryTimeout   = 5 * time.Second
	nearbyRadiusMiles = 5.0
)

// loadLocations reads all registry entries in the background
func loadLocations(registry *locations.Registry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)
		defer cancel()

		locs, err := registry.List(ctx)
		if err != nil {
			return errMsg{err: fmt.Errorf("loading locations failed: %w", err)}
		}
		return locationsLoadedMsg{locations: locs}
	}
}

// fetchSnapshot fetches river trends and weather for a location
func fetchSnapshot(fetcher *conditions.Fetcher, station string, lookbackDays int, tz string, loc models.Location) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		snap := fetcher.Snapshot(ctx, station, loc.Coordinates, lookbackDays, tz)
		return snapshotFetchedMsg{location: loc.Name, snapshot: snap}
	}
}

// estimateDepth estimates the water depth at a location
func estimateDepth(estimator *depth.Estimator, station string, loc models.Location) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		est := estimator.Estimate(ctx, loc.Coordinates.Lat, loc.Coordinates.Lon, station)
		return depthEstimatedMsg{location: loc.Name, estimate: est}
	}
}

// findNearby looks up the closest saved spot to loc other than loc itself
func findNearby(registry *locations.Registry, loc models.Location) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)
		defer cancel()

		matches, err := registry.Nearest(ctx, loc.Coordinates.Lat, loc.Coordinates.Lon, nearbyRadiusMiles)
		if err != nil {
			logging.Warn().Err(err).Str("location", loc.Name).Msg("Nearby lookup failed")
			return nearbyMsg{location: loc.Name}
		}
		for i := range matches {
			if matches[i].Location.Name != loc.Name {
				return nearbyMsg{location: loc.Name, match: &matches[i]}
			}
		}
		return nearbyMsg{location: loc.Name}
	}
}

// exportOuting writes the outing's catches as CSV into dir
func exportOuting(dir string, outing *models.Outing) tea.Cmd {
	return func() tea.Msg {
		data, err := catchlog.ExportBytes(outing)
		if err != nil {
			return exportedMsg{err: err}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportedMsg{err: err}
		}
		path := filepath.Join(dir, catchlog.FileName(outing))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}
