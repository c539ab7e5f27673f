package main

import (
	"context"
	"fmt"
	"math"
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
	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/ngmaloney/fishing-log/internal/observability"
	"github.com/ngmaloney/fishing-log/internal/session"
	"github.com/ngmaloney/fishing-log/internal/ui"
)

// demoRiver serves a week of synthetic readings
type demoRiver struct{}

func (demoRiver) GetSeries(_ context.Context, stationID string, start, end time.Time) (*models.RiverSeries, error) {
	series := &models.RiverSeries{
		StationID: stationID,
		SiteName:  "YAHARA RIVER AT STATE HIGHWAY 113 AT MADISON, WI",
		UpdatedAt: time.Now(),
	}
	i := 0
	for t := start; t.Before(end); t = t.Add(6 * time.Hour) {
		s := models.NewEnvironmentalSample(t)
		phase := float64(i) / 4
		s.Set(models.ColumnFlow, math.Round(120+25*math.Sin(phase)))
		s.Set(models.ColumnGageHeight, math.Round((8.2+0.3*math.Sin(phase))*100)/100)
		s.Set(models.ColumnWaterTemp, math.Round((14+1.5*math.Cos(phase))*10)/10)
		series.Samples = append(series.Samples, s)
		i++
	}
	return series, nil
}

func (demoRiver) GetLatestGageHeight(context.Context, string) (float64, time.Time, error) {
	return 8.41, time.Now().Add(-15 * time.Minute), nil
}

// demoWeather serves a day of synthetic hourly weather
type demoWeather struct{}

func (demoWeather) GetHourly(_ context.Context, lat, lon float64, tz string) (*models.WeatherSeries, error) {
	now := time.Now().Truncate(time.Hour)
	series := &models.WeatherSeries{
		Coordinates: models.Coordinate{Lat: lat, Lon: lon},
		Timezone:    tz,
		UpdatedAt:   now,
	}
	for h := -12; h < 12; h++ {
		phase := float64(h) / 24 * 2 * math.Pi
		series.Samples = append(series.Samples, models.WeatherSample{
			Time:          now.Add(time.Duration(h) * time.Hour),
			Temperature:   math.Round((12+5*math.Sin(phase))*10) / 10,
			Humidity:      math.Round(75 - 10*math.Sin(phase)),
			Pressure:      math.Round((985+float64(h)*0.1)*10) / 10,
			WindSpeed:     math.Round((9+3*math.Cos(phase))*10) / 10,
			WindDirection: 200 + float64(h),
		})
	}
	return series, nil
}

// This demo runs the UI against canned upstream data
func main() {
	logging.Init(logging.Config{Level: "disabled"})

	db, err := database.Open(database.DefaultDSN)
	if err != nil {
		fmt.Printf("Error opening location store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	registry := locations.NewRegistry(db)
	if err := registry.Seed(context.Background()); err != nil {
		fmt.Printf("Error seeding locations: %v\n", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetricsForTesting()
	fetcher := conditions.NewFetcher(demoRiver{}, demoWeather{}, conditions.Options{Clock: clock, Metrics: metrics})

	m := ui.NewModel(ui.Deps{
		Registry:        registry,
		Session:         session.New(clock, metrics),
		Fetcher:         fetcher,
		Estimator:       depth.NewEstimator(fetcher),
		Config:          config.Default(),
		Clock:           clock,
		ExportDir:       os.TempDir(),
		InitialLocation: "113 Bridge",
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}
