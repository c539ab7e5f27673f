package conditions

import (
	"context"
	"time"

	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/ngmaloney/fishing-log/internal/trends"
)

// Snapshot is the river and weather picture for one location
type Snapshot struct {
	StationID   string
	Coordinates models.Coordinate
	Start       time.Time
	End         time.Time
	River       []models.EnvironmentalSample // sorted, with trend columns
	Weather     []models.WeatherSample
	Warnings    []*FetchFailure
	FetchedAt   time.Time
}

// Snapshot fetches lookbackDays of river readings ending today, derives their
// trends, and fetches hourly weather for coord. Either half may be empty.
func (f *Fetcher) Snapshot(ctx context.Context, stationID string, coord models.Coordinate, lookbackDays int, tz string) *Snapshot {
	end := f.clock.Now()
	start := end.AddDate(0, 0, -lookbackDays)

	snap := &Snapshot{
		StationID:   stationID,
		Coordinates: coord,
		Start:       start,
		End:         end,
	}

	river, failure := f.FetchRiverSeries(ctx, stationID, start, end)
	if failure != nil {
		snap.Warnings = append(snap.Warnings, failure)
	}
	snap.River = trends.Calculate(river)

	weather, failure := f.FetchWeatherSeries(ctx, coord.Lat, coord.Lon, tz)
	if failure != nil {
		snap.Warnings = append(snap.Warnings, failure)
	}
	snap.Weather = weather

	snap.FetchedAt = f.clock.Now()
	return snap
}

// VisibleWarnings returns the warnings to display. When showErrors is false
// they are only logged.
func (s *Snapshot) VisibleWarnings(showErrors bool) []*FetchFailure {
	if !showErrors {
		return nil
	}
	return s.Warnings
}

// Latest returns the newest river sample, if any
func (s *Snapshot) Latest() (models.EnvironmentalSample, bool) {
	if len(s.River) == 0 {
		return models.EnvironmentalSample{}, false
	}
	return s.River[len(s.River)-1], true
}
