// Package conditions fetches river and weather data without failing the
// caller. Upstream errors become empty results plus a FetchFailure warning.
package conditions

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ngmaloney/fishing-log/internal/logging"
	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/ngmaloney/fishing-log/internal/observability"
	"github.com/sony/gobreaker/v2"
)

// DefaultGageHeight is the fallback gage reading in feet
const DefaultGageHeight = 8.0

// RiverClient is the river-gage upstream
type RiverClient interface {
	GetSeries(ctx context.Context, stationID string, start, end time.Time) (*models.RiverSeries, error)
	GetLatestGageHeight(ctx context.Context, stationID string) (float64, time.Time, error)
}

// WeatherClient is the weather upstream
type WeatherClient interface {
	GetHourly(ctx context.Context, lat, lon float64, tz string) (*models.WeatherSeries, error)
}

// Options tune the fetcher
type Options struct {
	DefaultGageHeight float64
	FailureThreshold  uint32        // consecutive failures that open a breaker
	OpenTimeout       time.Duration // time before an open breaker lets a trial request through
	Clock             clockwork.Clock
	Metrics           *observability.Metrics
}

// GageReading is the result of a latest-gage lookup
type GageReading struct {
	Height   float64
	At       time.Time
	Fallback bool // Height is the configured default, not a reading
}

// Fetcher wraps both upstreams with circuit breakers and metrics
type Fetcher struct {
	river       RiverClient
	weather     WeatherClient
	riverCB     *gobreaker.CircuitBreaker[any]
	weatherCB   *gobreaker.CircuitBreaker[*models.WeatherSeries]
	defaultGage float64
	clock       clockwork.Clock
	metrics     *observability.Metrics
}

// NewFetcher creates a fetcher over the given clients
func NewFetcher(river RiverClient, weather WeatherClient, opts Options) *Fetcher {
	if opts.DefaultGageHeight == 0 {
		opts.DefaultGageHeight = DefaultGageHeight
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 3
	}
	if opts.OpenTimeout == 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}

	f := &Fetcher{
		river:       river,
		weather:     weather,
		defaultGage: opts.DefaultGageHeight,
		clock:       opts.Clock,
		metrics:     opts.Metrics,
	}
	f.riverCB = gobreaker.NewCircuitBreaker[any](f.breakerSettings(string(SourceRiver), opts))
	f.weatherCB = gobreaker.NewCircuitBreaker[*models.WeatherSeries](f.breakerSettings(string(SourceWeather), opts))

	f.metrics.BreakerState.WithLabelValues(string(SourceRiver)).Set(0)
	f.metrics.BreakerState.WithLabelValues(string(SourceWeather)).Set(0)
	return f
}

func (f *Fetcher) breakerSettings(name string, opts Options) gobreaker.Settings {
	threshold := opts.FailureThreshold
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Malformed payloads still mean the service answered
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, models.ErrNetworkFailure)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
			f.metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

// FetchRiverSeries returns the joined readings for station between start and
// end. On failure it returns an empty slice and a warning.
func (f *Fetcher) FetchRiverSeries(ctx context.Context, stationID string, start, end time.Time) ([]models.EnvironmentalSample, *FetchFailure) {
	began := f.clock.Now()
	result, err := f.riverCB.Execute(func() (any, error) {
		return f.river.GetSeries(ctx, stationID, start, end)
	})
	if err != nil {
		return []models.EnvironmentalSample{}, f.fail(SourceRiver, began, err, stationID)
	}

	series, _ := result.(*models.RiverSeries)
	f.succeed(SourceRiver, began)
	if series == nil {
		return []models.EnvironmentalSample{}, nil
	}
	return series.Samples, nil
}

// FetchWeatherSeries returns hourly weather for a coordinate. On failure it
// returns an empty slice and a warning.
func (f *Fetcher) FetchWeatherSeries(ctx context.Context, lat, lon float64, tz string) ([]models.WeatherSample, *FetchFailure) {
	began := f.clock.Now()
	series, err := f.weatherCB.Execute(func() (*models.WeatherSeries, error) {
		return f.weather.GetHourly(ctx, lat, lon, tz)
	})
	if err != nil {
		return []models.WeatherSample{}, f.fail(SourceWeather, began, err, "")
	}

	f.succeed(SourceWeather, began)
	if series == nil {
		return []models.WeatherSample{}, nil
	}
	return series.Samples, nil
}

// FetchLatestGageHeight returns the newest gage reading for station. On
// failure it returns the default height with Fallback set, plus a warning.
func (f *Fetcher) FetchLatestGageHeight(ctx context.Context, stationID string) (GageReading, *FetchFailure) {
	began := f.clock.Now()
	result, err := f.riverCB.Execute(func() (any, error) {
		height, at, err := f.river.GetLatestGageHeight(ctx, stationID)
		if err != nil {
			return nil, err
		}
		return GageReading{Height: height, At: at}, nil
	})
	if err != nil {
		f.metrics.GageFallbacks.Inc()
		return GageReading{Height: f.defaultGage, Fallback: true}, f.fail(SourceGage, began, err, stationID)
	}

	f.succeed(SourceGage, began)
	return result.(GageReading), nil
}

// DefaultGageHeight returns the fallback height used when the gage is unreachable
func (f *Fetcher) DefaultGageHeight() float64 {
	return f.defaultGage
}

func (f *Fetcher) succeed(source Source, began time.Time) {
	f.metrics.FetchDuration.WithLabelValues(string(source)).Observe(f.clock.Since(began).Seconds())
	f.metrics.FetchRequests.WithLabelValues(string(source), "success").Inc()
}

func (f *Fetcher) fail(source Source, began time.Time, err error, stationID string) *FetchFailure {
	failure := classify(source, err)
	f.metrics.FetchDuration.WithLabelValues(string(source)).Observe(f.clock.Since(began).Seconds())
	f.metrics.FetchRequests.WithLabelValues(string(source), string(failure.Kind)).Inc()

	event := logging.Warn().Err(err).Str("source", string(source)).Str("kind", string(failure.Kind))
	if stationID != "" {
		event = event.Str("station", stationID)
	}
	event.Msg("Upstream fetch failed")
	return failure
}
