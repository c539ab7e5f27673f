// Package openmeteo reads hourly weather from the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/ngmaloney/fishing-log/internal/models"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the forecast endpoint
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// HourlyFields are the variables requested for every forecast
var HourlyFields = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"surface_pressure",
	"wind_speed_10m",
	"wind_direction_10m",
}

const hourLayout = "2006-01-02T15:04"

// Client fetches hourly weather from Open-Meteo
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	clock      clockwork.Clock
}

// NewClient creates an Open-Meteo client
func NewClient(baseURL string, timeout time.Duration, ratePerSecond float64, clock clockwork.Clock) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		clock:   clock,
	}
}

// GetHourly retrieves the hourly series for a coordinate with timestamps in tz
func (c *Client) GetHourly(ctx context.Context, lat, lon float64, tz string) (*models.WeatherSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for rate limiter: %w", models.ErrNetworkFailure, err)
	}

	params := url.Values{}
	params.Add("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Add("hourly", strings.Join(HourlyFields, ","))
	params.Add("timezone", tz)

	requestURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch weather: %w", models.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: API returned status %d: %s", models.ErrNetworkFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", models.ErrParseFailure, err)
	}

	return fr.toSeries(lat, lon, tz)
}

func (fr *forecastResponse) toSeries(lat, lon float64, tz string) (*models.WeatherSeries, error) {
	h := fr.Hourly
	if h.Time == nil {
		return nil, fmt.Errorf("%w: response has no hourly block", models.ErrParseFailure)
	}
	n := len(h.Time)
	for name, col := range map[string][]*float64{
		"temperature_2m":       h.Temperature,
		"relative_humidity_2m": h.Humidity,
		"surface_pressure":     h.Pressure,
		"wind_speed_10m":       h.WindSpeed,
		"wind_direction_10m":   h.WindDirection,
	} {
		if len(col) != n {
			return nil, fmt.Errorf("%w: hourly %s has %d values for %d timestamps", models.ErrParseFailure, name, len(col), n)
		}
	}

	loc := fr.location()
	zone := fr.Timezone
	if zone == "" {
		zone = tz
	}
	series := &models.WeatherSeries{
		Coordinates: models.Coordinate{Lat: lat, Lon: lon},
		Timezone:    zone,
		Samples:     make([]models.WeatherSample, 0, n),
		UpdatedAt:   c.clock.Now(),
	}

	for i, ts := range h.Time {
		t, err := time.ParseInLocation(hourLayout, ts, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid hourly time %q: %w", models.ErrParseFailure, ts, err)
		}
		series.Samples = append(series.Samples, models.WeatherSample{
			Time:          t,
			Temperature:   valueOrNaN(h.Temperature[i]),
			Humidity:      valueOrNaN(h.Humidity[i]),
			Pressure:      valueOrNaN(h.Pressure[i]),
			WindSpeed:     valueOrNaN(h.WindSpeed[i]),
			WindDirection: valueOrNaN(h.WindDirection[i]),
		})
	}

	return series, nil
}

// location resolves the response timezone, falling back to the reported UTC offset
func (fr *forecastResponse) location() *time.Location {
	if fr.Timezone != "" {
		if loc, err := time.LoadLocation(fr.Timezone); err == nil {
			return loc
		}
	}
	name := fr.TimezoneAbbreviation
	if name == "" {
		name = "UTC"
	}
	return time.FixedZone(name, fr.UTCOffsetSeconds)
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// Internal types for Open-Meteo API responses

type forecastResponse struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	Timezone             string  `json:"timezone"`
	TimezoneAbbreviation string  `json:"timezone_abbreviation"`
	UTCOffsetSeconds     int     `json:"utc_offset_seconds"`
	Hourly               struct {
		Time          []string   `json:"time"`
		Temperature   []*float64 `json:"temperature_2m"`
		Humidity      []*float64 `json:"relative_humidity_2m"`
		Pressure      []*float64 `json:"surface_pressure"`
		WindSpeed     []*float64 `json:"wind_speed_10m"`
		WindDirection []*float64 `json:"wind_direction_10m"`
	} `json:"hourly"`
}
