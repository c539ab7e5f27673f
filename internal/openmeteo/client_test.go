package openmeteo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("", 10*time.Second, 2, nil)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
}

func TestClient_GetHourly(t *testing.T) {
	data, err := os.ReadFile("../../testdata/openmeteo_forecast_response.json")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "43.1392", query.Get("latitude"))
		assert.Equal(t, "-89.3875", query.Get("longitude"))
		assert.Equal(t, "temperature_2m,relative_humidity_2m,surface_pressure,wind_speed_10m,wind_direction_10m", query.Get("hourly"))
		assert.Equal(t, "America/Chicago", query.Get("timezone"))

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer server.Close()

	fetchedAt := time.Date(2025, 5, 1, 6, 0, 0, 0, time.UTC)
	client := NewClient(server.URL, 5*time.Second, 100, clockwork.NewFakeClockAt(fetchedAt))
	series, err := client.GetHourly(context.Background(), 43.1392, -89.3875, "America/Chicago")
	require.NoError(t, err)

	assert.Equal(t, "America/Chicago", series.Timezone)
	assert.Equal(t, 43.1392, series.Coordinates.Lat)
	assert.Equal(t, fetchedAt, series.UpdatedAt)
	require.Len(t, series.Samples, 3)

	first := series.Samples[0]
	assert.Equal(t, 12.1, first.Temperature)
	assert.Equal(t, 81.0, first.Humidity)
	assert.Equal(t, 985.2, first.Pressure)
	assert.Equal(t, 9.4, first.WindSpeed)
	assert.Equal(t, 200.0, first.WindDirection)

	// Local wall clock is preserved and the offset is -5h
	assert.Equal(t, 0, first.Time.Hour())
	_, offset := first.Time.Zone()
	assert.Equal(t, -5*3600, offset)

	assert.True(t, math.IsNaN(series.Samples[2].Temperature))
	assert.Equal(t, 225.0, series.Samples[2].WindDirection)
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 100, nil)
	_, err := client.GetHourly(context.Background(), 43.14, -89.38, "America/Chicago")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNetworkFailure)
}

func TestClient_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"hourly": `},
		{"missing hourly", `{"latitude": 43.1}`},
		{"ragged columns", `{"hourly": {"time": ["2025-05-01T00:00"], "temperature_2m": [], "relative_humidity_2m": [1], "surface_pressure": [1], "wind_speed_10m": [1], "wind_direction_10m": [1]}}`},
		{"bad time", `{"hourly": {"time": ["yesterday"], "temperature_2m": [1], "relative_humidity_2m": [1], "surface_pressure": [1], "wind_speed_10m": [1], "wind_direction_10m": [1]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, 5*time.Second, 100, nil)
			_, err := client.GetHourly(context.Background(), 43.14, -89.38, "America/Chicago")
			assert.ErrorIs(t, err, models.ErrParseFailure)
		})
	}
}
