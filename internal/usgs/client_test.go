package usgs

import (
	"context"
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

func fixtureServer(t *testing.T, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile("../../testdata/usgs_iv_response.json")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	client := NewClient("", 10*time.Second, 2, nil)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
}

func TestClient_GetSeries(t *testing.T) {
	server := fixtureServer(t, func(r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "json", query.Get("format"))
		assert.Equal(t, "05427850", query.Get("sites"))
		assert.Equal(t, "2025-04-24", query.Get("startDT"))
		assert.Equal(t, "2025-05-01", query.Get("endDT"))
		assert.Equal(t, "00060,00065,00010", query.Get("parameterCd"))
		assert.Equal(t, "all", query.Get("siteStatus"))
	})

	fetchedAt := time.Date(2025, 5, 1, 6, 0, 0, 0, time.UTC)
	client := NewClient(server.URL, 5*time.Second, 100, clockwork.NewFakeClockAt(fetchedAt))
	start := time.Date(2025, 4, 24, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	series, err := client.GetSeries(context.Background(), "05427850", start, end)
	require.NoError(t, err)

	assert.Equal(t, "05427850", series.StationID)
	assert.Contains(t, series.SiteName, "YAHARA RIVER")
	assert.Equal(t, fetchedAt, series.UpdatedAt)
	require.Len(t, series.Samples, 4)

	for i := 1; i < len(series.Samples); i++ {
		assert.True(t, series.Samples[i-1].DateTime.Before(series.Samples[i].DateTime))
	}

	first := series.Samples[0]
	flow, ok := first.Get(models.ColumnFlow)
	require.True(t, ok)
	assert.Equal(t, 120.0, flow)
	gage, ok := first.Get(models.ColumnGageHeight)
	require.True(t, ok)
	assert.Equal(t, 8.41, gage)
	temp, ok := first.Get(models.ColumnWaterTemp)
	require.True(t, ok)
	assert.Equal(t, 14.2, temp)

	// Non-numeric gage reading is null, flow still present
	second := series.Samples[1]
	_, ok = second.Get(models.ColumnGageHeight)
	assert.False(t, ok)
	flow, ok = second.Get(models.ColumnFlow)
	require.True(t, ok)
	assert.Equal(t, 130.0, flow)

	// No-data sentinel leaves the row with no values
	assert.Empty(t, series.Samples[2].Values)

	// Timestamp only present in the gage series
	last := series.Samples[3]
	_, ok = last.Get(models.ColumnFlow)
	assert.False(t, ok)
	gage, ok = last.Get(models.ColumnGageHeight)
	require.True(t, ok)
	assert.Equal(t, 8.47, gage)
}

func TestClient_GetLatestGageHeight(t *testing.T) {
	server := fixtureServer(t, func(r *http.Request) {
		assert.Equal(t, "00065", r.URL.Query().Get("parameterCd"))
	})

	client := NewClient(server.URL, 5*time.Second, 100, nil)
	height, at, err := client.GetLatestGageHeight(context.Background(), "05427850")
	require.NoError(t, err)

	assert.Equal(t, 8.47, height)
	assert.Equal(t, 45, at.Minute())
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 100, nil)
	_, err := client.GetSeries(context.Background(), "05427850", time.Now().AddDate(0, 0, -7), time.Now())

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNetworkFailure)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": {"timeSeries": [`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 100, nil)
	_, err := client.GetSeries(context.Background(), "05427850", time.Now().AddDate(0, 0, -7), time.Now())

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrParseFailure)
}

func TestClient_EmptyTimeSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value": {"timeSeries": []}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, 100, nil)

	_, err := client.GetSeries(context.Background(), "05427850", time.Now().AddDate(0, 0, -7), time.Now())
	assert.ErrorIs(t, err, models.ErrParseFailure)

	_, _, err = client.GetLatestGageHeight(context.Background(), "05427850")
	assert.ErrorIs(t, err, models.ErrParseFailure)
}

func TestClient_CanceledContext(t *testing.T) {
	server := fixtureServer(t, nil)
	client := NewClient(server.URL, 5*time.Second, 100, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetSeries(ctx, "05427850", time.Now().AddDate(0, 0, -7), time.Now())
	assert.ErrorIs(t, err, models.ErrNetworkFailure)
}

func TestParseValue(t *testing.T) {
	noData := -999999.0

	v, ok := parseValue("12.5", &noData)
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	_, ok = parseValue("-999999", &noData)
	assert.False(t, ok)

	_, ok = parseValue("Eqp", &noData)
	assert.False(t, ok)

	_, ok = parseValue("", nil)
	assert.False(t, ok)
}
