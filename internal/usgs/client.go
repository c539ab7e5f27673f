// Package usgs reads instantaneous values from the USGS Water Services API.
package usgs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/ngmaloney/fishing-log/internal/models"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the instantaneous-values endpoint
const DefaultBaseURL = "https://waterservices.usgs.gov/nwis/iv/"

// Client fetches gage readings from USGS
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	clock      clockwork.Clock
	userAgent  string
}

// NewClient creates a USGS client. ratePerSecond caps outgoing requests.
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
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		clock:     clock,
		userAgent: "FishingLog/1.0 (github.com/ngmaloney/fishing-log)",
	}
}

// GetSeries retrieves flow, gage height and water temperature for a station
// and joins them on timestamp. A timestamp present in any parameter's series
// appears in the result; parameters without a reading there are left null.
func (c *Client) GetSeries(ctx context.Context, stationID string, startDate, endDate time.Time) (*models.RiverSeries, error) {
	params := url.Values{}
	params.Add("format", "json")
	params.Add("sites", stationID)
	params.Add("startDT", startDate.Format("2006-01-02"))
	params.Add("endDT", endDate.Format("2006-01-02"))
	params.Add("parameterCd", strings.Join(models.TrackedParams, ","))
	params.Add("siteStatus", "all")

	resp, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Value.TimeSeries) == 0 {
		return nil, fmt.Errorf("%w: no time series returned for station %s", models.ErrParseFailure, stationID)
	}

	rows := make(map[time.Time]*models.EnvironmentalSample)
	siteName := ""
	for _, ts := range resp.Value.TimeSeries {
		if siteName == "" {
			siteName = ts.SourceInfo.SiteName
		}
		if len(ts.Variable.VariableCode) == 0 {
			return nil, fmt.Errorf("%w: time series without variable code", models.ErrParseFailure)
		}
		column := models.ColumnForParam(ts.Variable.VariableCode[0].Value)
		if len(ts.Values) == 0 {
			continue
		}

		for _, point := range ts.Values[0].Value {
			t, err := time.Parse(time.RFC3339, point.DateTime)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid dateTime %q: %w", models.ErrParseFailure, point.DateTime, err)
			}

			row, ok := rows[t]
			if !ok {
				s := models.NewEnvironmentalSample(t)
				row = &s
				rows[t] = row
			}

			v, ok := parseValue(point.Value, ts.Variable.NoDataValue)
			if !ok {
				continue
			}
			if _, filled := row.Get(column); !filled {
				row.Set(column, v)
			}
		}
	}

	series := &models.RiverSeries{
		StationID: stationID,
		SiteName:  siteName,
		Samples:   make([]models.EnvironmentalSample, 0, len(rows)),
		UpdatedAt: c.clock.Now(),
	}
	for _, row := range rows {
		series.Samples = append(series.Samples, *row)
	}
	sort.Slice(series.Samples, func(i, j int) bool {
		return series.Samples[i].DateTime.Before(series.Samples[j].DateTime)
	})

	return series, nil
}

// GetLatestGageHeight returns the most recent gage height reading in feet
func (c *Client) GetLatestGageHeight(ctx context.Context, stationID string) (float64, time.Time, error) {
	params := url.Values{}
	params.Add("format", "json")
	params.Add("sites", stationID)
	params.Add("parameterCd", models.ParamGageHeight)
	params.Add("siteStatus", "all")

	resp, err := c.get(ctx, params)
	if err != nil {
		return 0, time.Time{}, err
	}

	for _, ts := range resp.Value.TimeSeries {
		if len(ts.Variable.VariableCode) == 0 || ts.Variable.VariableCode[0].Value != models.ParamGageHeight {
			continue
		}
		for _, vals := range ts.Values {
			// Walk backwards to the newest usable reading
			for i := len(vals.Value) - 1; i >= 0; i-- {
				point := vals.Value[i]
				v, ok := parseValue(point.Value, ts.Variable.NoDataValue)
				if !ok {
					continue
				}
				t, err := time.Parse(time.RFC3339, point.DateTime)
				if err != nil {
					return 0, time.Time{}, fmt.Errorf("%w: invalid dateTime %q: %w", models.ErrParseFailure, point.DateTime, err)
				}
				return v, t, nil
			}
		}
	}

	return 0, time.Time{}, fmt.Errorf("%w: no gage height reading for station %s", models.ErrParseFailure, stationID)
}

func (c *Client) get(ctx context.Context, params url.Values) (*ivResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for rate limiter: %w", models.ErrNetworkFailure, err)
	}

	requestURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch river data: %w", models.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: API returned status %d: %s", models.ErrNetworkFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var ivResp ivResponse
	if err := json.NewDecoder(resp.Body).Decode(&ivResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", models.ErrParseFailure, err)
	}
	return &ivResp, nil
}

// parseValue converts a reading to a float. Blank, non-numeric and no-data
// sentinel values are null.
func parseValue(s string, noData *float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	if noData != nil && v == *noData {
		return 0, false
	}
	return v, true
}

// Internal types for USGS IV API responses

type ivResponse struct {
	Value struct {
		TimeSeries []struct {
			SourceInfo struct {
				SiteName string `json:"siteName"`
			} `json:"sourceInfo"`
			Variable struct {
				VariableCode []struct {
					Value string `json:"value"`
				} `json:"variableCode"`
				VariableName string   `json:"variableName"`
				NoDataValue  *float64 `json:"noDataValue"`
			} `json:"variable"`
			Values []struct {
				Value []struct {
					Value    string `json:"value"`
					DateTime string `json:"dateTime"`
				} `json:"value"`
			} `json:"values"`
		} `json:"timeSeries"`
	} `json:"value"`
}
