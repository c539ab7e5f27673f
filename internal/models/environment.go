package models

import (
	"sort"
	"time"
)

// USGS parameter codes tracked for every river station
const (
	ParamFlow       = "00060"
	ParamGageHeight = "00065"
	ParamWaterTemp  = "00010"
)

// Column names for the tracked parameters
const (
	ColumnFlow       = "Flow (cfs)"
	ColumnGageHeight = "Gage Height (ft)"
	ColumnWaterTemp  = "Water Temperature (°C)"
)

// TrackedParams lists parameter codes in display order
var TrackedParams = []string{ParamFlow, ParamGageHeight, ParamWaterTemp}

// ParamColumns maps parameter codes to column names
var ParamColumns = map[string]string{
	ParamFlow:       ColumnFlow,
	ParamGageHeight: ColumnGageHeight,
	ParamWaterTemp:  ColumnWaterTemp,
}

// ColumnForParam returns the column name for a parameter code.
// Unknown codes are used as their own column name.
func ColumnForParam(code string) string {
	if name, ok := ParamColumns[code]; ok {
		return name
	}
	return code
}

// ChangeColumn is the first-difference column derived from col
func ChangeColumn(col string) string {
	return col + " 1d Change"
}

// RollingAvgColumn is the 3-sample rolling mean column derived from col
func RollingAvgColumn(col string) string {
	return col + " 3d Rolling Avg"
}

// EnvironmentalSample is one timestamped row of river readings.
// A column missing from Values is null for this row.
type EnvironmentalSample struct {
	DateTime time.Time
	Values   map[string]float64
}

// NewEnvironmentalSample creates an empty row at t
func NewEnvironmentalSample(t time.Time) EnvironmentalSample {
	return EnvironmentalSample{DateTime: t, Values: make(map[string]float64)}
}

// Get returns the value in col and whether it is non-null
func (s EnvironmentalSample) Get(col string) (float64, bool) {
	v, ok := s.Values[col]
	return v, ok
}

// Set stores v in col
func (s *EnvironmentalSample) Set(col string, v float64) {
	if s.Values == nil {
		s.Values = make(map[string]float64)
	}
	s.Values[col] = v
}

// Clone returns a deep copy of the row
func (s EnvironmentalSample) Clone() EnvironmentalSample {
	out := EnvironmentalSample{DateTime: s.DateTime, Values: make(map[string]float64, len(s.Values))}
	for k, v := range s.Values {
		out.Values[k] = v
	}
	return out
}

// Columns returns every column present in at least one sample: the tracked
// parameter columns first, each followed by its derived trend columns, then
// any remaining columns alphabetically.
func Columns(samples []EnvironmentalSample) []string {
	present := make(map[string]bool)
	for _, s := range samples {
		for k := range s.Values {
			present[k] = true
		}
	}

	var cols []string
	seen := make(map[string]bool)
	add := func(c string) {
		if present[c] && !seen[c] {
			cols = append(cols, c)
			seen[c] = true
		}
	}
	for _, code := range TrackedParams {
		col := ParamColumns[code]
		add(col)
		add(ChangeColumn(col))
		add(RollingAvgColumn(col))
	}

	var rest []string
	for c := range present {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

// SamplesForDay returns the samples that fall on the calendar day of date
func SamplesForDay(samples []EnvironmentalSample, date time.Time) []EnvironmentalSample {
	var out []EnvironmentalSample
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	for _, s := range samples {
		if !s.DateTime.Before(startOfDay) && s.DateTime.Before(endOfDay) {
			out = append(out, s)
		}
	}
	return out
}

// RiverSeries contains joined readings for one monitoring station
type RiverSeries struct {
	StationID string
	SiteName  string
	Samples   []EnvironmentalSample // Ordered by time
	UpdatedAt time.Time
}
