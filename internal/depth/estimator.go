// Package depth estimates water depth at a coordinate from the river gage.
//
// The positional offset is a placeholder heuristic, not a bathymetric model.
// It only makes the estimate vary by spot while staying reproducible for the
// same coordinates and gage reading. Treat every result as an estimate.
package depth

import (
	"context"
	"math"

	"github.com/ngmaloney/fishing-log/internal/conditions"
)

// GageSource provides the latest gage height, falling back to a default
type GageSource interface {
	FetchLatestGageHeight(ctx context.Context, stationID string) (conditions.GageReading, *conditions.FetchFailure)
}

// Estimate is a depth estimate and the inputs that produced it
type Estimate struct {
	Depth      float64 // feet, one decimal place
	GageHeight float64
	Offset     float64
	Fallback   bool // GageHeight is the default, not a live reading
	Warning    *conditions.FetchFailure
}

// Estimator combines a gage reading with the positional offset
type Estimator struct {
	gage GageSource
}

// NewEstimator creates an estimator backed by gage
func NewEstimator(gage GageSource) *Estimator {
	return &Estimator{gage: gage}
}

// Estimate returns the estimated depth at lat/lon using station's gage
func (e *Estimator) Estimate(ctx context.Context, lat, lon float64, stationID string) Estimate {
	reading, warning := e.gage.FetchLatestGageHeight(ctx, stationID)
	offset := Offset(lat, lon)

	return Estimate{
		Depth:      Round1(reading.Height + offset),
		GageHeight: reading.Height,
		Offset:     offset,
		Fallback:   reading.Fallback,
		Warning:    warning,
	}
}

// Offset is ((lat*1000 mod 7) + (lon*1000 mod 3)) / 10 using floored
// modulo, so negative longitudes still give a non-negative term.
func Offset(lat, lon float64) float64 {
	return (floorMod(lat*1000, 7) + floorMod(lon*1000, 3)) / 10
}

func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

// Round1 rounds v to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
