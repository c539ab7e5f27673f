package locations

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ngmaloney/fishing-log/internal/models"
)

// Match is a location with its distance from a query point
type Match struct {
	Location models.Location
	Distance float64 // miles
}

// HaversineDistance calculates distance in miles between two lat/lon points
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusMiles = 3959.0

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// Nearest finds locations within maxDistanceMiles of the point, closest first.
func (r *Registry) Nearest(ctx context.Context, lat, lon, maxDistanceMiles float64) ([]Match, error) {
	if err := (models.Coordinate{Lat: lat, Lon: lon}).Validate(); err != nil {
		return nil, err
	}

	// Bounding box prefilter, 1 degree of latitude is roughly 69 miles.
	latDelta := (maxDistanceMiles / 69.0) * 1.5
	lonDelta := (maxDistanceMiles / (69.0 * math.Max(math.Cos(lat*math.Pi/180), 0.01))) * 1.5

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, latitude, longitude, sub_locations, parking
		FROM locations
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
	`, lat-latDelta, lat+latDelta, lon-lonDelta, lon+lonDelta)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		d := HaversineDistance(lat, lon, loc.Coordinates.Lat, loc.Coordinates.Lon)
		if d <= maxDistanceMiles {
			matches = append(matches, Match{Location: *loc, Distance: d})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locations: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	return matches, nil
}
