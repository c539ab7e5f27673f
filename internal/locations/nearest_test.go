package locations

import (
	"context"
	"testing"

	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistance(t *testing.T) {
	// 113 Bridge to Cherokee Marsh is a bit over a mile.
	d := HaversineDistance(43.139, -89.387, 43.157, -89.384)
	assert.InDelta(t, 1.25, d, 0.05)
	assert.Zero(t, HaversineDistance(43.139, -89.387, 43.139, -89.387))
}

func TestRegistry_Nearest(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	require.NoError(t, r.Seed(ctx))
	_, err := r.Add(ctx, models.Location{Name: "Lake Kegonsa", Coordinates: models.Coordinate{Lat: 42.97, Lon: -89.25}})
	require.NoError(t, err)

	tests := []struct {
		name      string
		lat, lon  float64
		maxMiles  float64
		wantFirst string
		wantCount int
	}{
		{"click near bridge", 43.1392, -89.3875, 5, "113 Bridge", 2},
		{"click near marsh", 43.158, -89.383, 0.5, "Cherokee Marsh", 1},
		{"wide radius", 43.0, -89.3, 20, "Lake Kegonsa", 3},
		{"nothing close", 45.0, -93.0, 5, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := r.Nearest(ctx, tt.lat, tt.lon, tt.maxMiles)
			require.NoError(t, err)
			assert.Len(t, matches, tt.wantCount)
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantFirst, matches[0].Location.Name)
				assert.LessOrEqual(t, matches[0].Distance, tt.maxMiles)
			}
		})
	}
}

func TestRegistry_NearestInvalidPoint(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Nearest(context.Background(), 100, 0, 5)
	assert.ErrorIs(t, err, models.ErrInvalidCoordinate)
}
