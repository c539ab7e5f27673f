package locations

import (
	"context"
	"errors"

	"github.com/ngmaloney/fishing-log/internal/models"
)

// DefaultLocations are the spots available on a fresh registry
var DefaultLocations = []models.Location{
	{
		Name:         "113 Bridge",
		Coordinates:  models.Coordinate{Lat: 43.139, Lon: -89.387},
		SubLocations: []string{"Below Bridge", "Above Bridge", "Pool Between Bridges"},
	},
	{
		Name:         "Cherokee Marsh",
		Coordinates:  models.Coordinate{Lat: 43.157, Lon: -89.384},
		SubLocations: []string{"West Shore", "Outlet Bay", "Lily Pads"},
	},
}

// Seed adds the default locations, skipping any that already exist
func (r *Registry) Seed(ctx context.Context) error {
	for _, loc := range DefaultLocations {
		if _, err := r.Add(ctx, loc); err != nil && !errors.Is(err, models.ErrDuplicateName) {
			return err
		}
	}
	return nil
}
