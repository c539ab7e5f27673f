package locations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/ngmaloney/fishing-log/internal/logging"
	"github.com/ngmaloney/fishing-log/internal/models"
)

// ImportShapefile adds every point feature in a shapefile as a location.
// The DBF must have a NAME field; an optional SUBLOCS field holds
// comma-separated sub-locations. Features with a name already in the
// registry are skipped. Returns the number of locations added.
func (r *Registry) ImportShapefile(ctx context.Context, path string) (int, error) {
	// go-shp opens the attribute table lazily and drops its error
	dbf := strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"
	if _, err := os.Stat(dbf); err != nil {
		return 0, fmt.Errorf("%w: shapefile %s has no attribute table: %w", models.ErrParseFailure, path, err)
	}

	shape, err := shp.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	nameIdx, subIdx := -1, -1
	for i, f := range shape.Fields() {
		switch strings.ToUpper(strings.Trim(f.String(), " \x00")) {
		case "NAME":
			nameIdx = i
		case "SUBLOCS":
			subIdx = i
		}
	}
	if nameIdx < 0 {
		return 0, fmt.Errorf("%w: shapefile %s has no NAME field", models.ErrParseFailure, path)
	}

	log := logging.With().Str("component", "locations").Str("shapefile", path).Logger()
	added := 0
	for shape.Next() {
		n, p := shape.Shape()

		var coord models.Coordinate
		switch pt := p.(type) {
		case *shp.Point:
			coord = models.Coordinate{Lat: pt.Y, Lon: pt.X}
		case *shp.PointZ:
			coord = models.Coordinate{Lat: pt.Y, Lon: pt.X}
		default:
			continue
		}

		name := strings.Trim(shape.ReadAttribute(n, nameIdx), " \x00")
		if name == "" {
			continue
		}
		loc := models.Location{Name: name, Coordinates: coord}
		if subIdx >= 0 {
			loc.SubLocations = splitList(shape.ReadAttribute(n, subIdx))
		}

		if _, err := r.Add(ctx, loc); err != nil {
			if errors.Is(err, models.ErrValidationFailure) {
				log.Warn().Err(err).Str("name", name).Msg("skipping feature")
				continue
			}
			return added, err
		}
		added++
	}

	log.Info().Int("added", added).Msg("imported locations from shapefile")
	return added, nil
}

// splitList splits a comma-separated list, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(strings.Trim(s, " \x00"), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseSubLocations splits user input like "Below Bridge, Above Bridge"
func ParseSubLocations(s string) []string {
	return splitList(s)
}
