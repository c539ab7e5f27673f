package models

import "fmt"

// Coordinate is a latitude/longitude pair in decimal degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate bound-checks latitude to [-90,90] and longitude to [-180,180]
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %.6f out of range", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %.6f out of range", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}

// Location is a named fishing spot.
// Names are unique within a registry.
type Location struct {
	ID           int64        `json:"id"`   // Registry row ID (0 if not saved)
	Name         string       `json:"name"` // e.g. "113 Bridge"
	Coordinates  Coordinate   `json:"coordinates"`
	SubLocations []string     `json:"sub_locations"` // e.g. "Below Bridge", informational only
	Parking      []Coordinate `json:"parking"`       // Parking lots and boat launches
}

// Validate checks the name and every coordinate on the location
func (l *Location) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: location name is required", ErrValidationFailure)
	}
	if err := l.Coordinates.Validate(); err != nil {
		return err
	}
	for _, p := range l.Parking {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("parking: %w", err)
		}
	}
	return nil
}
