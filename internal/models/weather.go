package models

import "time"

// WeatherSample is one hourly weather observation for a coordinate.
// A field the service reported as null is NaN.
type WeatherSample struct {
	Time          time.Time
	Temperature   float64 // °C at 2m
	Humidity      float64 // % relative humidity at 2m
	Pressure      float64 // hPa surface pressure
	WindSpeed     float64 // km/h at 10m
	WindDirection float64 // degrees at 10m
}

// WeatherSeries contains hourly samples for a location
type WeatherSeries struct {
	Coordinates Coordinate
	Timezone    string
	Samples     []WeatherSample // Ordered by time
	UpdatedAt   time.Time
}

// Tail returns at most the last n samples
func (ws *WeatherSeries) Tail(n int) []WeatherSample {
	if n <= 0 || len(ws.Samples) <= n {
		return ws.Samples
	}
	return ws.Samples[len(ws.Samples)-n:]
}

// CompassDirection converts degrees to a 16-point compass label
func CompassDirection(deg float64) string {
	points := []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
		"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	for deg < 0 {
		deg += 360
	}
	idx := int((deg+11.25)/22.5) % 16
	return points[idx]
}
