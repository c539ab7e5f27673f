package conditions

import (
	"errors"
	"fmt"

	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/sony/gobreaker/v2"
)

// Source names an upstream service
type Source string

const (
	SourceRiver   Source = "usgs"
	SourceGage    Source = "gage"
	SourceWeather Source = "weather"
)

// Kind classifies a failed fetch
type Kind string

const (
	KindNetwork Kind = "network"
	KindParse   Kind = "parse"
)

// FetchFailure is a non-fatal warning produced when an upstream fetch fails.
// The fetch that produced it still returns a usable (possibly empty) result.
type FetchFailure struct {
	Source Source
	Kind   Kind
	Err    error
}

func (f *FetchFailure) Error() string {
	return fmt.Sprintf("%s fetch failed (%s): %v", f.Source, f.Kind, f.Err)
}

func (f *FetchFailure) Unwrap() error {
	return f.Err
}

// Message is the short warning shown next to the affected panel
func (f *FetchFailure) Message() string {
	switch f.Source {
	case SourceRiver:
		return fmt.Sprintf("River data unavailable (%s error)", f.Kind)
	case SourceWeather:
		return fmt.Sprintf("Weather data unavailable (%s error)", f.Kind)
	case SourceGage:
		return fmt.Sprintf("Gage height unavailable (%s error), depth uses the default estimate", f.Kind)
	}
	return f.Error()
}

// classify wraps err as a FetchFailure. Breaker rejections count as network
// failures.
func classify(source Source, err error) *FetchFailure {
	kind := KindNetwork
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		err = fmt.Errorf("%w: %w", models.ErrNetworkFailure, err)
	case errors.Is(err, models.ErrParseFailure):
		kind = KindParse
	}
	return &FetchFailure{Source: source, Kind: kind, Err: err}
}
