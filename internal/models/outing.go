package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/ngmaloney/fishing-log/internal/validation"
)

// WaterType describes where in the current a fish was caught
type WaterType string

const (
	WaterChannel     WaterType = "Channel"
	WaterNearChannel WaterType = "Near Channel"
	WaterSlack       WaterType = "Slack"
)

// Position describes where in the water body a fish was caught
type Position string

const (
	PositionShore      Position = "Shore"
	PositionTransition Position = "Transition"
	PositionMiddle     Position = "Middle"
)

// WaterTypes and Positions list the allowed values in form order
var (
	WaterTypes = []WaterType{WaterChannel, WaterNearChannel, WaterSlack}
	Positions  = []Position{PositionShore, PositionTransition, PositionMiddle}
)

// CatchEntry is one recorded fish. Entries are immutable once appended to an
// outing.
type CatchEntry struct {
	CaughtAt     time.Time // Exported as separate Date and Time columns
	LocationName string    `validate:"required"`
	Latitude     float64   `validate:"latitude"`
	Longitude    float64   `validate:"longitude"`
	FishType     string
	Length       float64 `validate:"gte=0"` // inches
	Weight       float64 `validate:"gte=0"` // pounds
	WaterDepth   float64 `validate:"gte=0"` // feet
	FishDepth    float64 `validate:"gte=0"` // feet
	Bait         string
	Rigging      string
	WaterType    WaterType `validate:"omitempty,oneof=Channel 'Near Channel' Slack"`
	Position     Position  `validate:"omitempty,oneof=Shore Transition Middle"`
	SuccessScore int       `validate:"omitempty,min=1,max=10"` // 0 means unrated
	Notes        string
}

// Validate checks field ranges and enumerations
func (c CatchEntry) Validate() error {
	return checkStruct(c)
}

// NewCatchEntry validates c and truncates its timestamp to the minute, which is
// the resolution of the exported Time column.
func NewCatchEntry(c CatchEntry) (CatchEntry, error) {
	c.CaughtAt = c.CaughtAt.Truncate(time.Minute)
	if err := c.Validate(); err != nil {
		return CatchEntry{}, err
	}
	return c, nil
}

// Outing is one fishing session. It exclusively owns its catches.
type Outing struct {
	ID           string
	LocationName string     `validate:"required"` // Weak reference into the location registry
	StartTime    time.Time  // Calendar date
	EndTime      *time.Time // nil while ongoing
	SuccessScore int        `validate:"min=1,max=10"`
	Notes        string
	FishCaught   []CatchEntry
}

// NewOuting builds a validated outing. Start and end are reduced to calendar
// dates before the range check.
func NewOuting(id, locationName string, start time.Time, end *time.Time, score int, notes string) (*Outing, error) {
	o := &Outing{
		ID:           id,
		LocationName: locationName,
		StartTime:    CalendarDate(start),
		SuccessScore: score,
		Notes:        notes,
	}
	if end != nil {
		e := CalendarDate(*end)
		if e.Before(o.StartTime) {
			return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange,
				e.Format("2006-01-02"), o.StartTime.Format("2006-01-02"))
		}
		o.EndTime = &e
	}
	if err := checkStruct(o); err != nil {
		return nil, err
	}
	return o, nil
}

// Ongoing reports whether the outing has no end date
func (o *Outing) Ongoing() bool {
	return o.EndTime == nil
}

// CatchCount returns the number of fish logged on the outing
func (o *Outing) CatchCount() int {
	return len(o.FishCaught)
}

// Catches returns a copy of the catch list
func (o *Outing) Catches() []CatchEntry {
	out := make([]CatchEntry, len(o.FishCaught))
	copy(out, o.FishCaught)
	return out
}

// Clone returns a copy that shares no catch storage with o
func (o *Outing) Clone() *Outing {
	out := *o
	out.FishCaught = o.Catches()
	if o.EndTime != nil {
		end := *o.EndTime
		out.EndTime = &end
	}
	return &out
}

// CalendarDate truncates t to midnight in its own location
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// checkStruct runs tag validation and maps failures onto the error taxonomy
func checkStruct(s interface{}) error {
	err := validation.Struct(s)
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) && errs.HasField("SuccessScore") {
		return fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}
	if errors.As(err, &errs) && (errs.HasField("Latitude") || errs.HasField("Longitude")) {
		return fmt.Errorf("%w: %v", ErrInvalidCoordinate, err)
	}
	return fmt.Errorf("%w: %v", ErrValidationFailure, err)
}
