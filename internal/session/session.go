// Package session holds the outing history and the active outing for one
// user. It is driven from the UI event loop and is not safe for concurrent use.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ngmaloney/fishing-log/internal/logging"
	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/ngmaloney/fishing-log/internal/observability"
)

// Session is the explicit application state for outings and catches
type Session struct {
	clock   clockwork.Clock
	metrics *observability.Metrics
	newID   func() string

	history []*models.Outing
	current *models.Outing
}

// New creates an empty session
func New(clock clockwork.Clock, metrics *observability.Metrics) *Session {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Session{
		clock:   clock,
		metrics: metrics,
		newID:   uuid.NewString,
	}
}

// BeginParams describes a new outing
type BeginParams struct {
	LocationName string
	Start        time.Time // zero means today
	End          *time.Time
	SuccessScore int
	Notes        string
}

// Begin creates an outing, appends it to the history and makes it current.
// Any previously current outing stops accepting catches. The location name
// is recorded as given and need not exist in the registry.
func (s *Session) Begin(p BeginParams) (*models.Outing, error) {
	start := p.Start
	if start.IsZero() {
		start = s.clock.Now()
	}

	outing, err := models.NewOuting(s.newID(), p.LocationName, start, p.End, p.SuccessScore, p.Notes)
	if err != nil {
		return nil, err
	}

	s.history = append(s.history, outing)
	s.current = outing
	s.metrics.OutingsBegun.Inc()

	logging.Info().
		Str("outing", outing.ID).
		Str("location", outing.LocationName).
		Time("start", outing.StartTime).
		Msg("Outing started")
	return outing.Clone(), nil
}

// End closes the current outing on the calendar date of end (today if zero)
// and leaves the session with no active outing.
func (s *Session) End(end time.Time) (*models.Outing, error) {
	if s.current == nil {
		return nil, models.ErrNoActiveOuting
	}
	if end.IsZero() {
		end = s.clock.Now()
	}

	e := models.CalendarDate(end)
	if e.Before(s.current.StartTime) {
		return nil, fmt.Errorf("%w: %s is before %s", models.ErrInvalidDateRange,
			e.Format("2006-01-02"), s.current.StartTime.Format("2006-01-02"))
	}

	ended := s.current
	ended.EndTime = &e
	s.current = nil

	logging.Info().
		Str("outing", ended.ID).
		Int("catches", ended.CatchCount()).
		Msg("Outing ended")
	return ended.Clone(), nil
}

// AppendCatch validates entry and adds it to the current outing. A zero
// CaughtAt is stamped with the current time and an empty location inherits
// the outing's.
func (s *Session) AppendCatch(entry models.CatchEntry) (models.CatchEntry, error) {
	if s.current == nil {
		return models.CatchEntry{}, models.ErrNoActiveOuting
	}
	if entry.CaughtAt.IsZero() {
		entry.CaughtAt = s.clock.Now()
	}
	if entry.LocationName == "" {
		entry.LocationName = s.current.LocationName
	}

	entry, err := models.NewCatchEntry(entry)
	if err != nil {
		return models.CatchEntry{}, err
	}

	s.current.FishCaught = append(s.current.FishCaught, entry)
	s.metrics.CatchesLogged.Inc()

	logging.Debug().
		Str("outing", s.current.ID).
		Str("fish", entry.FishType).
		Msg("Catch logged")
	return entry, nil
}

// Current returns a copy of the active outing
func (s *Session) Current() (*models.Outing, bool) {
	if s.current == nil {
		return nil, false
	}
	return s.current.Clone(), true
}

// History returns copies of every outing, oldest first
func (s *Session) History() []*models.Outing {
	out := make([]*models.Outing, len(s.history))
	for i, o := range s.history {
		out[i] = o.Clone()
	}
	return out
}

// Outing returns a copy of the outing with id
func (s *Session) Outing(id string) (*models.Outing, error) {
	for _, o := range s.history {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: outing %s", models.ErrNotFound, id)
}
