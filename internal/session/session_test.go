package session

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/ngmaloney/fishing-log/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 9, 30, 45, 0, time.UTC)

func newTestSession(t *testing.T) (*Session, *clockwork.FakeClock, *observability.Metrics) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(now)
	m := observability.NewMetricsForTesting()
	return New(clock, m), clock, m
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBegin(t *testing.T) {
	s, _, m := newTestSession(t)

	outing, err := s.Begin(BeginParams{
		LocationName: "113 Bridge",
		SuccessScore: 7,
		Notes:        "windy",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, outing.ID)
	assert.Equal(t, day(2024, 5, 1), outing.StartTime)
	assert.True(t, outing.Ongoing())

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, outing.ID, current.ID)
	assert.Len(t, s.History(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutingsBegun))
}

func TestBegin_EndBeforeStart(t *testing.T) {
	s, _, _ := newTestSession(t)
	end := day(2024, 4, 30)

	_, err := s.Begin(BeginParams{
		LocationName: "113 Bridge",
		Start:        day(2024, 5, 1),
		End:          &end,
		SuccessScore: 5,
	})

	assert.ErrorIs(t, err, models.ErrInvalidDateRange)
	assert.ErrorIs(t, err, models.ErrValidationFailure)
	assert.Empty(t, s.History())
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestBegin_UnregisteredLocation(t *testing.T) {
	s, _, _ := newTestSession(t)

	outing, err := s.Begin(BeginParams{LocationName: "Lake Monona", SuccessScore: 5})
	require.NoError(t, err)
	assert.Equal(t, "Lake Monona", outing.LocationName)

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Lake Monona", current.LocationName)
}

func TestBegin_EmptyLocation(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.Begin(BeginParams{SuccessScore: 5})
	assert.ErrorIs(t, err, models.ErrValidationFailure)
	assert.Empty(t, s.History())
}

func TestBegin_ReplacesCurrent(t *testing.T) {
	s, clock, _ := newTestSession(t)

	first, err := s.Begin(BeginParams{LocationName: "113 Bridge", SuccessScore: 5})
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	second, err := s.Begin(BeginParams{LocationName: "Cherokee Marsh", SuccessScore: 6})
	require.NoError(t, err)

	current, _ := s.Current()
	assert.Equal(t, second.ID, current.ID)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)
}

func TestAppendCatch_NoActiveOuting(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.AppendCatch(models.CatchEntry{FishType: "Walleye"})
	assert.ErrorIs(t, err, models.ErrNoActiveOuting)
	assert.ErrorIs(t, err, models.ErrStateFailure)
}

func TestAppendCatch(t *testing.T) {
	s, _, m := newTestSession(t)
	_, err := s.Begin(BeginParams{LocationName: "113 Bridge", SuccessScore: 5})
	require.NoError(t, err)

	entry, err := s.AppendCatch(models.CatchEntry{
		Latitude:   43.1392,
		Longitude:  -89.3875,
		FishType:   "Walleye",
		Length:     18.5,
		WaterDepth: 8.6,
		WaterType:  models.WaterChannel,
	})
	require.NoError(t, err)

	assert.Equal(t, "113 Bridge", entry.LocationName)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), entry.CaughtAt)

	current, _ := s.Current()
	assert.Equal(t, 1, current.CatchCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatchesLogged))

	_, err = s.AppendCatch(models.CatchEntry{FishType: "Perch", Latitude: 43.14, Longitude: -89.38})
	require.NoError(t, err)
	current, _ = s.Current()
	assert.Equal(t, 2, current.CatchCount())
}

func TestAppendCatch_Invalid(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, err := s.Begin(BeginParams{LocationName: "113 Bridge", SuccessScore: 5})
	require.NoError(t, err)

	_, err = s.AppendCatch(models.CatchEntry{Latitude: 91, Longitude: 0})
	assert.ErrorIs(t, err, models.ErrInvalidCoordinate)

	_, err = s.AppendCatch(models.CatchEntry{Length: -1})
	assert.ErrorIs(t, err, models.ErrValidationFailure)

	current, _ := s.Current()
	assert.Equal(t, 0, current.CatchCount())
}

func TestEnd(t *testing.T) {
	s, clock, _ := newTestSession(t)

	_, err := s.End(time.Time{})
	assert.ErrorIs(t, err, models.ErrNoActiveOuting)

	outing, err := s.Begin(BeginParams{LocationName: "113 Bridge", SuccessScore: 5})
	require.NoError(t, err)

	_, err = s.End(day(2024, 4, 1))
	assert.ErrorIs(t, err, models.ErrInvalidDateRange)

	clock.Advance(48 * time.Hour)
	ended, err := s.End(time.Time{})
	require.NoError(t, err)
	require.NotNil(t, ended.EndTime)
	assert.Equal(t, day(2024, 5, 3), *ended.EndTime)

	_, ok := s.Current()
	assert.False(t, ok)
	_, err = s.AppendCatch(models.CatchEntry{})
	assert.ErrorIs(t, err, models.ErrNoActiveOuting)

	stored, err := s.Outing(outing.ID)
	require.NoError(t, err)
	assert.False(t, stored.Ongoing())
}

func TestHistoryReturnsCopies(t *testing.T) {
	s, _, _ := newTestSession(t)
	outing, err := s.Begin(BeginParams{LocationName: "113 Bridge", SuccessScore: 5})
	require.NoError(t, err)

	history := s.History()
	history[0].Notes = "changed"
	history[0].FishCaught = append(history[0].FishCaught, models.CatchEntry{FishType: "Carp"})

	stored, err := s.Outing(outing.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Notes)
	assert.Equal(t, 0, stored.CatchCount())
}

func TestOuting_NotFound(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.Outing("missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
