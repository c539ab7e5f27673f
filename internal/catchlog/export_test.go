package catchlog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOuting(t *testing.T) *models.Outing {
	t.Helper()
	o, err := models.NewOuting("outing-1", "113 Bridge", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), nil, 7, "")
	require.NoError(t, err)

	catches := []models.CatchEntry{
		{
			CaughtAt:     time.Date(2024, 5, 1, 6, 45, 0, 0, time.UTC),
			LocationName: "113 Bridge",
			Latitude:     43.1392,
			Longitude:    -89.3875,
			FishType:     "Walleye",
			Length:       18.25,
			Weight:       2.1,
			WaterDepth:   8.6,
			FishDepth:    6.5,
			Bait:         "Jig, 1/8 oz",
			Rigging:      "Slip bobber",
			WaterType:    models.WaterChannel,
			Position:     models.PositionTransition,
			SuccessScore: 8,
			Notes:        `Hit on the "drop"`,
		},
		{
			CaughtAt:     time.Date(2024, 5, 1, 14, 5, 0, 0, time.UTC),
			LocationName: "113 Bridge",
			Latitude:     43.14,
			Longitude:    -89.38,
			FishType:     "Bluegill",
			Length:       7.5,
			WaterType:    models.WaterSlack,
		},
	}
	for _, c := range catches {
		entry, err := models.NewCatchEntry(c)
		require.NoError(t, err)
		o.FishCaught = append(o.FishCaught, entry)
	}
	return o
}

func TestExport_Header(t *testing.T) {
	o, err := models.NewOuting("empty", "113 Bridge", time.Now(), nil, 5, "")
	require.NoError(t, err)

	data, err := ExportBytes(o)
	require.NoError(t, err)

	want := "Date,Time,Location Name,Latitude,Longitude,Fish Type,Length (in),Weight (lb)," +
		"Water Depth (ft),Fish Depth (ft),Bait Used,Rigging,Water Type,Position,Success Score (1–10),Notes\n"
	assert.Equal(t, want, string(data))
}

func TestExport_Rows(t *testing.T) {
	data, err := ExportBytes(testOuting(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t,
		`2024-05-01,06:45 AM,113 Bridge,43.1392,-89.3875,Walleye,18.25,2.1,8.6,6.5,"Jig, 1/8 oz",Slip bobber,Channel,Transition,8,"Hit on the ""drop"""`,
		lines[1])
	assert.Equal(t,
		`2024-05-01,02:05 PM,113 Bridge,43.14,-89.38,Bluegill,7.5,0,0,0,,,Slack,,,`,
		lines[2])
}

func TestExportParse_RoundTrip(t *testing.T) {
	o := testOuting(t)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, o))

	got, err := ParseCatches(&buf, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, o.FishCaught, got)
}

func TestParseCatches_Errors(t *testing.T) {
	header := strings.Join(Header, ",")

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing column", "Date,Time\n2024-05-01,06:45 AM\n"},
		{"bad date", header + "\nyesterday,06:45 AM,113 Bridge,43,-89,,,,,,,,,,,\n"},
		{"bad number", header + "\n2024-05-01,06:45 AM,113 Bridge,north,-89,,,,,,,,,,,\n"},
		{"bad score", header + "\n2024-05-01,06:45 AM,113 Bridge,43,-89,,,,,,,,,,great,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatches(strings.NewReader(tt.input), time.UTC)
			assert.ErrorIs(t, err, ErrMalformedLog)
		})
	}
}

func TestParseCatches_InvalidValues(t *testing.T) {
	header := strings.Join(Header, ",")
	input := header + "\n2024-05-01,06:45 AM,113 Bridge,43,-89,,,,,,,,,,11,\n"

	_, err := ParseCatches(strings.NewReader(input), time.UTC)
	assert.ErrorIs(t, err, models.ErrInvalidScore)
}

func TestFileName(t *testing.T) {
	o, err := models.NewOuting("x", "113 Bridge", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), nil, 5, "")
	require.NoError(t, err)

	assert.Equal(t, "catches_2024-05-01_113_Bridge.csv", FileName(o))
}
