// Package catchlog reads and writes catch logs as CSV.
package catchlog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/fishing-log/internal/models"
)

// Column names shared by exported and ad-hoc logs
const (
	ColumnDate         = "Date"
	ColumnTime         = "Time"
	ColumnLocationName = "Location Name"
	ColumnLatitude     = "Latitude"
	ColumnLongitude    = "Longitude"
	ColumnFishType     = "Fish Type"
	ColumnLength       = "Length (in)"
	ColumnWeight       = "Weight (lb)"
	ColumnWaterDepth   = "Water Depth (ft)"
	ColumnFishDepth    = "Fish Depth (ft)"
	ColumnBait         = "Bait Used"
	ColumnRigging      = "Rigging"
	ColumnWaterType    = "Water Type"
	ColumnPosition     = "Position"
	ColumnScore        = "Success Score (1–10)"
	ColumnNotes        = "Notes"
)

// Date and time layouts used in the Date and Time columns
const (
	DateLayout = "2006-01-02"
	TimeLayout = "03:04 PM"
)

// Header is the exported column order
var Header = []string{
	ColumnDate,
	ColumnTime,
	ColumnLocationName,
	ColumnLatitude,
	ColumnLongitude,
	ColumnFishType,
	ColumnLength,
	ColumnWeight,
	ColumnWaterDepth,
	ColumnFishDepth,
	ColumnBait,
	ColumnRigging,
	ColumnWaterType,
	ColumnPosition,
	ColumnScore,
	ColumnNotes,
}

// ErrMalformedLog is returned for CSV input that cannot be read as a log
var ErrMalformedLog = fmt.Errorf("%w: malformed catch log", models.ErrValidationFailure)

// Export writes every catch in outing as one CSV row after the header
func Export(w io.Writer, outing *models.Outing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, c := range outing.FishCaught {
		if err := cw.Write(record(c)); err != nil {
			return fmt.Errorf("failed to write catch %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportBytes returns the CSV export of outing
func ExportBytes(outing *models.Outing) ([]byte, error) {
	var buf bytes.Buffer
	if err := Export(&buf, outing); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName is the suggested export name for outing
func FileName(outing *models.Outing) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, outing.LocationName)
	return fmt.Sprintf("catches_%s_%s.csv", outing.StartTime.Format(DateLayout), name)
}

func record(c models.CatchEntry) []string {
	return []string{
		c.CaughtAt.Format(DateLayout),
		c.CaughtAt.Format(TimeLayout),
		c.LocationName,
		formatFloat(c.Latitude),
		formatFloat(c.Longitude),
		c.FishType,
		formatFloat(c.Length),
		formatFloat(c.Weight),
		formatFloat(c.WaterDepth),
		formatFloat(c.FishDepth),
		c.Bait,
		c.Rigging,
		string(c.WaterType),
		string(c.Position),
		formatScore(c.SuccessScore),
		c.Notes,
	}
}

// ParseCatches reads a file written by Export. Date and Time are interpreted
// in loc.
func ParseCatches(r io.Reader, loc *time.Location) ([]models.CatchEntry, error) {
	if loc == nil {
		loc = time.Local
	}

	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLog, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedLog)
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimPrefix(name, "\ufeff")] = i
	}
	for _, name := range Header {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedLog, name)
		}
	}

	entries := make([]models.CatchEntry, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		get := func(col string) string { return row[index[col]] }

		c, err := parseRecord(get, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedLog, line, err)
		}
		c, err = models.NewCatchEntry(c)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, c)
	}
	return entries, nil
}

func parseRecord(get func(string) string, loc *time.Location) (models.CatchEntry, error) {
	caughtAt, err := time.ParseInLocation(DateLayout+" "+TimeLayout, get(ColumnDate)+" "+get(ColumnTime), loc)
	if err != nil {
		return models.CatchEntry{}, fmt.Errorf("invalid date/time: %w", err)
	}

	c := models.CatchEntry{
		CaughtAt:     caughtAt,
		LocationName: get(ColumnLocationName),
		FishType:     get(ColumnFishType),
		Bait:         get(ColumnBait),
		Rigging:      get(ColumnRigging),
		WaterType:    models.WaterType(get(ColumnWaterType)),
		Position:     models.Position(get(ColumnPosition)),
		Notes:        get(ColumnNotes),
	}

	floats := []struct {
		col string
		dst *float64
	}{
		{ColumnLatitude, &c.Latitude},
		{ColumnLongitude, &c.Longitude},
		{ColumnLength, &c.Length},
		{ColumnWeight, &c.Weight},
		{ColumnWaterDepth, &c.WaterDepth},
		{ColumnFishDepth, &c.FishDepth},
	}
	for _, f := range floats {
		v, err := parseFloat(get(f.col))
		if err != nil {
			return models.CatchEntry{}, fmt.Errorf("column %q: %w", f.col, err)
		}
		*f.dst = v
	}

	score, err := parseScore(get(ColumnScore))
	if err != nil {
		return models.CatchEntry{}, fmt.Errorf("column %q: %w", ColumnScore, err)
	}
	c.SuccessScore = score
	return c, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// formatScore leaves unrated entries blank
func formatScore(score int) string {
	if score == 0 {
		return ""
	}
	return strconv.Itoa(score)
}

// parseScore accepts integers and whole-number floats such as "7.0"
func parseScore(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid score %q", s)
	}
	return int(f), nil
}
