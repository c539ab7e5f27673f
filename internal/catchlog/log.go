package catchlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/ngmaloney/fishing-log/internal/validation"
)

// Columns only found in free-form logs
const (
	ColumnSubLocation   = "Sub-location"
	ColumnAreaType      = "Area Type"
	ColumnFishingMethod = "Fishing Method"
	ColumnAccessPoint   = "Access Point"
)

// AreaType describes the bottom structure fished
type AreaType string

const (
	AreaChannel AreaType = "Channel"
	AreaHold    AreaType = "Hold"
	AreaFlat    AreaType = "Flat"
	AreaDropOff AreaType = "Drop Off"
)

// FishingMethod is shore or boat fishing
type FishingMethod string

const (
	MethodShore FishingMethod = "Shore"
	MethodBoat  FishingMethod = "Boat"
)

var (
	AreaTypes      = []AreaType{AreaChannel, AreaHold, AreaFlat, AreaDropOff}
	FishingMethods = []FishingMethod{MethodShore, MethodBoat}
)

// entryColumns is the column order used for appended entries
var entryColumns = []string{
	ColumnDate,
	ColumnTime,
	ColumnLocationName,
	ColumnSubLocation,
	ColumnAreaType,
	ColumnWaterType,
	ColumnPosition,
	ColumnFishingMethod,
	ColumnAccessPoint,
	ColumnWaterDepth,
	ColumnFishDepth,
	ColumnScore,
	ColumnNotes,
	ColumnLatitude,
	ColumnLongitude,
}

// Log is a user-supplied fishing log with arbitrary columns. Cells are kept
// as text; a missing cell is empty.
type Log struct {
	Columns []string
	Rows    []map[string]string
}

// LogEntry is a new row added to a Log
type LogEntry struct {
	RecordedAt    time.Time
	LocationName  string `validate:"required"`
	SubLocation   string
	AreaType      AreaType         `validate:"omitempty,oneof=Channel Hold Flat 'Drop Off'"`
	WaterType     models.WaterType `validate:"omitempty,oneof=Channel 'Near Channel' Slack"`
	Position      models.Position  `validate:"omitempty,oneof=Shore Transition Middle"`
	FishingMethod FishingMethod    `validate:"omitempty,oneof=Shore Boat"`
	AccessPoint   string
	WaterDepth    float64 `validate:"gte=0"`
	FishDepth     float64 `validate:"gte=0"`
	SuccessScore  int     `validate:"omitempty,min=1,max=10"` // 0 leaves the cell blank
	Notes         string
	Latitude      float64 `validate:"latitude"`
	Longitude     float64 `validate:"longitude"`
}

// NewLog creates an empty log
func NewLog() *Log {
	return &Log{}
}

// ImportLog reads a CSV log with any header. Rows may be shorter than the
// header; missing cells are empty.
func ImportLog(r io.Reader) (*Log, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLog, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedLog)
	}

	l := &Log{Columns: make([]string, len(records[0]))}
	seen := make(map[string]bool, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimPrefix(name, "\ufeff")
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedLog, name)
		}
		seen[name] = true
		l.Columns[i] = name
	}

	for n, rec := range records[1:] {
		if len(rec) > len(l.Columns) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrMalformedLog, n+2, len(rec), len(l.Columns))
		}
		row := make(map[string]string, len(l.Columns))
		for i, c := range l.Columns {
			if i < len(rec) {
				row[c] = rec[i]
			} else {
				row[c] = ""
			}
		}
		l.Rows = append(l.Rows, row)
	}
	return l, nil
}

// Len returns the number of rows
func (l *Log) Len() int {
	return len(l.Rows)
}

// HasColumn reports whether the log has a column named name
func (l *Log) HasColumn(name string) bool {
	for _, c := range l.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Score returns the success score of row. ok is false when the row is unrated.
func (l *Log) Score(row int) (score int, ok bool) {
	if row < 0 || row >= len(l.Rows) {
		return 0, false
	}
	score, err := parseScore(l.Rows[row][ColumnScore])
	if err != nil || score == 0 {
		return 0, false
	}
	return score, true
}

// Rate sets the success score of row, adding the score column if needed
func (l *Log) Rate(row, score int) error {
	if row < 0 || row >= len(l.Rows) {
		return fmt.Errorf("%w: row %d", models.ErrNotFound, row)
	}
	if score < 1 || score > 10 {
		return fmt.Errorf("%w: %d is outside 1-10", models.ErrInvalidScore, score)
	}
	l.addColumn(ColumnScore)
	l.Rows[row][ColumnScore] = strconv.Itoa(score)
	return nil
}

// Append validates e and adds it as a new row. Columns the log lacks are
// added at the end.
func (l *Log) Append(e LogEntry) error {
	if err := validation.Struct(e); err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) && errs.HasField("SuccessScore") {
			return fmt.Errorf("%w: %v", models.ErrInvalidScore, err)
		}
		if errors.As(err, &errs) && (errs.HasField("Latitude") || errs.HasField("Longitude")) {
			return fmt.Errorf("%w: %v", models.ErrInvalidCoordinate, err)
		}
		return fmt.Errorf("%w: %v", models.ErrValidationFailure, err)
	}

	for _, c := range entryColumns {
		l.addColumn(c)
	}
	row := map[string]string{
		ColumnDate:          e.RecordedAt.Format(DateLayout),
		ColumnTime:          e.RecordedAt.Format(TimeLayout),
		ColumnLocationName:  e.LocationName,
		ColumnSubLocation:   e.SubLocation,
		ColumnAreaType:      string(e.AreaType),
		ColumnWaterType:     string(e.WaterType),
		ColumnPosition:      string(e.Position),
		ColumnFishingMethod: string(e.FishingMethod),
		ColumnAccessPoint:   e.AccessPoint,
		ColumnWaterDepth:    formatFloat(e.WaterDepth),
		ColumnFishDepth:     formatFloat(e.FishDepth),
		ColumnScore:         formatScore(e.SuccessScore),
		ColumnNotes:         e.Notes,
		ColumnLatitude:      formatFloat(e.Latitude),
		ColumnLongitude:     formatFloat(e.Longitude),
	}
	for _, c := range l.Columns {
		if _, ok := row[c]; !ok {
			row[c] = ""
		}
	}
	l.Rows = append(l.Rows, row)
	return nil
}

// WriteCSV writes the log with its current columns
func (l *Log) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(l.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	rec := make([]string, len(l.Columns))
	for i, row := range l.Rows {
		for j, c := range l.Columns {
			rec[j] = row[c]
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// addColumn appends name to the header and gives every row an empty cell
func (l *Log) addColumn(name string) {
	if l.HasColumn(name) {
		return
	}
	l.Columns = append(l.Columns, name)
	for _, row := range l.Rows {
		row[name] = ""
	}
}
