package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/fishing-log/internal/models"
)

// tableRows is how many of the newest samples the tables show
const tableRows = 15

// shortColumns are compact headers for the tracked parameters
var shortColumns = map[string]string{
	models.ColumnFlow:       "Flow cfs",
	models.ColumnGageHeight: "Gage ft",
	models.ColumnWaterTemp:  "Water °C",
}

// columnTitle shortens a river column name for the table header
func columnTitle(col string) string {
	for base, short := range shortColumns {
		switch col {
		case base:
			return short
		case models.ChangeColumn(base):
			return short + " Δ"
		case models.RollingAvgColumn(base):
			return short + " avg"
		}
	}
	return col
}

func columnWidth(title string, minWidth int) int {
	w := lipgloss.Width(title) + 2
	if w < minWidth {
		return minWidth
	}
	return w
}

// newRiverTable builds the trend table from the newest river samples
func newRiverTable(samples []models.EnvironmentalSample, focused bool) table.Model {
	cols := models.Columns(samples)

	columns := []table.Column{{Title: "Time", Width: 16}}
	for _, c := range cols {
		title := columnTitle(c)
		columns = append(columns, table.Column{Title: title, Width: columnWidth(title, 9)})
	}

	if len(samples) > tableRows {
		samples = samples[len(samples)-tableRows:]
	}
	rows := make([]table.Row, 0, len(samples))
	for _, s := range samples {
		row := table.Row{s.DateTime.Format("Jan 2 3:04 PM")}
		for _, c := range cols {
			if v, ok := s.Get(c); ok {
				row = append(row, fmt.Sprintf("%.2f", v))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}

	return newTable(columns, rows, focused)
}

// newWeatherTable builds the hourly weather table from the newest samples
func newWeatherTable(samples []models.WeatherSample, focused bool) table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 16},
		{Title: "Temp °C", Width: 9},
		{Title: "Humidity %", Width: 11},
		{Title: "Pressure hPa", Width: 13},
		{Title: "Wind km/h", Width: 10},
		{Title: "Dir", Width: 5},
	}

	if len(samples) > tableRows {
		samples = samples[len(samples)-tableRows:]
	}
	rows := make([]table.Row, 0, len(samples))
	for _, s := range samples {
		dir := "-"
		if !math.IsNaN(s.WindDirection) {
			dir = models.CompassDirection(s.WindDirection)
		}
		rows = append(rows, table.Row{
			s.Time.Format("Jan 2 3:04 PM"),
			formatReading(s.Temperature, 1),
			formatReading(s.Humidity, 0),
			formatReading(s.Pressure, 1),
			formatReading(s.WindSpeed, 1),
			dir,
		})
	}

	return newTable(columns, rows, focused)
}

func newTable(columns []table.Column, rows []table.Row, focused bool) table.Model {
	height := len(rows) + 1
	if height > tableRows+1 {
		height = tableRows + 1
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(focused),
		table.WithHeight(height),
	)
	t.SetStyles(tableStyles(focused))
	if len(rows) > 0 {
		t.SetCursor(len(rows) - 1)
	}
	return t
}

// formatReading renders v with the given precision, or "-" when null
func formatReading(v float64, precision int) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.*f", precision, v)
}

// renderRiverPane renders the trend table or a placeholder when no data arrived
func (m Model) renderRiverPane() string {
	if m.snapshot == nil || len(m.snapshot.River) == 0 {
		return mutedStyle.Render("No river data available")
	}
	return m.riverTable.View()
}

// renderWeatherPane renders the weather table or a placeholder
func (m Model) renderWeatherPane() string {
	if m.snapshot == nil || len(m.snapshot.Weather) == 0 {
		return mutedStyle.Render("No weather data available")
	}
	return m.weatherTable.View()
}

// renderDepth describes the depth estimate for the selected spot
func (m Model) renderDepth() string {
	if m.estimate == nil {
		return mutedStyle.Render("Estimating depth...")
	}
	e := m.estimate
	line := fmt.Sprintf("%s %s",
		labelStyle.Render("Estimated depth:"),
		valueStyle.Render(fmt.Sprintf("%.1f ft", e.Depth)))
	detail := fmt.Sprintf("gage %.2f ft + spot offset %.2f ft", e.GageHeight, e.Offset)
	if e.Fallback {
		detail = fmt.Sprintf("default gage %.1f ft + spot offset %.2f ft, gage unavailable", e.GageHeight, e.Offset)
	}
	return line + " " + mutedStyle.Render("("+detail+")")
}

// renderOutingStatus summarises the active outing
func (m Model) renderOutingStatus() string {
	outing, ok := m.deps.Session.Current()
	if !ok {
		return mutedStyle.Render("No active outing. Press B to begin one.")
	}
	parts := []string{
		fmt.Sprintf("Outing at %s", outing.LocationName),
		fmt.Sprintf("started %s", outing.StartTime.Format("2006-01-02")),
		fmt.Sprintf("%d catches", outing.CatchCount()),
	}
	return successStyle.Render("● " + strings.Join(parts, " • "))
}

// renderWarnings lists fetch warnings when they are configured to show
func (m Model) renderWarnings() []string {
	if m.snapshot == nil {
		return nil
	}
	var lines []string
	for _, w := range m.snapshot.VisibleWarnings(m.showErrors()) {
		lines = append(lines, warningStyle.Render("⚠ "+w.Message()))
	}
	if m.estimate != nil && m.estimate.Warning != nil && m.showErrors() {
		lines = append(lines, warningStyle.Render("⚠ "+m.estimate.Warning.Message()))
	}
	return lines
}
