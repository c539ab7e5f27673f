package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/fishing-log/internal/models"
)

// field is one labelled text input in a form
type field struct {
	label string
	input textinput.Model
}

func newField(label, placeholder, value string) field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 40
	ti.Prompt = ""
	ti.SetValue(value)
	return field{label: label, input: ti}
}

// form is a vertical stack of inputs with one focused at a time
type form struct {
	title  string
	fields []field
	focus  int
	err    error
}

func newForm(title string, fields ...field) form {
	f := form{title: title, fields: fields}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// value returns the trimmed contents of field i
func (f form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) setFocus(i int) {
	f.fields[f.focus].input.Blur()
	f.focus = (i + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

// update handles a key press. submitted is true when Enter was pressed on the
// last field.
func (f form) update(msg tea.KeyMsg) (form, tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		f.setFocus(f.focus + 1)
		return f, textinput.Blink, false
	case tea.KeyShiftTab, tea.KeyUp:
		f.setFocus(f.focus - 1)
		return f, textinput.Blink, false
	case tea.KeyEnter:
		if f.focus == len(f.fields)-1 {
			return f, nil, true
		}
		f.setFocus(f.focus + 1)
		return f, textinput.Blink, false
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd, false
}

func (f form) view() string {
	var lines []string
	lines = append(lines, titleStyle.Render(f.title), "")

	labelWidth := 0
	for _, fl := range f.fields {
		if w := lipgloss.Width(fl.label); w > labelWidth {
			labelWidth = w
		}
	}

	for i, fl := range f.fields {
		label := labelStyle.Width(labelWidth + 2).Render(fl.label)
		if i == f.focus {
			label = activeLabelStyle.Width(labelWidth + 2).Render(fl.label)
		}
		lines = append(lines, label+fl.input.View())
	}

	if f.err != nil {
		lines = append(lines, "", errorStyle.Render("✗ "+f.err.Error()))
	}

	return sectionBoxStyle.Render(strings.Join(lines, "\n"))
}

// Input parsing. Failures wrap ErrValidationFailure so they are shown on the
// form rather than treated as fatal.

func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", models.ErrValidationFailure, s)
	}
	return t, nil
}

func parseOptionalDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseFloatField(name, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", models.ErrValidationFailure, name, s)
	}
	return v, nil
}

func parseScoreField(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: score %q is not a whole number", models.ErrInvalidScore, s)
	}
	return v, nil
}

// matchWaterType resolves case-insensitive input to a known water type.
// Unknown input is returned unchanged so validation can reject it.
func matchWaterType(s string) models.WaterType {
	for _, wt := range models.WaterTypes {
		if strings.EqualFold(s, string(wt)) {
			return wt
		}
	}
	return models.WaterType(s)
}

func matchPosition(s string) models.Position {
	for _, p := range models.Positions {
		if strings.EqualFold(s, string(p)) {
			return p
		}
	}
	return models.Position(s)
}
