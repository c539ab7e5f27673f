package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/ngmaloney/fishing-log/internal/conditions"
	"github.com/ngmaloney/fishing-log/internal/config"
	"github.com/ngmaloney/fishing-log/internal/depth"
	"github.com/ngmaloney/fishing-log/internal/locations"
	"github.com/ngmaloney/fishing-log/internal/logging"
	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/ngmaloney/fishing-log/internal/session"
)

// AppState represents the current state of the application
type AppState int

const (
	StateLocations  AppState = iota // Pick a fishing location
	StateLoading                    // Fetching river and weather data
	StateConditions                 // Conditions and outing status for the location
	StateOutingForm                 // Begin an outing
	StateCatchForm                  // Log a catch on the active outing
	StateHistory                    // Past outings
	StateLocationForm               // Add or edit a registry entry
	StateError                      // Error state
)

// ActivePane represents which table is currently focused
type ActivePane int

const (
	PaneRiver ActivePane = iota
	PaneWeather
)

// Outing form fields
const (
	outingStart = iota
	outingEnd
	outingScore
	outingNotes
)

// Catch form fields
const (
	catchFish = iota
	catchLength
	catchWeight
	catchWaterDepth
	catchFishDepth
	catchBait
	catchRigging
	catchWaterType
	catchPosition
	catchScore
	catchNotes
)

// Deps are the services the UI drives
type Deps struct {
	Registry        *locations.Registry
	Session         *session.Session
	Fetcher         *conditions.Fetcher
	Estimator       *depth.Estimator
	Config          *config.Config
	Clock           clockwork.Clock
	ExportDir       string
	InitialLocation string // Selected automatically once locations load
}

// Model represents the application's state
type Model struct {
	state      AppState
	activePane ActivePane
	width      int
	height     int
	err        error // Shown inline on the conditions view
	fatal      error // Shown on the error view

	deps Deps

	// Locations
	locations    []models.Location
	locationList list.Model
	selected     *models.Location
	nearby       *locations.Match // Closest other saved spot to selected

	// Location form
	locationForm form
	editing      *models.Location // Entry being edited, nil when adding

	// Conditions
	snapshot     *conditions.Snapshot
	estimate     *depth.Estimate
	riverTable   table.Model
	weatherTable table.Model

	// Forms
	outingForm form
	catchForm  form

	status  string // Feedback from the last action
	spinner spinner.Model
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.ExportDir == "" {
		deps.ExportDir = "."
	}
	if deps.Session == nil {
		deps.Session = session.New(deps.Clock, nil)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return Model{
		state:        StateLocations,
		activePane:   PaneRiver,
		deps:         deps,
		locationList: createLocationList(nil, 0, 0),
		spinner:      s,
	}
}

// listSize leaves room for the header around the location list
func listSize(width, height int) (int, int) {
	return max(width-4, 20), max(height-6, 5)
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return loadLocations(m.deps.Registry)
}

func (m Model) showErrors() bool {
	return m.deps.Config.ShowErrors
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Handle window size
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.locationList.SetSize(listSize(msg.Width, msg.Height))
		return m, nil
	}

	// Handle custom messages
	switch msg := msg.(type) {
	case errMsg:
		m.fatal = msg.err
		m.state = StateError
		return m, nil

	case locationsLoadedMsg:
		m.locations = msg.locations
		w, h := listSize(m.width, m.height)
		m.locationList = createLocationList(msg.locations, w, h)
		if m.deps.InitialLocation != "" {
			name := m.deps.InitialLocation
			m.deps.InitialLocation = ""
			for i, loc := range m.locations {
				if loc.Name == name {
					m.locationList.Select(i)
					return m.selectLocation(loc)
				}
			}
			m.status = fmt.Sprintf("Location %q not found", name)
		}
		return m, nil

	case snapshotFetchedMsg:
		if m.selected == nil || m.selected.Name != msg.location {
			return m, nil
		}
		m.snapshot = msg.snapshot
		for _, w := range msg.snapshot.Warnings {
			logging.Warn().Err(w.Err).Str("source", string(w.Source)).Msg("Showing partial conditions")
		}
		m.rebuildTables()
		if m.state == StateLoading {
			m.state = StateConditions
		}
		return m, nil

	case nearbyMsg:
		if m.selected == nil || m.selected.Name != msg.location {
			return m, nil
		}
		m.nearby = msg.match
		return m, nil

	case depthEstimatedMsg:
		if m.selected == nil || m.selected.Name != msg.location {
			return m, nil
		}
		est := msg.estimate
		m.estimate = &est
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("export failed: %w", msg.err)
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Exported catches to %s", msg.path)
		return m, nil
	}

	// Handle keyboard input
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		// Global keys
		if keyMsg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		// State-specific handling
		switch m.state {
		case StateLocations:
			return m.handleLocationList(keyMsg)
		case StateConditions:
			return m.handleConditions(keyMsg)
		case StateOutingForm:
			return m.handleOutingForm(keyMsg)
		case StateCatchForm:
			return m.handleCatchForm(keyMsg)
		case StateLocationForm:
			return m.handleLocationForm(keyMsg)
		case StateHistory:
			switch keyMsg.String() {
			case "q":
				return m, tea.Quit
			case "esc", "h":
				m.state = StateConditions
			}
			return m, nil
		case StateLoading:
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		case StateError:
			if keyMsg.String() == "q" {
				return m, tea.Quit
			}
			// Any other key returns to the location list
			m.state = StateLocations
			m.fatal = nil
			return m, nil
		}
	}

	// Update appropriate component based on state
	switch m.state {
	case StateLoading:
		m.spinner, cmd = m.spinner.Update(msg)
	case StateLocations:
		m.locationList, cmd = m.locationList.Update(msg)
	}

	return m, cmd
}

// selectLocation starts fetching conditions and a depth estimate for loc
func (m Model) selectLocation(loc models.Location) (tea.Model, tea.Cmd) {
	cfg := m.deps.Config
	m.selected = &loc
	m.snapshot = nil
	m.estimate = nil
	m.nearby = nil
	m.err = nil
	m.status = ""
	m.state = StateLoading

	return m, tea.Batch(
		m.spinner.Tick,
		fetchSnapshot(m.deps.Fetcher, cfg.USGS.Station, cfg.USGS.LookbackDays, cfg.Weather.Timezone, loc),
		estimateDepth(m.deps.Estimator, cfg.USGS.Station, loc),
		findNearby(m.deps.Registry, loc),
	)
}

func (m *Model) rebuildTables() {
	if m.snapshot == nil {
		return
	}
	m.riverTable = newRiverTable(m.snapshot.River, m.activePane == PaneRiver)
	m.weatherTable = newWeatherTable(m.snapshot.Weather, m.activePane == PaneWeather)
}

// handleLocationList handles keyboard input in location list state
func (m Model) handleLocationList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Let the list own every key while the user is typing a filter
	if m.locationList.FilterState() != list.Filtering {
		switch {
		case msg.Type == tea.KeyEnter:
			if item, ok := m.locationList.SelectedItem().(locationItem); ok {
				return m.selectLocation(item.location)
			}
			return m, nil
		case msg.String() == "q":
			return m, tea.Quit
		case key.Matches(msg, locationKeys.Add):
			m.editing = nil
			m.locationForm = newLocationForm(nil)
			m.state = StateLocationForm
			return m, textinput.Blink
		case key.Matches(msg, locationKeys.Edit):
			if item, ok := m.locationList.SelectedItem().(locationItem); ok {
				loc := item.location
				m.editing = &loc
				m.locationForm = newLocationForm(&loc)
				m.state = StateLocationForm
				return m, textinput.Blink
			}
			return m, nil
		case key.Matches(msg, locationKeys.Delete):
			if item, ok := m.locationList.SelectedItem().(locationItem); ok {
				return m.removeLocation(item.location.Name)
			}
			return m, nil
		}
	}

	m.locationList, cmd = m.locationList.Update(msg)
	return m, cmd
}

// handleLocationForm handles keyboard input while adding or editing a location
func (m Model) handleLocationForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.state = StateLocations
		return m, nil
	}

	f, cmd, submitted := m.locationForm.update(msg)
	m.locationForm = f
	if !submitted {
		return m, cmd
	}

	saved, err := m.submitLocation()
	if err != nil {
		m.locationForm.err = err
		return m, nil
	}
	if m.editing != nil {
		m.status = fmt.Sprintf("Updated %s", saved.Name)
	} else {
		m.status = fmt.Sprintf("Added %s", saved.Name)
	}
	m.editing = nil
	m.state = StateLocations
	return m, loadLocations(m.deps.Registry)
}

func (m Model) submitLocation() (*models.Location, error) {
	f := m.locationForm
	lat, err := parseCoordinateField("latitude", f.value(locationLat))
	if err != nil {
		return nil, err
	}
	lon, err := parseCoordinateField("longitude", f.value(locationLon))
	if err != nil {
		return nil, err
	}
	loc := models.Location{
		Name:         f.value(locationName),
		Coordinates:  models.Coordinate{Lat: lat, Lon: lon},
		SubLocations: locations.ParseSubLocations(f.value(locationSubs)),
	}

	ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)
	defer cancel()
	if m.editing != nil {
		loc.Parking = m.editing.Parking
		return m.deps.Registry.Update(ctx, m.editing.Name, loc)
	}
	return m.deps.Registry.Add(ctx, loc)
}

// removeLocation deletes name from the registry and reloads the list
func (m Model) removeLocation(name string) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)
	defer cancel()
	if err := m.deps.Registry.Remove(ctx, name); err != nil {
		m.status = fmt.Sprintf("Delete failed: %v", err)
		return m, nil
	}
	m.status = fmt.Sprintf("Deleted %s", name)
	return m, loadLocations(m.deps.Registry)
}

// handleConditions handles keyboard input on the conditions view
func (m Model) handleConditions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc", "l":
		m.state = StateLocations
		return m, nil

	case "r":
		if m.selected != nil {
			return m.selectLocation(*m.selected)
		}
		return m, nil

	case "tab":
		if m.activePane == PaneRiver {
			m.activePane = PaneWeather
		} else {
			m.activePane = PaneRiver
		}
		m.rebuildTables()
		return m, nil

	case "b":
		m.err = nil
		m.outingForm = m.newOutingForm()
		m.state = StateOutingForm
		return m, textinput.Blink

	case "c":
		if _, ok := m.deps.Session.Current(); !ok {
			m.err = models.ErrNoActiveOuting
			return m, nil
		}
		m.err = nil
		m.catchForm = m.newCatchForm()
		m.state = StateCatchForm
		return m, textinput.Blink

	case "e":
		ended, err := m.deps.Session.End(m.deps.Clock.Now())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Outing ended with %d catches", ended.CatchCount())
		return m, nil

	case "x":
		outing := m.exportTarget()
		if outing == nil {
			m.err = fmt.Errorf("%w: nothing to export", models.ErrNoActiveOuting)
			return m, nil
		}
		return m, exportOuting(m.deps.ExportDir, outing)

	case "h":
		m.state = StateHistory
		return m, nil
	}

	// Remaining keys scroll the focused table
	var cmd tea.Cmd
	if m.activePane == PaneRiver {
		m.riverTable, cmd = m.riverTable.Update(msg)
	} else {
		m.weatherTable, cmd = m.weatherTable.Update(msg)
	}
	return m, cmd
}

// exportTarget is the active outing, or the most recent one
func (m Model) exportTarget() *models.Outing {
	if outing, ok := m.deps.Session.Current(); ok {
		return outing
	}
	history := m.deps.Session.History()
	if len(history) == 0 {
		return nil
	}
	return history[len(history)-1]
}

func (m Model) newOutingForm() form {
	today := m.deps.Clock.Now().Format("2006-01-02")
	return newForm("Begin Outing",
		newField("Start date", "YYYY-MM-DD", today),
		newField("End date", "YYYY-MM-DD (optional)", ""),
		newField("Success score", "1-10", "5"),
		newField("Notes", "", ""),
	)
}

func (m Model) newCatchForm() form {
	waterDepth := ""
	if m.estimate != nil {
		waterDepth = strconv.FormatFloat(m.estimate.Depth, 'f', 1, 64)
	}
	return newForm("Log Catch",
		newField("Fish type", "Walleye", ""),
		newField("Length (in)", "0", ""),
		newField("Weight (lb)", "0", ""),
		newField("Water depth (ft)", "estimated", waterDepth),
		newField("Fish depth (ft)", "0", ""),
		newField("Bait", "", ""),
		newField("Rigging", "", ""),
		newField("Water type", "Channel | Near Channel | Slack", ""),
		newField("Position", "Shore | Transition | Middle", ""),
		newField("Success score", "1-10 (optional)", ""),
		newField("Notes", "", ""),
	)
}

// handleOutingForm handles keyboard input while beginning an outing
func (m Model) handleOutingForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.state = StateConditions
		return m, nil
	}

	f, cmd, submitted := m.outingForm.update(msg)
	m.outingForm = f
	if !submitted {
		return m, cmd
	}

	outing, err := m.submitOuting()
	if err != nil {
		m.outingForm.err = err
		return m, nil
	}
	m.status = fmt.Sprintf("Outing started at %s", outing.LocationName)
	m.state = StateConditions
	return m, nil
}

func (m Model) submitOuting() (*models.Outing, error) {
	f := m.outingForm
	loc := m.deps.Clock.Now().Location()

	start, err := parseDate(f.value(outingStart), loc)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(f.value(outingEnd), loc)
	if err != nil {
		return nil, err
	}
	score, err := parseScoreField(f.value(outingScore))
	if err != nil {
		return nil, err
	}

	name := ""
	if m.selected != nil {
		name = m.selected.Name
	}
	return m.deps.Session.Begin(session.BeginParams{
		LocationName: name,
		Start:        start,
		End:          end,
		SuccessScore: score,
		Notes:        f.value(outingNotes),
	})
}

// handleCatchForm handles keyboard input while logging a catch
func (m Model) handleCatchForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.state = StateConditions
		return m, nil
	}

	f, cmd, submitted := m.catchForm.update(msg)
	m.catchForm = f
	if !submitted {
		return m, cmd
	}

	entry, err := m.submitCatch()
	if err != nil {
		m.catchForm.err = err
		return m, nil
	}

	count := 0
	if outing, ok := m.deps.Session.Current(); ok {
		count = outing.CatchCount()
	}
	fish := entry.FishType
	if fish == "" {
		fish = "catch"
	}
	m.status = fmt.Sprintf("Logged %s (%d on this outing)", fish, count)
	m.state = StateConditions
	return m, nil
}

func (m Model) submitCatch() (models.CatchEntry, error) {
	f := m.catchForm
	entry := models.CatchEntry{
		CaughtAt:  m.deps.Clock.Now(),
		FishType:  f.value(catchFish),
		Bait:      f.value(catchBait),
		Rigging:   f.value(catchRigging),
		WaterType: matchWaterType(f.value(catchWaterType)),
		Position:  matchPosition(f.value(catchPosition)),
		Notes:     f.value(catchNotes),
	}
	if m.selected != nil {
		entry.LocationName = m.selected.Name
		entry.Latitude = m.selected.Coordinates.Lat
		entry.Longitude = m.selected.Coordinates.Lon
	}

	floats := []struct {
		idx  int
		name string
		dst  *float64
	}{
		{catchLength, "length", &entry.Length},
		{catchWeight, "weight", &entry.Weight},
		{catchWaterDepth, "water depth", &entry.WaterDepth},
		{catchFishDepth, "fish depth", &entry.FishDepth},
	}
	for _, fl := range floats {
		v, err := parseFloatField(fl.name, f.value(fl.idx))
		if err != nil {
			return models.CatchEntry{}, err
		}
		*fl.dst = v
	}

	score, err := parseScoreField(f.value(catchScore))
	if err != nil {
		return models.CatchEntry{}, err
	}
	entry.SuccessScore = score

	return m.deps.Session.AppendCatch(entry)
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateLocations:
		return m.viewLocations()
	case StateLoading:
		return m.viewLoading()
	case StateConditions:
		return m.viewConditions()
	case StateOutingForm:
		return m.viewForm(m.outingForm, "Tab/↑/↓: Move • Enter: Next/Save • Esc: Cancel")
	case StateCatchForm:
		return m.viewForm(m.catchForm, "Tab/↑/↓: Move • Enter: Next/Save • Esc: Cancel")
	case StateHistory:
		return m.viewHistory()
	case StateLocationForm:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.locationForm.view(),
			helpStyle.Render("Sub-locations are comma-separated • Enter: Next/Save • Esc: Cancel"))
	case StateError:
		return m.viewError()
	}

	return ""
}

// viewError renders the error view
func (m Model) viewError() string {
	title := errorStyle.Render("✗ Error")

	var errorMsg string
	if m.fatal != nil {
		errorMsg = m.fatal.Error()
	} else {
		errorMsg = "An unknown error occurred"
	}

	help := helpStyle.Render("Press any key to return to locations • Q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", errorMsg, "", help)
}

// viewLocations renders the location picker
func (m Model) viewLocations() string {
	title := titleStyle.Render("🎣 Fishing Log")
	subtitle := mutedStyle.Render(fmt.Sprintf("River gage %s • %d locations", m.deps.Config.USGS.Station, len(m.locations)))

	var sections []string
	sections = append(sections, title, subtitle, "")
	if m.status != "" {
		sections = append(sections, warningStyle.Render(m.status), "")
	}
	sections = append(sections, m.locationList.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewLoading renders the loading view
func (m Model) viewLoading() string {
	s := "Loading conditions"
	if m.selected != nil {
		s += fmt.Sprintf(" for %s", m.selected.Name)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), s)
}

// viewConditions renders the conditions view - simple vertical layout
func (m Model) viewConditions() string {
	if m.selected == nil {
		return "No location selected"
	}

	var sections []string

	header := titleStyle.
		Padding(0, 1).
		Render(fmt.Sprintf("🎣 %s", m.selected.Name))
	sections = append(sections, header,
		mutedStyle.Render(fmt.Sprintf("📍 %s", m.selected.Coordinates)),
	)
	if m.nearby != nil {
		sections = append(sections, mutedStyle.Render(fmt.Sprintf("↔ Nearest saved spot: %s (%.1f mi)",
			m.nearby.Location.Name, m.nearby.Distance)))
	}
	sections = append(sections,
		"",
		m.renderOutingStatus(),
		m.renderDepth(),
	)

	if m.err != nil {
		sections = append(sections, errorStyle.Render("✗ "+m.err.Error()))
	}
	if m.status != "" {
		sections = append(sections, successStyle.Render("✓ "+m.status))
	}
	sections = append(sections, m.renderWarnings()...)

	riverTitle := "📊 WATER CONDITION TRENDS"
	weatherTitle := "🌦  RECENT WEATHER"
	if m.activePane == PaneRiver {
		riverTitle += " ◂"
	} else {
		weatherTitle += " ◂"
	}
	sections = append(sections,
		sectionHeaderStyle.Render(riverTitle),
		m.renderRiverPane(),
		sectionHeaderStyle.Render(weatherTitle),
		m.renderWeatherPane(),
	)

	help := helpStyle.Render("B: Begin outing • C: Log catch • E: End outing • X: Export • H: History • R: Refresh • Tab: Switch table • L: Locations • Q: Quit")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewForm renders an input form
func (m Model) viewForm(f form, help string) string {
	var sections []string
	if m.selected != nil {
		sections = append(sections, mutedStyle.Render(fmt.Sprintf("📍 %s", m.selected.Name)))
	}
	sections = append(sections, f.view(), helpStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewHistory renders every outing, oldest first
func (m Model) viewHistory() string {
	sections := []string{titleStyle.Render("📖 Outing History"), ""}

	history := m.deps.Session.History()
	if len(history) == 0 {
		sections = append(sections, mutedStyle.Render("No outings yet"))
	}
	for _, o := range history {
		dates := o.StartTime.Format("2006-01-02")
		if o.EndTime != nil {
			dates += " → " + o.EndTime.Format("2006-01-02")
		} else {
			dates += " → ongoing"
		}
		line := fmt.Sprintf("%s  %s  score %d  %d catches",
			valueStyle.Render(dates),
			labelStyle.Render(o.LocationName),
			o.SuccessScore,
			o.CatchCount())
		sections = append(sections, line)
		for _, c := range o.FishCaught {
			sections = append(sections, mutedStyle.Render(fmt.Sprintf("    %s  %s  %.1f in  %.1f ft",
				c.CaughtAt.Format("3:04 PM"), c.FishType, c.Length, c.WaterDepth)))
		}
	}

	sections = append(sections, helpStyle.Render("Esc/H: Back • Q: Quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
