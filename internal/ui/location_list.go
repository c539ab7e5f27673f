package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/ngmaloney/fishing-log/internal/models"
)

// locationItem wraps a Location for use in a list
type locationItem struct {
	location models.Location
}

// FilterValue implements list.Item
func (l locationItem) FilterValue() string {
	return l.location.Name
}

// Title implements list.DefaultItem
func (l locationItem) Title() string {
	return l.location.Name
}

// Description implements list.DefaultItem
func (l locationItem) Description() string {
	desc := l.location.Coordinates.String()
	if len(l.location.SubLocations) > 0 {
		desc += fmt.Sprintf(" • %s", strings.Join(l.location.SubLocations, ", "))
	}
	return desc
}

// locationKeys manage registry entries from the list
var locationKeys = struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
}{
	Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
}

// createLocationList creates a list.Model from registry entries
func createLocationList(locs []models.Location, width, height int) list.Model {
	items := make([]list.Item, len(locs))
	for i, loc := range locs {
		items[i] = locationItem{location: loc}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Fishing Locations"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{locationKeys.Add, locationKeys.Edit, locationKeys.Delete}
	}

	return l
}

// Location form fields
const (
	locationName = iota
	locationLat
	locationLon
	locationSubs
)

// newLocationForm builds the add form, or the edit form when loc is set
func newLocationForm(loc *models.Location) form {
	title := "New Location"
	var name, lat, lon, subs string
	if loc != nil {
		title = "Edit " + loc.Name
		name = loc.Name
		lat = strconv.FormatFloat(loc.Coordinates.Lat, 'f', -1, 64)
		lon = strconv.FormatFloat(loc.Coordinates.Lon, 'f', -1, 64)
		subs = strings.Join(loc.SubLocations, ", ")
	}
	return newForm(title,
		newField("Name", "113 Bridge", name),
		newField("Latitude", "43.1392", lat),
		newField("Longitude", "-89.3875", lon),
		newField("Sub-locations", "Below Bridge, Above Bridge", subs),
	)
}

// parseCoordinateField reads a required latitude or longitude
func parseCoordinateField(name, s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", models.ErrInvalidCoordinate, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", models.ErrInvalidCoordinate, name, s)
	}
	return v, nil
}
