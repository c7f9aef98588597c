// Package command defines the typed callback commands carried in inline
// keyboard payloads. Payloads are colon-delimited strings; they are parsed
// once at the boundary into a Command and dispatched by kind, so every route
// is statically enumerable.
package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a callback command.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoop
	KindCancel
	KindMenu
	KindTaskAdd
	KindTaskDelete
	KindTaskPage
	KindTaskActions
	KindTaskComplete
	KindTaskPostponeMenu
	KindTaskPostpone
	KindTaskDeleteConfirm
	KindBirthdayAdd
	KindBirthdayDelete
	KindBirthdayPage
	KindBirthdayDeleteConfirm
	KindWeatherForecast
	KindCurrencyConvert
	KindSettingsChangeCity
	KindPlacesLocation
	KindPlacesTypes
	KindPlacesSearch
	KindPlacesPage
)

// Menu sections reachable from the main menu.
const (
	SectionMain      = "main"
	SectionTasks     = "tasks"
	SectionBirthdays = "birthdays"
	SectionWeather   = "weather"
	SectionCurrency  = "currency"
	SectionPlaces    = "places"
	SectionSettings  = "settings"
)

// Command is the parsed form of a callback payload. Only the fields relevant
// to the Kind are set.
type Command struct {
	Kind      Kind
	Section   string
	TaskID    uint
	Minutes   int
	Page      int
	Name      string
	PlaceType string
	Latitude  float64
	Longitude float64
}

// noopToken marks pagination buttons that only display state.
const noopToken = "current"

var menuSections = map[string]bool{
	SectionMain:      true,
	SectionTasks:     true,
	SectionBirthdays: true,
	SectionWeather:   true,
	SectionCurrency:  true,
	SectionPlaces:    true,
	SectionSettings:  true,
}

// Parse converts a callback payload into a Command. Unknown or malformed
// payloads return an error; callers treat those as a no-op answer.
func Parse(data string) (Command, error) {
	parts := strings.Split(data, ":")

	switch parts[0] {
	case "cancel":
		return Command{Kind: KindCancel}, nil

	case "menu":
		if len(parts) != 2 || !menuSections[parts[1]] {
			return Command{}, fmt.Errorf("unknown menu payload %q", data)
		}
		return Command{Kind: KindMenu, Section: parts[1]}, nil

	case "task":
		return parseTask(data, parts)

	case "bd":
		return parseBirthday(data, parts)

	case "weather":
		if len(parts) == 2 && parts[1] == "forecast" {
			return Command{Kind: KindWeatherForecast}, nil
		}

	case "currency":
		if len(parts) == 2 && parts[1] == "convert" {
			return Command{Kind: KindCurrencyConvert}, nil
		}

	case "settings":
		if len(parts) == 2 && parts[1] == "change_city" {
			return Command{Kind: KindSettingsChangeCity}, nil
		}

	case "places":
		return parsePlaces(data, parts)
	}

	return Command{}, fmt.Errorf("unknown callback payload %q", data)
}

func parseTask(data string, parts []string) (Command, error) {
	if len(parts) < 2 {
		return Command{}, fmt.Errorf("malformed task payload %q", data)
	}

	switch parts[1] {
	case "add":
		return Command{Kind: KindTaskAdd}, nil
	case "delete":
		return Command{Kind: KindTaskDelete}, nil
	case "page":
		if len(parts) != 3 {
			return Command{}, fmt.Errorf("malformed task page payload %q", data)
		}
		if parts[2] == noopToken {
			return Command{Kind: KindNoop}, nil
		}
		page, err := strconv.Atoi(parts[2])
		if err != nil {
			return Command{}, fmt.Errorf("bad page in payload %q: %w", data, err)
		}
		return Command{Kind: KindTaskPage, Page: page}, nil
	case "actions", "complete", "postpone_menu", "delete_confirm":
		if len(parts) != 3 {
			return Command{}, fmt.Errorf("malformed task payload %q", data)
		}
		id, err := parseID(parts[2])
		if err != nil {
			return Command{}, fmt.Errorf("bad task id in payload %q: %w", data, err)
		}
		kind := map[string]Kind{
			"actions":        KindTaskActions,
			"complete":       KindTaskComplete,
			"postpone_menu":  KindTaskPostponeMenu,
			"delete_confirm": KindTaskDeleteConfirm,
		}[parts[1]]
		return Command{Kind: kind, TaskID: id}, nil
	case "postpone":
		if len(parts) != 4 {
			return Command{}, fmt.Errorf("malformed task postpone payload %q", data)
		}
		id, err := parseID(parts[2])
		if err != nil {
			return Command{}, fmt.Errorf("bad task id in payload %q: %w", data, err)
		}
		minutes, err := strconv.Atoi(parts[3])
		if err != nil || minutes <= 0 {
			return Command{}, fmt.Errorf("bad postpone minutes in payload %q", data)
		}
		return Command{Kind: KindTaskPostpone, TaskID: id, Minutes: minutes}, nil
	}

	return Command{}, fmt.Errorf("unknown task payload %q", data)
}

func parseBirthday(data string, parts []string) (Command, error) {
	if len(parts) < 2 {
		return Command{}, fmt.Errorf("malformed birthday payload %q", data)
	}

	switch parts[1] {
	case "add":
		return Command{Kind: KindBirthdayAdd}, nil
	case "delete":
		return Command{Kind: KindBirthdayDelete}, nil
	case "page":
		if len(parts) != 3 {
			return Command{}, fmt.Errorf("malformed birthday page payload %q", data)
		}
		if parts[2] == noopToken {
			return Command{Kind: KindNoop}, nil
		}
		page, err := strconv.Atoi(parts[2])
		if err != nil {
			return Command{}, fmt.Errorf("bad page in payload %q: %w", data, err)
		}
		return Command{Kind: KindBirthdayPage, Page: page}, nil
	case "delete_confirm":
		if len(parts) < 3 {
			return Command{}, fmt.Errorf("malformed birthday payload %q", data)
		}
		// Names may themselves contain colons; everything after the verb is
		// the name.
		name := strings.Join(parts[2:], ":")
		return Command{Kind: KindBirthdayDeleteConfirm, Name: name}, nil
	}

	return Command{}, fmt.Errorf("unknown birthday payload %q", data)
}

func parsePlaces(data string, parts []string) (Command, error) {
	if len(parts) < 2 {
		return Command{}, fmt.Errorf("malformed places payload %q", data)
	}

	switch parts[1] {
	case "location":
		return Command{Kind: KindPlacesLocation}, nil
	case "types":
		if len(parts) != 4 {
			return Command{}, fmt.Errorf("malformed places types payload %q", data)
		}
		lat, lon, err := parseCoords(parts[2], parts[3])
		if err != nil {
			return Command{}, fmt.Errorf("bad coordinates in payload %q: %w", data, err)
		}
		return Command{Kind: KindPlacesTypes, Latitude: lat, Longitude: lon}, nil
	case "search":
		if len(parts) != 5 {
			return Command{}, fmt.Errorf("malformed places search payload %q", data)
		}
		lat, lon, err := parseCoords(parts[3], parts[4])
		if err != nil {
			return Command{}, fmt.Errorf("bad coordinates in payload %q: %w", data, err)
		}
		return Command{Kind: KindPlacesSearch, PlaceType: parts[2], Latitude: lat, Longitude: lon}, nil
	case "page":
		if len(parts) == 3 && parts[2] == noopToken {
			return Command{Kind: KindNoop}, nil
		}
		if len(parts) != 6 {
			return Command{}, fmt.Errorf("malformed places page payload %q", data)
		}
		lat, lon, err := parseCoords(parts[3], parts[4])
		if err != nil {
			return Command{}, fmt.Errorf("bad coordinates in payload %q: %w", data, err)
		}
		page, err := strconv.Atoi(parts[5])
		if err != nil {
			return Command{}, fmt.Errorf("bad page in payload %q: %w", data, err)
		}
		return Command{Kind: KindPlacesPage, PlaceType: parts[2], Latitude: lat, Longitude: lon, Page: page}, nil
	}

	return Command{}, fmt.Errorf("unknown places payload %q", data)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func parseCoords(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// The Format helpers below build every payload the keyboards emit, keeping
// the scheme in one place next to its parser.

func FormatMenu(section string) string { return "menu:" + section }

func FormatCancel() string { return "cancel" }

func FormatTaskAdd() string { return "task:add" }

func FormatTaskDelete() string { return "task:delete" }

func FormatTaskPage(page int) string { return fmt.Sprintf("task:page:%d", page) }

func FormatTaskPageNoop() string { return "task:page:" + noopToken }

func FormatTaskActions(id uint) string { return fmt.Sprintf("task:actions:%d", id) }

func FormatTaskComplete(id uint) string { return fmt.Sprintf("task:complete:%d", id) }

func FormatTaskPostponeMenu(id uint) string { return fmt.Sprintf("task:postpone_menu:%d", id) }

func FormatTaskPostpone(id uint, minutes int) string {
	return fmt.Sprintf("task:postpone:%d:%d", id, minutes)
}

func FormatTaskDeleteConfirm(id uint) string { return fmt.Sprintf("task:delete_confirm:%d", id) }

func FormatBirthdayAdd() string { return "bd:add" }

func FormatBirthdayDelete() string { return "bd:delete" }

func FormatBirthdayPage(page int) string { return fmt.Sprintf("bd:page:%d", page) }

func FormatBirthdayPageNoop() string { return "bd:page:" + noopToken }

func FormatBirthdayDeleteConfirm(name string) string { return "bd:delete_confirm:" + name }

func FormatWeatherForecast() string { return "weather:forecast" }

func FormatCurrencyConvert() string { return "currency:convert" }

func FormatSettingsChangeCity() string { return "settings:change_city" }

func FormatPlacesLocation() string { return "places:location" }

func FormatPlacesTypes(lat, lon float64) string {
	return fmt.Sprintf("places:types:%s:%s", formatCoord(lat), formatCoord(lon))
}

func FormatPlacesSearch(placeType string, lat, lon float64) string {
	return fmt.Sprintf("places:search:%s:%s:%s", placeType, formatCoord(lat), formatCoord(lon))
}

func FormatPlacesPage(placeType string, lat, lon float64, page int) string {
	return fmt.Sprintf("places:page:%s:%s:%s:%d", placeType, formatCoord(lat), formatCoord(lon), page)
}

func FormatPlacesPageNoop() string { return "places:page:" + noopToken }

// formatCoord keeps coordinates compact; callback payloads are limited to 64
// bytes and six decimals is about 10 cm of precision.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
