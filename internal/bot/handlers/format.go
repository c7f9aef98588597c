package handlers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkazakov/assistbot/internal/database"
	"github.com/pkazakov/assistbot/internal/places"
)

// taskStatusEmoji marks overdue tasks in listings.
func taskStatusEmoji(task database.Task, now time.Time) string {
	if task.DueDate.Before(now) {
		return "🔴"
	}
	return "🟢"
}

// formatTimeUntil renders the distance to a deadline as a short human
// phrase, for either direction.
func formatTimeUntil(due, now time.Time) string {
	d := due.Sub(now)
	overdue := d < 0
	if overdue {
		d = -d
	}

	var span string
	switch {
	case d < time.Minute:
		span = "less than a minute"
	case d < time.Hour:
		span = fmt.Sprintf("%d min", int(d.Minutes()))
	case d < 24*time.Hour:
		span = fmt.Sprintf("%d h %d min", int(d.Hours()), int(d.Minutes())%60)
	default:
		span = fmt.Sprintf("%d days", int(d.Hours()/24))
	}

	if overdue {
		return span + " overdue"
	}
	return "in " + span
}

// formatTaskDetails renders the task card shown by the actions view.
func formatTaskDetails(task *database.Task, now time.Time, loc *time.Location) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", taskStatusEmoji(*task, now), task.Title)
	if task.Description != "" {
		sb.WriteString(task.Description + "\n")
	}
	fmt.Fprintf(&sb, "Due: %s (%s)", task.DueDate.In(loc).Format(dueDateLayout), formatTimeUntil(task.DueDate, now))
	return sb.String()
}

// truncateLabel shortens long titles so they fit on an inline button.
func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// formatBirthdayLine renders one entry of the birthday listing with the age
// the person turns on their next birthday.
func formatBirthdayLine(b database.Birthday, now time.Time) string {
	next := nextBirthday(b.BirthDate, now)
	return fmt.Sprintf("🎂 %s — %s (turns %d %s)",
		b.Name,
		b.BirthDate.Format(birthDateLayout),
		next.Year()-b.BirthDate.Year(),
		formatTimeUntil(next, now))
}

// nextBirthday returns the next occurrence of the birth date's month and
// day at or after now. A February 29th birth date next occurs on the next
// February 29th.
func nextBirthday(birthDate, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for year := now.Year(); ; year++ {
		candidate := time.Date(year, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, now.Location())
		// time.Date normalizes Feb 29 to Mar 1 on non-leap years.
		if candidate.Month() != birthDate.Month() {
			continue
		}
		if !candidate.Before(today) {
			return candidate
		}
	}
}

// sortBirthdaysByUpcoming orders birthdays by days until the next
// occurrence, soonest first. Ties keep the stored order.
func sortBirthdaysByUpcoming(birthdays []database.Birthday, now time.Time) {
	sort.SliceStable(birthdays, func(i, j int) bool {
		return nextBirthday(birthdays[i].BirthDate, now).Before(nextBirthday(birthdays[j].BirthDate, now))
	})
}

// formatPlacesPage renders one page of the nearby-places listing.
func formatPlacesPage(items []places.Place, placeType string, page, totalPages int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📍 %s nearby (page %d/%d):\n\n", placeTypeTitle(placeType), page, totalPages)

	for _, p := range items {
		fmt.Fprintf(&sb, "• %s", p.Name)
		if p.Address != "" {
			fmt.Fprintf(&sb, ", %s", p.Address)
		}
		fmt.Fprintf(&sb, " — %s\n%s\n", formatDistance(p.Distance), p.MapURL())
	}

	return sb.String()
}

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// placeTypeTitle maps a place type to its display name.
func placeTypeTitle(placeType string) string {
	switch placeType {
	case "pharmacies":
		return "Pharmacies"
	case "vet":
		return "Vet clinics and pet shops"
	case "shops":
		return "Grocery shops"
	default:
		return placeType
	}
}
