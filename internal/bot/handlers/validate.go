package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	taskTitleMinLen       = 3
	taskTitleMaxLen       = 200
	taskDescriptionMaxLen = 1000
	birthdayNameMinLen    = 2
	birthdayNameMaxLen    = 100
	birthYearMin          = 1900

	dueDateLayout   = "02.01.2006 15:04"
	birthDateLayout = "02.01.2006"

	// noDescription lets the user skip the optional description step.
	noDescription = "-"
)

var (
	errTitleLength       = fmt.Errorf("title must be %d to %d characters", taskTitleMinLen, taskTitleMaxLen)
	errDescriptionLength = fmt.Errorf("description must be at most %d characters", taskDescriptionMaxLen)
	errDueDateFormat     = errors.New("date must look like DD.MM.YYYY HH:MM, e.g. 02.06.2025 15:30")
	errDueDatePast       = errors.New("due date must be in the future")
	errNameLength        = fmt.Errorf("name must be %d to %d characters", birthdayNameMinLen, birthdayNameMaxLen)
	errBirthDateFormat   = errors.New("date must look like DD.MM.YYYY, e.g. 24.12.1980")
	errBirthDateRange    = fmt.Errorf("birth year must be %d or later and not in the future", birthYearMin)
	errConversionFormat  = errors.New("send AMOUNT FROM TO, e.g. 100 USD RUB")
	errConversionAmount  = errors.New("amount must be a positive number")
)

// validateTaskTitle checks the title length in runes.
func validateTaskTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(title); n < taskTitleMinLen || n > taskTitleMaxLen {
		return "", errTitleLength
	}
	return title, nil
}

// validateTaskDescription checks the optional description; a single dash
// means no description.
func validateTaskDescription(raw string) (string, error) {
	desc := strings.TrimSpace(raw)
	if desc == noDescription {
		return "", nil
	}
	if utf8.RuneCountInString(desc) > taskDescriptionMaxLen {
		return "", errDescriptionLength
	}
	return desc, nil
}

// parseDueDate parses a due date in the bot's timezone and rejects dates
// that are not strictly in the future.
func parseDueDate(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	due, err := time.ParseInLocation(dueDateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, errDueDateFormat
	}
	if !due.After(now) {
		return time.Time{}, errDueDatePast
	}
	return due, nil
}

// validateBirthdayName checks the person's name length in runes.
func validateBirthdayName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(name); n < birthdayNameMinLen || n > birthdayNameMaxLen {
		return "", errNameLength
	}
	return name, nil
}

// parseBirthDate parses a birth date and bounds its year.
func parseBirthDate(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(birthDateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, errBirthDateFormat
	}
	if date.Year() < birthYearMin || date.After(now) {
		return time.Time{}, errBirthDateRange
	}
	return date, nil
}

// parseConversion parses "AMOUNT FROM TO" conversion requests.
func parseConversion(raw string) (float64, string, string, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) != 3 {
		return 0, "", "", errConversionFormat
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil || amount <= 0 {
		return 0, "", "", errConversionAmount
	}

	from := strings.ToUpper(fields[1])
	to := strings.ToUpper(fields[2])
	if len(from) != 3 || len(to) != 3 {
		return 0, "", "", errConversionFormat
	}

	return amount, from, to, nil
}
