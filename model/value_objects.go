// Package model provides value objects for game fields and API parameter validation.
package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stsysd/gameshelf/result"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
	maxPlatformLength    = 100
	maxFormatLength      = 50
)

// GameID represents a game identifier value object.
type GameID struct {
	value string
}

// NewGameID creates a game identifier. Surrounding whitespace is removed.
func NewGameID(id string) result.Result[GameID, FieldError] {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return result.Err[GameID](newFieldError("gameId", "GameId cannot be empty"))
	}
	return result.Ok[GameID, FieldError](GameID{value: trimmed})
}

// String returns the identifier string.
func (g GameID) String() string {
	return g.value
}

// GameTitle represents a game title value object.
type GameTitle struct {
	value string
}

// NewGameTitle creates a game title.
// The length limit applies to the raw input, the stored value is trimmed.
func NewGameTitle(title string) result.Result[GameTitle, FieldError] {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return result.Err[GameTitle](newFieldError("title", "Game title cannot be empty"))
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return result.Err[GameTitle](newFieldError("title", fmt.Sprintf("Game title cannot exceed %d characters", maxTitleLength)))
	}
	return result.Ok[GameTitle, FieldError](GameTitle{value: trimmed})
}

// String returns the title string.
func (g GameTitle) String() string {
	return g.value
}

// GameDescription represents a free-form description. Empty is allowed.
type GameDescription struct {
	value string
}

// NewGameDescription creates a description value object.
func NewGameDescription(description string) result.Result[GameDescription, FieldError] {
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return result.Err[GameDescription](newFieldError("description", fmt.Sprintf("Game description cannot exceed %d characters", maxDescriptionLength)))
	}
	return result.Ok[GameDescription, FieldError](GameDescription{value: description})
}

// String returns the description string.
func (g GameDescription) String() string {
	return g.value
}

// Platform represents the platform a game runs on (e.g. "PlayStation 5").
type Platform struct {
	value string
}

// NewPlatform creates a platform value object.
func NewPlatform(platform string) result.Result[Platform, FieldError] {
	if strings.TrimSpace(platform) == "" {
		return result.Err[Platform](newFieldError("platform", "Platform name is required"))
	}
	if utf8.RuneCountInString(platform) > maxPlatformLength {
		return result.Err[Platform](newFieldError("platform", fmt.Sprintf("Platform name cannot exceed %d characters", maxPlatformLength)))
	}
	return result.Ok[Platform, FieldError](Platform{value: strings.TrimSpace(platform)})
}

// String returns the platform name.
func (p Platform) String() string {
	return p.value
}

// Format represents the game format (e.g. "Physical", "Digital", "Steelbook").
type Format struct {
	value string
}

// NewFormat creates a format value object.
func NewFormat(format string) result.Result[Format, FieldError] {
	if strings.TrimSpace(format) == "" {
		return result.Err[Format](newFieldError("format", "Format name is required"))
	}
	if utf8.RuneCountInString(format) > maxFormatLength {
		return result.Err[Format](newFieldError("format", fmt.Sprintf("Format name cannot exceed %d characters", maxFormatLength)))
	}
	return result.Ok[Format, FieldError](Format{value: strings.TrimSpace(format)})
}

// String returns the format name.
func (f Format) String() string {
	return f.value
}

// StatusType enumerates the ownership states of a game.
type StatusType string

const (
	StatusOwned    StatusType = "Owned"
	StatusWishlist StatusType = "Wishlist"
	StatusSold     StatusType = "Sold"
	StatusLoaned   StatusType = "Loaned"
)

// StatusTypes lists every valid status in display order.
var StatusTypes = []StatusType{StatusOwned, StatusWishlist, StatusSold, StatusLoaned}

// Status represents the ownership status value object.
type Status struct {
	value StatusType
}

// NewStatus creates a status from a case-insensitive name.
func NewStatus(status string) result.Result[Status, FieldError] {
	trimmed := strings.TrimSpace(status)
	for _, s := range StatusTypes {
		if strings.EqualFold(string(s), trimmed) {
			return result.Ok[Status, FieldError](Status{value: s})
		}
	}

	names := make([]string, len(StatusTypes))
	for i, s := range StatusTypes {
		names[i] = string(s)
	}
	return result.Err[Status](newFieldError("status", fmt.Sprintf("Invalid status: %s. Valid statuses are: %s", status, strings.Join(names, ", "))))
}

// StatusFrom creates a status from an enum value.
func StatusFrom(s StatusType) Status {
	return Status{value: s}
}

// Type returns the enum value.
func (s Status) Type() StatusType {
	return s.value
}

// String returns the status name.
func (s Status) String() string {
	return string(s.value)
}

// DateRange represents a date range value object.
type DateRange struct {
	from time.Time
	to   time.Time
}

// NewDateRange creates a new date range value object.
// Empty bounds default to the latest 52 weeks.
func NewDateRange(fromStr, toStr string) (*DateRange, error) {
	defaultFrom, defaultTo := getDefaultDateRange()

	fromTime := defaultFrom
	if fromStr != "" {
		t, err := parseDateTime(fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid from parameter. Use ISO8601 format (YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ)")
		}
		fromTime = t
	}

	toTime := defaultTo
	if toStr != "" {
		t, err := parseDateTime(toStr)
		if err != nil {
			return nil, fmt.Errorf("invalid to parameter. Use ISO8601 format (YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ)")
		}
		toTime = t
	}

	fromTime = normalizeToBeginOfDay(fromTime)
	toTime = normalizeToEndOfDay(toTime)
	if toTime.Before(fromTime) {
		return nil, fmt.Errorf("from must not be after to")
	}

	return &DateRange{from: fromTime, to: toTime}, nil
}

// From returns the start date.
func (d *DateRange) From() time.Time {
	return d.from
}

// To returns the end date.
func (d *DateRange) To() time.Time {
	return d.to
}

// Contains reports whether t falls inside the range (inclusive).
func (d *DateRange) Contains(t time.Time) bool {
	return !t.Before(d.from) && !t.After(d.to)
}

// getDefaultDateRange calculates the default date range for the latest week + 52 weeks.
func getDefaultDateRange() (time.Time, time.Time) {
	now := time.Now()
	weekday := int(now.Weekday())
	latestWeekStart := now.AddDate(0, 0, -weekday)
	defaultFrom := latestWeekStart.AddDate(0, 0, -52*7)
	return defaultFrom, now
}

// normalizeToBeginOfDay normalizes time to beginning of day (00:00:00).
func normalizeToBeginOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// normalizeToEndOfDay normalizes time to end of day (23:59:59.999999999).
func normalizeToEndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, t.Location())
}

// parseDateTime parses date string with flexible format support.
func parseDateTime(dateStr string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(DateLayout, dateStr, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unable to parse date")
}

// DateLayout is the local calendar-date format used by forms and the heatmap.
const DateLayout = "2006-01-02"

// ParseLocalDate parses a YYYY-MM-DD string as midnight in the local time zone.
func ParseLocalDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// FormatLocalDate formats t as YYYY-MM-DD in its own location.
func FormatLocalDate(t time.Time) string {
	return t.Format(DateLayout)
}
