// Package timeslot provides the minute-of-day time range primitive used by
// the availability and booking logic. All ranges are half-open [start, end)
// within a single calendar day.
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the number of minutes in a calendar day.
const MinutesPerDay = 24 * 60

// Range is a half-open time interval [Start, End) in minutes of day.
type Range struct {
	Start int
	End   int
}

// New builds a range from a day-relative start offset and a duration.
func New(startMinute, durationMinutes int) (Range, error) {
	r := Range{Start: startMinute, End: startMinute + durationMinutes}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate reports whether the range is a well-formed interval within one day.
func (r Range) Validate() error {
	if r.Start < 0 || r.Start >= MinutesPerDay {
		return fmt.Errorf("start minute %d out of range [0, %d)", r.Start, MinutesPerDay)
	}
	if r.End <= r.Start {
		return fmt.Errorf("end minute %d must be after start minute %d", r.End, r.Start)
	}
	if r.End > MinutesPerDay {
		return fmt.Errorf("end minute %d exceeds day length %d", r.End, MinutesPerDay)
	}
	return nil
}

// Duration returns the range length in minutes.
func (r Range) Duration() int {
	return r.End - r.Start
}

// Overlaps reports whether two half-open ranges intersect. Touching
// endpoints (r.End == other.Start) do not count as overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether other lies fully inside r.
func (r Range) Contains(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// String renders the range as "HH:MM-HH:MM".
func (r Range) String() string {
	return FormatClock(r.Start) + "-" + FormatClock(r.End)
}

// ParseClock parses a "HH:MM" clock string into minutes of day.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes of day as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a "YYYY-MM-DD" calendar day in the local timezone.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}

// MinuteOfDay returns the day-relative minute offset of t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// AtMinute combines a calendar day with a minute-of-day offset. The weekday
// used for availability checks is always derived from the resulting date,
// never accepted as a separate input.
func AtMinute(date time.Time, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minute/60, minute%60, 0, 0, date.Location())
}
