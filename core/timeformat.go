package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

const minutesPerDay = 24 * 60

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// DateKey renders the wall-clock date of t as YYYY-MM-DD.
// Date equality throughout the package is decided on this key.
func DateKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// FormatClock12 renders a 24-hour clock as "h:MM AM|PM". Out-of-range values wrap
// around the day, so 24:00 is "12:00 AM" and 1:75 is "2:15 AM".
func FormatClock12(hour int, minute int) string {
	total := ((hour*60+minute)%minutesPerDay + minutesPerDay) % minutesPerDay
	hour, minute = total/60, total%60

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}

	hour12 := hour
	switch {
	case hour == 0:
		hour12 = 12
	case hour > 12:
		hour12 = hour - 12
	}

	return fmt.Sprintf("%d:%02d %s", hour12, minute, suffix)
}

func FormatTime12(t time.Time) string {
	return FormatClock12(t.Hour(), t.Minute())
}

// FormatClock12String converts an "HH:MM" string. Empty or malformed input yields "".
func FormatClock12String(clock string) string {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return ""
	}

	return FormatClock12(hour, minute)
}

func ParseClock(clock string) (int, int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid clock %q", clock)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in clock %q", clock)
	}

	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in clock %q", clock)
	}

	return hour, minute, nil
}

// ParseInstant reads s with the accepted layouts. Zone-less values are read in loc.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty instant")
	}

	if loc == nil {
		loc = time.Local
	}

	for _, layout := range instantLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized instant %q", s)
}

// CombineDateClock builds an instant from a YYYY-MM-DD date and an HH:MM clock.
func CombineDateClock(date string, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

type TimeSlot struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// HourSlots lists the 24 hourly picker slots.
func HourSlots() []TimeSlot {
	slots := make([]TimeSlot, 24)
	for h := range slots {
		slots[h] = TimeSlot{
			Value: fmt.Sprintf("%02d:00", h),
			Label: FormatClock12(h, 0),
		}
	}

	return slots
}

// FormatPeriodTitle is the toolbar caption: "March 2024", or "March 6, 2024" in day mode.
func FormatPeriodTitle(mode ViewMode, anchor time.Time) string {
	if mode == ViewDay {
		return anchor.Format("January 2, 2006")
	}

	return anchor.Format("January 2006")
}

// FormatEventWhen renders "Wednesday, March 6, 2024 • 9:00 AM - 9:30 AM".
func FormatEventWhen(start time.Time, end time.Time) string {
	if start.IsZero() {
		return ""
	}

	out := start.Format("Monday, January 2, 2006") + " • " + FormatTime12(start)
	if !end.IsZero() {
		out += " - " + FormatTime12(end)
	}

	return out
}
