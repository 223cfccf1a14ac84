package core

import (
	"fmt"
	"strings"
	"time"
)

type ViewMode string

const (
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
	ViewDay   ViewMode = "day"
)

func ParseViewMode(s string) (ViewMode, error) {
	switch mode := ViewMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case ViewMonth, ViewWeek, ViewDay:
		return mode, nil
	default:
		return "", NewValidationError("mode", fmt.Sprintf("must be one of month, week, day (got %q)", s))
	}
}

// Range is a closed interval of instants.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// WeekRange spans Sunday 00:00:00.000 through Saturday 23:59:59.999 around anchor.
func WeekRange(anchor time.Time) Range {
	sunday := startOfDay(anchor).AddDate(0, 0, -int(anchor.Weekday()))

	return Range{Start: sunday, End: endOfDay(sunday.AddDate(0, 0, 6))}
}

func DayRange(anchor time.Time) Range {
	return Range{Start: startOfDay(anchor), End: endOfDay(anchor)}
}

// MonthRange spans the 42 cells of the month grid around anchor.
func MonthRange(anchor time.Time) Range {
	loc := anchor.Location()
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))

	return Range{Start: gridStart, End: endOfDay(gridStart.AddDate(0, 0, GridCells-1))}
}

// OnDay compares wall-clock dates in the anchor's location.
func OnDay(e Event, anchor time.Time) bool {
	at := e.Anchor()
	if at.IsZero() {
		return false
	}

	return DateKey(at.In(anchor.Location())) == DateKey(anchor)
}

func InWeek(e Event, anchor time.Time) bool {
	at := e.Anchor()
	if at.IsZero() {
		return false
	}

	return WeekRange(anchor).Contains(at)
}

func inMonthGrid(e Event, anchor time.Time) bool {
	at := e.Anchor()
	if at.IsZero() {
		return false
	}

	return MonthRange(anchor).Contains(at)
}

// Filter returns the events visible in the window, sorted by their anchor instant.
func Filter(events []Event, mode ViewMode, anchor time.Time) []Event {
	var match func(Event, time.Time) bool

	switch mode {
	case ViewDay:
		match = OnDay
	case ViewWeek:
		match = InWeek
	default:
		match = inMonthGrid
	}

	visible := make([]Event, 0, len(events))
	for _, e := range events {
		if match(e, anchor) {
			visible = append(visible, e)
		}
	}

	sortByAnchor(visible)

	return visible
}
