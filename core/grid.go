package core

import (
	"sort"
	"time"
)

const (
	GridWeeks     = 6
	GridCells     = GridWeeks * 7
	MaxCellEvents = 3
)

type Cell struct {
	Date           time.Time `json:"date"`
	Key            string    `json:"key"`
	IsCurrentMonth bool      `json:"isCurrentMonth"`
	IsToday        bool      `json:"isToday"`
	Events         []Event   `json:"events"`
	Total          int       `json:"total"`
	Overflow       int       `json:"overflow"`
}

var weekdayHeaders = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func WeekdayHeaders() []string {
	out := make([]string, len(weekdayHeaders))
	copy(out, weekdayHeaders)

	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func newCell(day time.Time, currentMonth bool, todayKey string) Cell {
	key := DateKey(day)

	return Cell{
		Date:           day,
		Key:            key,
		IsCurrentMonth: currentMonth,
		IsToday:        key == todayKey,
	}
}

// MonthGrid lays out the month containing anchor as 42 Sunday-first cells:
// trailing days of the previous month, the month itself, then leading days of the next.
func MonthGrid(anchor time.Time, today time.Time) []Cell {
	loc := anchor.Location()
	year, month := anchor.Year(), anchor.Month()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	leading := int(first.Weekday())
	todayKey := DateKey(today.In(loc))

	cells := make([]Cell, 0, GridCells)

	for i := leading; i > 0; i-- {
		cells = append(cells, newCell(time.Date(year, month, 1-i, 0, 0, 0, 0, loc), false, todayKey))
	}

	for day := 1; day <= daysInMonth; day++ {
		cells = append(cells, newCell(time.Date(year, month, day, 0, 0, 0, 0, loc), true, todayKey))
	}

	for day := 1; len(cells) < GridCells; day++ {
		cells = append(cells, newCell(time.Date(year, month+1, day, 0, 0, 0, 0, loc), false, todayKey))
	}

	return cells
}

// DayCells returns n consecutive cells starting at from, all flagged as current.
func DayCells(from time.Time, n int, today time.Time) []Cell {
	from = startOfDay(from)
	todayKey := DateKey(today.In(from.Location()))

	cells := make([]Cell, 0, n)
	for i := range n {
		cells = append(cells, newCell(from.AddDate(0, 0, i), true, todayKey))
	}

	return cells
}

func sortByAnchor(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Anchor().Before(events[j].Anchor())
	})
}

// Populate attaches events to the cells whose date they fall on.
// At most MaxCellEvents previews are kept per cell; the rest is counted in Overflow.
func Populate(cells []Cell, events []Event) []Cell {
	if len(cells) == 0 {
		return cells
	}

	loc := cells[0].Date.Location()
	byKey := make(map[string][]Event, len(cells))

	for _, e := range events {
		anchor := e.Anchor()
		if anchor.IsZero() {
			continue
		}

		key := DateKey(anchor.In(loc))
		byKey[key] = append(byKey[key], e)
	}

	out := make([]Cell, len(cells))
	for i, cell := range cells {
		dayEvents := byKey[cell.Key]
		sortByAnchor(dayEvents)

		cell.Total = len(dayEvents)
		cell.Events = []Event{}

		if len(dayEvents) > MaxCellEvents {
			cell.Overflow = len(dayEvents) - MaxCellEvents
			dayEvents = dayEvents[:MaxCellEvents]
		}

		cell.Events = append(cell.Events, dayEvents...)
		out[i] = cell
	}

	return out
}
