package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const OfflineNotice = "Offline mode: changes stored locally"

type Direction string

const (
	Next     Direction = "next"
	Previous Direction = "previous"
	Today    Direction = "today"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Next, Previous, Today:
		return d, nil
	default:
		return "", NewValidationError("direction", fmt.Sprintf("must be one of next, previous, today (got %q)", s))
	}
}

// ViewWindow is the (mode, anchor) pair deciding what is visible.
type ViewWindow struct {
	Mode   ViewMode  `json:"mode"`
	Anchor time.Time `json:"anchor"`
}

// CalendarView is the render-ready snapshot handed to the presentation layer.
type CalendarView struct {
	Window     ViewWindow      `json:"window"`
	Title      string          `json:"title"`
	Range      Range           `json:"range"`
	Weekdays   []string        `json:"weekdays"`
	Cells      []Cell          `json:"cells"`
	Events     []Event         `json:"events"`
	Sync       SyncStatus      `json:"sync"`
	Notice     string          `json:"notice,omitempty"`
	EventTypes []EventTypeInfo `json:"eventTypes"`
}

type CalendarController interface {
	Window() ViewWindow
	SetViewMode(mode ViewMode) ViewWindow
	SetAnchor(anchor time.Time) ViewWindow
	Navigate(direction Direction) ViewWindow
	VisibleCells() []Cell
	VisibleEvents() []Event
	CurrentSyncState() SyncStatus
	View() CalendarView
	Reload(ctx context.Context) CalendarView
	Create(ctx context.Context, draft Draft) (*Event, error)
	Update(ctx context.Context, id string, patch Patch) (*Event, error)
	Delete(ctx context.Context, id string) error
	GetEventById(id string) (*Event, error)
}

type calendarController struct {
	repository Repository
	sync       SyncController
	clock      Clock
	loc        *time.Location

	mu     sync.RWMutex
	window ViewWindow
}

func NewCalendarController(repository Repository, syncCtl SyncController, clock Clock, loc *time.Location) CalendarController {
	if clock == nil {
		clock = SystemClock{Location: loc}
	}

	if loc == nil {
		loc = time.Local
	}

	return &calendarController{
		repository: repository,
		sync:       syncCtl,
		clock:      clock,
		loc:        loc,
		window:     ViewWindow{Mode: ViewMonth, Anchor: clock.Now().In(loc)},
	}
}

func (c *calendarController) Window() ViewWindow {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.window
}

func (c *calendarController) SetViewMode(mode ViewMode) ViewWindow {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.window.Mode = mode

	return c.window
}

func (c *calendarController) SetAnchor(anchor time.Time) ViewWindow {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.window.Anchor = anchor.In(c.loc)

	return c.window
}

// addMonths moves by whole calendar months, clamping to the last day of the target month.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()

	return first.AddDate(0, 0, min(t.Day(), lastDay)-1)
}

func step(w ViewWindow, n int) time.Time {
	switch w.Mode {
	case ViewDay:
		return w.Anchor.AddDate(0, 0, n)
	case ViewWeek:
		return w.Anchor.AddDate(0, 0, 7*n)
	default:
		return addMonths(w.Anchor, n)
	}
}

func (c *calendarController) Navigate(direction Direction) ViewWindow {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch direction {
	case Next:
		c.window.Anchor = step(c.window, 1)
	case Previous:
		c.window.Anchor = step(c.window, -1)
	case Today:
		c.window.Anchor = c.clock.Now().In(c.loc)
	}

	return c.window
}

func (c *calendarController) cells(w ViewWindow, events []Event) []Cell {
	today := c.clock.Now()

	var cells []Cell

	switch w.Mode {
	case ViewDay:
		cells = DayCells(w.Anchor, 1, today)
	case ViewWeek:
		cells = DayCells(WeekRange(w.Anchor).Start, 7, today)
	default:
		cells = MonthGrid(w.Anchor, today)
	}

	return Populate(cells, events)
}

func windowRange(w ViewWindow) Range {
	switch w.Mode {
	case ViewDay:
		return DayRange(w.Anchor)
	case ViewWeek:
		return WeekRange(w.Anchor)
	default:
		return MonthRange(w.Anchor)
	}
}

func (c *calendarController) VisibleCells() []Cell {
	w := c.Window()
	return c.cells(w, Filter(c.repository.List(), w.Mode, w.Anchor))
}

func (c *calendarController) VisibleEvents() []Event {
	w := c.Window()
	return Filter(c.repository.List(), w.Mode, w.Anchor)
}

func (c *calendarController) CurrentSyncState() SyncStatus {
	return c.sync.Status()
}

func (c *calendarController) View() CalendarView {
	w := c.Window()
	events := Filter(c.repository.List(), w.Mode, w.Anchor)
	status := c.sync.Status()

	view := CalendarView{
		Window:     w,
		Title:      FormatPeriodTitle(w.Mode, w.Anchor),
		Range:      windowRange(w),
		Weekdays:   WeekdayHeaders(),
		Cells:      c.cells(w, events),
		Events:     events,
		Sync:       status,
		EventTypes: EventTypes(),
	}

	if status.State == Offline {
		view.Notice = OfflineNotice
	}

	return view
}

func (c *calendarController) Reload(ctx context.Context) CalendarView {
	c.repository.LoadAll(ctx)
	return c.View()
}

func (c *calendarController) Create(ctx context.Context, draft Draft) (*Event, error) {
	return c.repository.Create(ctx, draft)
}

func (c *calendarController) Update(ctx context.Context, id string, patch Patch) (*Event, error) {
	return c.repository.Update(ctx, id, patch)
}

func (c *calendarController) Delete(ctx context.Context, id string) error {
	return c.repository.Delete(ctx, id)
}

func (c *calendarController) GetEventById(id string) (*Event, error) {
	return c.repository.GetEventById(id)
}
