package core

import (
	"strings"
	"time"
)

// DefaultEventDuration is applied when an event arrives without an end.
const DefaultEventDuration = time.Hour

type EventType string

const (
	EventTypeMeeting  EventType = "meeting"
	EventTypeReminder EventType = "reminder"
	EventTypeTask     EventType = "task"
	EventTypeEvent    EventType = "event"
	EventTypePersonal EventType = "personal"

	DefaultEventType = EventTypeMeeting
)

type EventTypeInfo struct {
	Value EventType `json:"value"`
	Label string    `json:"label"`
}

var eventTypes = []EventTypeInfo{
	{Value: EventTypeMeeting, Label: "Meeting"},
	{Value: EventTypeReminder, Label: "Reminder"},
	{Value: EventTypeTask, Label: "Task"},
	{Value: EventTypeEvent, Label: "Event"},
	{Value: EventTypePersonal, Label: "Personal"},
}

// EventTypes lists the known tags in display order.
func EventTypes() []EventTypeInfo {
	out := make([]EventTypeInfo, len(eventTypes))
	copy(out, eventTypes)

	return out
}

// ParseEventType maps any input onto a known tag, falling back to DefaultEventType.
func ParseEventType(s string) EventType {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, info := range eventTypes {
		if string(info.Value) == s {
			return info.Value
		}
	}

	return DefaultEventType
}

func (t EventType) Info() EventTypeInfo {
	for _, info := range eventTypes {
		if info.Value == t {
			return info
		}
	}

	return eventTypes[0]
}

type Event struct {
	Id          string    `json:"id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Type        EventType `json:"type,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Anchor is the instant used for filtering and grid placement.
func (e Event) Anchor() time.Time {
	if e.Start.IsZero() {
		return e.CreatedAt
	}

	return e.Start
}

// Draft carries the user supplied fields of a new event.
type Draft struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Type        EventType `json:"type,omitempty"`
}

// Patch holds the fields to change on update. Nil fields are left untouched.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Type        *EventType `json:"type,omitempty"`
}

func (p Patch) apply(e Event) Event {
	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}

	if p.Description != nil {
		e.Description = *p.Description
	}

	if p.Start != nil {
		e.Start = *p.Start
	}

	if p.End != nil {
		e.End = *p.End
	}

	if p.Location != nil {
		e.Location = *p.Location
	}

	if p.Type != nil {
		e.Type = ParseEventType(string(*p.Type))
	}

	return e
}
