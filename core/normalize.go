package core

import (
	"strings"
	"time"
)

// RawEvent is the union of every event shape accepted at the repository boundary.
// Remote payloads and old cache blobs may use the legacy aliases.
type RawEvent struct {
	Id          string `json:"id,omitempty"`
	LegacyId    string `json:"_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start,omitempty"`
	Datetime    string `json:"datetime,omitempty"`
	End         string `json:"end,omitempty"`
	EndDatetime string `json:"endDatetime,omitempty"`
	Location    string `json:"location,omitempty"`
	Type        string `json:"type,omitempty"`
	Category    string `json:"category,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}

func parseOptionalInstant(s string, loc *time.Location) time.Time {
	if strings.TrimSpace(s) == "" {
		return time.Time{}
	}

	t, err := ParseInstant(s, loc)
	if err != nil {
		return time.Time{}
	}

	return t
}

// Normalize maps a raw event onto the canonical form. Unparseable instants are dropped
// to their zero value, so an event without a usable start is placed by its creation time.
func Normalize(raw RawEvent, loc *time.Location) Event {
	e := Event{
		Id:          firstNonEmpty(raw.Id, raw.LegacyId),
		Title:       strings.TrimSpace(firstNonEmpty(raw.Title, raw.Name)),
		Description: raw.Description,
		Start:       parseOptionalInstant(firstNonEmpty(raw.Start, raw.Datetime), loc),
		End:         parseOptionalInstant(firstNonEmpty(raw.End, raw.EndDatetime), loc),
		Location:    raw.Location,
		Type:        ParseEventType(firstNonEmpty(raw.Type, raw.Category)),
		CreatedAt:   parseOptionalInstant(raw.CreatedAt, loc),
	}

	if e.End.IsZero() && !e.Start.IsZero() {
		e.End = e.Start.Add(DefaultEventDuration)
	}

	return e
}

// NormalizeAll drops records without an id: they cannot be addressed by update or delete.
func NormalizeAll(raws []RawEvent, loc *time.Location) []Event {
	events := make([]Event, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))

	for _, raw := range raws {
		e := Normalize(raw, loc)
		if e.Id == "" {
			continue
		}

		if _, dup := seen[e.Id]; dup {
			continue
		}

		seen[e.Id] = struct{}{}
		events = append(events, e)
	}

	return events
}

// Raw is the inverse of Normalize and always uses the canonical field names.
func (e Event) Raw() RawEvent {
	format := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}

		return t.Format(time.RFC3339Nano)
	}

	return RawEvent{
		Id:          e.Id,
		Title:       e.Title,
		Description: e.Description,
		Start:       format(e.Start),
		End:         format(e.End),
		Location:    e.Location,
		Type:        string(e.Type),
		CreatedAt:   format(e.CreatedAt),
	}
}
