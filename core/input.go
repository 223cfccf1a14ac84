package core

import (
	"time"
)

const (
	DefaultStartClock = "09:00"
	DefaultEndClock   = "10:00"
)

// EventInput is the wire form the planner API accepts. Instants are given either as
// start/end or as a date plus startTime/endTime clocks, like the create form does.
type EventInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Start       *string `json:"start,omitempty"`
	End         *string `json:"end,omitempty"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	Location    *string `json:"location,omitempty"`
	Type        *string `json:"type,omitempty"`
}

func valueOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}

	return *p
}

func (in EventInput) instants(loc *time.Location) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if in.Date != nil {
		s, err := CombineDateClock(*in.Date, valueOr(in.StartTime, DefaultStartClock), loc)
		if err != nil {
			return nil, nil, NewValidationError("startTime", err.Error())
		}

		e, err := CombineDateClock(*in.Date, valueOr(in.EndTime, DefaultEndClock), loc)
		if err != nil {
			return nil, nil, NewValidationError("endTime", err.Error())
		}

		start, end = &s, &e
	}

	if in.Start != nil {
		s, err := ParseInstant(*in.Start, loc)
		if err != nil {
			return nil, nil, NewValidationError("start", err.Error())
		}

		start = &s
	}

	if in.End != nil {
		e, err := ParseInstant(*in.End, loc)
		if err != nil {
			return nil, nil, NewValidationError("end", err.Error())
		}

		end = &e
	}

	return start, end, nil
}

func (in EventInput) Draft(loc *time.Location) (Draft, error) {
	start, end, err := in.instants(loc)
	if err != nil {
		return Draft{}, err
	}

	draft := Draft{
		Title:       valueOr(in.Title, ""),
		Description: valueOr(in.Description, ""),
		Location:    valueOr(in.Location, ""),
		Type:        ParseEventType(valueOr(in.Type, "")),
	}

	if start != nil {
		draft.Start = *start
	}

	if end != nil {
		draft.End = *end
	}

	return draft, nil
}

func (in EventInput) Patch(loc *time.Location) (Patch, error) {
	start, end, err := in.instants(loc)
	if err != nil {
		return Patch{}, err
	}

	patch := Patch{
		Title:       in.Title,
		Description: in.Description,
		Start:       start,
		End:         end,
		Location:    in.Location,
	}

	if in.Type != nil {
		t := ParseEventType(*in.Type)
		patch.Type = &t
	}

	return patch, nil
}
