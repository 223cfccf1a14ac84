package core

import (
	"time"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location != nil {
		return time.Now().In(c.Location)
	}

	return time.Now()
}

type IDGenerator func() string

// NewEventId returns an opaque "event_<uuid>" identifier.
func NewEventId() string {
	return "event_" + uuid.NewString()
}
