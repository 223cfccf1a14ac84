package core

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type SyncState string

const (
	Online  SyncState = "online"
	Offline SyncState = "offline"

	maxTransitions = 32
)

type Transition struct {
	From   SyncState `json:"from"`
	To     SyncState `json:"to"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

type SyncStatus struct {
	State  SyncState `json:"state"`
	Reason string    `json:"reason"`
	Since  time.Time `json:"since"`
}

// SyncController is the two-state Online/Offline machine gating remote calls.
// There is no retry: once Offline, only RecordSuccess (after a successful full reload) goes back Online.
type SyncController interface {
	IsOnline() bool
	RecordFailure(ctx context.Context, err error)
	RecordSuccess(ctx context.Context)
	Status() SyncStatus
	Transitions() []Transition
}

type syncController struct {
	mu          sync.RWMutex
	clock       Clock
	status      SyncStatus
	transitions []Transition
}

func NewSyncController(clock Clock) SyncController {
	if clock == nil {
		clock = SystemClock{}
	}

	syncOnline.Set(1)

	return &syncController{
		clock:  clock,
		status: SyncStatus{State: Online, Reason: "optimistic start", Since: clock.Now()},
	}
}

func (s *syncController) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status.State == Online
}

func (s *syncController) RecordFailure(ctx context.Context, err error) {
	reason := "remote call failed"
	if err != nil {
		reason = err.Error()
	}

	if s.transition(Offline, reason) {
		log.Ctx(ctx).Warn().Str("stage", "sync").Str("component", "sync-controller").Err(err).
			Msg("remote event store unreachable, working offline")
	}
}

func (s *syncController) RecordSuccess(ctx context.Context) {
	if s.transition(Online, "full reload succeeded") {
		log.Ctx(ctx).Info().Str("stage", "sync").Str("component", "sync-controller").
			Msg("remote event store reachable again")
	}
}

func (s *syncController) transition(to SyncState, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == to {
		return false
	}

	now := s.clock.Now()
	s.transitions = append(s.transitions, Transition{From: s.status.State, To: to, Reason: reason, At: now})
	if len(s.transitions) > maxTransitions {
		s.transitions = s.transitions[len(s.transitions)-maxTransitions:]
	}

	s.status = SyncStatus{State: to, Reason: reason, Since: now}

	syncTransitionsTotal.WithLabelValues(string(to)).Inc()
	if to == Online {
		syncOnline.Set(1)
	} else {
		syncOnline.Set(0)
	}

	return true
}

func (s *syncController) Status() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

func (s *syncController) Transitions() []Transition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Transition, len(s.transitions))
	copy(out, s.transitions)

	return out
}
