package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Repository owns the event collection. Local persistence completes before a mutation
// returns; remote replication is best effort and never blocks the caller.
type Repository interface {
	LoadAll(ctx context.Context) []Event
	List() []Event
	GetEventById(id string) (*Event, error)
	Create(ctx context.Context, draft Draft) (*Event, error)
	Update(ctx context.Context, id string, patch Patch) (*Event, error)
	Delete(ctx context.Context, id string) error
	Flush(ctx context.Context) error
	Close()
}

type RepositoryOption func(*repository)

func WithRemote(remote RemoteStore) RepositoryOption {
	return func(r *repository) { r.remote = remote }
}

func WithClock(clock Clock) RepositoryOption {
	return func(r *repository) { r.clock = clock }
}

func WithIDGenerator(gen IDGenerator) RepositoryOption {
	return func(r *repository) { r.newId = gen }
}

func WithLocation(loc *time.Location) RepositoryOption {
	return func(r *repository) { r.loc = loc }
}

func WithMirrorTimeout(timeout time.Duration) RepositoryOption {
	return func(r *repository) { r.mirrorTimeout = timeout }
}

type repository struct {
	tracer trace.Tracer
	cache  CacheStorage
	remote RemoteStore
	sync   SyncController
	clock  Clock
	newId  IDGenerator
	loc    *time.Location

	mirrorTimeout time.Duration
	mirror        *mirrorQueue

	mu      sync.Mutex
	events  []Event
	version uint64
}

// NewRepository wires the repository. ctx bounds the lifetime of the mirror worker.
func NewRepository(ctx context.Context, cache CacheStorage, syncCtl SyncController, opts ...RepositoryOption) Repository {
	r := &repository{
		tracer:        otel.GetTracerProvider().Tracer("event-planner/core"),
		cache:         cache,
		sync:          syncCtl,
		clock:         SystemClock{},
		newId:         NewEventId,
		loc:           time.Local,
		mirrorTimeout: DefaultMirrorTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.mirror = newMirrorQueue(ctx, r.sync, r.mirrorTimeout)

	return r
}

func toTransportError(op string, err error) error {
	var terr *TransportError
	if errors.As(err, &terr) {
		return err
	}

	return NewTransportError(op, err)
}

func encodeEvents(events []Event) ([]byte, error) {
	raws := make([]RawEvent, len(events))
	for i, e := range events {
		raws[i] = e.Raw()
	}

	data, err := json.Marshal(raws)
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}

	return data, nil
}

func decodeEvents(data []byte, loc *time.Location) ([]Event, error) {
	var raws []RawEvent

	err := json.Unmarshal(data, &raws)
	if err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return NormalizeAll(raws, loc), nil
}

func (r *repository) persist(ctx context.Context, events []Event) error {
	blob, err := encodeEvents(events)
	if err != nil {
		return err
	}

	err = r.cache.Set(ctx, blob)
	if err != nil {
		return fmt.Errorf("failed to persist events locally: %w", err)
	}

	return nil
}

func (r *repository) readCache(ctx context.Context) []Event {
	blob, found, err := r.cache.Get(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Str("stage", "load").Str("component", "event-repository").Err(err).Msg("failed to read local cache")
		return []Event{}
	}

	if !found {
		return []Event{}
	}

	events, err := decodeEvents(blob, r.loc)
	if err != nil {
		log.Ctx(ctx).Error().Str("stage", "load").Str("component", "event-repository").Err(err).Msg("local cache is unreadable")
		return []Event{}
	}

	return events
}

func (r *repository) fetchRemote(ctx context.Context) ([]Event, error) {
	if r.remote == nil {
		return nil, NewTransportError("GET /events", errors.New("remote store not configured"))
	}

	raws, err := r.remote.ListEvents(ctx)
	if err != nil {
		return nil, toTransportError("GET /events", err)
	}

	return NormalizeAll(raws, r.loc), nil
}

func (r *repository) LoadAll(ctx context.Context) []Event {
	ctx, span := r.tracer.Start(ctx, "repository.LoadAll")
	defer span.End()

	logger := log.Ctx(ctx).With().Str("stage", "load").Str("component", "event-repository").Logger()

	r.mu.Lock()
	startVersion := r.version
	startPending := r.mirror.pending()
	r.mu.Unlock()

	fetched, err := r.fetchRemote(ctx)
	if err != nil {
		r.sync.RecordFailure(ctx, err)

		cached := r.readCache(ctx)

		r.mu.Lock()
		defer r.mu.Unlock()

		if r.version == startVersion {
			r.events = cached
		}

		logger.Info().Int("events", len(r.events)).Msg("serving events from local cache")

		return slices.Clone(r.events)
	}

	r.sync.RecordSuccess(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	// A local mutation landed while the fetch was in flight; keep it.
	if r.version != startVersion {
		logger.Warn().Msg("local changes made during reload, remote snapshot discarded")
		return slices.Clone(r.events)
	}

	// The snapshot predates a committed change still on its way to the remote store.
	if startPending || r.mirror.pending() {
		logger.Warn().Msg("mirrors pending during reload, remote snapshot discarded")
		return slices.Clone(r.events)
	}

	err = r.persist(ctx, fetched)
	if err != nil {
		logger.Error().Err(err).Msg("failed to refresh local cache")
	}

	r.events = fetched
	r.version++

	logger.Info().Int("events", len(fetched)).Msg("events loaded from remote store")

	return slices.Clone(r.events)
}

func (r *repository) List() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.events)
}

func (r *repository) indexOf(id string) int {
	return slices.IndexFunc(r.events, func(e Event) bool { return e.Id == id })
}

func (r *repository) GetEventById(id string) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, NewNotFoundError(id)
	}

	e := r.events[i]

	return &e, nil
}

// commit persists next and swaps it in. On failure the collection is left untouched.
func (r *repository) commit(ctx context.Context, next []Event) error {
	err := r.persist(ctx, next)
	if err != nil {
		return err
	}

	r.events = next
	r.version++

	return nil
}

func (r *repository) submit(op string, run func(ctx context.Context) error) {
	if r.remote == nil || !r.sync.IsOnline() {
		return
	}

	r.mirror.enqueue(mirrorTask{op: op, run: run})
}

func (r *repository) Create(ctx context.Context, draft Draft) (*Event, error) {
	ctx, span := r.tracer.Start(ctx, "repository.Create")
	defer span.End()

	err := ValidateDraft(draft)
	if err != nil {
		return nil, err
	}

	e := Event{
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Start:       draft.Start,
		End:         draft.End,
		Location:    draft.Location,
		Type:        ParseEventType(string(draft.Type)),
		CreatedAt:   r.clock.Now(),
	}

	if e.End.IsZero() && !e.Start.IsZero() {
		e.End = e.Start.Add(DefaultEventDuration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e.Id = r.newId()
	for r.indexOf(e.Id) >= 0 {
		e.Id = r.newId()
	}

	err = r.commit(ctx, append(slices.Clone(r.events), e))
	if err != nil {
		return nil, err
	}

	r.submit("create", func(ctx context.Context) error { return r.remote.CreateEvent(ctx, e) })

	log.Ctx(ctx).Debug().Str("stage", "mutation").Str("component", "event-repository").Str("id", e.Id).Msg("event created")

	return &e, nil
}

func (r *repository) Update(ctx context.Context, id string, patch Patch) (*Event, error) {
	ctx, span := r.tracer.Start(ctx, "repository.Update")
	defer span.End()

	err := ValidatePatch(patch)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, NewNotFoundError(id)
	}

	next := slices.Clone(r.events)
	next[i] = patch.apply(next[i])
	e := next[i]

	err = r.commit(ctx, next)
	if err != nil {
		return nil, err
	}

	r.submit("update", func(ctx context.Context) error { return r.remote.UpdateEvent(ctx, e) })

	log.Ctx(ctx).Debug().Str("stage", "mutation").Str("component", "event-repository").Str("id", id).Msg("event updated")

	return &e, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "repository.Delete")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return NewNotFoundError(id)
	}

	err := r.commit(ctx, slices.Delete(slices.Clone(r.events), i, i+1))
	if err != nil {
		return err
	}

	r.submit("delete", func(ctx context.Context) error { return r.remote.DeleteEvent(ctx, id) })

	log.Ctx(ctx).Debug().Str("stage", "mutation").Str("component", "event-repository").Str("id", id).Msg("event deleted")

	return nil
}

func (r *repository) Flush(ctx context.Context) error {
	return r.mirror.flush(ctx)
}

func (r *repository) Close() {
	r.mirror.close()
}
