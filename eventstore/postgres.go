package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"event-planner/core"
	"event-planner/pkg/resources"
)

const eventColumns = "id, title, description, start_time, end_time, location, type, created_at"

type Repository interface {
	ListEvents(ctx context.Context) ([]core.Event, error)
	SaveEvent(ctx context.Context, event *core.Event) (*core.Event, error)
	GetEventById(ctx context.Context, id string) (*core.Event, error)
	UpdateEvent(ctx context.Context, event *core.Event) (*core.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

type repository struct {
	tracer  trace.Tracer
	metrics *DBMetrics
	pool    resources.DBInstance
	newId   core.IDGenerator
	now     func() time.Time
}

func NewRepository(pool resources.DBInstance) Repository {
	return &repository{
		tracer:  otel.GetTracerProvider().Tracer("event-planner/eventstore"),
		metrics: NewDBMetrics(),
		pool:    pool,
		newId:   core.NewEventId,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func scanEvent(row pgx.Row) (*core.Event, error) {
	var (
		e         core.Event
		eventType string
	)

	err := row.Scan(&e.Id, &e.Title, &e.Description, &e.Start, &e.End, &e.Location, &eventType, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	e.Type = core.ParseEventType(eventType)

	return &e, nil
}

func (r *repository) ListEvents(ctx context.Context) ([]core.Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "list_events", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.ListEvents")
	defer span.End()

	rows, err := r.pool.Query(ctx, "SELECT "+eventColumns+" FROM events ORDER BY start_time, created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []core.Event{}

	for rows.Next() {
		var e *core.Event

		e, err = scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		events = append(events, *e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

func (r *repository) SaveEvent(ctx context.Context, event *core.Event) (*core.Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "save_event", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.SaveEvent")
	defer span.End()

	// Clients that assigned their own id keep it, so later PUT/DELETE address the same row.
	id := event.Id
	if id == "" {
		id = r.newId()
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	saved, err := scanEvent(tx.QueryRow(ctx,
		"INSERT INTO events ("+eventColumns+") "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) "+
			"RETURNING "+eventColumns,
		id, event.Title, event.Description, event.Start, event.End, event.Location, string(event.Type), createdAt))
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return saved, nil
}

func (r *repository) GetEventById(ctx context.Context, id string) (*core.Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "get_event_by_id", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.GetEventById")
	defer span.End()

	e, err := scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		err = core.NewNotFoundError(id)
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get event by id: %w", err)
	}

	return e, nil
}

func (r *repository) UpdateEvent(ctx context.Context, event *core.Event) (*core.Event, error) {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "update_event", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.UpdateEvent")
	defer span.End()

	updated, err := scanEvent(r.pool.QueryRow(ctx,
		"UPDATE events SET title = $2, description = $3, start_time = $4, end_time = $5, location = $6, type = $7 "+
			"WHERE id = $1 "+
			"RETURNING "+eventColumns,
		event.Id, event.Title, event.Description, event.Start, event.End, event.Location, string(event.Type)))
	if errors.Is(err, pgx.ErrNoRows) {
		err = core.NewNotFoundError(event.Id)
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return updated, nil
}

func (r *repository) DeleteEvent(ctx context.Context, id string) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "delete_event", start, err) }()

	ctx, span := r.tracer.Start(ctx, "repository.DeleteEvent")
	defer span.End()

	tag, err := r.pool.Exec(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		err = core.NewNotFoundError(id)
		return err
	}

	return nil
}

type DBMetrics struct {
	qTotal   metric.Int64Counter
	qErrors  metric.Int64Counter
	qLatency metric.Float64Histogram
}

func NewDBMetrics() *DBMetrics {
	meter := otel.Meter("event-planner/db")

	qTotal, _ := meter.Int64Counter("db.query.total")
	qErrors, _ := meter.Int64Counter("db.query.errors.total")
	qLatency, _ := meter.Float64Histogram("db.query.duration.ms")

	return &DBMetrics{qTotal: qTotal, qErrors: qErrors, qLatency: qLatency}
}

func (m *DBMetrics) Observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgres"),
		attribute.String("db.operation", op),
	}

	m.qTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	ms := float64(time.Since(start).Milliseconds())
	m.qLatency.Record(ctx, ms, metric.WithAttributes(attrs...))

	if err != nil && !errors.Is(err, core.ErrEventNotFound) {
		m.qErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
