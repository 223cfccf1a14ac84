package resources

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DBInstance is the subset of *pgxpool.Pool the repositories need; pgxmock satisfies it too.
type DBInstance interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Closable interface {
	Close()
}

type StopFn func(ctx context.Context, timeout time.Duration)

func noopStop(context.Context, time.Duration) {}

func CreateTracer(ctx context.Context, endpoint string) (StopFn, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tp, err := newTracerProvider(ctx, endpoint)
	if err != nil {
		return noopStop, fmt.Errorf("failed to create tracer provider: %w", err)
	}
	otel.SetTracerProvider(tp)

	return func(ctx context.Context, timeout time.Duration) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := tp.Shutdown(ctx)
		if err != nil {
			log.Ctx(ctx).Error().Str("stage", "shut down").Str("component", "tracer").Err(err).Msg("failed to flush traces")
		}
	}, nil
}

func newTracerProvider(ctx context.Context, endpoint string) (*sdktrace.TracerProvider, error) {
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create the OTLP exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
	), nil
}

const eventsSchema = `CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	start_time  TIMESTAMPTZ NOT NULL,
	end_time    TIMESTAMPTZ NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT 'meeting',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func CreateDatabaseConnectionPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, StopFn, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to parse database connection string: %v", err))
		return nil, noopStop, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to connect to database: %v", err))
		return nil, noopStop, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		log.Ctx(ctx).Error().Err(err).Msg(fmt.Sprintf("Unable to ping to database: %v", err))

		return nil, noopStop, fmt.Errorf("failed to ping to database: %w", err)
	}

	_, err = pool.Exec(ctx, eventsSchema)
	if err != nil {
		pool.Close()
		return nil, noopStop, fmt.Errorf("failed to ensure events schema: %w", err)
	}

	return pool, func(context.Context, time.Duration) { pool.Close() }, nil
}

func CreateRedisClient(ctx context.Context, addr string) (*redis.Client, StopFn, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	err := client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()
		return nil, noopStop, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	return client, func(ctx context.Context, _ time.Duration) {
		err := client.Close()
		if err != nil {
			log.Ctx(ctx).Error().Str("stage", "shut down").Str("component", "redis").Err(err).Msg("failed to close redis client")
		}
	}, nil
}
