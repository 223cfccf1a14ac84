package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"event-planner/eventstore"
	"event-planner/pkg/resources"
	"event-planner/pkg/servers"
)

func main() {
	name, version := "event-store", "1.0"

	cfg, err := resources.LoadConfig("eventstore")
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load configuration")
	}

	ctx := resources.NewLogger(context.Background(), name, version, cfg.Env, cfg.LogLevel)
	startupLogger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "main").Logger()
	shutdownLogger := log.Ctx(ctx).With().Str("stage", "shut down").Str("component", "main").Logger()

	startupLogger.Info().Msg("application starting up")
	defer shutdownLogger.Info().Msg("application stopped")

	if cfg.OtelEnabled {
		stopFn, err := resources.CreateTracer(ctx, cfg.OtelEndpoint)
		if err != nil {
			shutdownLogger.Fatal().Err(err).Msg(fmt.Sprintf("unable to setup otel tracing: %v", err))
		}
		defer stopFn(ctx, 15*time.Second)
	}

	pool, stopFn, err := resources.CreateDatabaseConnectionPool(ctx, cfg)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg(fmt.Sprintf("unable to create database connection pool: %v", err))
	}
	defer stopFn(ctx, 15*time.Second)

	repository := eventstore.NewRepository(pool)
	handlers := eventstore.NewHandlers(repository)

	gin.SetMode(gin.ReleaseMode)

	restHandler := gin.New()
	restHandler.Use(gin.Recovery())
	restHandler.Use(otelgin.Middleware(name))
	restHandler.Use(resources.NewHTTPMetrics(name).Middleware())

	// The planner's default remote URL carries the /api prefix.
	eventstore.Routes(restHandler.Group("/api"), handlers)
	restHandler.GET("/health", func(gctx *gin.Context) { gctx.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	var app servers.Application = lifecycle.NewApp(
		lifecycle.WithName(name),
		lifecycle.WithVersion(version),
	)

	app.Attach(servers.BuildBaseServer())
	app.Attach(servers.BuildHttpServer("rest-server", servers.NewServer(cfg.EventStoreAddr, restHandler)))

	startupLogger.Info().Str("addr", cfg.EventStoreAddr).Msg("application running")

	err = app.Run()
	if err != nil {
		shutdownLogger.Error().Err(err).Msg("runtime error")
	}
}
