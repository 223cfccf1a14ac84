package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"event-planner/core"
	"event-planner/pkg/remote"
	"event-planner/pkg/resources"
	"event-planner/pkg/servers"
	"event-planner/pkg/storage"
)

// repositoryCloser drains pending mirrors before stopping the repository.
type repositoryCloser struct {
	ctx        context.Context //nolint:containedctx
	repository core.Repository
}

func (c repositoryCloser) Close() {
	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	err := c.repository.Flush(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Str("stage", "shut down").Str("component", "main").Err(err).Msg("pending mirrors abandoned")
	}

	c.repository.Close()
}

func main() {
	name, version := "event-planner", "1.0"

	// 1. Config + logger
	cfg, err := resources.LoadConfig("planner")
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load configuration")
	}

	ctx := resources.NewLogger(context.Background(), name, version, cfg.Env, cfg.LogLevel)
	startupLogger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "main").Logger()
	shutdownLogger := log.Ctx(ctx).With().Str("stage", "shut down").Str("component", "main").Logger()

	startupLogger.Info().Msg("application starting up")
	defer shutdownLogger.Info().Msg("application stopped")

	// 2. Telemetry
	if cfg.OtelEnabled {
		stopFn, err := resources.CreateTracer(ctx, cfg.OtelEndpoint)
		if err != nil {
			shutdownLogger.Fatal().Err(err).Msg(fmt.Sprintf("unable to setup otel tracing: %v", err))
		}
		defer stopFn(ctx, 15*time.Second)
	}

	loc, err := cfg.Location()
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("invalid timezone")
	}

	// 3. Local cache
	var cache core.CacheStorage

	switch cfg.CacheBackend {
	case "redis":
		client, stopFn, err := resources.CreateRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			shutdownLogger.Fatal().Err(err).Msg(fmt.Sprintf("unable to connect to redis: %v", err))
		}
		defer stopFn(ctx, 15*time.Second)

		cache = storage.NewRedisStorage(client, cfg.CacheKey)
	case "memory":
		cache = storage.NewMemoryStorage()
	default:
		cache = storage.NewFileStorage(cfg.CachePath)
	}

	// 4. Wiring
	clock := core.SystemClock{Location: loc}
	syncCtl := core.NewSyncController(clock)

	opts := []core.RepositoryOption{
		core.WithClock(clock),
		core.WithLocation(loc),
		core.WithMirrorTimeout(cfg.MirrorTimeout),
	}
	if cfg.RemoteURL != "" {
		opts = append(opts, core.WithRemote(remote.NewClient(cfg.RemoteURL, cfg.RemoteTimeout)))
	}

	repository := core.NewRepository(ctx, cache, syncCtl, opts...)
	events := repository.LoadAll(ctx)
	startupLogger.Info().Int("events", len(events)).Str("sync", string(syncCtl.Status().State)).Msg("events loaded")

	controller := core.NewCalendarController(repository, syncCtl, clock, loc)
	handlers := core.NewHandlers(controller, loc)

	// 5. Servers
	gin.SetMode(gin.ReleaseMode)

	restHandler := gin.New()
	restHandler.Use(gin.Recovery())
	restHandler.Use(otelgin.Middleware(name))
	restHandler.Use(resources.NewHTTPMetrics(name).Middleware())

	core.Routes(restHandler, handlers)
	restHandler.GET("/metrics", gin.WrapH(promhttp.Handler()))
	restHandler.GET("/health", func(gctx *gin.Context) {
		gctx.JSON(http.StatusOK, gin.H{"status": "ok", "sync": controller.CurrentSyncState()})
	})

	debugHandler := http.NewServeMux()
	debugHandler.HandleFunc("/debug/pprof/", pprof.Index)
	debugHandler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugHandler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugHandler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugHandler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// 6. Lifecycle
	var app servers.Application = lifecycle.NewApp(
		lifecycle.WithName(name),
		lifecycle.WithVersion(version),
	)

	app.Attach(servers.BuildBaseServer(repositoryCloser{ctx: ctx, repository: repository}))
	app.Attach(servers.BuildHttpServer("debug-server", servers.NewServer(cfg.DebugAddr, debugHandler)))
	app.Attach(servers.BuildHttpServer("rest-server", servers.NewServer(cfg.PlannerAddr, restHandler)))

	startupLogger.Info().Str("addr", cfg.PlannerAddr).Msg("application running")

	err = app.Run()
	if err != nil {
		shutdownLogger.Error().Err(err).Msg("runtime error")
	}
}
