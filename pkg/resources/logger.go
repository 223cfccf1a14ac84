package resources

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger installs the process logger and returns a context carrying it.
func NewLogger(ctx context.Context, name string, version string, env string, level string) context.Context {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	log.Logger = zerolog.New(os.Stdout).Level(lvl).With().
		Timestamp().
		Str("service", name).
		Str("version", version).
		Str("env", env).
		Logger().
		Hook(NewZerologHook(name, version))

	// Contexts created outside our control (server lifecycles, http.Server) still log.
	zerolog.DefaultContextLogger = &log.Logger

	return log.Logger.WithContext(ctx)
}
