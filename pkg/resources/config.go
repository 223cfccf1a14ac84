package resources

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	LogLevel string
	Timezone string

	PlannerAddr   string
	RemoteURL     string
	RemoteTimeout time.Duration
	MirrorTimeout time.Duration

	CacheBackend string
	CachePath    string
	CacheKey     string
	RedisAddr    string

	EventStoreAddr string
	DBUser         string
	DBPassword     string
	DBHost         string
	DBPort         string
	DBName         string

	OtelEnabled  bool
	OtelEndpoint string
	DebugAddr    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PLANNER_TIMEZONE", "Local")
	v.SetDefault("PLANNER_HTTP_ADDR", "localhost:8081")
	v.SetDefault("PLANNER_REMOTE_URL", "http://localhost:3001/api")
	v.SetDefault("PLANNER_REMOTE_TIMEOUT", "5s")
	v.SetDefault("PLANNER_MIRROR_TIMEOUT", "10s")
	v.SetDefault("PLANNER_CACHE_BACKEND", "file")
	v.SetDefault("PLANNER_CACHE_PATH", "./var/calendar_events.json")
	v.SetDefault("PLANNER_CACHE_KEY", "calendar_events")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("EVENTSTORE_HTTP_ADDR", "localhost:3001")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "events")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("DEBUG_HTTP_ADDR", "localhost:6060")
}

// LoadConfig reads the environment and, when present, <name>.yaml from the working directory.
func LoadConfig(name string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Env:            v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		Timezone:       v.GetString("PLANNER_TIMEZONE"),
		PlannerAddr:    v.GetString("PLANNER_HTTP_ADDR"),
		RemoteURL:      strings.TrimRight(v.GetString("PLANNER_REMOTE_URL"), "/"),
		RemoteTimeout:  v.GetDuration("PLANNER_REMOTE_TIMEOUT"),
		MirrorTimeout:  v.GetDuration("PLANNER_MIRROR_TIMEOUT"),
		CacheBackend:   strings.ToLower(v.GetString("PLANNER_CACHE_BACKEND")),
		CachePath:      v.GetString("PLANNER_CACHE_PATH"),
		CacheKey:       v.GetString("PLANNER_CACHE_KEY"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		EventStoreAddr: v.GetString("EVENTSTORE_HTTP_ADDR"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBName:         v.GetString("DB_NAME"),
		OtelEnabled:    v.GetBool("OTEL_ENABLED"),
		OtelEndpoint:   v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		DebugAddr:      v.GetString("DEBUG_HTTP_ADDR"),
	}

	switch cfg.CacheBackend {
	case "file", "redis", "memory":
	default:
		return nil, fmt.Errorf("unsupported cache backend %q (want file, redis or memory)", cfg.CacheBackend)
	}

	if cfg.RemoteTimeout <= 0 {
		return nil, fmt.Errorf("PLANNER_REMOTE_TIMEOUT must be positive (got %s)", cfg.RemoteTimeout)
	}

	return cfg, nil
}

// Location resolves the configured display timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid PLANNER_TIMEZONE %q: %w", c.Timezone, err)
	}

	return loc, nil
}

func (c *Config) DatabaseURL() string {
	//nolint:nosprintfhostport
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
