package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP        HTTPConfig
	DataService DataServiceConfig
	Cache       CacheConfig
	Graph       GraphConfig
	Dataset     DatasetConfig
	Logging     LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOriginsCSV string
}

// DataServiceConfig describes connectivity to the upstream contact data service.
type DataServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CacheConfig tunes the temporal cache store. Zero TTLs keep the category
// defaults; a zero sweep interval disables the periodic sweep.
type CacheConfig struct {
	TimestampsTTL   time.Duration
	BoundsTTL       time.Duration
	ContactsTTL     time.Duration
	UserContactsTTL time.Duration
	TrajectoryTTL   time.Duration
	SweepInterval   time.Duration
}

// GraphConfig describes connectivity to the graph database backing the
// reference data service.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// DatasetConfig describes the S3-compatible bucket shared datasets live in.
// All fields empty means object storage is not configured.
type DatasetConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Object    string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultHost               = "0.0.0.0"
	defaultPort               = 8080
	defaultReadTimeout        = 10 * time.Second
	defaultWriteTimeout       = 15 * time.Second
	defaultIdleTimeout        = 60 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultDataServiceTimeout = 10 * time.Second
	defaultSweepInterval      = 5 * time.Minute
	defaultLoggingLevel       = "info"
	defaultLoggingFormat      = "text"
	defaultGraphMaxSessions   = 10
)

// Load reads configuration from the environment, applying defaults. A .env
// file in the working directory is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		DataService: DataServiceConfig{
			BaseURL: os.Getenv("DATA_SERVICE_URL"),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
		},
		Dataset: DatasetConfig{
			Endpoint:  os.Getenv("DATASET_ENDPOINT"),
			AccessKey: os.Getenv("DATASET_ACCESS_KEY"),
			SecretKey: os.Getenv("DATASET_SECRET_KEY"),
			UseSSL:    parseBoolWithDefault("DATASET_USE_SSL", false),
			Bucket:    valueOrDefault("DATASET_BUCKET", "tracemap-datasets"),
			Object:    valueOrDefault("DATASET_OBJECT", "records.json"),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key      string
		target   *time.Duration
		fallback time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout, defaultReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout, defaultWriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout, defaultIdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout, defaultShutdownTimeout},
		{"DATA_SERVICE_TIMEOUT", &cfg.DataService.Timeout, defaultDataServiceTimeout},
		{"CACHE_SWEEP_INTERVAL", &cfg.Cache.SweepInterval, defaultSweepInterval},
		{"CACHE_TIMESTAMPS_TTL", &cfg.Cache.TimestampsTTL, 0},
		{"CACHE_BOUNDS_TTL", &cfg.Cache.BoundsTTL, 0},
		{"CACHE_CONTACTS_TTL", &cfg.Cache.ContactsTTL, 0},
		{"CACHE_USER_CONTACTS_TTL", &cfg.Cache.UserContactsTTL, 0},
		{"CACHE_TRAJECTORY_TTL", &cfg.Cache.TrajectoryTTL, 0},
	}
	for _, d := range durations {
		val, err := parseDurationWithDefault(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.target = val
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
