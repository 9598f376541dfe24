package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Logging    LoggingConfig
	Filter     FilterConfig
	Correlator CorrelatorConfig
	Dispatch   DispatchConfig
	Channels   ChannelsConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Environment     string
	AllowedOrigins  []string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// RedisConfig contains the windowed cache configuration. When disabled the
// in-memory cache is used instead.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// FilterConfig contains smart filter tunables
type FilterConfig struct {
	BurstThreshold  int
	DuplicateWindow time.Duration
	NoiseWindow     time.Duration
	NoiseThreshold  float64
}

// CorrelatorConfig contains correlation engine tunables
type CorrelatorConfig struct {
	TemporalWindow    time.Duration
	CausalWindow      time.Duration
	MaxCandidates     int
	ClusterEps        float64
	ClusterMinPoints  int
	AccuracyCutoff    float64
	TemporalThreshold float64
	SpatialThreshold  float64
	SemanticThreshold float64
	CausalThreshold   float64
}

// DispatchConfig contains notification dispatcher tunables
type DispatchConfig struct {
	WorkersPerLane   int
	QueueSize        int
	MaxAttempts      int
	SendTimeout      time.Duration
	ReconcileAfter   time.Duration
	RetentionWindow  time.Duration
	RateLimitFailOpen bool
}

// ChannelsConfig points at the externally managed channel configuration
type ChannelsConfig struct {
	// File is a JSON file describing configured notification channels.
	// The channel inventory is owned by the admin surface; the engine
	// only reads it.
	File string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  strings.Split(getEnv("SERVER_ALLOWED_ORIGINS", "*"), ","),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "sentinel"),
			User:            getEnv("DB_USER", "sentinel"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			Path:            getEnv("DB_PATH", "sentinel.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Filter: FilterConfig{
			BurstThreshold:  getEnvAsInt("FILTER_BURST_THRESHOLD", 10),
			DuplicateWindow: getEnvAsDuration("FILTER_DUPLICATE_WINDOW", 300*time.Second),
			NoiseWindow:     getEnvAsDuration("FILTER_NOISE_WINDOW", 7*24*time.Hour),
			NoiseThreshold:  getEnvAsFloat("FILTER_NOISE_THRESHOLD", 0.3),
		},
		Correlator: CorrelatorConfig{
			TemporalWindow:    getEnvAsDuration("CORRELATOR_TEMPORAL_WINDOW", 300*time.Second),
			CausalWindow:      getEnvAsDuration("CORRELATOR_CAUSAL_WINDOW", time.Hour),
			MaxCandidates:     getEnvAsInt("CORRELATOR_MAX_CANDIDATES", 100),
			ClusterEps:        getEnvAsFloat("CORRELATOR_CLUSTER_EPS", 0.3),
			ClusterMinPoints:  getEnvAsInt("CORRELATOR_CLUSTER_MIN_POINTS", 2),
			AccuracyCutoff:    getEnvAsFloat("CORRELATOR_ACCURACY_CUTOFF", 0.7),
			TemporalThreshold: getEnvAsFloat("CORRELATOR_TEMPORAL_THRESHOLD", 0.5),
			SpatialThreshold:  getEnvAsFloat("CORRELATOR_SPATIAL_THRESHOLD", 0.8),
			SemanticThreshold: getEnvAsFloat("CORRELATOR_SEMANTIC_THRESHOLD", 0.7),
			CausalThreshold:   getEnvAsFloat("CORRELATOR_CAUSAL_THRESHOLD", 0.6),
		},
		Dispatch: DispatchConfig{
			WorkersPerLane:    getEnvAsInt("DISPATCH_WORKERS_PER_LANE", 2),
			QueueSize:         getEnvAsInt("DISPATCH_QUEUE_SIZE", 256),
			MaxAttempts:       getEnvAsInt("DISPATCH_MAX_ATTEMPTS", 3),
			SendTimeout:       getEnvAsDuration("DISPATCH_SEND_TIMEOUT", 30*time.Second),
			ReconcileAfter:    getEnvAsDuration("DISPATCH_RECONCILE_AFTER", 5*time.Minute),
			RetentionWindow:   getEnvAsDuration("DISPATCH_RETENTION_WINDOW", 30*24*time.Hour),
			RateLimitFailOpen: getEnvAsBool("DISPATCH_RATE_LIMIT_FAIL_OPEN", true),
		},
		Channels: ChannelsConfig{
			File: getEnv("CHANNELS_FILE", "channels.json"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
