package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Snapshot sources.
const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database       DatabaseConfig
	Redis          RedisConfig
	JWT            JWTConfig
	CORS           CORSConfig
	Log            LogConfig
	Backend        BackendConfig
	Projection     ProjectionConfig
	Exports        ExportsConfig
	ChangeRequests ChangeRequestsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BackendConfig points at the timetable generation backend.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
	// ServiceToken authenticates background refreshes that run without a caller.
	ServiceToken string
	// Source selects where timetable snapshots are read from: the backend API or the
	// read-only Postgres replica.
	Source string
}

// ProjectionConfig tunes grid projection.
type ProjectionConfig struct {
	DefaultSpecialization string
	WeekdaysOnly          bool
	CacheEnabled          bool
	CacheTTL              time.Duration
	RefreshInterval       time.Duration
}

// ExportsConfig configures asynchronous grid exports.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// ChangeRequestsConfig toggles the faculty change-request workflow.
type ChangeRequestsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	source := strings.ToLower(strings.TrimSpace(v.GetString("TIMETABLE_SOURCE")))
	if source != SourcePostgres {
		source = SourceHTTP
	}
	cfg.Backend = BackendConfig{
		BaseURL:      strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Timeout:      parseDuration(v.GetString("BACKEND_TIMEOUT"), 10*time.Second),
		ServiceToken: v.GetString("BACKEND_SERVICE_TOKEN"),
		Source:       source,
	}

	cfg.Projection = ProjectionConfig{
		DefaultSpecialization: strings.TrimSpace(v.GetString("PROJECTION_DEFAULT_SPECIALIZATION")),
		WeekdaysOnly:          v.GetBool("PROJECTION_WEEKDAYS_ONLY"),
		CacheEnabled:          v.GetBool("PROJECTION_CACHE_ENABLED"),
		CacheTTL:              parseDuration(v.GetString("PROJECTION_CACHE_TTL"), 5*time.Minute),
		RefreshInterval:       parseDuration(v.GetString("PROJECTION_REFRESH_INTERVAL"), 0),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	cfg.ChangeRequests = ChangeRequestsConfig{
		Enabled: v.GetBool("ENABLE_CHANGE_REQUESTS"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8000/api/v1")
	v.SetDefault("BACKEND_TIMEOUT", "10s")
	v.SetDefault("BACKEND_SERVICE_TOKEN", "")
	v.SetDefault("TIMETABLE_SOURCE", SourceHTTP)

	v.SetDefault("PROJECTION_DEFAULT_SPECIALIZATION", "SE")
	v.SetDefault("PROJECTION_WEEKDAYS_ONLY", true)
	v.SetDefault("PROJECTION_CACHE_ENABLED", true)
	v.SetDefault("PROJECTION_CACHE_TTL", "5m")
	v.SetDefault("PROJECTION_REFRESH_INTERVAL", "")

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_CHANGE_REQUESTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
