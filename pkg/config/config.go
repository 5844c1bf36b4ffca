package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Admin     AdminConfig
	CORS      CORSConfig
	Log       LogConfig
	AI        AIConfig
	Imports   ImportsConfig
	Exports   ExportsConfig
	Jobs      JobsConfig
	Grid      GridConfig
	Dashboard DashboardConfig
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

// AdminConfig drives the local passphrase gate for edit mode.
type AdminConfig struct {
	PassphraseHash string
	TokenSecret    string
	TokenExpiry    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AIConfig points the extraction client at the generative model endpoint.
type AIConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	ThinkingBudget int
	RequestTimeout time.Duration
}

// ImportsConfig governs AI import sessions and upload retention.
type ImportsConfig struct {
	Enabled          bool
	SessionTTL       time.Duration
	StorageDir       string
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
}

// ExportsConfig controls attendance/timetable export downloads.
type ExportsConfig struct {
	Enabled bool
}

// JobsConfig tunes the background worker queue.
type JobsConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	QueueBuffer       int
}

// GridConfig tunes timetable grid read caching.
type GridConfig struct {
	CacheTTL time.Duration
}

// DashboardConfig tunes the dashboard summary cache.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

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

	cfg.Admin = AdminConfig{
		PassphraseHash: v.GetString("ADMIN_PASSPHRASE_HASH"),
		TokenSecret:    v.GetString("ADMIN_TOKEN_SECRET"),
		TokenExpiry:    parseDuration(v.GetString("ADMIN_TOKEN_EXPIRY"), 12*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.AI = AIConfig{
		BaseURL:        v.GetString("AI_BASE_URL"),
		APIKey:         v.GetString("AI_API_KEY"),
		Model:          v.GetString("AI_MODEL"),
		ThinkingBudget: v.GetInt("AI_THINKING_BUDGET"),
		RequestTimeout: parseDuration(v.GetString("AI_REQUEST_TIMEOUT"), 0),
	}

	maxUploadSize := v.GetInt64("IMPORTS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	cfg.Imports = ImportsConfig{
		Enabled:          v.GetBool("ENABLE_IMPORTS"),
		SessionTTL:       parseDuration(v.GetString("IMPORTS_SESSION_TTL"), 30*time.Minute),
		StorageDir:       v.GetString("IMPORTS_STORAGE_DIR"),
		MaxFileSizeBytes: maxUploadSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("IMPORTS_ALLOWED_MIME_TYPES")),
		SignedURLSecret:  v.GetString("IMPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("IMPORTS_SIGNED_URL_TTL"), 30*time.Minute),
	}

	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	cfg.Jobs = JobsConfig{
		WorkerConcurrency: v.GetInt("JOBS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("JOBS_WORKER_RETRIES"),
		QueueBuffer:       v.GetInt("JOBS_QUEUE_BUFFER"),
	}

	cfg.Grid = GridConfig{
		CacheTTL: parseDuration(v.GetString("GRID_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ADMIN_PASSPHRASE_HASH", "")
	v.SetDefault("ADMIN_TOKEN_SECRET", "dev_secret")
	v.SetDefault("ADMIN_TOKEN_EXPIRY", "12h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("AI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("AI_API_KEY", "")
	v.SetDefault("AI_MODEL", "gemini-3-pro-preview")
	v.SetDefault("AI_THINKING_BUDGET", 2048)
	v.SetDefault("AI_REQUEST_TIMEOUT", "0")

	v.SetDefault("ENABLE_IMPORTS", true)
	v.SetDefault("IMPORTS_SESSION_TTL", "30m")
	v.SetDefault("IMPORTS_STORAGE_DIR", "./uploads")
	v.SetDefault("IMPORTS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("IMPORTS_ALLOWED_MIME_TYPES", "application/pdf,image/png,image/jpeg,text/plain")
	v.SetDefault("IMPORTS_SIGNED_URL_SECRET", "dev_imports_secret")
	v.SetDefault("IMPORTS_SIGNED_URL_TTL", "30m")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("JOBS_WORKER_CONCURRENCY", 1)
	v.SetDefault("JOBS_WORKER_RETRIES", 3)
	v.SetDefault("JOBS_QUEUE_BUFFER", 8)

	v.SetDefault("GRID_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
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
