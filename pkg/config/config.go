package config

import (
	"errors"
	"io/fs"
	"runtime"
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

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Persistence PersistenceConfig
	ResultCache ResultCacheConfig
	Scheduler   SchedulerConfig
	Jobs        JobsConfig
	Export      ExportConfig
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

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PersistenceConfig gates the PostgreSQL timetable store.
type PersistenceConfig struct {
	Enabled bool
}

// ResultCacheConfig governs the Redis cache of deterministic run outcomes.
type ResultCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SchedulerConfig bounds every scheduling run and how long runs stay addressable.
type SchedulerConfig struct {
	NodeBudget int64
	TimeBudget time.Duration
	Workers    int
	RunTTL     time.Duration
}

// JobsConfig sizes the asynchronous run queue.
type JobsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// ExportConfig customises rendered timetable files.
type ExportConfig struct {
	Title string
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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Persistence = PersistenceConfig{
		Enabled: v.GetBool("ENABLE_PERSISTENCE"),
	}

	cfg.ResultCache = ResultCacheConfig{
		Enabled: v.GetBool("ENABLE_RESULT_CACHE"),
		TTL:     parseDuration(v.GetString("RESULT_CACHE_TTL"), time.Hour),
	}

	workers := v.GetInt("SCHEDULER_WORKERS")
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	cfg.Scheduler = SchedulerConfig{
		NodeBudget: v.GetInt64("SCHEDULER_NODE_BUDGET"),
		TimeBudget: parseDuration(v.GetString("SCHEDULER_TIME_BUDGET"), 10*time.Second),
		Workers:    workers,
		RunTTL:     parseDuration(v.GetString("SCHEDULER_RUN_TTL"), 30*time.Minute),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("SCHEDULER_JOB_WORKERS"),
		BufferSize: v.GetInt("SCHEDULER_JOB_BUFFER"),
		MaxRetries: v.GetInt("SCHEDULER_JOB_RETRIES"),
		RetryDelay: parseDuration(v.GetString("SCHEDULER_JOB_RETRY_DELAY"), 2*time.Second),
	}

	cfg.Export = ExportConfig{
		Title: v.GetString("EXPORT_TITLE"),
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
	v.SetDefault("DB_NAME", "horarios_cuom")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_PERSISTENCE", false)
	v.SetDefault("ENABLE_RESULT_CACHE", false)
	v.SetDefault("RESULT_CACHE_TTL", "1h")

	v.SetDefault("SCHEDULER_NODE_BUDGET", 2000000)
	v.SetDefault("SCHEDULER_TIME_BUDGET", "10s")
	v.SetDefault("SCHEDULER_WORKERS", 0)
	v.SetDefault("SCHEDULER_RUN_TTL", "30m")

	v.SetDefault("SCHEDULER_JOB_WORKERS", 2)
	v.SetDefault("SCHEDULER_JOB_BUFFER", 32)
	v.SetDefault("SCHEDULER_JOB_RETRIES", 2)
	v.SetDefault("SCHEDULER_JOB_RETRY_DELAY", "2s")

	v.SetDefault("EXPORT_TITLE", "Horario semanal")
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
