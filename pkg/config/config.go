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

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Scheduling   SchedulingConfig
	CalendarSync CalendarSyncConfig
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

// SchedulingConfig tunes the availability grid and quick-reschedule views.
type SchedulingConfig struct {
	DayStartHour           int
	DayEndHour             int
	SlotSizeMinutes        int
	DefaultDurationMinutes int
	RescheduleWindowDays   int
	GridCacheTTL           time.Duration
}

// CalendarSyncConfig controls the fire-and-forget external calendar hook.
type CalendarSyncConfig struct {
	WebhookURL string
	Timeout    time.Duration
	Workers    int
	Retries    int
	RetryDelay time.Duration
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

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduling = SchedulingConfig{
		DayStartHour:           v.GetInt("SCHEDULING_DAY_START_HOUR"),
		DayEndHour:             v.GetInt("SCHEDULING_DAY_END_HOUR"),
		SlotSizeMinutes:        v.GetInt("SCHEDULING_SLOT_SIZE_MINUTES"),
		DefaultDurationMinutes: v.GetInt("SCHEDULING_DEFAULT_DURATION_MINUTES"),
		RescheduleWindowDays:   v.GetInt("SCHEDULING_RESCHEDULE_WINDOW_DAYS"),
		GridCacheTTL:           parseDuration(v.GetString("SCHEDULING_GRID_CACHE_TTL"), 30*time.Second),
	}

	cfg.CalendarSync = CalendarSyncConfig{
		WebhookURL: v.GetString("CALENDAR_SYNC_WEBHOOK_URL"),
		Timeout:    parseDuration(v.GetString("CALENDAR_SYNC_TIMEOUT"), 5*time.Second),
		Workers:    v.GetInt("CALENDAR_SYNC_WORKERS"),
		Retries:    v.GetInt("CALENDAR_SYNC_RETRIES"),
		RetryDelay: parseDuration(v.GetString("CALENDAR_SYNC_RETRY_DELAY"), 10*time.Second),
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
	v.SetDefault("DB_NAME", "scheduling")
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

	v.SetDefault("SCHEDULING_DAY_START_HOUR", 7)
	v.SetDefault("SCHEDULING_DAY_END_HOUR", 21)
	v.SetDefault("SCHEDULING_SLOT_SIZE_MINUTES", 30)
	v.SetDefault("SCHEDULING_DEFAULT_DURATION_MINUTES", 60)
	v.SetDefault("SCHEDULING_RESCHEDULE_WINDOW_DAYS", 5)
	v.SetDefault("SCHEDULING_GRID_CACHE_TTL", "30s")

	v.SetDefault("CALENDAR_SYNC_WEBHOOK_URL", "")
	v.SetDefault("CALENDAR_SYNC_TIMEOUT", "5s")
	v.SetDefault("CALENDAR_SYNC_WORKERS", 1)
	v.SetDefault("CALENDAR_SYNC_RETRIES", 3)
	v.SetDefault("CALENDAR_SYNC_RETRY_DELAY", "10s")
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
