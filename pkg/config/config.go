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

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Calendar    CalendarConfig
	Referrals   ReferralConfig
	EmailCheck  EmailCheckConfig
	Exports     ExportConfig
	Maintenance MaintenanceConfig
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
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CalendarConfig tunes the week view: the visible daily window, the grid
// geometry used to position items, caching, and the session duration
// applied when a timetable is created without one.
type CalendarConfig struct {
	GridStartHour          int
	GridEndHour            int
	GridHourHeight         float64
	GridMinItemHeight      float64
	DefaultSessionDuration int
	CacheTTL               time.Duration
	CacheEnabled           bool
}

// ReferralConfig governs the referral rewards program.
type ReferralConfig struct {
	RewardThreshold int
	CodePrefix      string
}

// EmailCheckConfig points at the external email validation service. An
// empty URL disables remote validation entirely.
type EmailCheckConfig struct {
	URL     string
	Timeout time.Duration
}

// ExportConfig controls week export generation.
type ExportConfig struct {
	StorageDir        string
	WorkerConcurrency int
	WorkerRetries     int
}

// MaintenanceConfig drives the background cleanup schedule.
type MaintenanceConfig struct {
	Enabled      bool
	CronSpec     string
	ExportMaxAge time.Duration
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
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Calendar = CalendarConfig{
		GridStartHour:          v.GetInt("CAL_GRID_START_HOUR"),
		GridEndHour:            v.GetInt("CAL_GRID_END_HOUR"),
		GridHourHeight:         v.GetFloat64("CAL_GRID_HOUR_HEIGHT"),
		GridMinItemHeight:      v.GetFloat64("CAL_GRID_MIN_ITEM_HEIGHT"),
		DefaultSessionDuration: v.GetInt("CAL_DEFAULT_SESSION_DURATION"),
		CacheTTL:               parseDuration(v.GetString("CAL_CACHE_TTL"), 5*time.Minute),
		CacheEnabled:           v.GetBool("CAL_CACHE_ENABLED"),
	}

	cfg.Referrals = ReferralConfig{
		RewardThreshold: v.GetInt("REFERRAL_REWARD_THRESHOLD"),
		CodePrefix:      v.GetString("REFERRAL_CODE_PREFIX"),
	}

	cfg.EmailCheck = EmailCheckConfig{
		URL:     v.GetString("EMAIL_CHECK_URL"),
		Timeout: parseDuration(v.GetString("EMAIL_CHECK_TIMEOUT"), 5*time.Second),
	}

	cfg.Exports = ExportConfig{
		StorageDir:        v.GetString("EXPORT_STORAGE_DIR"),
		WorkerConcurrency: v.GetInt("EXPORT_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORT_WORKER_RETRIES"),
	}

	cfg.Maintenance = MaintenanceConfig{
		Enabled:      v.GetBool("MAINTENANCE_ENABLED"),
		CronSpec:     v.GetString("MAINTENANCE_CRON"),
		ExportMaxAge: parseDuration(v.GetString("MAINTENANCE_EXPORT_MAX_AGE"), 24*time.Hour),
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
	v.SetDefault("DB_NAME", "vistari")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "vistari-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	// Grid defaults match the web client: 06:00-22:00 at 60px per hour,
	// 30px floor so short sessions stay clickable.
	v.SetDefault("CAL_GRID_START_HOUR", 6)
	v.SetDefault("CAL_GRID_END_HOUR", 22)
	v.SetDefault("CAL_GRID_HOUR_HEIGHT", 60)
	v.SetDefault("CAL_GRID_MIN_ITEM_HEIGHT", 30)
	v.SetDefault("CAL_DEFAULT_SESSION_DURATION", 60)
	v.SetDefault("CAL_CACHE_TTL", "5m")
	v.SetDefault("CAL_CACHE_ENABLED", false)

	v.SetDefault("REFERRAL_REWARD_THRESHOLD", 5)
	v.SetDefault("REFERRAL_CODE_PREFIX", "VIS")

	v.SetDefault("EMAIL_CHECK_URL", "")
	v.SetDefault("EMAIL_CHECK_TIMEOUT", "5s")

	v.SetDefault("EXPORT_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORT_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORT_WORKER_RETRIES", 3)

	v.SetDefault("MAINTENANCE_ENABLED", false)
	v.SetDefault("MAINTENANCE_CRON", "0 3 * * *")
	v.SetDefault("MAINTENANCE_EXPORT_MAX_AGE", "24h")
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
