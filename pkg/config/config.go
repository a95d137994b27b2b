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
	Env  string
	Port int

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Club       ClubConfig
	Attendance AttendanceConfig
	Calendar   CalendarConfig
	Summaries  SummariesConfig
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

// ClubConfig carries tenancy bootstrap settings. Every coach account is
// provisioned with a home gym at registration; DefaultGymName is used when
// the registration payload does not name one.
type ClubConfig struct {
	DefaultGymName     string
	DefaultGymTimezone string
}

// AttendanceConfig tunes the attendance reconciler.
type AttendanceConfig struct {
	// WeightHour/WeightMinute fix the time-of-day attached to weight samples
	// written through the attendance flow, so same-day samples collide on
	// upsert.
	WeightHour   int
	WeightMinute int
}

// CalendarConfig bounds recurrence expansion for the class calendar.
type CalendarConfig struct {
	DefaultStartHour       int
	DefaultStartMinute     int
	DefaultDurationMinutes int
	MaxWindowDays          int
}

// SummariesConfig controls caching of read-side aggregates. Visibility
// scoping is never cached; only derived summaries are.
type SummariesConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
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

	cfg.Club = ClubConfig{
		DefaultGymName:     v.GetString("CLUB_DEFAULT_GYM_NAME"),
		DefaultGymTimezone: v.GetString("CLUB_DEFAULT_GYM_TIMEZONE"),
	}

	cfg.Attendance = AttendanceConfig{
		WeightHour:   v.GetInt("ATTENDANCE_WEIGHT_HOUR"),
		WeightMinute: v.GetInt("ATTENDANCE_WEIGHT_MINUTE"),
	}

	cfg.Calendar = CalendarConfig{
		DefaultStartHour:       v.GetInt("CALENDAR_DEFAULT_START_HOUR"),
		DefaultStartMinute:     v.GetInt("CALENDAR_DEFAULT_START_MINUTE"),
		DefaultDurationMinutes: v.GetInt("CALENDAR_DEFAULT_DURATION_MINUTES"),
		MaxWindowDays:          v.GetInt("CALENDAR_MAX_WINDOW_DAYS"),
	}

	cfg.Summaries = SummariesConfig{
		CacheEnabled: v.GetBool("SUMMARIES_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("SUMMARIES_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "boxclub")
	v.SetDefault("DB_PASSWORD", "boxclub")
	v.SetDefault("DB_NAME", "boxclub")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "boxclub-api")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CLUB_DEFAULT_GYM_NAME", "Default Gym")
	v.SetDefault("CLUB_DEFAULT_GYM_TIMEZONE", "Europe/Brussels")

	v.SetDefault("ATTENDANCE_WEIGHT_HOUR", 12)
	v.SetDefault("ATTENDANCE_WEIGHT_MINUTE", 0)

	v.SetDefault("CALENDAR_DEFAULT_START_HOUR", 18)
	v.SetDefault("CALENDAR_DEFAULT_START_MINUTE", 0)
	v.SetDefault("CALENDAR_DEFAULT_DURATION_MINUTES", 60)
	v.SetDefault("CALENDAR_MAX_WINDOW_DAYS", 366)

	v.SetDefault("SUMMARIES_CACHE_ENABLED", false)
	v.SetDefault("SUMMARIES_CACHE_TTL", "5m")
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
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
