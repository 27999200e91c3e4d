package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Log          LogConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
	Telemetry    TelemetryConfig
}

type AppConfig struct {
	Name       string
	Port       string
	Env        string
	CORSOrigin string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	LogSQL   bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// AvailabilityTTL bounds the lifetime of cached availability for dates
	// that are still far away
	AvailabilityTTL time.Duration
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type NotificationConfig struct {
	// Async routes notifications through the task queue instead of writing
	// them inline after the triggering request
	Async       bool
	QueueDB     int
	Queue       string
	Concurrency int
	MaxRetry    int
}

type RateLimitConfig struct {
	BookingPerMinute int
	BookingBurst     int
}

type TelemetryConfig struct {
	Enabled      bool
	MetricsPath  string
	OTLPEndpoint string
	OTLPInsecure bool
	SamplingRate float64
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	availabilityTTL, err := time.ParseDuration(viper.GetString("REDIS_AVAILABILITY_TTL"))
	if err != nil {
		availabilityTTL = 10 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Name:       viper.GetString("APP_NAME"),
			Port:       viper.GetString("APP_PORT"),
			Env:        viper.GetString("APP_ENV"),
			CORSOrigin: viper.GetString("APP_CORS_ORIGIN"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			LogSQL:   viper.GetBool("DB_LOG_SQL"),
		},
		Redis: RedisConfig{
			Host:            viper.GetString("REDIS_HOST"),
			Port:            viper.GetString("REDIS_PORT"),
			Password:        viper.GetString("REDIS_PASSWORD"),
			DB:              viper.GetInt("REDIS_DB"),
			AvailabilityTTL: availabilityTTL,
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Log: LogConfig{
			Level:      viper.GetString("LOG_LEVEL"),
			File:       viper.GetString("LOG_FILE"),
			MaxSizeMB:  viper.GetInt("LOG_FILE_MAX_SIZE_MB"),
			MaxBackups: viper.GetInt("LOG_FILE_MAX_BACKUPS"),
			MaxAgeDays: viper.GetInt("LOG_FILE_MAX_AGE_DAYS"),
			Compress:   viper.GetBool("LOG_FILE_COMPRESS"),
		},
		Notification: NotificationConfig{
			Async:       viper.GetBool("NOTIFICATION_ASYNC"),
			QueueDB:     viper.GetInt("NOTIFICATION_QUEUE_DB"),
			Queue:       viper.GetString("NOTIFICATION_QUEUE"),
			Concurrency: viper.GetInt("NOTIFICATION_CONCURRENCY"),
			MaxRetry:    viper.GetInt("NOTIFICATION_MAX_RETRY"),
		},
		RateLimit: RateLimitConfig{
			BookingPerMinute: viper.GetInt("RATE_LIMIT_BOOKING_PER_MINUTE"),
			BookingBurst:     viper.GetInt("RATE_LIMIT_BOOKING_BURST"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      viper.GetBool("TELEMETRY_ENABLED"),
			MetricsPath:  viper.GetString("TELEMETRY_METRICS_PATH"),
			OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			OTLPInsecure: viper.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
			SamplingRate: viper.GetFloat64("OTEL_SAMPLING_RATE"),
		},
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "vaccination-booking")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_CORS_ORIGIN", "*")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE_MAX_SIZE_MB", 100)
	viper.SetDefault("LOG_FILE_MAX_BACKUPS", 7)
	viper.SetDefault("LOG_FILE_MAX_AGE_DAYS", 30)
	viper.SetDefault("NOTIFICATION_ASYNC", true)
	viper.SetDefault("NOTIFICATION_QUEUE_DB", 1)
	viper.SetDefault("NOTIFICATION_QUEUE", "notifications")
	viper.SetDefault("NOTIFICATION_CONCURRENCY", 10)
	viper.SetDefault("NOTIFICATION_MAX_RETRY", 5)
	viper.SetDefault("RATE_LIMIT_BOOKING_PER_MINUTE", 30)
	viper.SetDefault("RATE_LIMIT_BOOKING_BURST", 10)
	viper.SetDefault("TELEMETRY_ENABLED", true)
	viper.SetDefault("TELEMETRY_METRICS_PATH", "/metrics")
	viper.SetDefault("OTEL_SAMPLING_RATE", 1.0)
}
