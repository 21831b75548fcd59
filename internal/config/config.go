package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		Port        string
		Debug       bool
		FrontendURL string
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	Spot struct {
		BaseURL         string
		FeedID          string
		FreshnessWindow time.Duration
	}
	Backup struct {
		Recipients      []string
		Timezone        string
		WindowStartHour int
		WindowEndHour   int
	}
	SMTP struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	Workers struct {
		FeedEnabled    bool
		BackupEnabled  bool
		FeedInterval   time.Duration
		BackupInterval time.Duration
	}
	RateLimit struct {
		RequestsPerSecond int
		Burst             int
	}
	Debug struct {
		Password string
	}
}

func Load() *Config {
	cfg := &Config{}

	// App
	cfg.App.Port = getEnv("PORT", "8080")
	cfg.App.Debug = getEnvAsBool("DEBUG", false)
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")

	// DB
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnv("DB_NAME", "whereiscurtis")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnv("REDIS_PORT", "6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	// Spot feed
	// Апстрим требует минимум 2.5 минуты между вызовами, 5 минут дают запас
	cfg.Spot.BaseURL = getEnv("SPOT_FEED_URL", "https://api.findmespot.com/spot-main-web/consumer/rest-api/2.0/public/feed")
	cfg.Spot.FeedID = getEnv("SPOT_FEED_ID", "")
	cfg.Spot.FreshnessWindow = getEnvAsDuration("SPOT_FRESHNESS_WINDOW", 5*time.Minute)

	// Backup
	cfg.Backup.Recipients = getEnvAsList("BACKUP_RECIPIENTS", "etherealmachine@gmail.com")
	cfg.Backup.Timezone = getEnv("BACKUP_TZ", "America/Los_Angeles")
	cfg.Backup.WindowStartHour = getEnvAsInt("BACKUP_WINDOW_START_HOUR", 6)
	cfg.Backup.WindowEndHour = getEnvAsInt("BACKUP_WINDOW_END_HOUR", 9)

	// SMTP
	cfg.SMTP.Host = getEnv("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTP.Port = getEnvAsInt("SMTP_PORT", 587)
	cfg.SMTP.User = getEnv("GMAIL_USER", "")
	cfg.SMTP.Password = getEnv("GMAIL_PASS", "")

	// Workers
	cfg.Workers.FeedEnabled = getEnvAsBool("FEED_ENABLED", false)
	cfg.Workers.BackupEnabled = getEnvAsBool("BACKUP_ENABLED", true)
	cfg.Workers.FeedInterval = getEnvAsDuration("WORKER_FEED_INTERVAL", 5*time.Minute)
	cfg.Workers.BackupInterval = getEnvAsDuration("WORKER_BACKUP_INTERVAL", 15*time.Minute)

	// Rate Limit
	cfg.RateLimit.RequestsPerSecond = getEnvAsInt("RATE_LIMIT_RPS", 10)
	cfg.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 20)

	// Debug endpoint
	cfg.Debug.Password = getEnv("DEBUG_PASSWORD", "")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue string) []string {
	value := getEnv(key, defaultValue)

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
