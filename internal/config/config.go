package config

import (
	"os"
	"strconv"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	CacheDriverLRU   = "lru"
	CacheDriverRedis = "redis"
	CacheDriverNone  = "none"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DatabaseURL string
	StoreDriver string

	SessionSecret string

	CacheDriver string
	RedisURL    string
	CacheTTL    time.Duration
	CacheSize   int

	RankingInterval time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=threadline port=5432 sslmode=disable TimeZone=Asia/Shanghai"),
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),

		SessionSecret: getEnv("SESSION_SECRET", "secret"),

		CacheDriver: getEnv("CACHE_DRIVER", CacheDriverLRU),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		CacheTTL:    getDurationEnv("CACHE_TTL", 5*time.Minute),
		CacheSize:   getIntEnv("CACHE_SIZE", 500),

		RankingInterval: getDurationEnv("RANKING_INTERVAL", 500*time.Millisecond),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
