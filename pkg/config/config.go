package config

import (
	"os"
	"time"
)

type Config struct {
	Port            string
	Env             string
	PostgresConnStr string
	MongoURI        string
	RedisAddr       string
	SessionBackend  string        // "memory" or "redis"
	SessionTTL      time.Duration // zero disables expiry
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		PostgresConnStr: getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		SessionBackend:  getEnv("SESSION_BACKEND", "memory"),
		SessionTTL:      getDurationEnv("SESSION_TTL", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
