package config

import (
	"os"
	"strings"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort string

	MongoURI    string
	MongoDBName string

	// empty means no Redis: the service falls back to its in-process cache
	RedisAddr     string
	RedisPassword string

	// empty means the checkout consumer is not started
	KafkaBrokers []string
}

func Load() Config {
	return Config{
		AppEnv:        getEnv("APP_ENV", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGO_DB_NAME", "cartdb"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "")),
	}
}

// getEnv distinguishes a variable explicitly set to "" from an unset
// one, so REDIS_ADDR="" can opt out of Redis entirely.
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
