package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process configuration read from the environment
type Config struct {
	Port               string
	BackendURL         string
	BackendTimeout     time.Duration
	BackendMaxRetries  int
	RedisAddr          string
	JWTSecret          []byte
	SessionTTL         time.Duration
	EditorSessionTTL   time.Duration
	ResultsCacheTTL    time.Duration
	KafkaBrokers       []string
	KafkaTopic         string
	CORSAllowedOrigins []string
	LogLevel           string
	AI                 *AIConfig
}

// Load reads the configuration from the environment
func Load() *Config {
	redisAddr := getEnvOrDefault("REDIS_URI", "redis:6379")
	// Remove redis:// prefix if present
	redisAddr = strings.TrimPrefix(redisAddr, "redis://")

	return &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		BackendURL:         strings.TrimRight(getEnvOrDefault("BACKEND_URL", "http://localhost:5000"), "/"),
		BackendTimeout:     time.Duration(getEnvInt("BACKEND_TIMEOUT_MS", 15000)) * time.Millisecond,
		BackendMaxRetries:  getEnvInt("BACKEND_MAX_RETRIES", 3),
		RedisAddr:          redisAddr,
		JWTSecret:          []byte(getEnvOrDefault("JWT_SECRET", "super-secret-key-change-in-production")),
		SessionTTL:         getEnvDuration("SESSION_TTL", 24*time.Hour),
		EditorSessionTTL:   getEnvDuration("EDITOR_SESSION_TTL", 12*time.Hour),
		ResultsCacheTTL:    getEnvDuration("RESULTS_CACHE_TTL", 10*time.Minute),
		KafkaBrokers:       getEnvList("KAFKA_BROKERS"),
		KafkaTopic:         getEnvOrDefault("KAFKA_TOPIC", "survey.lifecycle"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		AI:                 DefaultAIConfig(),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
