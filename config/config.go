package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Conversation listing sources.
const (
	ConversationSourceAggregate = "aggregate"
	ConversationSourceDerived   = "derived"
)

type Config struct {
	AppPort string
	AppMode string
	LogMode string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret   string
	CORSOrigins []string

	ConversationSource string
	FanoutQueueSize    int
	PresenceTTL        time.Duration
	MessageRateLimit   int
	MessageRateWindow  time.Duration
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		AppPort: getEnv("APP_PORT", "8080"),
		AppMode: getEnv("APP_MODE", "debug"),
		LogMode: getEnv("LOG_MODE", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "handyhub"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),

		ConversationSource: getEnv("CHAT_CONVERSATION_SOURCE", ConversationSourceAggregate),
		FanoutQueueSize:    getEnvAsInt("CHAT_FANOUT_QUEUE", 1024),
		PresenceTTL:        time.Duration(getEnvAsInt("PRESENCE_TTL_SECONDS", 300)) * time.Second,
		MessageRateLimit:   getEnvAsInt("MESSAGE_RATE_LIMIT", 60),
		MessageRateWindow:  time.Duration(getEnvAsInt("MESSAGE_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	if cfg.ConversationSource != ConversationSourceDerived {
		cfg.ConversationSource = ConversationSourceAggregate
	}
	return cfg
}

// RedisEnabled reports whether a Redis host was configured. Without one the
// server runs single-instance with in-memory presence and no rate limiting.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// AuthEnabled reports whether bearer tokens are verified.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
