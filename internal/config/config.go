package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	JWT      JWTConfig
	Limits   LimitsConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AIConfig struct {
	OpenAIKey string
	Model     string
}

type JWTConfig struct {
	Secret     string
	Expiration int
}

// LimitsConfig holds the default AI usage limits. Per-user overrides in the
// ai_limits table take precedence over these.
type LimitsConfig struct {
	RequestsPerMinute int
	RequestsPerDay    int
	TokensPerMonth    int

	// Coarse request-rate buckets (requests per minute).
	GlobalPerMinute     int
	UserPerMinute       int
	AIEndpointPerMinute int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION", "3600"))

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "practice_tracker"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		AI: AIConfig{
			OpenAIKey: getEnv("OPENAI_API_KEY", ""),
			Model:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "change-me-in-production"),
			Expiration: jwtExp,
		},
		Limits: LimitsConfig{
			RequestsPerMinute:   getEnvInt("AI_MAX_REQUESTS_PER_MINUTE", 10),
			RequestsPerDay:      getEnvInt("AI_MAX_REQUESTS_PER_DAY", 200),
			TokensPerMonth:      getEnvInt("AI_MAX_TOKENS_PER_MONTH", 200000),
			GlobalPerMinute:     getEnvInt("RATE_LIMIT_GLOBAL_PER_MINUTE", 300),
			UserPerMinute:       getEnvInt("RATE_LIMIT_USER_PER_MINUTE", 60),
			AIEndpointPerMinute: getEnvInt("RATE_LIMIT_AI_PER_MINUTE", 10),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
