package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr           string
	DBDriver           string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	RedisHost          string
	RedisPort          string
	SessionSecret      string
	JWTSecret          string
	GinMode            string
	OpenAIAPIKey       string
	CORSAllowedOrigins []string
	OverdueSweepEvery  time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DBDriver:           getEnv("DB_DRIVER", "mysql"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBUser:             getEnv("DB_USER", "taskdesk"),
		DBPassword:         getEnv("DB_PASSWORD", "taskdesk"),
		DBName:             getEnv("DB_NAME", "taskdesk"),
		RedisHost:          getEnv("REDIS_HOST", ""),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		SessionSecret:      getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		JWTSecret:          getEnv("JWT_SECRET", "default-jwt-secret-change-me"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		CORSAllowedOrigins: []string{getEnv("CORS_ALLOWED_ORIGIN", "*")},
		OverdueSweepEvery:  time.Duration(getIntEnv("OVERDUE_SWEEP_INTERVAL_SECONDS", 300)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
