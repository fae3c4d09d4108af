package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	ServerPort  string
	StoreDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string

	TrainingDailyLimit int
	ExamDailyLimit     int

	SessionRetention time.Duration
	SweepInterval    time.Duration

	RedisAddr      string
	RedisPassword  string
	ResultCacheTTL time.Duration

	RabbitMQURI      string
	RabbitMQExchange string

	CORSOrigins []string
}

// Load reads a .env file when present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: could not read .env: %v", err)
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "medunacy"),

		JWTSecret: getEnv("JWT_SECRET", "super-secret-key-change-me"),

		TrainingDailyLimit: getEnvInt("TRAINING_DAILY_LIMIT", 3),
		ExamDailyLimit:     getEnvInt("EXAM_DAILY_LIMIT", 1),

		SessionRetention: getEnvDuration("SESSION_RETENTION", 0),
		SweepInterval:    getEnvDuration("SWEEP_INTERVAL", 10*time.Minute),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		ResultCacheTTL: getEnvDuration("RESULT_CACHE_TTL", 24*time.Hour),

		RabbitMQURI:      getEnv("RABBITMQ_URI", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "medunacy.events"),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		log.Printf("config: invalid %s=%q, using %d", key, val, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		log.Printf("config: invalid %s=%q, using %s", key, val, fallback)
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
