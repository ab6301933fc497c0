// Package config loads server configuration from environment variables,
// with a .env file honored outside production.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable for the chat server binary.
type Config struct {
	ListenAddr     string        // address to listen on, e.g. ":8080"
	WorkerPoolSize int           // max concurrent read-worker goroutines
	MaxConnections int           // hard cap on total connections
	ReadTimeout    time.Duration // timeout for WebSocket read operations
	WriteTimeout   time.Duration // timeout for WebSocket write operations

	JWTSecretKey string // shared secret for verifying auth tokens
	DatabaseURL  string // Postgres DSN; empty selects the in-memory store
	RedisAddr    string // empty disables session records and rate limiting
	NatsURL      string // empty disables the event firehose
	ServerName   string // instance identifier for session records
	Environment  string // "production" skips .env loading
}

// Load reads configuration from environment variables or a .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	serverName := getEnv("SERVER_NAME", "")
	if serverName == "" {
		serverName, _ = os.Hostname()
	}
	if serverName == "" {
		serverName = "chat-1"
	}

	cfg := &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		WorkerPoolSize: getEnvAsInt("WORKER_POOL_SIZE", 256),
		MaxConnections: getEnvAsInt("MAX_CONNECTIONS", 100000),
		ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 10*time.Second),
		JWTSecretKey:   getEnv("JWT_SECRET_KEY", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		NatsURL:        getEnv("NATS_URL", ""),
		ServerName:     serverName,
		Environment:    env,
	}

	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns an environment variable parsed as a positive int,
// or the default.
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// getEnvAsDuration returns an environment variable parsed as a duration,
// or the default.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
