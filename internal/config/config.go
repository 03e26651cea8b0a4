// Package config loads application configuration from environment variables.
// A .env file in the working directory is read first when present.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Required variables are
// enforced by must(); optional ones fall back to defaults.
type Config struct {
	Env      string // application environment (dev, test, prod)
	Port     string // HTTP port to listen on
	LogLevel string // logrus level name

	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	DBAutoMigrate bool   // apply embedded migrations on startup

	JWTSecret string // secret used to verify access tokens

	HoldTTL      time.Duration // lifetime of an explicit seat hold
	TxMaxRetries int           // retries for transactions hitting deadlocks or lock timeouts

	Redis     RedisConfig
	SeatCache SeatCacheConfig
	RateLimit RateLimitConfig
	Events    EventsConfig
}

// Load reads configuration values from the environment. Missing required
// variables terminate the process.
func Load() Config {
	// a missing .env is fine; real deployments use the environment
	_ = godotenv.Load()

	return Config{
		Env:      envStr("APP_ENV", "dev"),
		Port:     must("APP_PORT"),
		LogLevel: envStr("LOG_LEVEL", "info"),

		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		DBAutoMigrate: envBool("DB_AUTO_MIGRATE", false),

		JWTSecret: must("JWT_SECRET"),

		HoldTTL:      envDur("HOLD_TTL", 15*time.Minute),
		TxMaxRetries: envInt("TX_MAX_RETRIES", 3),

		Redis:     LoadRedisConfig(),
		SeatCache: LoadSeatCacheConfig(),
		RateLimit: LoadRateLimitConfig(),
		Events:    LoadEventsConfig(),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

func envList(k, d string) []string {
	var out []string
	for _, p := range strings.Split(envStr(k, d), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
