package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// durable session slots
	SlotBackend string // memory | file | redis | postgres
	SlotKey     string
	SlotDir     string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	DBURL       string

	SimulatedLatency time.Duration
	DemoPassword     string

	DeviceTokenSecret  string
	DeviceTokenTTLDays int
	StoreIdleTTL       time.Duration

	LoginRateLimit  int
	LoginRateWindow time.Duration

	StorageFailureThreshold int
	StorageCooldown         time.Duration
	StorageTimeout          time.Duration

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	OTELEndpoint    string
	OTELServiceName string
}

// DefaultDeviceTokenSecret signs device cookies when DEVICE_TOKEN_SECRET is
// unset. It is refused in prod.
const DefaultDeviceTokenSecret = "dev-device-secret-change-me"

var ErrInsecureConfig = errors.New("config: insecure settings")

// Validate rejects settings that must not reach production.
func (c Config) Validate() error {
	if c.Env == "prod" && c.DeviceTokenSecret == DefaultDeviceTokenSecret {
		return fmt.Errorf("%w: DEVICE_TOKEN_SECRET must be set when APP_ENV=prod", ErrInsecureConfig)
	}
	return nil
}

// Load reads configuration from the environment, after pulling in a .env
// file when one exists.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env", "err", err)
	}

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		SlotBackend: strings.ToLower(getEnv("SLOT_BACKEND", "file")),
		SlotKey:     getEnv("SLOT_KEY", "dreambuild_user"),
		SlotDir:     getEnv("SLOT_DIR", "./data/slots"),
		RedisAddr:   getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		DBURL:       buildDBURL(),

		SimulatedLatency: getEnvDuration("SIMULATED_LATENCY", time.Second),
		DemoPassword:     getEnv("DEMO_PASSWORD", "demo123"),

		DeviceTokenSecret:  getEnv("DEVICE_TOKEN_SECRET", DefaultDeviceTokenSecret),
		DeviceTokenTTLDays: getEnvInt("DEVICE_TOKEN_TTL_DAYS", 30),
		StoreIdleTTL:       getEnvDuration("STORE_IDLE_TTL", 30*time.Minute),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", time.Minute),

		StorageFailureThreshold: getEnvInt("STORAGE_FAILURE_THRESHOLD", 3),
		StorageCooldown:         getEnvDuration("STORAGE_COOLDOWN", 15*time.Second),
		StorageTimeout:          getEnvDuration("STORAGE_TIMEOUT", 2*time.Second),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELServiceName: getEnv("OTEL_SERVICE_NAME", "campushub-api"),
	}
}

func (c Config) DeviceTokenTTL() time.Duration {
	return time.Duration(c.DeviceTokenTTLDays) * 24 * time.Hour
}

func buildDBURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "campushub")
	pass := getEnv("DB_PASSWORD", "campushub")
	name := getEnv("DB_NAME", "campushub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer in env, using default", "key", key, "value", v)
			return fallback
		}
		return num
	}
	return fallback
}

// getEnvDuration accepts Go durations ("1500ms") or bare milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	slog.Warn("invalid duration in env, using default", "key", key, "value", v)
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
