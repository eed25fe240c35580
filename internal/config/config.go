package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	OpsPort int

	// Telegram
	TelegramToken  string
	TelegramAPIURL string
	PollTimeout    time.Duration
	OwnerID        int64

	// Remote browser-automation service
	AutomationURL    string
	AutomationSecret string
	ConnectTimeout   time.Duration
	DemoTimeout      time.Duration
	MT4Timeout       time.Duration

	// Intake defaults
	DefaultCountryCode string
	Country            string

	// Postgres ledger
	DBDSN string

	// Redis sessions (optional; in-memory fallback when empty)
	RedisAddr  string
	RedisPass  string
	RedisDB    int
	SessionTTL time.Duration

	// RabbitMQ lifecycle events (optional)
	RabbitURL      string
	RabbitExchange string

	// Broadcast pacing
	BroadcastDelay time.Duration

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.OpsPort = getInt("OPS_PORT", 8080)

	// --- Telegram
	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.TelegramAPIURL = getEnv("TELEGRAM_API_URL", "https://api.telegram.org")
	cfg.PollTimeout = getDuration("TELEGRAM_POLL_TIMEOUT", 30*time.Second)
	cfg.OwnerID = getInt64("OWNER_ID", 0)

	// --- Automation service
	cfg.AutomationURL = strings.TrimRight(getEnv("AUTOMATION_API_URL", ""), "/")
	cfg.AutomationSecret = getEnv("AUTOMATION_SHARED_SECRET", "")
	cfg.ConnectTimeout = getDuration("AUTOMATION_CONNECT_TIMEOUT", 25*time.Second)
	cfg.DemoTimeout = getDuration("AUTOMATION_DEMO_TIMEOUT", 120*time.Second)
	// The MT4 step drives a second, longer browser flow after the demo exists.
	cfg.MT4Timeout = getDuration("AUTOMATION_MT4_TIMEOUT", 180*time.Second)

	// --- Intake defaults
	cfg.DefaultCountryCode = getEnv("DEFAULT_COUNTRY_CODE", "+381")
	cfg.Country = getEnv("SIGNUP_COUNTRY", "Serbia")

	// --- Postgres: prefer DATABASE_URL if present, else build from POSTGRES_*
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL != "" {
		cfg.DBDSN = dbURL
	} else {
		addr := getEnv("POSTGRES_ADDR", "")
		user := getEnv("POSTGRES_USER", "")
		pass := getEnv("POSTGRES_PASSWORD", "")
		db := getEnv("POSTGRES_DB", "")
		sslmode := getEnv("POSTGRES_SSLMODE", "disable")
		cfg.DBDSN = buildPostgresURL(addr, user, pass, db, sslmode)
	}

	// --- Redis
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPass = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getInt("REDIS_DB", 0)
	cfg.SessionTTL = getDuration("SESSION_TTL", 30*time.Minute)

	// --- RabbitMQ (empty disables publishing)
	cfg.RabbitURL = getEnv("RABBITMQ_URL", "")
	cfg.RabbitExchange = getEnv("RABBITMQ_EXCHANGE", "intake.events")

	// --- Broadcast
	cfg.BroadcastDelay = getDuration("BROADCAST_DELAY", 50*time.Millisecond)

	// --- Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// --- Validation (fail fast before serving any conversation)
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("missing TELEGRAM_BOT_TOKEN")
	}
	if cfg.AutomationURL == "" {
		return nil, fmt.Errorf("missing AUTOMATION_API_URL")
	}
	if cfg.AutomationSecret == "" {
		return nil, fmt.Errorf("missing AUTOMATION_SHARED_SECRET")
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("missing database config: provide DATABASE_URL or POSTGRES_ADDR/POSTGRES_USER/POSTGRES_PASSWORD/POSTGRES_DB")
	}

	return cfg, nil
}

// buildPostgresURL builds a safe postgres URL DSN (handles special characters).
func buildPostgresURL(addr, user, pass, db, sslmode string) string {
	if strings.TrimSpace(addr) == "" || strings.TrimSpace(user) == "" || strings.TrimSpace(db) == "" {
		return ""
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   strings.TrimSpace(addr),
		Path:   "/" + strings.TrimPrefix(strings.TrimSpace(db), "/"),
	}
	if pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}

	q := url.Values{}
	if strings.TrimSpace(sslmode) != "" {
		q.Set("sslmode", strings.TrimSpace(sslmode))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getInt64(k string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
