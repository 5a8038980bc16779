package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret              string
	JWTExpiry              time.Duration
	TokenEmailVerifyExpiry time.Duration

	// Accounts
	RequireEmailConfirmation bool
	AdminEmails              []string

	// Weekly cycles and rooms
	Timezone            string
	RecentCheckInsLimit int

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	// Email
	EmailFrom                string
	ResendAPIKey             string
	PairNotificationsEnabled bool

	// Observability (optional)
	SentryDSN string

	// Storage for cycle reports (optional, disabled without a bucket)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3PresignExpiry time.Duration

	// Event forwarding (optional)
	KafkaBrokers []string
	KafkaTopic   string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "PairTrack"),
		AppEnv:  envRequired("APP_ENV"), // 'development' or 'production'
		AppURL:  envRequired("APP_URL"), // base URL for email links and OAuth redirects
		Port:    envString("PORT", "8090"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/pairtrack.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"),

		JWTSecret:              envRequired("JWT_SECRET"),
		JWTExpiry:              envDuration("JWT_EXPIRY", 168*time.Hour),               // 7 days
		TokenEmailVerifyExpiry: envDuration("TOKEN_EMAIL_VERIFY_EXPIRY", 24*time.Hour), // 24 hours

		RequireEmailConfirmation: envBool("REQUIRE_EMAIL_CONFIRMATION", false),
		AdminEmails:              envList("ADMIN_EMAILS"),

		Timezone:            envString("TIMEZONE", "UTC"),
		RecentCheckInsLimit: envInt("RECENT_CHECKINS_LIMIT", 20),

		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),
		GitHubClientID:     envString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: envString("GITHUB_CLIENT_SECRET", ""),

		// RESEND_API_KEY optional in development, required in production when email is used
		EmailFrom:                envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey:             envString("RESEND_API_KEY", ""),
		PairNotificationsEnabled: envBool("PAIR_NOTIFICATIONS_ENABLED", false),

		SentryDSN: envString("SENTRY_DSN", ""),

		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),

		KafkaBrokers: envList("KAFKA_BROKERS"),
		KafkaTopic:   envString("KAFKA_TOPIC", "pairtrack.events"),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures services backing enabled features are configured.
// Development falls back to logging emails instead of sending them.
func validateProduction(cfg *Config) {
	if cfg.UsesEmail() && cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY when email confirmation or pair notifications are enabled",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		slog.Warn("config invalid positive int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envList splits a comma separated variable, dropping blanks. Values are lower-cased.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) UsesEmail() bool {
	return c.RequireEmailConfirmation || c.PairNotificationsEnabled
}

func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("config invalid timezone, using UTC", "timezone", c.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to expose in ctx and templates.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		EmailFrom: c.EmailFrom,

		GoogleClientID: c.GoogleClientID,
		GitHubClientID: c.GitHubClientID,

		Timezone:            c.Timezone,
		RecentCheckInsLimit: c.RecentCheckInsLimit,
	}
}
