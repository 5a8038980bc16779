package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "http://localhost:8090")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()

	assert.Equal(t, "PairTrack", cfg.AppName)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 20, cfg.RecentCheckInsLimit)
	assert.False(t, cfg.RequireEmailConfirmation)
	assert.False(t, cfg.StorageEnabled())
	assert.False(t, cfg.KafkaEnabled())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_EMAILS", " Boss@Example.com, ,ops@example.com ")
	t.Setenv("REQUIRE_EMAIL_CONFIRMATION", "true")
	t.Setenv("RECENT_CHECKINS_LIMIT", "5")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("S3_BUCKET", "reports")
	t.Setenv("TIMEZONE", "Europe/Berlin")

	cfg := Load()

	assert.Equal(t, []string{"boss@example.com", "ops@example.com"}, cfg.AdminEmails)
	assert.True(t, cfg.RequireEmailConfirmation)
	assert.True(t, cfg.UsesEmail())
	assert.Equal(t, 5, cfg.RecentCheckInsLimit)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.StorageEnabled())
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_INT", "-3")
	t.Setenv("X_DURATION", "soon")

	assert.True(t, envBool("X_BOOL", true))
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, time.Minute, envDuration("X_DURATION", time.Minute))
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	require.Equal(t, time.UTC, cfg.Location())
}

func TestSanitizedDropsSecrets(t *testing.T) {
	cfg := &Config{
		AppName:            "PairTrack",
		JWTSecret:          "secret",
		ResendAPIKey:       "re_123",
		GoogleClientSecret: "g-secret",
		S3SecretKey:        "s3-secret",
		AdminEmails:        []string{"boss@example.com"},
	}

	safe := cfg.Sanitized()

	assert.Equal(t, "PairTrack", safe.AppName)
	assert.Empty(t, safe.JWTSecret)
	assert.Empty(t, safe.ResendAPIKey)
	assert.Empty(t, safe.GoogleClientSecret)
	assert.Empty(t, safe.S3SecretKey)
	assert.Empty(t, safe.AdminEmails)
}
