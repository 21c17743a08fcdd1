package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp-secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "kerl", cfg.MongoDB)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "razorpay", cfg.PaymentProvider)
	assert.Equal(t, "INR", cfg.PaymentCurrency)
	assert.Equal(t, "none", cfg.EventsBackend)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "rzp-secret", cfg.SignatureSecret())
}

func TestLoadConfig_LegacyKeyNames(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("KEY_ID", "rzp_test_key")
	t.Setenv("KEY_SECRET", "legacy-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "rzp_test_key", cfg.RazorpayKeyID)
	assert.Equal(t, "legacy-secret", cfg.RazorpayKeySecret)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := LoadConfig()
	assert.EqualError(t, err, "MONGO_URI is required")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	setRequiredEnv(t)

	t.Run("duration", func(t *testing.T) {
		t.Setenv("JWT_EXPIRY", "one hour")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "invalid JWT_EXPIRY")
	})

	t.Run("provider", func(t *testing.T) {
		t.Setenv("PAYMENT_PROVIDER", "paypal")
		_, err := LoadConfig()
		assert.EqualError(t, err, `unknown PAYMENT_PROVIDER "paypal"`)
	})

	t.Run("kafka without brokers", func(t *testing.T) {
		t.Setenv("EVENTS_BACKEND", "kafka")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "KAFKA_BROKERS")
	})
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{MongoURI: "mongodb://env", JWTSecret: "env-secret", RazorpayKeySecret: "env-rzp"}

	cfg.ApplySecrets(map[string]string{
		"JWT_SECRET":          "vault-secret",
		"RAZORPAY_KEY_SECRET": "  ",
	})

	assert.Equal(t, "mongodb://env", cfg.MongoURI)
	assert.Equal(t, "vault-secret", cfg.JWTSecret)
	assert.Equal(t, "env-rzp", cfg.RazorpayKeySecret)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, splitList(" http://a.com/, ,http://b.com"))
	assert.Nil(t, splitList(""))
}
