package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("EMAIL_TRANSPORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "eur", cfg.Stripe.Currency)
	assert.Equal(t, int64(590), cfg.Stripe.ShippingFee)
	assert.Equal(t, []string{"FR", "BE", "CH", "LU", "MC"}, cfg.Stripe.AllowedCountries)
	assert.Equal(t, "log", cfg.Email.Transport)
	assert.Equal(t, 30*24*time.Hour, cfg.Redis.CartTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STRIPE_CURRENCY", "CHF")
	t.Setenv("SHIPPING_FLAT_FEE", "990")
	t.Setenv("STRIPE_ALLOWED_COUNTRIES", "FR, DE ,")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop?sslmode=require")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "chf", cfg.Stripe.Currency)
	assert.Equal(t, int64(990), cfg.Stripe.ShippingFee)
	assert.Equal(t, []string{"FR", "DE"}, cfg.Stripe.AllowedCountries)
	assert.Equal(t, "postgres://u:p@db:5432/shop?sslmode=require", cfg.GetDatabaseDSN())
}

func TestValidateProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{
		App:      AppConfig{Environment: "production"},
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{URL: "postgres://localhost/shop"},
		Redis:    RedisConfig{Host: "localhost"},
		Email:    EmailConfig{Transport: "smtp"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")

	cfg.Stripe.SecretKey = "sk_live_x"
	cfg.Stripe.WebhookSecret = "whsec_x"
	cfg.Auth.AdminToken = "admin"
	require.NoError(t, cfg.Validate())

	cfg.Email.Transport = "log"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownTransport(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Host: "localhost", Name: "shop"},
		Redis:    RedisConfig{Host: "localhost"},
		Email:    EmailConfig{Transport: "carrier-pigeon"},
	}
	require.Error(t, cfg.Validate())
}
