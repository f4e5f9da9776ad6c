package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGOURI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "crowdfunddb", cfg.MongoDatabase)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.TrustedProxies)
	assert.False(t, cfg.EventsEnabled())
}

func TestLoad_ConnectionURLAliasAndBrokers(t *testing.T) {
	t.Setenv("MONGOURI", "")
	t.Setenv("CONNECTION_URL", "mongodb://db:27017")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "5000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.5"}, cfg.TrustedProxies)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.True(t, cfg.EventsEnabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MONGOURI", "")
	t.Setenv("CONNECTION_URL", "")
	t.Setenv("JWT_SECRET_KEY", "secret")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MONGOURI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET_KEY", "")
	_, err = Load()
	assert.Error(t, err)
}
