package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "static", cfg.Vision.Provider)
	assert.Equal(t, 168*time.Hour, cfg.Tenancy.InviteTTL)
	assert.Equal(t, "rentwise.audit.compliance", cfg.Kafka.AuditTopic)
	assert.True(t, cfg.InMemory())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 10, cfg.RateLimit.VerificationRequests)
	assert.Equal(t, time.Hour, cfg.RateLimit.VerificationWindow)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("RENTWISE_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://rentwise@localhost/rentwise")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("VISION_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_ANALYSIS_TTL", "1m")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.False(t, cfg.InMemory())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "openai", cfg.Vision.Provider)
	assert.Equal(t, time.Minute, cfg.Redis.AnalysisTTL)
}

func TestValidate(t *testing.T) {
	t.Run("production requires a signing key", func(t *testing.T) {
		t.Setenv("RENTWISE_ENV", "production")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SIGNING_KEY")
	})

	t.Run("openai provider requires an api key", func(t *testing.T) {
		t.Setenv("VISION_PROVIDER", "openai")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		t.Setenv("VISION_PROVIDER", "crystal-ball")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("rate limit budgets must be positive unless disabled", func(t *testing.T) {
		t.Setenv("RATELIMIT_WRITE_REQUESTS", "0")
		_, err := FromEnv()
		require.Error(t, err)

		t.Setenv("RATELIMIT_DISABLED", "true")
		_, err = FromEnv()
		require.NoError(t, err)
	})
}
