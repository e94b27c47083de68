package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(2000), cfg.MinWithdrawalCents)
	assert.Equal(t, 24*time.Hour, cfg.PendingOrderTTL)
	assert.Equal(t, "@hourly", cfg.RankSyncSchedule)
	assert.False(t, cfg.RedisEnabled)
	assert.Empty(t, cfg.AdminEmails)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", StorageMemory)
	t.Setenv("ADMIN_EMAILS", " Ops@Entregas.com.br, ,dono@entregas.com.br")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PASSWORD", "s3cret")

	cfg := Load()

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, []string{"ops@entregas.com.br", "dono@entregas.com.br"}, cfg.AdminEmails)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, "postgres://postgres:s3cret@db:5432/entregas?sslmode=disable", cfg.PostgresURL())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}
