package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.False(t, cfg.Persistence.Enabled)
	assert.False(t, cfg.ResultCache.Enabled)
	assert.Equal(t, time.Hour, cfg.ResultCache.TTL)
	assert.Equal(t, int64(2000000), cfg.Scheduler.NodeBudget)
	assert.Equal(t, 10*time.Second, cfg.Scheduler.TimeBudget)
	assert.Greater(t, cfg.Scheduler.Workers, 0)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.RunTTL)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.Equal(t, "Horario semanal", cfg.Export.Title)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", EnvProduction)
	t.Setenv("ENABLE_PERSISTENCE", "true")
	t.Setenv("SCHEDULER_NODE_BUDGET", "5000")
	t.Setenv("SCHEDULER_TIME_BUDGET", "1500ms")
	t.Setenv("SCHEDULER_WORKERS", "3")
	t.Setenv("RESULT_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://horarios.example.edu ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.True(t, cfg.Persistence.Enabled)
	assert.Equal(t, int64(5000), cfg.Scheduler.NodeBudget)
	assert.Equal(t, 1500*time.Millisecond, cfg.Scheduler.TimeBudget)
	assert.Equal(t, 3, cfg.Scheduler.Workers)
	assert.Equal(t, time.Hour, cfg.ResultCache.TTL)
	assert.Equal(t, []string{"http://localhost:5173", "https://horarios.example.edu"}, cfg.CORS.AllowedOrigins)
}
