package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProcessingConfig(t *testing.T) {
	cfg := DefaultProcessingConfig()

	assert.Equal(t, DirectionRTL, cfg.TextDirection)
	assert.Equal(t, "utf-8", cfg.Encoding)
	assert.Equal(t, "ar", cfg.LanguageHint)
	assert.Equal(t, 3000, cfg.CharsPerPage)
	assert.Equal(t, 5, cfg.SyncPageLimit)
	assert.Equal(t, 10*time.Minute, cfg.OperationTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestProcessingConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*ProcessingConfig)
		wantErr string
	}{
		{
			name:    "invalid direction",
			mutate:  func(c *ProcessingConfig) { c.TextDirection = "sideways" },
			wantErr: "text direction",
		},
		{
			name:    "empty encoding",
			mutate:  func(c *ProcessingConfig) { c.Encoding = "" },
			wantErr: "encoding",
		},
		{
			name:    "zero chars per page",
			mutate:  func(c *ProcessingConfig) { c.CharsPerPage = 0 },
			wantErr: "chars per page",
		},
		{
			name:    "zero sync page limit",
			mutate:  func(c *ProcessingConfig) { c.SyncPageLimit = 0 },
			wantErr: "sync page limit",
		},
		{
			name:    "zero operation timeout",
			mutate:  func(c *ProcessingConfig) { c.OperationTimeout = 0 },
			wantErr: "operation timeout",
		},
		{
			name:    "source language without target",
			mutate:  func(c *ProcessingConfig) { c.TranslateFrom = "ar" },
			wantErr: "translate-from requires translate-to",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultProcessingConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadWorkerConfigDefaults(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("QUEUE_NAME", "")
	t.Setenv("WORKER_CONCURRENCY", "")
	t.Setenv("PROCESSING_TIMEOUT_SECONDS", "")

	cfg, err := LoadWorkerConfig()
	require.NoError(t, err)

	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "readvision:jobs", cfg.QueueName)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 20*time.Minute, cfg.ProcessingTimeout)
}

func TestLoadWorkerConfigFromEnvironment(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://queue:6379/2")
	t.Setenv("QUEUE_NAME", "custom:queue")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("PROCESSING_TIMEOUT_SECONDS", "300")

	cfg, err := LoadWorkerConfig()
	require.NoError(t, err)

	assert.Equal(t, "redis://queue:6379/2", cfg.RedisURL)
	assert.Equal(t, "custom:queue", cfg.QueueName)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.ProcessingTimeout)
}

func TestWorkerConfigValidate(t *testing.T) {
	base := WorkerConfig{
		RedisURL:          "redis://localhost:6379",
		QueueName:         "readvision:jobs",
		Concurrency:       4,
		ProcessingTimeout: 10 * time.Minute,
	}

	assert.NoError(t, base.Validate())

	noRedis := base
	noRedis.RedisURL = ""
	assert.Error(t, noRedis.Validate())

	tooMany := base
	tooMany.Concurrency = 200
	assert.Error(t, tooMany.Validate())

	tooShort := base
	tooShort.ProcessingTimeout = 10 * time.Second
	assert.Error(t, tooShort.Validate())
}
