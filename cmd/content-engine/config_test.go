// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/content-engine/internal/secrets"
	"github.com/pdiddy/content-engine/pkg/types"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	loadedSecrets = nil
	t.Cleanup(func() {
		viper.Reset()
		setDefaults()
		loadedSecrets = nil
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	resetConfig(t)

	cfg := loadConfig()
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, types.ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, 3, cfg.AI.MaxRetries)
	assert.Equal(t, 2*time.Minute, cfg.AI.Timeout)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 80, cfg.Pipeline.ApprovalThreshold)
	assert.Equal(t, 2, cfg.Pipeline.MaxRevisions)
	assert.Equal(t, 2, cfg.Assessment.MaxAuditCycles)
	assert.Equal(t, 2, cfg.Scheduler.MinResources)
	assert.Equal(t, 48*time.Hour, cfg.Scheduler.RefreshWindow)
	assert.Equal(t, 5, cfg.Scheduler.BatchSize)
	assert.Equal(t, 10, cfg.Scheduler.MaxTasks)
	assert.Zero(t, cfg.Scheduler.Interval)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Empty(t, cfg.Server.CronSecret)
}

func TestLoadConfigKeys(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		set      secrets.Set
		apiKey   string
		wantKey  string
	}{
		{"gemini key from secrets", "gemini", secrets.Set{secrets.GeminiAPIKey: "g-secret", secrets.OpenAIAPIKey: "o-secret"}, "", "g-secret"},
		{"openai key from secrets", "openai", secrets.Set{secrets.GeminiAPIKey: "g-secret", secrets.OpenAIAPIKey: "o-secret"}, "", "o-secret"},
		{"configured key wins", "gemini", secrets.Set{secrets.GeminiAPIKey: "g-secret"}, "from-config", "from-config"},
		{"no key anywhere", "openai", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfig(t)
			viper.Set("llm.provider", tt.provider)
			if tt.apiKey != "" {
				viper.Set("llm.api_key", tt.apiKey)
			}
			loadedSecrets = tt.set

			cfg := loadConfig()
			assert.Equal(t, types.Provider(tt.provider), cfg.AI.Provider)
			assert.Equal(t, tt.wantKey, cfg.AI.APIKey)
		})
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	resetConfig(t)
	viper.Set("pipeline.approval_threshold", 70)
	viper.Set("scheduler.refresh_window", "24h")
	viper.Set("scheduler.interval", "15m")
	loadedSecrets = secrets.Set{secrets.CronSecret: "cron"}

	cfg := loadConfig()
	assert.Equal(t, 70, cfg.Pipeline.ApprovalThreshold)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.RefreshWindow)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, "cron", cfg.Server.CronSecret)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
