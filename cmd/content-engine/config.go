// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/content-engine/internal/assessment"
	"github.com/pdiddy/content-engine/internal/catalog"
	"github.com/pdiddy/content-engine/internal/llm"
	"github.com/pdiddy/content-engine/internal/pipeline"
	"github.com/pdiddy/content-engine/internal/resources"
	"github.com/pdiddy/content-engine/internal/scheduler"
	"github.com/pdiddy/content-engine/internal/secrets"
	"github.com/pdiddy/content-engine/internal/store"
	"github.com/pdiddy/content-engine/pkg/types"
)

func setDefaults() {
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("catalog", "")
	viper.SetDefault("llm.provider", string(types.ProviderGemini))
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.max_retries", 3)
	viper.SetDefault("llm.timeout", 2*time.Minute)
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("openai.base_url", "")
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.debug", false)
	viper.SetDefault("pipeline.approval_threshold", pipeline.DefaultApprovalThreshold)
	viper.SetDefault("pipeline.max_revisions", pipeline.DefaultMaxRevisions)
	viper.SetDefault("assessment.max_audit_cycles", assessment.DefaultMaxAuditCycles)
	viper.SetDefault("scheduler.min_resources", scheduler.DefaultMinResources)
	viper.SetDefault("scheduler.refresh_window", scheduler.DefaultRefreshWindow)
	viper.SetDefault("scheduler.batch_size", scheduler.DefaultBatchSize)
	viper.SetDefault("scheduler.max_tasks", scheduler.DefaultMaxTasks)
	viper.SetDefault("scheduler.interval", time.Duration(0))
}

// loadConfig assembles the configuration from viper and the loaded secrets.
// Keys set in configuration take precedence over secret files.
func loadConfig() types.Config {
	provider := types.Provider(viper.GetString("llm.provider"))
	keyName := secrets.GeminiAPIKey
	if provider == types.ProviderOpenAI {
		keyName = secrets.OpenAIAPIKey
	}

	return types.Config{
		DataDir: viper.GetString("data_dir"),
		Catalog: viper.GetString("catalog"),
		AI: types.AIConfig{
			Provider:   provider,
			Model:      viper.GetString("llm.model"),
			APIKey:     loadedSecrets.Get(keyName, viper.GetString("llm.api_key")),
			BaseURL:    baseURL(provider),
			MaxRetries: viper.GetInt("llm.max_retries"),
			Timeout:    viper.GetDuration("llm.timeout"),
		},
		Pipeline: types.PipelineConfig{
			ApprovalThreshold: viper.GetInt("pipeline.approval_threshold"),
			MaxRevisions:      viper.GetInt("pipeline.max_revisions"),
		},
		Assessment: types.AssessmentConfig{
			MaxAuditCycles: viper.GetInt("assessment.max_audit_cycles"),
		},
		Scheduler: types.SchedulerConfig{
			MinResources:  viper.GetInt("scheduler.min_resources"),
			RefreshWindow: viper.GetDuration("scheduler.refresh_window"),
			BatchSize:     viper.GetInt("scheduler.batch_size"),
			MaxTasks:      viper.GetInt("scheduler.max_tasks"),
			Interval:      viper.GetDuration("scheduler.interval"),
		},
		Server: types.ServerConfig{
			Address:    viper.GetString("server.address"),
			CronSecret: loadedSecrets.Get(secrets.CronSecret, viper.GetString("server.cron_secret")),
			Debug:      viper.GetBool("server.debug"),
		},
	}
}

// baseURL returns llm.base_url, or openai.base_url for the OpenAI provider.
func baseURL(provider types.Provider) string {
	if u := viper.GetString("llm.base_url"); u != "" {
		return u
	}
	if provider == types.ProviderOpenAI {
		return viper.GetString("openai.base_url")
	}
	return ""
}

// app holds the wired components for one command invocation.
type app struct {
	cfg     types.Config
	store   *store.Store
	catalog *catalog.Catalog
	planner *scheduler.Planner

	// Set only when the command needs an LLM.
	backend     llm.Backend
	pipeline    *pipeline.Pipeline
	assessments *assessment.Orchestrator
	runner      *resources.Runner
}

// openApp opens the store and catalog and, when withLLM is set, builds the
// LLM backend and the agents that use it.
func openApp(ctx context.Context, withLLM bool) (*app, error) {
	cfg := loadConfig()

	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		store:   st,
		catalog: cat,
		planner: scheduler.NewPlanner(st, cat.Pairs(), cfg.Scheduler),
	}
	if !withLLM {
		return a, nil
	}

	backend, err := llm.New(ctx, cfg.AI)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("configuring LLM backend: %w", err)
	}
	a.backend = backend
	a.pipeline = pipeline.New(backend, st, pipeline.Options{
		ApprovalThreshold: cfg.Pipeline.ApprovalThreshold,
		MaxRevisions:      cfg.Pipeline.MaxRevisions,
		MaxRetries:        cfg.AI.MaxRetries,
		Logger:            logger,
	})
	a.assessments = assessment.New(backend, st, assessment.Options{
		MaxAuditCycles: cfg.Assessment.MaxAuditCycles,
		MaxRetries:     cfg.AI.MaxRetries,
		Logger:         logger,
	})
	a.runner = resources.NewRunner(a.planner, a.pipeline, st, logger)
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
