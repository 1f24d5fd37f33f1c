// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Provider identifies the hosted LLM used by the generation agents.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Provider selects the backend: gemini or openai.
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gemini-2.5-flash", "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed or malformed
	// responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout bounds a single provider call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// PipelineConfig holds settings for the research, write, verify pipeline.
type PipelineConfig struct {
	// ApprovalThreshold is the minimum verifier score for approval (default 80).
	ApprovalThreshold int `json:"approval_threshold" yaml:"approval_threshold"`

	// MaxRevisions caps the revise and re-verify cycles (default 2).
	MaxRevisions int `json:"max_revisions" yaml:"max_revisions"`
}

// AssessmentConfig holds settings for the assessment agent chain.
type AssessmentConfig struct {
	// MaxAuditCycles caps the critic and editor loop (default 2).
	MaxAuditCycles int `json:"max_audit_cycles" yaml:"max_audit_cycles"`
}

// SchedulerConfig holds settings for resource generation planning.
type SchedulerConfig struct {
	// MinResources is the resource count below which a subcategory is a gap (default 2).
	MinResources int `json:"min_resources" yaml:"min_resources"`

	// RefreshWindow is the staleness window after which content is refreshed (default 48h).
	RefreshWindow time.Duration `json:"refresh_window" yaml:"refresh_window"`

	// BatchSize is the number of refresh tasks per batch page (default 5).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxTasks caps the tasks returned by one planning call (default 10).
	MaxTasks int `json:"max_tasks" yaml:"max_tasks"`

	// Interval is the period of the built-in trigger loop. Zero disables it.
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Address is the listen address (default ":8080").
	Address string `json:"address" yaml:"address"`

	// CronSecret authorizes calls to the cron route. Empty disables the route.
	CronSecret string `json:"cron_secret,omitempty" yaml:"cron_secret,omitempty"`

	// Debug exposes raw error messages in responses.
	Debug bool `json:"debug" yaml:"debug"`
}

// Config groups all settings for the service.
type Config struct {
	DataDir    string           `json:"data_dir" yaml:"data_dir"`
	Catalog    string           `json:"catalog" yaml:"catalog"`
	AI         AIConfig         `json:"llm" yaml:"llm"`
	Pipeline   PipelineConfig   `json:"pipeline" yaml:"pipeline"`
	Assessment AssessmentConfig `json:"assessment" yaml:"assessment"`
	Scheduler  SchedulerConfig  `json:"scheduler" yaml:"scheduler"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}
