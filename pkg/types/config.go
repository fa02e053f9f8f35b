// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// OracleBackend identifies the text-generation backend.
type OracleBackend string

const (
	BackendOllama    OracleBackend = "ollama"
	BackendAnthropic OracleBackend = "anthropic"
)

// OracleConfig holds shared settings for components that call the
// generation oracle.
type OracleConfig struct {
	// Backend selects the oracle: ollama (local) or anthropic (API).
	Backend OracleBackend `json:"backend" yaml:"backend"`

	// Model is the default model identifier (e.g. "llama3.1:8b").
	Model string `json:"model" yaml:"model"`

	// AnalysisModel overrides Model for the curation-analysis sub-task.
	AnalysisModel string `json:"analysis_model,omitempty" yaml:"analysis_model,omitempty"`

	// BaseURL is the Ollama server address (default "http://localhost:11434").
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey authenticates against the Anthropic API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxAttempts bounds oracle invocations per document (default 3).
	// Timeouts and parse failures each consume one attempt.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Timeout bounds each individual oracle call (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ResolvedModel returns the model to use for the analysis sub-task.
func (c OracleConfig) ResolvedModel() string {
	if c.AnalysisModel != "" {
		return c.AnalysisModel
	}
	return c.Model
}

// DimensionSpec configures one quality dimension.
type DimensionSpec struct {
	// Name is the canonical dimension name (see record.go constants).
	Name string `json:"name" yaml:"name"`

	// Weight is the dimension's share of the informational composite
	// score. Weights need not sum to 1; they are normalized at use.
	Weight float64 `json:"weight" yaml:"weight"`

	// Required marks dimensions whose absence forces a reject verdict.
	Required bool `json:"required" yaml:"required"`
}

// DefaultDimensions returns the standard ten-dimension configuration.
func DefaultDimensions() []DimensionSpec {
	return []DimensionSpec{
		{Name: DimOverall, Weight: 0.25, Required: true},
		{Name: DimRelevance, Weight: 0.20, Required: true},
		{Name: DimCompleteness, Weight: 0.10},
		{Name: DimCredibility, Weight: 0.10},
		{Name: DimClarity, Weight: 0.05},
		{Name: DimProfessionalWriting, Weight: 0.10, Required: true},
		{Name: DimAnalyticalDepth, Weight: 0.05},
		{Name: DimEvidenceQuality, Weight: 0.05},
		{Name: DimCriticalThinking, Weight: 0.05},
		{Name: DimPublicationReadiness, Weight: 0.05},
	}
}

// ThresholdConfig holds the independent acceptance gates. A verdict of
// accept requires every gate to pass; there is no blended passing score.
type ThresholdConfig struct {
	// Quality is the minimum overall_quality score.
	Quality float64 `json:"quality_threshold" yaml:"quality_threshold"`

	// Relevance is the minimum relevance score.
	Relevance float64 `json:"relevance_threshold" yaml:"relevance_threshold"`

	// ProfessionalWriting is the minimum professional_writing_quality score.
	ProfessionalWriting float64 `json:"professional_writing_threshold" yaml:"professional_writing_threshold"`

	// MinContentLength is the minimum document body length in
	// characters. Shorter documents are rejected before any oracle call.
	MinContentLength int `json:"min_content_length" yaml:"min_content_length"`
}

// DefaultThresholds returns the standard acceptance gates.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		Quality:             0.65,
		Relevance:           0.65,
		ProfessionalWriting: 0.65,
		MinContentLength:    200,
	}
}

// Validate reports the first out-of-range threshold. Called at load
// time; a bad threshold is fatal to the whole run.
func (c ThresholdConfig) Validate() error {
	for _, t := range []struct {
		name  string
		value float64
	}{
		{"quality_threshold", c.Quality},
		{"relevance_threshold", c.Relevance},
		{"professional_writing_threshold", c.ProfessionalWriting},
	} {
		if t.value < 0.0 || t.value > 1.0 {
			return fmt.Errorf("%s %.3f out of range [0,1]", t.name, t.value)
		}
	}
	if c.MinContentLength < 0 {
		return fmt.Errorf("min_content_length %d is negative", c.MinContentLength)
	}
	return nil
}

// AnalysisConfig groups everything the orchestrator needs for one run.
type AnalysisConfig struct {
	OracleConfig `yaml:",inline"`

	// Thresholds are the acceptance gates.
	Thresholds ThresholdConfig `json:"thresholds" yaml:"thresholds"`

	// Dimensions enumerates the configured score dimensions. Empty
	// falls back to DefaultDimensions.
	Dimensions []DimensionSpec `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`

	// MatchThreshold is the minimum taxonomy match similarity (default 0.6).
	MatchThreshold float64 `json:"match_threshold" yaml:"match_threshold"`
}

// BatchConfig holds settings for batch runs over a note set.
type BatchConfig struct {
	// Concurrency bounds simultaneous analyze calls (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// SampleSize selects a random subset for trial runs. Zero analyzes
	// the full set.
	SampleSize int `json:"sample_size,omitempty" yaml:"sample_size,omitempty"`

	// SampleSeed makes sampling reproducible given a fixed value.
	SampleSeed int64 `json:"sample_seed,omitempty" yaml:"sample_seed,omitempty"`
}

// VaultConfig holds filesystem locations.
type VaultConfig struct {
	// VaultDir is the Obsidian vault to curate.
	VaultDir string `json:"vault_dir" yaml:"vault_dir"`

	// CuratedDir is where accepted notes are organized by theme.
	CuratedDir string `json:"curated_dir" yaml:"curated_dir"`

	// ResultsDir holds the curation results database and exports.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// TaxonomyPath is the taxonomy YAML file.
	TaxonomyPath string `json:"taxonomy_path" yaml:"taxonomy_path"`
}

// CuratorConfig groups all configuration for the curator.
type CuratorConfig struct {
	Vault    VaultConfig    `json:"vault" yaml:"vault"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Batch    BatchConfig    `json:"batch" yaml:"batch"`
}
