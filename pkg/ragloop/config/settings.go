package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

// Default pipeline bounds and tuning values.
const (
	DefaultMaxRewrites         = 3
	DefaultMaxRegenerations    = 3
	DefaultMaxSteps            = 50
	DefaultRetrievalK          = 4
	DefaultWebSearchThreshold  = 0.5
	DefaultWebSearchMaxResults = 3
	DefaultStepTimeout         = 60 * time.Second
	DefaultGradeConcurrency    = 4
)

// Settings is the typed configuration surface of the pipeline. A Settings
// value is passed explicitly at pipeline construction; nothing reads
// configuration from process-global state at run time.
type Settings struct {
	// MaxRewrites bounds the query rewrite loop.
	MaxRewrites int

	// MaxRegenerations bounds consecutive regenerations after groundedness
	// failures. A rewrite resets the regeneration budget.
	MaxRegenerations int

	// MaxSteps is the global step ceiling, the last-resort safety net
	// independent of the semantic counters. It must exceed the worst-case
	// combined step count of both bounded loops.
	MaxSteps int

	// RetrievalK is the number of passages requested per retrieval.
	RetrievalK int

	// WebSearchThreshold is the relevance ratio below which (but above
	// zero) grading routes to web search instead of generation.
	WebSearchThreshold float64

	// WebSearchMaxResults caps results requested from the search provider.
	WebSearchMaxResults int

	// StepTimeout bounds each collaborator call. Zero disables the
	// per-call timeout.
	StepTimeout time.Duration

	// GradeConcurrency bounds the worker pool for per-passage relevance
	// grading.
	GradeConcurrency int

	// GenerationModel and GradingModel identify the LLM used by the
	// bundled agents. Empty values defer to the agent defaults.
	GenerationModel string
	GradingModel    string
}

// Defaults returns the default settings.
func Defaults() Settings {
	return Settings{
		MaxRewrites:         DefaultMaxRewrites,
		MaxRegenerations:    DefaultMaxRegenerations,
		MaxSteps:            DefaultMaxSteps,
		RetrievalK:          DefaultRetrievalK,
		WebSearchThreshold:  DefaultWebSearchThreshold,
		WebSearchMaxResults: DefaultWebSearchMaxResults,
		StepTimeout:         DefaultStepTimeout,
		GradeConcurrency:    DefaultGradeConcurrency,
	}
}

// Validate checks the settings for values that would break the pipeline's
// termination guarantees.
func (s Settings) Validate() error {
	if s.MaxRewrites < 0 {
		return fmt.Errorf("max_rewrites must be >= 0, got %d", s.MaxRewrites)
	}
	if s.MaxRegenerations < 0 {
		return fmt.Errorf("max_regenerations must be >= 0, got %d", s.MaxRegenerations)
	}
	if s.MaxSteps < 1 {
		return fmt.Errorf("max_steps must be >= 1, got %d", s.MaxSteps)
	}
	if s.RetrievalK < 1 {
		return fmt.Errorf("retrieval_k must be >= 1, got %d", s.RetrievalK)
	}
	if s.WebSearchThreshold <= 0 || s.WebSearchThreshold > 1 {
		return fmt.Errorf("web_search_threshold must be in (0, 1], got %g", s.WebSearchThreshold)
	}
	return nil
}

// SettingsFrom builds Settings from a loaded Config, falling back to the
// defaults for missing keys.
func SettingsFrom(c Config) Settings {
	d := Defaults()
	return Settings{
		MaxRewrites:         c.Int("max_rewrites", d.MaxRewrites),
		MaxRegenerations:    c.Int("max_regenerations", d.MaxRegenerations),
		MaxSteps:            c.Int("max_steps", d.MaxSteps),
		RetrievalK:          c.Int("retrieval_k", d.RetrievalK),
		WebSearchThreshold:  c.Float("web_search_threshold", d.WebSearchThreshold),
		WebSearchMaxResults: c.Int("web_search_max_results", d.WebSearchMaxResults),
		StepTimeout:         c.Duration("step_timeout", d.StepTimeout),
		GradeConcurrency:    c.Int("grade_concurrency", d.GradeConcurrency),
		GenerationModel:     c.String("generation_model", d.GenerationModel),
		GradingModel:        c.String("grading_model", d.GradingModel),
	}
}

// LoadEnv loads environment variables from the given .env files, if they
// exist. Missing files are ignored so deployments without a .env file work
// unchanged.
func LoadEnv(files ...string) {
	_ = godotenv.Load(files...)
}
