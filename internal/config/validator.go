package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/errors"
)

// Accepted enum values
var (
	SourceTypes    = []string{"git", "github"}
	Backends       = []string{"vader", "hugot", "openai", "gemini", "http"}
	CacheTypes     = []string{"none", "bolt", "redis"}
	OutputFormats  = []string{"standard", "quiet", "json"}
	ExportFormats  = []string{"csv", "jsonl", "sql"}
	StorageDrivers = []string{"sqlite", "postgres"}
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}
	if len(vr.Warnings) > 0 {
		sb.WriteString("warnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn))
		}
	}
	return sb.String()
}

// Err converts a failed result to a config error, nil otherwise
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	return errors.ConfigErrorf("%s", strings.TrimSpace(vr.Error()))
}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	c.validateSource(result)
	c.validateClassifier(result)
	c.validateCache(result)
	c.validateAnalysis(result)
	c.validateOutput(result)

	return result
}

func (c *Config) validateSource(result *ValidationResult) {
	if !oneOf(c.Source.Type, SourceTypes) {
		result.AddError("source.type must be one of %v, got %q", SourceTypes, c.Source.Type)
	}
	if c.Source.MaxCommits < 0 {
		result.AddError("source.max_commits must not be negative")
	}
	if c.Source.Days < 0 {
		result.AddError("source.days must not be negative")
	}
	if c.Source.Type == "github" {
		if c.GitHub.Token == "" {
			result.AddWarning("no GitHub token configured; unauthenticated requests are limited to 60/hour")
		}
		if c.GitHub.RateLimit <= 0 {
			result.AddError("github.rate_limit must be positive")
		}
	}
}

func (c *Config) validateClassifier(result *ValidationResult) {
	cc := c.Classifier
	if !oneOf(cc.Backend, Backends) {
		result.AddError("classifier.backend must be one of %v, got %q", Backends, cc.Backend)
		return
	}
	if cc.Workers <= 0 {
		result.AddError("classifier.workers must be positive")
	}
	if cc.Timeout <= 0 {
		result.AddError("classifier.timeout must be positive")
	}

	switch cc.Backend {
	case "hugot":
		if cc.HugotModelPath == "" {
			result.AddError("classifier.hugot_model_path is required for the hugot backend")
		}
	case "openai":
		if cc.OpenAIKey == "" {
			result.AddError("OpenAI API key not configured (set OPENAI_API_KEY or run 'heatmap configure')")
		}
	case "gemini":
		if cc.GeminiKey == "" {
			result.AddError("Gemini API key not configured (set GEMINI_API_KEY or run 'heatmap configure')")
		}
	case "http":
		if cc.EndpointURL == "" {
			result.AddError("classifier.endpoint_url is required for the http backend")
		} else if u, err := url.Parse(cc.EndpointURL); err != nil || u.Scheme == "" || u.Host == "" {
			result.AddError("classifier.endpoint_url is not a valid URL: %q", cc.EndpointURL)
		}
	}

	if cc.Backend != "vader" && cc.Backend != "hugot" && cc.RateLimit <= 0 {
		result.AddError("classifier.rate_limit must be positive for remote backends")
	}
}

func (c *Config) validateCache(result *ValidationResult) {
	if !oneOf(c.Cache.Type, CacheTypes) {
		result.AddError("cache.type must be one of %v, got %q", CacheTypes, c.Cache.Type)
		return
	}
	switch c.Cache.Type {
	case "bolt":
		if c.Cache.Path == "" {
			result.AddError("cache.path is required for the bolt cache")
		}
	case "redis":
		if c.Cache.RedisURL == "" {
			result.AddError("cache.redis_url is required for the redis cache (or set REDIS_URL)")
		}
	}
}

func (c *Config) validateAnalysis(result *ValidationResult) {
	a := c.Analysis
	if a.Window <= 0 {
		result.AddError("analysis.window must be positive")
	}
	if a.ZoneWindow <= 0 {
		result.AddError("analysis.zone_window must be positive")
	}
	if a.Threshold < 0 || a.Threshold > 1 {
		result.AddError("analysis.threshold must be in [0, 1], got %v", a.Threshold)
	}
	if a.MinCommits < 0 {
		result.AddError("analysis.min_commits must not be negative")
	}
	if a.TopN < 0 {
		result.AddError("analysis.top_n must not be negative")
	}
}

func (c *Config) validateOutput(result *ValidationResult) {
	if !oneOf(c.Output.Format, OutputFormats) {
		result.AddError("output.format must be one of %v, got %q", OutputFormats, c.Output.Format)
	}
	if !oneOf(c.Output.Export, ExportFormats) {
		result.AddError("output.export must be one of %v, got %q", ExportFormats, c.Output.Export)
	}
	if c.Output.Export == "sql" {
		if !oneOf(c.Storage.Driver, StorageDrivers) {
			result.AddError("storage.driver must be one of %v, got %q", StorageDrivers, c.Storage.Driver)
		} else if c.Storage.Driver == "postgres" && c.Storage.PostgresDSN == "" {
			result.AddError("storage.postgres_dsn is required for the postgres driver (or set POSTGRES_DSN)")
		}
	}
	if c.Output.Dir == "" {
		result.AddError("output.dir must not be empty")
	}
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
