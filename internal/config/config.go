package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	Source     SourceConfig     `yaml:"source" mapstructure:"source"`
	GitHub     GitHubConfig     `yaml:"github" mapstructure:"github"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Analysis   AnalysisConfig   `yaml:"analysis" mapstructure:"analysis"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

type SourceConfig struct {
	Type       string `yaml:"type" mapstructure:"type"` // "git", "github"
	MaxCommits int    `yaml:"max_commits" mapstructure:"max_commits"`
	Days       int    `yaml:"days" mapstructure:"days"` // 0 = no time filter
}

type GitHubConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	RateLimit int    `yaml:"rate_limit" mapstructure:"rate_limit"` // Requests per second
	Workers   int    `yaml:"workers" mapstructure:"workers"`
}

type ClassifierConfig struct {
	Backend       string        `yaml:"backend" mapstructure:"backend"` // vader, hugot, openai, gemini, http
	Workers       int           `yaml:"workers" mapstructure:"workers"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RateLimit     float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // remote requests per second
	CleanMessages bool          `yaml:"clean_messages" mapstructure:"clean_messages"`

	HugotModelPath string `yaml:"hugot_model_path" mapstructure:"hugot_model_path"`

	OpenAIKey   string `yaml:"openai_key" mapstructure:"openai_key"`
	OpenAIModel string `yaml:"openai_model" mapstructure:"openai_model"`
	GeminiKey   string `yaml:"gemini_key" mapstructure:"gemini_key"`
	GeminiModel string `yaml:"gemini_model" mapstructure:"gemini_model"`

	EndpointURL   string `yaml:"endpoint_url" mapstructure:"endpoint_url"`
	EndpointToken string `yaml:"endpoint_token" mapstructure:"endpoint_token"`

	UseKeychain bool `yaml:"use_keychain" mapstructure:"use_keychain"`
}

type CacheConfig struct {
	Type     string        `yaml:"type" mapstructure:"type"` // "none", "bolt", "redis"
	Path     string        `yaml:"path" mapstructure:"path"`
	RedisURL string        `yaml:"redis_url" mapstructure:"redis_url"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

type AnalysisConfig struct {
	Window     int     `yaml:"window" mapstructure:"window"`           // moving-average window
	ZoneWindow int     `yaml:"zone_window" mapstructure:"zone_window"` // burnout scan window
	Threshold  float64 `yaml:"threshold" mapstructure:"threshold"`
	MinCommits int     `yaml:"min_commits" mapstructure:"min_commits"`
	TopN       int     `yaml:"top_n" mapstructure:"top_n"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"` // standard, quiet, json
	Export string `yaml:"export" mapstructure:"export"` // csv, jsonl, sql
}

type StorageConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite", "postgres"
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn" mapstructure:"postgres_dsn"`
}

type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Source: SourceConfig{
			Type:       "git",
			MaxCommits: 500,
		},
		GitHub: GitHubConfig{
			RateLimit: 10, // 10 requests per second
			Workers:   8,
		},
		Classifier: ClassifierConfig{
			Backend:     "vader",
			Workers:     runtime.NumCPU(),
			Timeout:     10 * time.Minute,
			RateLimit:   5,
			OpenAIModel: "gpt-4o-mini",
			GeminiModel: "gemini-2.0-flash",
		},
		Cache: CacheConfig{
			Type: "none",
			Path: filepath.Join(homeDir, ".heatmap", "cache.db"),
			TTL:  7 * 24 * time.Hour,
		},
		Analysis: AnalysisConfig{
			Window:     20,
			ZoneWindow: 20,
			Threshold:  0.7,
			MinCommits: 5,
			TopN:       5,
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: "standard",
			Export: "csv",
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			SQLitePath: "commits.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	// .env files first, in order of precedence
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	setDefaults(v, cfg)

	v.SetEnvPrefix("HEATMAP")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".heatmap")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".heatmap"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// setDefaults registers every leaf key so AutomaticEnv can resolve
// HEATMAP_SECTION_KEY style variables.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetEnvKeyReplacer(envKeyReplacer)

	v.SetDefault("source.type", cfg.Source.Type)
	v.SetDefault("source.max_commits", cfg.Source.MaxCommits)
	v.SetDefault("source.days", cfg.Source.Days)

	v.SetDefault("github.rate_limit", cfg.GitHub.RateLimit)
	v.SetDefault("github.workers", cfg.GitHub.Workers)

	v.SetDefault("classifier.backend", cfg.Classifier.Backend)
	v.SetDefault("classifier.workers", cfg.Classifier.Workers)
	v.SetDefault("classifier.timeout", cfg.Classifier.Timeout)
	v.SetDefault("classifier.rate_limit", cfg.Classifier.RateLimit)
	v.SetDefault("classifier.clean_messages", cfg.Classifier.CleanMessages)
	v.SetDefault("classifier.hugot_model_path", cfg.Classifier.HugotModelPath)
	v.SetDefault("classifier.openai_model", cfg.Classifier.OpenAIModel)
	v.SetDefault("classifier.gemini_model", cfg.Classifier.GeminiModel)
	v.SetDefault("classifier.endpoint_url", cfg.Classifier.EndpointURL)

	v.SetDefault("cache.type", cfg.Cache.Type)
	v.SetDefault("cache.path", cfg.Cache.Path)
	v.SetDefault("cache.redis_url", cfg.Cache.RedisURL)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)

	v.SetDefault("analysis.window", cfg.Analysis.Window)
	v.SetDefault("analysis.zone_window", cfg.Analysis.ZoneWindow)
	v.SetDefault("analysis.threshold", cfg.Analysis.Threshold)
	v.SetDefault("analysis.min_commits", cfg.Analysis.MinCommits)
	v.SetDefault("analysis.top_n", cfg.Analysis.TopN)

	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.export", cfg.Output.Export)

	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", cfg.Storage.PostgresDSN)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
}

// loadEnvFiles loads .env files in order of precedence. godotenv never
// overrides variables that are already set.
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // Local overrides (highest precedence)
		".env",
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".heatmap", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		_ = godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies well-known, unprefixed environment variables.
// Precedence for secrets: env var, then config file, then OS keychain.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if rateLimit := os.Getenv("GITHUB_RATE_LIMIT"); rateLimit != "" {
		if rate, err := strconv.Atoi(rateLimit); err == nil {
			cfg.GitHub.RateLimit = rate
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Classifier.OpenAIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.Classifier.OpenAIModel = model
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Classifier.GeminiKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.Classifier.GeminiModel = model
	}
	if token := os.Getenv("HF_API_TOKEN"); token != "" {
		cfg.Classifier.EndpointToken = token
	}

	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.Cache.RedisURL = url
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}

	cfg.Cache.Path = expandPath(cfg.Cache.Path)
	cfg.Storage.SQLitePath = expandPath(cfg.Storage.SQLitePath)
	cfg.Classifier.HugotModelPath = expandPath(cfg.Classifier.HugotModelPath)

	fillFromKeyring(cfg, NewKeyringManager())
}

// fillFromKeyring fills secrets that are still empty from the OS keychain
func fillFromKeyring(cfg *Config, km *KeyringManager) {
	if cfg.GitHub.Token != "" && cfg.Classifier.OpenAIKey != "" && cfg.Classifier.GeminiKey != "" {
		return
	}
	if !km.IsAvailable() {
		return
	}

	if cfg.GitHub.Token == "" {
		if token, err := km.Get(ItemGitHubToken); err == nil && token != "" {
			cfg.GitHub.Token = token
		}
	}
	if cfg.Classifier.OpenAIKey == "" {
		if key, err := km.Get(ItemOpenAIKey); err == nil && key != "" {
			cfg.Classifier.OpenAIKey = key
			cfg.Classifier.UseKeychain = true
		}
	}
	if cfg.Classifier.GeminiKey == "" {
		if key, err := km.Get(ItemGeminiKey); err == nil && key != "" {
			cfg.Classifier.GeminiKey = key
			cfg.Classifier.UseKeychain = true
		}
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Redacted returns a copy with secrets removed, safe to print or save
func (c *Config) Redacted() *Config {
	out := *c
	out.GitHub.Token = ""
	out.Classifier.OpenAIKey = ""
	out.Classifier.GeminiKey = ""
	out.Classifier.EndpointToken = ""
	return &out
}

// Save writes the configuration as YAML. Secrets are never written.
func (c *Config) Save(path string) error {
	data, err := c.Redacted().YAML()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
