package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "git", cfg.Source.Type)
	assert.Equal(t, 500, cfg.Source.MaxCommits)
	assert.Equal(t, "vader", cfg.Classifier.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Classifier.Timeout)
	assert.Equal(t, 20, cfg.Analysis.Window)
	assert.Equal(t, 20, cfg.Analysis.ZoneWindow)
	assert.Equal(t, 0.7, cfg.Analysis.Threshold)
	assert.Equal(t, 5, cfg.Analysis.MinCommits)
	assert.Equal(t, "output", cfg.Output.Dir)

	result := cfg.Validate()
	assert.False(t, result.HasErrors(), result.Error())
	assert.NoError(t, result.Err())
}

func TestLoad_FileAndEnv(t *testing.T) {
	keyring.MockInit()

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
source:
  max_commits: 120
classifier:
  backend: openai
  timeout: 90s
analysis:
  threshold: 0.6
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0644))

	t.Setenv("HEATMAP_ANALYSIS_WINDOW", "30")
	t.Setenv("OPENAI_API_KEY", "sk-test-from-env-1234")
	t.Setenv("GITHUB_TOKEN", "ghp_env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Source.MaxCommits)
	assert.Equal(t, "openai", cfg.Classifier.Backend)
	assert.Equal(t, 90*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, 0.6, cfg.Analysis.Threshold)
	assert.Equal(t, 30, cfg.Analysis.Window)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "sk-test-from-env-1234", cfg.Classifier.OpenAIKey)
	assert.Equal(t, "ghp_env", cfg.GitHub.Token)

	// untouched sections keep their defaults
	assert.Equal(t, "git", cfg.Source.Type)
	assert.Equal(t, 5, cfg.Analysis.MinCommits)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFillFromKeyring(t *testing.T) {
	keyring.MockInit()
	km := NewKeyringManager()
	require.NoError(t, km.Set(ItemGeminiKey, "gemini-secret-key-0001"))
	defer km.Delete(ItemGeminiKey)

	cfg := Default()
	cfg.Classifier.OpenAIKey = "from-config"
	fillFromKeyring(cfg, km)

	assert.Equal(t, "gemini-secret-key-0001", cfg.Classifier.GeminiKey)
	assert.Equal(t, "from-config", cfg.Classifier.OpenAIKey)
	assert.True(t, cfg.Classifier.UseKeychain)
	assert.Empty(t, cfg.GitHub.Token)
}

func TestKeyringManager(t *testing.T) {
	keyring.MockInit()
	km := NewKeyringManager()
	require.True(t, km.IsAvailable())

	got, err := km.Get(ItemOpenAIKey)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Error(t, km.Set(ItemOpenAIKey, ""))
	require.NoError(t, km.Set(ItemOpenAIKey, "sk-abc"))

	got, err = km.Get(ItemOpenAIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-abc", got)

	require.NoError(t, km.Delete(ItemOpenAIKey))
	require.NoError(t, km.Delete(ItemOpenAIKey))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", MaskSecret(""))
	assert.Equal(t, "***", MaskSecret("short"))
	assert.Equal(t, "sk-proj...wxyz", MaskSecret("sk-proj-abcdefghwxyz"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errors int
	}{
		{"defaults", func(*Config) {}, 0},
		{"bad backend", func(c *Config) { c.Classifier.Backend = "bert" }, 1},
		{"openai without key", func(c *Config) { c.Classifier.Backend = "openai"; c.Classifier.OpenAIKey = "" }, 1},
		{"http bad url", func(c *Config) { c.Classifier.Backend = "http"; c.Classifier.EndpointURL = "localhost" }, 1},
		{"threshold out of range", func(c *Config) { c.Analysis.Threshold = 1.5 }, 1},
		{"negative threshold", func(c *Config) { c.Analysis.Threshold = -0.1 }, 1},
		{"negative min commits", func(c *Config) { c.Analysis.MinCommits = -1 }, 1},
		{"explicit zeros", func(c *Config) {
			c.Analysis.Threshold = 0
			c.Analysis.MinCommits = 0
			c.Analysis.TopN = 0
		}, 0},
		{"several problems", func(c *Config) {
			c.Analysis.Window = 0
			c.Output.Format = "xml"
			c.Cache.Type = "redis"
		}, 3},
		{"postgres without dsn", func(c *Config) {
			c.Output.Export = "sql"
			c.Storage.Driver = "postgres"
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			result := cfg.Validate()
			assert.Len(t, result.Errors, tt.errors, result.Error())
			if tt.errors > 0 {
				assert.Error(t, result.Err())
			}
		})
	}
}

func TestValidate_GitHubTokenWarning(t *testing.T) {
	cfg := Default()
	cfg.Source.Type = "github"
	result := cfg.Validate()
	assert.False(t, result.HasErrors())
	assert.Len(t, result.Warnings, 1)
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Classifier.Backend = "gemini"
	cfg.Classifier.GeminiKey = "secret"
	cfg.Analysis.TopN = 8

	data, err := cfg.Redacted().YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")

	parsed := Default()
	require.NoError(t, yaml.Unmarshal(data, parsed))
	assert.Equal(t, "gemini", parsed.Classifier.Backend)
	assert.Equal(t, 8, parsed.Analysis.TopN)
	assert.Equal(t, cfg.Classifier.Timeout, parsed.Classifier.Timeout)
	assert.Empty(t, parsed.Classifier.GeminiKey)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir", "config.yaml")
	cfg := Default()
	cfg.GitHub.Token = "ghp_secret"
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ghp_secret")
	assert.Contains(t, string(data), "max_commits: 500")
}
