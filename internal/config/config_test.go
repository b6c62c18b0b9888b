package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LLM_PROVIDER", "LLM_MODEL", "QUESTION_COUNT", "MAX_TEXT_CHARS",
		"GENERATION_TIMEOUT", "GENERATION_RETRIES", "ALLOW_CLIENT_QUESTIONS", "LOG_LEVEL", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, "gemini-flash-lite-latest", cfg.LLMModel)
	assert.Equal(t, 10, cfg.QuestionCount)
	assert.Equal(t, 30000, cfg.MaxTextChars)
	assert.Equal(t, 90*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 1, cfg.GenerationRetries)
	assert.True(t, cfg.AllowClientQuestions)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("MAX_TEXT_CHARS", "0")
	t.Setenv("GENERATION_TIMEOUT", "5s")
	t.Setenv("ALLOW_CLIENT_QUESTIONS", "no")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "qwen3:1.7b", cfg.LLMModel)
	assert.Equal(t, 0, cfg.MaxTextChars)
	assert.Equal(t, 5*time.Second, cfg.GenerationTimeout)
	assert.False(t, cfg.AllowClientQuestions)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	base := Config{
		LLMProvider:       ProviderGemini,
		GeminiAPIKey:      "key",
		QuestionCount:     10,
		GenerationTimeout: time.Second,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing gemini key", func(c *Config) { c.GeminiAPIKey = "" }},
		{"unknown provider", func(c *Config) { c.LLMProvider = "bard" }},
		{"openai without base url", func(c *Config) { c.LLMProvider = ProviderOpenAI; c.LLMBaseURL = "" }},
		{"zero questions", func(c *Config) { c.QuestionCount = 0 }},
		{"negative cap", func(c *Config) { c.MaxTextChars = -1 }},
		{"zero timeout", func(c *Config) { c.GenerationTimeout = 0 }},
		{"negative retries", func(c *Config) { c.GenerationRetries = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadReportsEnvFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.False(t, Load().EnvFileLoaded)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PDFQUIZ_TEST_MARKER=1\n"), 0o600))
	t.Setenv("PDFQUIZ_TEST_MARKER", "")
	assert.True(t, Load().EnvFileLoaded)
}
