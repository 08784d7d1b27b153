package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.Equal(t, int64(10), cfg.Engine.Seed)
	assert.Equal(t, 4096, cfg.Engine.ContextWindow)
	assert.Equal(t, 3584, cfg.Engine.MaxReasoningTokens)
	assert.Equal(t, ModeSinglePhrase, cfg.Run.Mode)
	assert.Equal(t, "可口可樂公司", cfg.Run.Phrase)
	assert.Equal(t, 1, cfg.Server.Concurrency)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
chat:
  provider: openai
  base_url: http://localhost:8080/v1/
engine:
  seed: 42
run:
  mode: batch-file
  workers: 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Debug, cfg.LogLevel)
	assert.Equal(t, ProviderOpenAI, cfg.Chat.Provider)
	assert.Equal(t, "http://localhost:8080/v1/", cfg.Chat.BaseURL)
	assert.Equal(t, int64(42), cfg.Engine.Seed)
	assert.Equal(t, ModeBatchFile, cfg.Run.Mode)
	assert.Equal(t, 4, cfg.Run.Workers)
	// untouched keys keep their defaults
	assert.Equal(t, 4096, cfg.Engine.ContextWindow)
	assert.Equal(t, 600, cfg.Chat.TimeoutSeconds)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("chat:\n  api_key: from-file\n"), 0o644))
	t.Setenv("APP_CHAT__API_KEY", "from-env")
	t.Setenv("APP_ENGINE__CONTEXT_WINDOW", "8192")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Chat.APIKey)
	assert.Equal(t, 8192, cfg.Engine.ContextWindow)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("chat: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(Default()))

	cfg := Default()
	cfg.Chat.Provider = "bard"
	cfg.Run.Workers = 0
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Chat.Provider")
	assert.Contains(t, err.Error(), "Config.Run.Workers")
}

func TestTags(t *testing.T) {
	assert.Equal(t, "deepseek-r1_1p5b", ModelTag("deepseek-r1:1.5b"))
	assert.Equal(t, "樂_deepseek-r1_7b", RunTag("樂", "deepseek-r1:7b"))
	assert.Equal(t, "luna_樂.txt", InputFileName("樂"))
	assert.Equal(t, "results_luna_樂_qwen2p5_7b.txt", OutputFileName("樂", "qwen2.5:7b"))
}
