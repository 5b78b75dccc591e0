package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pubgo/geminiquick/configs"
	"github.com/pubgo/geminiquick/runner"
	"github.com/pubgo/geminiquick/utils/installer"
	"github.com/pubgo/geminiquick/utils/llmbackend"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, configs.GetDefaultConfig(), 0o644))

	cfg := parseConfig(p)
	require.NotNil(t, cfg.LLM)
	assert.Equal(t, llmbackend.Gemini, cfg.LLM.Backend)
	assert.Empty(t, cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "env-key", llmbackend.ResolveAPIKey(cfg.LLM.Gemini.APIKey))
	assert.Equal(t, 60*time.Second, cfg.LLM.Gemini.Timeout)

	req := cfg.Quickstart.Request()
	assert.Equal(t, runner.DefaultModel, req.Model)
	assert.Equal(t, runner.DefaultPrompt, req.Prompt)
	assert.Nil(t, req.Temperature)

	assert.IsType(t, installer.Noop{}, installer.New(cfg.Install))
}

func TestDefaultConfigWithoutKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, configs.GetDefaultConfig(), 0o644))

	cfg := parseConfig(p)
	assert.Empty(t, llmbackend.ResolveAPIKey(cfg.LLM.Gemini.APIKey))
}

func TestBackupConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	old := []byte("version:\n  name: v0\nllm:\n  gemini:\n    api_key: stored-key\n")
	require.NoError(t, os.WriteFile(p, old, 0o644))

	backup, err := backupConfig(p)
	require.NoError(t, err)
	assert.Equal(t, p+".bak", backup)

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, old, data)

	_, err = backupConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDebugEnabled(t *testing.T) {
	t.Setenv(debugEnv, "true")
	assert.True(t, debugEnabled(false))

	t.Setenv(debugEnv, "not-a-bool")
	assert.True(t, debugEnabled(true))
}

func TestWriteDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfgPath := filepath.Join(dir, "config.yaml")
	envPath := filepath.Join(dir, "env.yaml")

	writeDefaults(cfgPath, envPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, configs.GetDefaultConfig(), data)

	data, err = os.ReadFile(envPath)
	require.NoError(t, err)
	assert.Equal(t, configs.GetEnvConfig(), data)
}
