package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "postq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("X_API_KEY", "env-key")
	t.Setenv("X_API_KEY_SECRET", "")
	t.Setenv("X_ACCESS_TOKEN", "")
	t.Setenv("X_ACCESS_TOKEN_SECRET", "")

	cfg, err := LoadConfig(writeConfig(t, "logger:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "queue.json", cfg.Paths.Queue)
	assert.Equal(t, "content/templates.json", cfg.Paths.Templates)
	assert.Equal(t, "content/lexicon.json", cfg.Paths.Lexicon)
	assert.Equal(t, "Asia/Tokyo", cfg.Schedule.Timezone)
	assert.Equal(t, 30, cfg.Schedule.Days)
	assert.Equal(t, 50, cfg.Dispatch.FingerprintWindow)
	assert.Equal(t, 14, cfg.Dispatch.HookWindow)
	assert.Equal(t, 260, cfg.Validation.MaxTextLength)
	assert.Contains(t, cfg.Validation.ForbiddenWords, "保証")
	assert.Equal(t, "https://api.x.com", cfg.Publisher.X.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Publisher.X.Timeout)
	assert.Equal(t, "env-key", cfg.Publisher.X.APIKey)
	assert.Empty(t, cfg.Publisher.X.AccessToken)
	assert.Equal(t, 5334, cfg.Server.Port)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("X_API_KEY", "env-key")

	cfg, err := LoadConfig(writeConfig(t, `
paths:
  queue: data/queue.json
schedule:
  timezone: UTC
  days: 7
validation:
  forbidden_words: ["spam"]
  pillars: ["tax"]
dispatch:
  fingerprint_window: 10
  hook_window: 3
publisher:
  x:
    api_key: file-key
    timeout: 5s
`))
	require.NoError(t, err)

	assert.Equal(t, "data/queue.json", cfg.Paths.Queue)
	assert.Equal(t, 7, cfg.Schedule.Days)
	assert.Equal(t, []string{"spam"}, cfg.Validation.ForbiddenWords)
	assert.Equal(t, []string{"tax"}, cfg.Validation.Pillars)
	assert.Equal(t, []string{"17", "19"}, cfg.Validation.Slots)
	assert.Equal(t, 10, cfg.Dispatch.FingerprintWindow)
	assert.Equal(t, 3, cfg.Dispatch.HookWindow)
	assert.Equal(t, "file-key", cfg.Publisher.X.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Publisher.X.Timeout)

	loc, err := cfg.Schedule.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
