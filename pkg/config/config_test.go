package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
server:
  listen: ":9090"
  timeout: 45s
  base_url: https://desk.example.com
remote:
  url: http://store:8000
  timeout: 10s
generator:
  webhook_url: https://hooks.example.com/generate
publish:
  steps: [100ms, 200ms]
  settle: 1s
schedule:
  times: ["09:00", "18:00"]
  default_mode: asset
  languages: [de, en]
journal:
  keep: 50
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "https://desk.example.com", cfg.Server.BaseURL)
		assert.Equal(t, "http://store:8000", cfg.Remote.URL)
		assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
		assert.Equal(t, "https://hooks.example.com/generate", cfg.Generator.WebhookURL)
		assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, cfg.Publish.Steps)
		assert.Equal(t, time.Second, cfg.Publish.Settle)
		assert.Equal(t, []string{"09:00", "18:00"}, cfg.Schedule.Times)
		assert.Equal(t, "asset", cfg.Schedule.DefaultMode)
		assert.Equal(t, "de", cfg.DefaultLanguage())
		assert.Equal(t, 50, cfg.Journal.Keep)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "remote:\n  url: http://localhost:8000\n"))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "AI News", cfg.Server.PageTitle)
		assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)
		assert.Equal(t, 30*time.Second, cfg.Generator.Timeout)
		assert.Empty(t, cfg.Generator.WebhookURL)
		assert.Equal(t, []time.Duration{500 * time.Millisecond, 700 * time.Millisecond, 600 * time.Millisecond,
			500 * time.Millisecond}, cfg.Publish.Steps)
		assert.Equal(t, 800*time.Millisecond, cfg.Publish.Settle)
		assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, cfg.Schedule.Days)
		assert.Equal(t, []string{"06:00", "08:00", "10:00", "12:00", "14:00", "16:00", "18:00", "20:00", "22:00"},
			cfg.Schedule.Times)
		assert.Equal(t, "CET", cfg.Schedule.TimezoneLabel)
		assert.Equal(t, []string{"high", "medium", "low"}, cfg.Schedule.Impacts)
		assert.Equal(t, []string{"high"}, cfg.Schedule.DefaultImpacts)
		assert.Equal(t, "calendar", cfg.Schedule.DefaultMode)
		assert.Equal(t, "en", cfg.DefaultLanguage())
		assert.Equal(t, 2*time.Second, cfg.Edit.SavedIndicator)
		assert.Equal(t, 1000, cfg.Journal.Keep)
		assert.Contains(t, cfg.Journal.DSN, "newsdesk.db")
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("NEWSDESK_TEST_STORE", "http://store.internal:9000")
		cfg, err := Load(writeConfig(t, "remote:\n  url: ${NEWSDESK_TEST_STORE}\n"))
		require.NoError(t, err)
		assert.Equal(t, "http://store.internal:9000", cfg.Remote.URL)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [broken"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestLoad_Validation(t *testing.T) {
	tbl := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "no remote", content: "server:\n  listen: :8080\n", errMsg: "remote.url is required"},
		{name: "bad remote scheme", content: "remote:\n  url: ftp://store\n", errMsg: "unsupported scheme"},
		{name: "remote without host", content: "remote:\n  url: http://\n", errMsg: "missing host"},
		{name: "bad webhook", content: "remote:\n  url: http://s\ngenerator:\n  webhook_url: hooks\n", errMsg: "generator.webhook_url"},
		{name: "short server timeout", content: "remote:\n  url: http://s\nserver:\n  timeout: 10ms\n", errMsg: "server timeout"},
		{name: "negative step", content: "remote:\n  url: http://s\npublish:\n  steps: [-1s]\n", errMsg: "publish.steps"},
		{name: "bad mode", content: "remote:\n  url: http://s\nschedule:\n  default_mode: weekly\n", errMsg: "schedule.default_mode"},
		{name: "unknown default impact", content: "remote:\n  url: http://s\nschedule:\n  default_impacts: [extreme]\n",
			errMsg: "unknown impact"},
		{name: "negative keep", content: "remote:\n  url: http://s\njournal:\n  keep: -5\n", errMsg: "journal.keep"},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg, err := Default("http://localhost:8000")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "http://localhost:8000", cfg.Remote.URL)

	_, err = Default("")
	require.Error(t, err)
}
