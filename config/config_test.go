package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LoadCreatesDefaultFile(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := NewManager(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "KR", cfg.YouTubeRegionCode)
	assert.Equal(t, "https://www.googleapis.com/youtube/v3", cfg.YouTubeBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPClientTimeout)
	assert.Empty(t, cfg.CronSchedule)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config should be written")
}

func TestManager_LoadParsesFile(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
youtube:
  api_key: file-key
  region_code: US
gemini:
  model: gemini-2.5-flash
cron:
  schedule: "*/10 * * * *"
performance:
  http_client_timeout: 5s
logging:
  level: debug
`), 0600))

	cfg, err := NewManager(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "file-key", cfg.YouTubeAPIKey)
	assert.Equal(t, "US", cfg.YouTubeRegionCode)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "*/10 * * * *", cfg.CronSchedule)
	assert.Equal(t, 5*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "sqlite3:./data.db", cfg.DatabaseURL)
}

func TestManager_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", " env-yt ")
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("youtube:\n  api_key: file-key\n"), 0600))

	cfg, err := NewManager(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "env-yt", cfg.YouTubeAPIKey)
	assert.Equal(t, "env-gemini", cfg.GeminiAPIKey)
}

func TestManager_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0600))

	_, err := NewManager(path).Load()
	assert.Error(t, err)
}

func TestManager_UpdatePersists(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)
	_, err := m.Load()
	require.NoError(t, err)

	require.NoError(t, m.Update(map[string]interface{}{
		"youtube.region_code":             "JP",
		"performance.http_client_timeout": "12s",
		"performance.max_idle_conns":      7,
	}))
	assert.Equal(t, "JP", m.Get().YouTubeRegionCode)

	reloaded, err := NewManager(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "JP", reloaded.YouTubeRegionCode)
	assert.Equal(t, 12*time.Second, reloaded.HTTPClientTimeout)
	assert.Equal(t, 7, reloaded.MaxIdleConns)
}

func TestManager_UpdateRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)

	assert.Error(t, m.Update(map[string]interface{}{"server.port": "1"}), "not loaded yet")

	_, err := m.Load()
	require.NoError(t, err)

	assert.Error(t, m.Update(map[string]interface{}{"no.such.key": "x"}))
	assert.Error(t, m.Update(map[string]interface{}{"server.port": 8080}))
	assert.Error(t, m.Update(map[string]interface{}{"performance.http_client_timeout": "soon"}))
	assert.Equal(t, "8080", m.Get().ServerPort, "failed update leaves config untouched")
}

func TestManager_UpdateKeepsEnvSecretsOutOfFile(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "env-only-secret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("youtube:\n  api_key: file-key\n"), 0600))

	m := NewManager(path)
	_, err := m.Load()
	require.NoError(t, err)

	require.NoError(t, m.Update(map[string]interface{}{"server.port": "9191"}))
	assert.Equal(t, "env-only-secret", m.Get().GeminiAPIKey, "env still wins in memory")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "env-only-secret")
	assert.Contains(t, string(data), "file-key", "file secrets survive a save")
	assert.Contains(t, string(data), "9191")
}

func TestManager_UpdateStoresExplicitSecret(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)
	_, err := m.Load()
	require.NoError(t, err)

	require.NoError(t, m.Update(map[string]interface{}{"gemini.api_key": "typed-key"}))

	reloaded, err := NewManager(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "typed-key", reloaded.GeminiAPIKey)
}

func TestManager_UpdateParsesStringNumbers(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	m := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	_, err := m.Load()
	require.NoError(t, err)

	require.NoError(t, m.Update(map[string]interface{}{
		"performance.max_conns_per_host": "12",
		"youtube.requests_per_second":    "2.5",
	}))
	assert.Equal(t, 12, m.Get().MaxConnsPerHost)
	assert.Equal(t, 2.5, m.Get().YouTubeRequestsPerSecond)

	assert.Error(t, m.Update(map[string]interface{}{"performance.max_idle_conns": "many"}))
	assert.Error(t, m.Update(map[string]interface{}{"youtube.requests_per_second": "fast"}))
}

func TestManager_WatchReloadsOnWrite(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := NewManager(path)
	_, err := m.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	changes := make(chan *Config, 16)
	go func() {
		defer close(done)
		_ = m.Watch(ctx, func(cfg *Config) { changes <- cfg }, nil)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("youtube:\n  region_code: US\n"), 0600)
		select {
		case cfg := <-changes:
			return cfg.YouTubeRegionCode == "US"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)

	assert.Equal(t, "US", m.Get().YouTubeRegionCode)
}
