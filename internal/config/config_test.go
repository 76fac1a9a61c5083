package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keypad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
store:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
    ttl: 1h
    lock: true
server:
  addr: ":9090"
`)
	cfg, err := load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "untouched keys keep their default")
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Store.Redis.TTL)
	assert.True(t, cfg.Store.Redis.Lock)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: file\n")
	cfg, err := load(path, []string{
		"KEYPAD_STORE_BACKEND=memory",
		"KEYPAD_STORE_REDIS_DB=3",
		"KEYPAD_SERVER_METRICS_PATH=/prom",
		"KEYPAD_SERVER_SHUTDOWN_TIMEOUT=10s",
		"KEYPAD_MCP_PORT=9999",
		"OTHER_VAR=ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, "/prom", cfg.Server.MetricsPath)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 9999, cfg.MCP.Port)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "store: [",
		"bad backend":   "store:\n  backend: sqlite\n",
		"bad level":     "log:\n  level: loud\n",
		"unknown key":   "colour: blue\n",
		"bad transport": "mcp:\n  transport: carrier-pigeon\n",
		"short key":     "store:\n  encryption:\n    key: c2hvcnQ=\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(writeConfig(t, body), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoad_Encryption(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	old := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{2}, 32))

	cfg, err := load("", []string{
		"KEYPAD_STORE_ENCRYPTION_KEY=" + key,
		"KEYPAD_STORE_ENCRYPTION_PREVIOUS_KEYS=" + old,
	})
	require.NoError(t, err)
	assert.True(t, cfg.Store.Encryption.Enabled())
	assert.Equal(t, key, cfg.Store.Encryption.Key)
	assert.Equal(t, []string{old}, cfg.Store.Encryption.PreviousKeys)

	assert.False(t, Default().Store.Encryption.Enabled())
}
