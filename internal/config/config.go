// Package config loads the keypad host configuration.
//
// Sources, lowest priority first: built-in defaults, a YAML file and
// KEYPAD_* environment variables (KEYPAD_STORE_REDIS_ADDR overrides store.redis.addr).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/persistence/middleware"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "KEYPAD_"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the full host configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	MCP    MCPConfig    `yaml:"mcp"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

type StoreConfig struct {
	Backend    string           `yaml:"backend"`
	Dir        string           `yaml:"dir"`
	Redis      RedisConfig      `yaml:"redis"`
	Encryption EncryptionConfig `yaml:"encryption"`
}

// EncryptionConfig enables at-rest encryption of session snapshots.
// Keys are base64-encoded 32-byte AES keys; an empty Key disables it.
type EncryptionConfig struct {
	Key          string   `yaml:"key"`
	PreviousKeys []string `yaml:"previous_keys"`
}

// Enabled reports whether snapshots are encrypted.
func (e EncryptionConfig) Enabled() bool {
	return e.Key != ""
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Lock     bool          `yaml:"lock"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	MetricsPath     string        `yaml:"metrics_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type MCPConfig struct {
	Transport string `yaml:"transport"` // "stdio" or "sse"
	Port      int    `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:   LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{Backend: BackendMemory, Dir: ".keypad/sessions", Redis: RedisConfig{Addr: "localhost:6379", Prefix: "keypad:session:"}},
		Server: ServerConfig{
			Addr:            ":8080",
			MetricsPath:     "/metrics",
			ShutdownTimeout: 5 * time.Second,
		},
		MCP: MCPConfig{Transport: "stdio", Port: 8081},
	}
}

// Load reads the configuration. An empty path or a missing file yields the
// defaults (plus environment overrides); a malformed file is an error.
func Load(path string) (Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(raw, environ)

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv folds KEYPAD_A_B=v into raw["a"]["b"] = v.
// Sections with underscores in their keys (metrics_path) are matched greedily.
func applyEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		path := strings.Split(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_")
		setPath(raw, resolvePath(path), val)
	}
}

// resolvePath re-joins segments that form a known multi-word key.
func resolvePath(parts []string) []string {
	multi := map[string]bool{"metrics_path": true, "shutdown_timeout": true, "previous_keys": true}
	var out []string
	for i := 0; i < len(parts); i++ {
		if i+1 < len(parts) && multi[parts[i]+"_"+parts[i+1]] {
			out = append(out, parts[i]+"_"+parts[i+1])
			i++
			continue
		}
		out = append(out, parts[i])
	}
	return out
}

func setPath(m map[string]any, path []string, val string) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = val
}

// Validate checks enumerations and required fields.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid config: log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New("invalid config: store.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid config: unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Encryption.Enabled() {
		for _, k := range append([]string{c.Store.Encryption.Key}, c.Store.Encryption.PreviousKeys...) {
			if _, err := middleware.ParseKey(k); err != nil {
				return fmt.Errorf("invalid config: store.encryption: %w", err)
			}
		}
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("invalid config: mcp.transport must be stdio or sse, got %q", c.MCP.Transport)
	}
	return nil
}
