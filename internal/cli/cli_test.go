package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/keypad/internal/config"
	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/adapters/memory"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	tests := []struct {
		line    string
		want    string
		wantErr bool
	}{
		{"12+3=", "15", false},
		{"2 * 2.5 =", "5", false},
		{"7", "7", false},
		{"1/0=", domain.ErrorText, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var out bytes.Buffer
			err := Eval(context.Background(), &out, tt.line, false)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want+"\n", out.String())
		})
	}
}

func TestEval_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Eval(context.Background(), &out, "9 neg + 4 =", true))

	var resp runner.RichResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "-5", resp.Display.Result)
	assert.Equal(t, "-9", resp.State.Left)
}

func TestEval_InvalidKeys(t *testing.T) {
	err := Eval(context.Background(), io.Discard, "1 % 2", false)
	assert.ErrorIs(t, err, domain.ErrUnknownKey)
}

func TestRunSession_JSONWithFileStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendFile
	cfg.Store.Dir = filepath.Join(t.TempDir(), "sessions")

	var out bytes.Buffer
	err := RunSession(context.Background(), RunOptions{
		Config:    cfg,
		JSON:      true,
		SessionID: "desk",
		Stdin:     strings.NewReader("12 +\n"),
		Stdout:    &out,
	})
	require.NoError(t, err)

	out.Reset()
	err = RunSession(context.Background(), RunOptions{
		Config:    cfg,
		JSON:      true,
		SessionID: "desk",
		Stdin:     strings.NewReader("3 =\n"),
		Stdout:    &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"result":"15"`, "second run resumes the stored session")

	out.Reset()
	err = RunSession(context.Background(), RunOptions{
		Config:    cfg,
		JSON:      true,
		SessionID: "desk",
		Fresh:     true,
		Stdin:     strings.NewReader(""),
		Stdout:    &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"result":""`, "fresh starts from an empty calculator")
}

func TestRunSession_Text(t *testing.T) {
	var out bytes.Buffer
	err := RunSession(context.Background(), RunOptions{
		Config: config.Default(),
		Stdin:  strings.NewReader("12+3=\nexit\n"),
		Stdout: &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), " 15 |")
	assert.Contains(t, out.String(), "Last result: 15")
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	b, err := OpenBackend(ctx, config.StoreConfig{Backend: config.BackendMemory}, logger)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, b.Store)
	assert.Nil(t, b.Locker)
	assert.NoError(t, b.Close())

	_, err = OpenBackend(ctx, config.StoreConfig{Backend: "etcd"}, logger)
	assert.Error(t, err)
}

func TestOpenBackend_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.Default().Store
	cfg.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Lock = true

	b, err := OpenBackend(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.Locker)

	m := b.Manager(logging.NewNop())
	_, _, err = m.LoadOrStart(ctx, "r1")
	require.NoError(t, err)

	ids, err := b.Store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)
}

func TestOpenBackend_RedisUnreachable(t *testing.T) {
	cfg := config.Default().Store
	cfg.Backend = config.BackendRedis
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := OpenBackend(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestOpenBackend_Encrypted(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{
		Backend:    config.BackendFile,
		Dir:        t.TempDir(),
		Encryption: config.EncryptionConfig{Key: base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))},
	}

	b, err := OpenBackend(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	state := domain.NewState("e1")
	state.Result = "15.0"
	require.NoError(t, b.Store.Save(ctx, "e1", state))

	loaded, err := b.Store.Load(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "15.0", loaded.Result)

	plainCfg := cfg
	plainCfg.Encryption = config.EncryptionConfig{}
	plain, err := OpenBackend(ctx, plainCfg, logging.NewNop())
	require.NoError(t, err)
	raw, err := plain.Store.Load(ctx, "e1")
	require.NoError(t, err)
	assert.Empty(t, raw.Result)
	assert.NotEmpty(t, raw.Sealed)

	cfg.Encryption.Key = "bm9wZQ=="
	_, err = OpenBackend(ctx, cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestSessionCommands(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	var out bytes.Buffer

	require.NoError(t, ListSessions(ctx, &out, store))
	assert.Contains(t, out.String(), "No sessions found.")

	state := domain.NewState("a")
	state.Result = "15.0"
	require.NoError(t, store.Save(ctx, "a", state))

	out.Reset()
	require.NoError(t, ListSessions(ctx, &out, store))
	assert.Contains(t, out.String(), "- a")

	out.Reset()
	require.NoError(t, InspectSession(ctx, &out, store, "a"))
	assert.Contains(t, out.String(), `"result": "15"`)

	err := InspectSession(ctx, io.Discard, store, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	out.Reset()
	require.NoError(t, RemoveSessions(ctx, &out, store, []string{"a"}))
	assert.Contains(t, out.String(), "Removed session 'a'")
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	logger, err := NewLogger(cfg, true)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), -4))

	cfg.Log.Level = "loud"
	_, err = NewLogger(cfg, false)
	assert.Error(t, err)
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(context.Canceled))
	assert.NoError(t, handleExecutionError(io.EOF))
	assert.Error(t, handleExecutionError(assert.AnError))
}
