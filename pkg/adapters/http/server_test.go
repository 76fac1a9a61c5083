package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/pkg/adapters/memory"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/observability"
	"github.com/aretw0/keypad/pkg/runner"
	"github.com/aretw0/keypad/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	srv, err := NewServer(keypad.New(), session.NewManager(store), opts...)
	require.NoError(t, err)
	return srv, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) runner.RichResponse {
	t.Helper()
	var resp runner.RichResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	assert.NotNil(t, doc.Paths.Find("/sessions/{id}/keys"))
}

func TestHealthAndInfo(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, strings.TrimSpace(keypad.Version), info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	w = do(t, h, http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestPressKeys_LineAndTokens(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, http.MethodPost, "/sessions/desk/keys", `{"keys": "12+3"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.Equal(t, domain.Display{Current: "3", Result: "12"}, resp.Display)

	w = do(t, h, http.MethodPost, "/sessions/desk/keys", `{"keys": ["*", "2", "="]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decodeResponse(t, w)
	assert.Equal(t, "30", resp.Display.Result)

	saved, err := store.Load(context.Background(), "desk")
	require.NoError(t, err)
	assert.Equal(t, "30.0", saved.Result)
}

func TestPressKeys_CalculationErrorIsNotHTTPError(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv.Handler(), http.MethodPost, "/sessions/s1/keys", `{"keys": "1/0="}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Display.Error)
	assert.Equal(t, domain.ErrKindDivisionByZero, resp.State.Err)
}

func TestPressKeys_BadRequests(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/sessions/s1/keys", `{"keys":`},
		{"missing keys", "/sessions/s1/keys", `{}`},
		{"extra field", "/sessions/s1/keys", `{"keys": "1", "x": 1}`},
		{"empty line", "/sessions/s1/keys", `{"keys": ""}`},
		{"wrong type", "/sessions/s1/keys", `{"keys": 12}`},
		{"unknown key", "/sessions/s1/keys", `{"keys": "1%"}`},
		{"unknown token", "/sessions/s1/keys", `{"keys": ["sqrt"]}`},
		{"bad session id", "/sessions/.hidden/keys", `{"keys": "1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids, "rejected requests must not create sessions")
}

func TestSessionsLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/sessions", "")
	assert.JSONEq(t, `{"sessions":[]}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/sessions/a", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	do(t, h, http.MethodPost, "/sessions/b/keys", `{"keys": "2"}`)
	do(t, h, http.MethodPost, "/sessions/a/keys", `{"keys": "1"}`)

	w = do(t, h, http.MethodGet, "/sessions", "")
	assert.JSONEq(t, `{"sessions":["a","b"]}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/sessions/a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", decodeResponse(t, w).Display.Current)

	w = do(t, h, http.MethodDelete, "/sessions/a", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/sessions/a", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	store := memory.NewStore()
	srv, err := NewServer(keypad.New(keypad.WithLifecycleHooks(metrics.Hooks())), session.NewManager(store), WithMetrics(reg, ""))
	require.NoError(t, err)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/sessions/m/keys", `{"keys": "1+1="}`)

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "keypad_evaluations_total")
}

func TestSubscribeEvents_RequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeEvents_Session(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events?session_id=live&watch=result", nil)
	require.NoError(t, err)
	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	reader := bufio.NewReader(res.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.Eventually(t, func() bool { return srv.Streams.Subscribers("live") == 1 }, time.Second, 10*time.Millisecond)

	// Only the entry changes: filtered out by watch=result.
	w := do(t, srv.Handler(), http.MethodPost, "/sessions/live/keys", `{"keys": "7"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, srv.Handler(), http.MethodPost, "/sessions/live/keys", `{"keys": "+"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}
	assert.JSONEq(t, `{"session_id":"live","current":"","result":"7"}`, data)
}

func TestDiffTouches(t *testing.T) {
	msg := `{"session_id":"s","error":true}`
	assert.True(t, diffTouches(msg, []string{"error"}))
	assert.True(t, diffTouches(msg, []string{"result", " error"}))
	assert.False(t, diffTouches(msg, []string{"current"}))
}
