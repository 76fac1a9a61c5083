// Package http exposes keypad sessions over a JSON HTTP API with SSE display updates.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/aretw0/keypad/pkg/runner"
	"github.com/aretw0/keypad/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 64 << 10

// DefaultMetricsPath is where metrics are served when a Gatherer is configured.
const DefaultMetricsPath = "/metrics"

// Server serves keypad sessions.
type Server struct {
	Engine   ports.Engine
	Sessions *session.Manager
	Streams  *StreamManager

	logger      *slog.Logger
	gatherer    prometheus.Gatherer
	metricsPath string
	validator   *validator
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves the metrics of g in the Prometheus text format at path
// (DefaultMetricsPath when empty).
func WithMetrics(g prometheus.Gatherer, path string) Option {
	return func(s *Server) {
		s.gatherer = g
		s.metricsPath = path
	}
}

// NewServer creates a Server. It fails only if the embedded OpenAPI document is invalid.
func NewServer(engine ports.Engine, sessions *session.Manager, opts ...Option) (*Server, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	s := &Server{
		Engine:    engine,
		Sessions:  sessions,
		logger:    logging.NewNop(),
		validator: v,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s, nil
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Engine, sessions *session.Manager, opts ...Option) (http.Handler, error) {
	s, err := NewServer(engine, sessions, opts...)
	if err != nil {
		return nil, err
	}
	return s.Handler(), nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	r.Get("/sessions", s.ListSessions)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Post("/keys", s.PressKeys)
	})
	r.Get("/events", s.SubscribeEvents)

	if s.gatherer != nil {
		path := s.metricsPath
		if path == "" {
			path = DefaultMetricsPath
		}
		r.Handle(path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>keypad API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "keypad-http",
		"version":     strings.TrimSpace(keypad.Version),
		"api_version": apiVersion,
	})
}

// GetSpec handles the GET /openapi.yaml request.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(rawSpec)
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "List sessions failed", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runner.Render(s.Engine, state))
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PressKeys handles the POST /sessions/{id}/keys request.
func (s *Server) PressKeys(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	keys, err := s.decodeKeys(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	prev, next, err := s.Sessions.Update(r.Context(), id, func(state *domain.State) (*domain.State, error) {
		return s.Engine.Press(r.Context(), state, keys...)
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	resp := runner.Render(s.Engine, next)
	old := s.Engine.Display(prev)
	if diff := domain.Diff(id, &old, resp.Display); diff != nil {
		if b, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(b))
		}
	}
	s.logger.Debug("PressKeys: applied", "session_id", id, "keys", domain.FormatKeys(keys), "in_error", next.InError())

	s.writeJSON(w, http.StatusOK, resp)
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if err := runtime.BindQueryParameter("form", true, true, "session_id", r.URL.Query(), &sessionID); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid session_id", err)
		return
	}
	if err := s.validator.Validate("SessionID", sessionID); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid session_id", err)
		return
	}
	var watch *string
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &watch); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid watch", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "Streaming not supported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)
	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var fields []string
	if watch != nil && *watch != "" {
		fields = strings.Split(*watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(fields) > 0 && !diffTouches(msg, fields) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// diffTouches reports whether the serialized DisplayDiff changes any of fields.
func diffTouches(msg string, fields []string) bool {
	var diff domain.DisplayDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "current":
			if diff.Current != nil {
				return true
			}
		case "result":
			if diff.Result != nil {
				return true
			}
		case "error":
			if diff.Error != nil {
				return true
			}
		}
	}
	return false
}

// -- Helpers --

// sessionID binds and validates the {id} path parameter, writing a 400 on failure.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err == nil {
		err = s.validator.Validate("SessionID", id)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid session id", err)
		return "", false
	}
	return id, true
}

// decodeKeys validates the body against PressKeysRequest and parses the keys.
// "keys" is either one line (see domain.ParseKeys) or a list of single tokens.
func (s *Server) decodeKeys(r *http.Request) ([]domain.Key, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxBodySize {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxBodySize)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	if err := s.validator.Validate("PressKeysRequest", generic); err != nil {
		return nil, err
	}

	var body struct {
		Keys json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}

	var line string
	if err := json.Unmarshal(body.Keys, &line); err == nil {
		clean, err := runner.SanitizeInput(line)
		if err != nil {
			return nil, err
		}
		return domain.ParseKeys(clean)
	}

	var tokens []string
	if err := json.Unmarshal(body.Keys, &tokens); err != nil {
		return nil, err
	}
	keys := make([]domain.Key, 0, len(tokens))
	for _, token := range tokens {
		k, err := domain.ParseKey(token)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.writeError(w, http.StatusNotFound, "Session not found", err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, "Session store error", err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string, err error) {
	text := msg
	if err != nil {
		text = fmt.Sprintf("%s: %v", msg, err)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, "err", err)
	} else {
		s.logger.Warn(msg, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": text})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
