package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/internal/config"
	httpAdapter "github.com/aretw0/keypad/pkg/adapters/http"
	"github.com/aretw0/keypad/pkg/adapters/mcp"
	"github.com/aretw0/keypad/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// newObservedEngine builds an engine reporting to a fresh registry and the logger.
func newObservedEngine(logger *slog.Logger) (*keypad.Engine, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)
	engine := keypad.New(
		keypad.WithLogger(logger),
		keypad.WithLifecycleHooks(observability.Combine(metrics.Hooks(), observability.LogHooks(logger))),
	)
	return engine, reg
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	backend, err := OpenBackend(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	engine, reg := newObservedEngine(logger)
	handler, err := httpAdapter.NewHandler(engine, backend.Manager(logger),
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetrics(reg, cfg.Server.MetricsPath),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting keypad server", "addr", srv.Addr, "store", cfg.Store.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("keypad server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server on the configured transport.
// The stdio transport returns when the client closes the stream.
func ServeMCP(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	backend, err := OpenBackend(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	engine, _ := newObservedEngine(logger)
	srv := mcp.NewServer(engine, backend.Manager(logger), mcp.WithLogger(logger))

	switch cfg.MCP.Transport {
	case "stdio":
		logger.Info("Starting keypad MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting keypad MCP server (SSE)", "port", cfg.MCP.Port)
		if err := srv.ServeSSE(ctx, cfg.MCP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
	return fmt.Errorf("unknown transport %q, supported: stdio, sse", cfg.MCP.Transport)
}
