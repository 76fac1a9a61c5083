package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/keypad/internal/config"
	"github.com/aretw0/keypad/pkg/adapters/file"
	"github.com/aretw0/keypad/pkg/adapters/memory"
	"github.com/aretw0/keypad/pkg/adapters/redis"
	"github.com/aretw0/keypad/pkg/persistence/middleware"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/aretw0/keypad/pkg/session"
)

// Backend bundles the configured store with its optional locker.
type Backend struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases connections held by the store.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Manager wraps the store in a session.Manager, with distributed locking when configured.
func (b *Backend) Manager(logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger)}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker))
	}
	return session.NewManager(b.Store, opts...)
}

// OpenBackend creates the store selected by cfg.Backend, sealing snapshots
// when encryption is configured.
func OpenBackend(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Backend, error) {
	b, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if !cfg.Encryption.Enabled() {
		return b, nil
	}
	mw, err := encryptionMiddleware(cfg.Encryption)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Store = middleware.Chain(b.Store, mw)
	logger.Debug("Session snapshots encrypted at rest", "fallback_keys", len(cfg.Encryption.PreviousKeys))
	return b, nil
}

func encryptionMiddleware(cfg config.EncryptionConfig) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("store encryption key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range cfg.PreviousKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("store previous key: %w", err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(enc)
}

// openStore builds the raw backend. For Redis the connection is checked with
// a PING before returning.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return &Backend{Store: memory.NewStore()}, nil
	case config.BackendFile:
		return &Backend{Store: file.New(cfg.Dir)}, nil
	case config.BackendRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Redis.Addr, err)
		}
		b := &Backend{Store: store, close: store.Close}
		if cfg.Redis.Lock {
			b.Locker = redis.NewLocker(store.Client(), store.Prefix())
		}
		logger.Debug("Redis store ready", "addr", cfg.Redis.Addr, "prefix", store.Prefix(), "lock", cfg.Redis.Lock)
		return b, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
