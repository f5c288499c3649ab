package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"aichat/internal/chat"
	"aichat/internal/config"
	"aichat/internal/credentials"
	"aichat/internal/crypto"
	"aichat/internal/providers"
	"aichat/internal/storage"
)

func noopClose() error { return nil }

// openStore builds the credential store selected by store.backend, sealed
// with the master key when one is configured.
func openStore(ctx context.Context, cfg *config.Config) (credentials.Store, func() error, error) {
	var (
		store credentials.Store
		closeFn = noopClose
	)

	switch cfg.Store.Backend {
	case config.BackendFile:
		store = credentials.NewFileStore(cfg.Store.Path)

	case config.BackendSQLite, config.BackendPostgres:
		db, err := storage.Open(ctx, cfg.Store.Backend, cfg.Store.DSN, true)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
		}
		store, closeFn = db, db.Close

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		store, closeFn = credentials.NewRedisStore(rdb, cfg.Store.Redis.KeyPrefix), rdb.Close

	default:
		return nil, nil, config.ErrUnknownBackend
	}

	if cfg.Crypto.Enabled() {
		manager, err := crypto.NewManager(cfg.Crypto.CurrentKeyID, cfg.Crypto.Keys)
		if err != nil {
			_ = closeFn()
			return nil, nil, fmt.Errorf("initialize crypto manager: %w", err)
		}
		store = credentials.Sealed(store, manager)
	}
	return store, closeFn, nil
}

func (a *App) newAdapter(cfg *config.Config, provider, apiKey, model string) chat.Sender {
	return chat.New(provider, apiKey, model,
		chat.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout}),
		chat.WithBaseURL(providers.KindOpenAI.String(), cfg.Endpoints.OpenAI),
		chat.WithBaseURL(providers.KindAnthropic.String(), cfg.Endpoints.Anthropic),
		chat.WithLogger(a.logger),
		chat.WithMetrics(a.Metrics),
	)
}
