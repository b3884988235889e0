package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/donaldgifford/marketplace-connections/internal/cache"
	"github.com/donaldgifford/marketplace-connections/internal/config"
	"github.com/donaldgifford/marketplace-connections/internal/engine"
	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	"github.com/donaldgifford/marketplace-connections/internal/notify"
	"github.com/donaldgifford/marketplace-connections/internal/oauth"
	"github.com/donaldgifford/marketplace-connections/internal/store"
	"github.com/donaldgifford/marketplace-connections/pkg/logger"
)

// app holds the wired service components shared by serve and refresh.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	store  *store.PostgresStore
	cache  cache.Cache
	engine *engine.Engine
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)
	return cfg, log, nil
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	var storeOpts []store.Option
	key, err := cfg.Database.EncryptionKey()
	if err != nil {
		return nil, err
	}
	if key != nil {
		cipher, err := store.NewAESCipher(key)
		if err != nil {
			return nil, fmt.Errorf("creating token cipher: %w", err)
		}
		storeOpts = append(storeOpts, store.WithTokenCipher(cipher))
	} else {
		log.Warn("token encryption key not set; tokens are stored in plaintext")
	}

	s, err := store.NewPostgresStore(ctx, cfg.Database.DSN(), cfg.Database.PoolSize, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	c, err := cache.New(ctx, &cfg.Cache, log)
	if err != nil {
		s.Close()
		return nil, err
	}

	reg, err := marketplace.FromConfig(cfg.Marketplaces)
	if err != nil {
		s.Close()
		_ = c.Close()
		return nil, fmt.Errorf("building marketplace registry: %w", err)
	}

	states := oauth.NewStateService(c,
		oauth.WithStateTTL(cfg.OAuth.StateTTL),
		oauth.WithStateLogger(log),
	)
	exchanger := oauth.NewClient(
		oauth.WithThrottle(oauth.NewThrottle(cfg.OAuth.RateLimit.PerSecond, cfg.OAuth.RateLimit.Burst)),
		oauth.WithExchangeTimeout(cfg.OAuth.ExchangeTimeout),
		oauth.WithClientLogger(log),
	)

	var notifier notify.Notifier = notify.NewNoOpNotifier(log)
	if cfg.Notifications.Discord.Enabled {
		notifier = notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
	}

	eng := engine.NewEngine(s, reg, states, exchanger, cache.NewViewCache(c, cfg.Cache.ViewTTL),
		engine.WithLogger(log),
		engine.WithLookahead(cfg.OAuth.RefreshLookahead),
		engine.WithRefreshConcurrency(cfg.OAuth.RefreshConcurrency),
		engine.WithNotifier(notifier),
	)

	log.Info("marketplaces loaded",
		"total", len(reg.All()),
		"supported", len(reg.Supported()),
	)

	return &app{cfg: cfg, log: log, store: s, cache: c, engine: eng}, nil
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.log.Warn("closing cache", "error", err)
	}
	a.store.Close()
}
