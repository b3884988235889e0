// Package engine manages the lifecycle of user marketplace connections:
// OAuth authorization and callback handling, status updates, access token
// refresh, and the per-user marketplace listing.
package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/donaldgifford/marketplace-connections/internal/cache"
	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	"github.com/donaldgifford/marketplace-connections/internal/metrics"
	"github.com/donaldgifford/marketplace-connections/internal/notify"
	"github.com/donaldgifford/marketplace-connections/internal/oauth"
	"github.com/donaldgifford/marketplace-connections/internal/store"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

const (
	// DefaultRefreshLookahead is how close to expiry a token is refreshed.
	DefaultRefreshLookahead = 5 * time.Minute
	// DefaultRefreshConcurrency bounds parallel refreshes in a batch run.
	DefaultRefreshConcurrency = 8
)

// Engine coordinates the registry, connection store, state tokens, token
// exchange, and view cache.
type Engine struct {
	store     store.Store
	registry  *marketplace.Registry
	states    *oauth.StateService
	exchanger oauth.TokenExchanger
	views     *cache.ViewCache
	notifier  notify.Notifier
	log       *slog.Logger

	nowFunc     func() time.Time
	lookahead   time.Duration
	concurrency int

	refreshes singleflight.Group
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	s store.Store,
	reg *marketplace.Registry,
	states *oauth.StateService,
	ex oauth.TokenExchanger,
	views *cache.ViewCache,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:       s,
		registry:    reg,
		states:      states,
		exchanger:   ex,
		views:       views,
		log:         slog.Default(),
		nowFunc:     time.Now,
		lookahead:   DefaultRefreshLookahead,
		concurrency: DefaultRefreshConcurrency,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.notifier == nil {
		eng.notifier = notify.NewNoOpNotifier(eng.log)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithNowFunc overrides the clock for testing.
func WithNowFunc(f func() time.Time) EngineOption {
	return func(e *Engine) {
		e.nowFunc = f
	}
}

// WithLookahead sets how close to expiry a token is refreshed.
func WithLookahead(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.lookahead = d
		}
	}
}

// WithRefreshConcurrency bounds parallel refreshes in RefreshExpiringTokens.
func WithRefreshConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithNotifier sets the notifier told about connections dropped by the
// batch refresh.
func WithNotifier(n notify.Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = n
	}
}

// Registry returns the marketplace registry.
func (eng *Engine) Registry() *marketplace.Registry {
	return eng.registry
}

func (eng *Engine) now() time.Time {
	return eng.nowFunc().UTC()
}

// invalidate drops the cached view. Failures are logged; the view expires
// on its own.
func (eng *Engine) invalidate(ctx context.Context, userID string) {
	if err := eng.views.Invalidate(context.WithoutCancel(ctx), userID); err != nil {
		eng.log.Warn("invalidating marketplace view",
			"user_id", userID,
			"error", err,
		)
	}
}

// markDisconnected stores a disconnected status with msg, leaving tokens in
// place. It runs even when ctx is already canceled.
func (eng *Engine) markDisconnected(
	ctx context.Context,
	userID string,
	def marketplace.Definition,
	msg string,
) error {
	ctx = context.WithoutCancel(ctx)
	err := eng.store.SetStatus(ctx, store.StatusUpdate{
		UserID:        userID,
		MarketplaceID: def.ID,
		Status:        domain.StatusDisconnected,
		ErrorMessage:  &msg,
	})
	if err != nil {
		eng.log.Error("recording disconnect",
			"user_id", userID,
			"marketplace", def.Slug,
			"error", err,
		)
		return err
	}
	metrics.ConnectionTransitionsTotal.WithLabelValues(def.Slug, string(domain.StatusDisconnected)).Inc()
	eng.invalidate(ctx, userID)
	return nil
}
