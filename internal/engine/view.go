package engine

import (
	"context"
	"fmt"

	"github.com/donaldgifford/marketplace-connections/internal/metrics"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// GetMarketplacesForUser lists every registered marketplace with the user's
// connection status. Supported marketplaces that are not active carry a
// fresh authorization URL. Results are cached per user.
func (eng *Engine) GetMarketplacesForUser(ctx context.Context, userID string) ([]domain.MarketplaceView, error) {
	views, gen, hit, err := eng.views.Get(ctx, userID)
	switch {
	case err != nil:
		metrics.ViewCacheTotal.WithLabelValues("error").Inc()
		eng.log.Warn("reading marketplace view cache", "user_id", userID, "error", err)
	case hit:
		metrics.ViewCacheTotal.WithLabelValues("hit").Inc()
		return views, nil
	default:
		metrics.ViewCacheTotal.WithLabelValues("miss").Inc()
	}

	conns, err := eng.store.ListConnectionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing connections: %w", err)
	}
	byID := make(map[int]*domain.Connection, len(conns))
	for i := range conns {
		byID[conns[i].MarketplaceID] = &conns[i]
	}

	defs := eng.registry.All()
	views = make([]domain.MarketplaceView, 0, len(defs))
	for _, def := range defs {
		v := domain.MarketplaceView{
			Marketplace: def.Info(),
			Status:      domain.StatusDisconnected,
		}
		if !def.Supported {
			v.Status = domain.StatusNotSupported
			views = append(views, v)
			continue
		}

		if c, ok := byID[def.ID]; ok {
			v.Status = c.Status
			v.LastSyncAt = c.LastSyncAt
			v.ErrorMessage = c.ErrorMessage
		}

		if v.Status != domain.StatusActive {
			u, err := eng.authorizationURL(ctx, def, userID)
			if err != nil {
				eng.log.Warn("building authorization url",
					"user_id", userID,
					"marketplace", def.Slug,
					"error", err,
				)
			} else {
				v.OAuthURL = u
			}
		}
		views = append(views, v)
	}

	if gen != "" {
		if err := eng.views.Set(ctx, userID, gen, views); err != nil {
			eng.log.Warn("caching marketplace view", "user_id", userID, "error", err)
		}
	}
	return views, nil
}
