package engine

import (
	"context"
	"fmt"

	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	"github.com/donaldgifford/marketplace-connections/internal/metrics"
	"github.com/donaldgifford/marketplace-connections/internal/oauth"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// CallbackResult describes the connection after an OAuth redirect.
type CallbackResult struct {
	UserID      string
	Marketplace marketplace.Definition
	Status      domain.ConnectionStatus
}

// GenerateAuthorizationURL issues a state token for userID and returns the
// provider consent URL. Unknown or unsupported slugs fail before any state
// is issued.
func (eng *Engine) GenerateAuthorizationURL(ctx context.Context, slug, userID string) (string, error) {
	def, err := eng.registry.Lookup(slug)
	if err != nil {
		return "", err
	}
	return eng.authorizationURL(ctx, def, userID)
}

func (eng *Engine) authorizationURL(ctx context.Context, def marketplace.Definition, userID string) (string, error) {
	state, err := eng.states.Issue(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("issuing state for %s: %w", def.Slug, err)
	}
	u, err := oauth.AuthorizationURL(def, state)
	if err != nil {
		return "", err
	}
	return u, nil
}

// HandleOAuthCallback completes an authorization: it consumes state,
// exchanges code, and stores the connection as active. A rejected or failed
// exchange leaves the connection disconnected with the failure message and
// its previous tokens in place; the returned result is then non-nil along
// with the error.
func (eng *Engine) HandleOAuthCallback(
	ctx context.Context,
	slug, code, state string,
) (*CallbackResult, error) {
	def, err := eng.registry.Lookup(slug)
	if err != nil {
		return nil, err
	}

	userID, err := eng.states.Consume(ctx, state)
	if err != nil {
		eng.log.Warn("oauth callback with invalid state", "marketplace", slug)
		return nil, err
	}

	res := &CallbackResult{
		UserID:      userID,
		Marketplace: def,
		Status:      domain.StatusDisconnected,
	}

	ts, err := eng.exchanger.ExchangeAuthorizationCode(ctx, def, code)
	if err != nil {
		eng.log.Warn("authorization code exchange failed",
			"user_id", userID,
			"marketplace", slug,
			"error", err,
		)
		_ = eng.markDisconnected(ctx, userID, def, err.Error()) //nolint:errcheck // logged
		return res, fmt.Errorf("exchanging authorization code: %w", err)
	}

	now := eng.now()
	expiresAt := now.Add(ts.ExpiresIn)
	conn := &domain.Connection{
		UserID:         userID,
		MarketplaceID:  def.ID,
		Status:         domain.StatusActive,
		AccessToken:    ts.AccessToken,
		RefreshToken:   ts.RefreshToken,
		TokenExpiresAt: &expiresAt,
		LastSyncAt:     &now,
	}
	if err := eng.store.UpsertConnection(ctx, conn); err != nil {
		return res, fmt.Errorf("saving connection: %w", err)
	}

	metrics.ConnectionTransitionsTotal.WithLabelValues(def.Slug, string(domain.StatusActive)).Inc()
	eng.invalidate(ctx, userID)

	eng.log.Info("marketplace connected",
		"user_id", userID,
		"marketplace", slug,
		"expires_at", expiresAt,
	)
	res.Status = domain.StatusActive
	return res, nil
}

// HandleOAuthDenial handles a provider redirect that carries an error
// instead of a code. When state identifies a user the connection is marked
// disconnected with reason.
func (eng *Engine) HandleOAuthDenial(
	ctx context.Context,
	slug, state, reason string,
) (*CallbackResult, error) {
	def, err := eng.registry.Lookup(slug)
	if err != nil {
		return nil, err
	}

	userID, err := eng.states.Consume(ctx, state)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "authorization denied"
	}
	if err := eng.markDisconnected(ctx, userID, def, reason); err != nil {
		return nil, fmt.Errorf("recording denial: %w", err)
	}

	eng.log.Info("marketplace authorization denied",
		"user_id", userID,
		"marketplace", slug,
		"reason", reason,
	)
	return &CallbackResult{
		UserID:      userID,
		Marketplace: def,
		Status:      domain.StatusDisconnected,
	}, nil
}
