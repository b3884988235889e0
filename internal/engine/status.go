package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	"github.com/donaldgifford/marketplace-connections/internal/metrics"
	"github.com/donaldgifford/marketplace-connections/internal/store"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// LinkResult is the outcome of a manual link or unlink request.
type LinkResult struct {
	Marketplace domain.MarketplaceInfo  `json:"marketplace"`
	Status      domain.ConnectionStatus `json:"connection_status"`
	// AuthorizationURL is set when linking requires provider consent.
	AuthorizationURL string `json:"oauth_url,omitempty"`
}

func (eng *Engine) supportedByID(marketplaceID int) (marketplace.Definition, error) {
	def, ok := eng.registry.GetByID(marketplaceID)
	if !ok || !def.Supported {
		return marketplace.Definition{}, fmt.Errorf("%w: id %d", marketplace.ErrNotSupported, marketplaceID)
	}
	return def, nil
}

// UpdateStatus sets the status of a user's connection, creating the record
// when absent. Active requires an already stored access token and refreshes
// last_sync_at.
func (eng *Engine) UpdateStatus(
	ctx context.Context,
	userID string,
	marketplaceID int,
	status domain.ConnectionStatus,
	errorMessage *string,
) error {
	def, err := eng.supportedByID(marketplaceID)
	if err != nil {
		return err
	}
	if !status.Persistable() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	u := store.StatusUpdate{
		UserID:        userID,
		MarketplaceID: marketplaceID,
		Status:        status,
		ErrorMessage:  errorMessage,
	}

	if status == domain.StatusActive {
		conn, err := eng.store.GetConnection(ctx, userID, marketplaceID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return ErrMissingToken
		case err != nil:
			return fmt.Errorf("loading connection: %w", err)
		case conn.AccessToken == "":
			return ErrMissingToken
		}
		now := eng.now()
		u.LastSyncAt = &now
	}

	if err := eng.store.SetStatus(ctx, u); err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	metrics.ConnectionTransitionsTotal.WithLabelValues(def.Slug, string(status)).Inc()
	eng.invalidate(ctx, userID)
	return nil
}

// LinkMarketplace handles a manual link toggle. Unlinking disconnects and
// clears stored tokens. Linking a marketplace that is not active returns an
// authorization URL; the connection becomes active only after the callback.
func (eng *Engine) LinkMarketplace(
	ctx context.Context,
	userID string,
	marketplaceID int,
	link bool,
) (*LinkResult, error) {
	def, err := eng.supportedByID(marketplaceID)
	if err != nil {
		return nil, err
	}

	conn, err := eng.store.GetConnection(ctx, userID, marketplaceID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading connection: %w", err)
	}
	found := err == nil

	res := &LinkResult{Marketplace: def.Info(), Status: domain.StatusDisconnected}
	if found {
		res.Status = conn.Status
	}

	if link {
		if found && conn.Status == domain.StatusActive {
			return nil, ErrAlreadyInState
		}
		u, err := eng.authorizationURL(ctx, def, userID)
		if err != nil {
			return nil, err
		}
		res.AuthorizationURL = u
		return res, nil
	}

	if !found {
		return nil, fmt.Errorf("unlinking %s: %w", def.Slug, store.ErrNotFound)
	}
	if conn.Status == domain.StatusDisconnected {
		return nil, ErrAlreadyInState
	}

	if err := eng.store.SetStatus(ctx, store.StatusUpdate{
		UserID:        userID,
		MarketplaceID: marketplaceID,
		Status:        domain.StatusDisconnected,
		ClearTokens:   true,
	}); err != nil {
		return nil, fmt.Errorf("unlinking %s: %w", def.Slug, err)
	}

	metrics.ConnectionTransitionsTotal.WithLabelValues(def.Slug, string(domain.StatusDisconnected)).Inc()
	eng.invalidate(ctx, userID)

	eng.log.Info("marketplace unlinked", "user_id", userID, "marketplace", def.Slug)
	res.Status = domain.StatusDisconnected
	return res, nil
}

// GetMarketplaceStatus reports a single marketplace's connection and token
// state for userID.
func (eng *Engine) GetMarketplaceStatus(
	ctx context.Context,
	userID, slug string,
) (*domain.MarketplaceStatus, error) {
	def, ok := eng.registry.Get(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", marketplace.ErrNotSupported, slug)
	}

	st := &domain.MarketplaceStatus{
		Marketplace: def.Info(),
		Status:      domain.StatusDisconnected,
		TokenStatus: domain.TokenNone,
	}
	if !def.Supported {
		st.Status = domain.StatusNotSupported
		return st, nil
	}

	conn, err := eng.store.GetConnection(ctx, userID, def.ID)
	if errors.Is(err, store.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading connection: %w", err)
	}

	st.Status = conn.Status
	st.TokenStatus = conn.TokenStatusAt(eng.now())
	st.ExpiresAt = conn.TokenExpiresAt
	st.LastSyncAt = conn.LastSyncAt
	st.ErrorMessage = conn.ErrorMessage
	return st, nil
}
