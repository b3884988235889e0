package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/donaldgifford/marketplace-connections/internal/engine"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// ListMarketplaces returns every marketplace with the user's connection state.
func (c *Client) ListMarketplaces(ctx context.Context, userID string) ([]domain.MarketplaceView, error) {
	var views []domain.MarketplaceView
	if err := c.get(ctx, "/api/v1/marketplaces/"+url.PathEscape(userID), &views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetMarketplaceStatus returns one marketplace's connection and token state.
func (c *Client) GetMarketplaceStatus(ctx context.Context, userID, slug string) (*domain.MarketplaceStatus, error) {
	var st domain.MarketplaceStatus
	path := fmt.Sprintf("/api/v1/marketplaces/%s/%s/status", url.PathEscape(userID), url.PathEscape(slug))
	if err := c.get(ctx, path, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// AuthorizationURL requests a fresh provider consent URL.
func (c *Client) AuthorizationURL(ctx context.Context, userID, slug string) (string, error) {
	var resp struct {
		AuthorizationURL string `json:"oauth_url"`
	}
	path := fmt.Sprintf("/api/v1/marketplaces/%s/%s/authorize", url.PathEscape(userID), url.PathEscape(slug))
	if err := c.get(ctx, path, &resp); err != nil {
		return "", err
	}
	return resp.AuthorizationURL, nil
}

// LinkMarketplace links (link=true) or unlinks a marketplace.
func (c *Client) LinkMarketplace(
	ctx context.Context,
	userID string,
	marketplaceID int,
	link bool,
) (*engine.LinkResult, error) {
	body := map[string]any{"marketplace_id": marketplaceID, "link": link}
	var res engine.LinkResult
	if err := c.post(ctx, "/api/v1/marketplaces/"+url.PathEscape(userID)+"/link", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SetStatus sets a connection status directly. errorMessage may be empty.
func (c *Client) SetStatus(
	ctx context.Context,
	userID string,
	marketplaceID int,
	status domain.ConnectionStatus,
	errorMessage string,
) error {
	body := map[string]any{"status": status}
	if errorMessage != "" {
		body["error_message"] = errorMessage
	}
	path := fmt.Sprintf("/api/v1/marketplaces/%s/marketplace/%d/status", url.PathEscape(userID), marketplaceID)
	return c.patch(ctx, path, body, nil)
}

// RefreshTokens runs one batch token refresh on the server.
func (c *Client) RefreshTokens(ctx context.Context) (*domain.RefreshReport, error) {
	var report domain.RefreshReport
	if err := c.post(ctx, "/api/v1/tokens/refresh", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
