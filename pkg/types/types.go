// Package domain defines the core business types for marketplace connections.
package domain

import (
	"time"
)

// ConnectionStatus is the lifecycle state of a user's link to a marketplace.
type ConnectionStatus string

// Connection status constants. StatusNotSupported is derived for views and
// never persisted.
const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusPending      ConnectionStatus = "pending"
	StatusActive       ConnectionStatus = "active"
	StatusNotSupported ConnectionStatus = "not_supported"
)

// Persistable reports whether s may be written to the connection store.
func (s ConnectionStatus) Persistable() bool {
	switch s {
	case StatusDisconnected, StatusPending, StatusActive:
		return true
	default:
		return false
	}
}

// TokenStatus summarizes the freshness of a stored access token.
type TokenStatus string

// Token status constants.
const (
	TokenValid   TokenStatus = "valid"
	TokenExpired TokenStatus = "expired"
	TokenNone    TokenStatus = "none"
)

// Connection is a per-user per-marketplace link record.
type Connection struct {
	ID             string           `json:"id"                         db:"id"`
	UserID         string           `json:"user_id"                    db:"user_id"`
	MarketplaceID  int              `json:"marketplace_id"             db:"marketplace_id"`
	Status         ConnectionStatus `json:"connection_status"          db:"connection_status"`
	AccessToken    string           `json:"-"                          db:"access_token"`
	RefreshToken   string           `json:"-"                          db:"refresh_token"`
	TokenExpiresAt *time.Time       `json:"token_expires_at,omitempty" db:"token_expires_at"`
	LastSyncAt     *time.Time       `json:"last_sync_at,omitempty"     db:"last_sync_at"`
	ErrorMessage   *string          `json:"error_message,omitempty"    db:"error_message"`
	CreatedAt      time.Time        `json:"created_at"                 db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"                 db:"updated_at"`
}

// TokenStatusAt classifies the access token relative to now.
func (c *Connection) TokenStatusAt(now time.Time) TokenStatus {
	switch {
	case c.AccessToken == "":
		return TokenNone
	case c.TokenExpiresAt != nil && !c.TokenExpiresAt.After(now):
		return TokenExpired
	default:
		return TokenValid
	}
}

// TokenSet is the normalized result of a token endpoint call.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// MarketplaceInfo is the public part of a marketplace definition.
type MarketplaceInfo struct {
	ID        int    `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	IconURL   string `json:"icon_url,omitempty"`
	Supported bool   `json:"supported"`
}

// MarketplaceView is one entry of the per-user marketplace listing.
type MarketplaceView struct {
	Marketplace  MarketplaceInfo  `json:"marketplace"`
	Status       ConnectionStatus `json:"connection_status"`
	LastSyncAt   *time.Time       `json:"last_sync_at,omitempty"`
	ErrorMessage *string          `json:"error_message,omitempty"`
	OAuthURL     string           `json:"oauth_url,omitempty"`
}

// MarketplaceStatus is a single marketplace's connection and token state.
type MarketplaceStatus struct {
	Marketplace  MarketplaceInfo  `json:"marketplace"`
	Status       ConnectionStatus `json:"connection_status"`
	TokenStatus  TokenStatus      `json:"token_status"`
	ExpiresAt    *time.Time       `json:"expires_at,omitempty"`
	LastSyncAt   *time.Time       `json:"last_sync_at,omitempty"`
	ErrorMessage *string          `json:"error_message,omitempty"`
}

// RefreshReport summarizes one batch token refresh run.
type RefreshReport struct {
	Scanned   int           `json:"scanned"`
	Refreshed int           `json:"refreshed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Failures  []RefreshFail `json:"failures,omitempty"`
}

// RefreshFail records a single connection that could not be refreshed.
type RefreshFail struct {
	UserID        string `json:"user_id"`
	MarketplaceID int    `json:"marketplace_id"`
	Reason        string `json:"reason"`
}
