// Package store defines the datastore abstraction for marketplace
// connections. Business logic depends on the Store interface, never on a
// concrete implementation.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// ErrNotFound is returned when no connection exists for a user and marketplace.
var ErrNotFound = errors.New("connection not found")

// StatusUpdate upserts the status fields of a connection.
type StatusUpdate struct {
	UserID        string
	MarketplaceID int
	Status        domain.ConnectionStatus
	ErrorMessage  *string
	// LastSyncAt is written only when non-nil.
	LastSyncAt *time.Time
	// ClearTokens nulls the stored tokens and expiry.
	ClearTokens bool
}

// TokenUpdate replaces the tokens of an active connection after a refresh.
type TokenUpdate struct {
	UserID        string
	MarketplaceID int
	AccessToken   string
	// RefreshToken keeps the stored value when empty.
	RefreshToken   string
	TokenExpiresAt *time.Time
}

// RefreshFailure disconnects a connection whose token refresh failed.
type RefreshFailure struct {
	UserID        string
	MarketplaceID int
	ErrorMessage  string
	// UpdatedAt is the row version the refresh started from. The write is
	// skipped once anything else has changed the row.
	UpdatedAt time.Time
}

// Store defines all data access operations for marketplace connections.
type Store interface {
	GetConnection(ctx context.Context, userID string, marketplaceID int) (*domain.Connection, error)
	ListConnectionsByUser(ctx context.Context, userID string) ([]domain.Connection, error)
	// ListExpiringConnections returns active connections whose token expires
	// at or before the given time.
	ListExpiringConnections(ctx context.Context, before time.Time) ([]domain.Connection, error)

	// UpsertConnection inserts or fully overwrites the connection for
	// (UserID, MarketplaceID). ID, CreatedAt and UpdatedAt are set on c.
	UpsertConnection(ctx context.Context, c *domain.Connection) error
	SetStatus(ctx context.Context, u StatusUpdate) error
	// UpdateTokens applies only while the connection is still active and
	// reports whether a row changed.
	UpdateTokens(ctx context.Context, u TokenUpdate) (bool, error)
	// MarkRefreshFailed applies only while the connection is active and
	// unchanged since f.UpdatedAt, and reports whether a row changed.
	MarkRefreshFailed(ctx context.Context, f RefreshFailure) (bool, error)

	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
}
