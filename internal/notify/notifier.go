// Package notify defines the notification interface and implementations
// for connection lifecycle alerts.
package notify

import (
	"context"
	"time"
)

// DisconnectPayload describes a connection that was moved to disconnected
// by the background refresh job.
type DisconnectPayload struct {
	UserID          string
	MarketplaceID   int
	MarketplaceName string
	Reason          string
	OccurredAt      time.Time
}

// Notifier defines the interface for sending connection notifications.
type Notifier interface {
	SendDisconnect(ctx context.Context, p *DisconnectPayload) error
}
