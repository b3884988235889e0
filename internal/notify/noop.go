package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded notifications. It is
// used when Discord is not configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards notifications with a log
// message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendDisconnect logs and discards a disconnect notification.
func (n *NoOpNotifier) SendDisconnect(_ context.Context, p *DisconnectPayload) error {
	n.log.Debug("notification discarded (no backend configured)",
		"user_id", p.UserID,
		"marketplace_id", p.MarketplaceID,
	)
	return nil
}
