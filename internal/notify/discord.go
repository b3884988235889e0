package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donaldgifford/marketplace-connections/internal/metrics"
)

const (
	colorRed     = 0xE74C3C
	maxReasonLen = 1024
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendDisconnect posts a disconnect notice as a single Discord embed.
func (d *DiscordNotifier) SendDisconnect(ctx context.Context, p *DisconnectPayload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	err := d.post(ctx, discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(p)},
	})
	if err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return err
	}
	metrics.NotificationsSentTotal.Inc()
	return nil
}

func buildEmbed(p *DisconnectPayload) discordEmbed {
	name := p.MarketplaceName
	if name == "" {
		name = fmt.Sprintf("marketplace %d", p.MarketplaceID)
	}

	reason := p.Reason
	if len(reason) > maxReasonLen {
		reason = reason[:maxReasonLen] + "..."
	}

	embed := discordEmbed{
		Title:       fmt.Sprintf("Connection lost: %s", name),
		Color:       colorRed,
		Description: reason,
		Fields: []discordEmbedField{
			{Name: "User", Value: p.UserID, Inline: true},
			{Name: "Marketplace ID", Value: fmt.Sprintf("%d", p.MarketplaceID), Inline: true},
		},
	}
	if !p.OccurredAt.IsZero() {
		embed.Timestamp = p.OccurredAt.UTC().Format(time.RFC3339)
	}
	return embed
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
