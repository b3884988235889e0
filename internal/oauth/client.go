package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	"github.com/donaldgifford/marketplace-connections/internal/metrics"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

const (
	// DefaultExchangeTimeout caps a single token endpoint round trip.
	DefaultExchangeTimeout = 15 * time.Second
	maxResponseBody        = 64 << 10
	maxErrorRead           = 4 << 10

	instrumentationName = "github.com/donaldgifford/marketplace-connections/internal/oauth"
)

// TokenExchanger exchanges authorization codes and refresh tokens.
type TokenExchanger interface {
	ExchangeAuthorizationCode(
		ctx context.Context,
		def marketplace.Definition,
		code string,
	) (*domain.TokenSet, error)
	ExchangeRefreshToken(
		ctx context.Context,
		def marketplace.Definition,
		refreshToken string,
	) (*domain.TokenSet, error)
}

var _ TokenExchanger = (*Client)(nil)

// Client talks to marketplace token endpoints. It never retries; callers
// decide what a failure means for the connection.
type Client struct {
	http      *http.Client
	providers map[string]Provider
	fallback  Provider
	throttle  *Throttle
	timeout   time.Duration
	log       *slog.Logger
	tracer    trace.Tracer
	meter     metric.Meter
	latency   metric.Float64Histogram
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithProvider registers the adapter used for slug.
func WithProvider(slug string, p Provider) ClientOption {
	return func(c *Client) {
		c.providers[slug] = p
	}
}

// WithThrottle sets the per-marketplace rate limiter.
func WithThrottle(t *Throttle) ClientOption {
	return func(c *Client) {
		c.throttle = t
	}
}

// WithExchangeTimeout overrides DefaultExchangeTimeout.
func WithExchangeTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		c.tracer = tp.Tracer(instrumentationName)
	}
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(c *Client) {
		c.meter = mp.Meter(instrumentationName)
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a token exchange client with the default providers.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:      &http.Client{},
		providers: DefaultProviders(),
		fallback:  GenericProvider{},
		throttle:  NewThrottle(0, 1),
		timeout:   DefaultExchangeTimeout,
		log:       slog.Default(),
		tracer:    otel.Tracer(instrumentationName),
		meter:     otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}

	h, err := c.meter.Float64Histogram("oauth.exchange.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of token endpoint calls."),
	)
	if err != nil {
		c.log.Warn("creating exchange duration instrument", "error", err)
	}
	c.latency = h
	return c
}

// ProviderFor returns the adapter selected by slug.
func (c *Client) ProviderFor(slug string) Provider {
	if p, ok := c.providers[slug]; ok {
		return p
	}
	return c.fallback
}

// ExchangeAuthorizationCode trades an authorization code for tokens.
func (c *Client) ExchangeAuthorizationCode(
	ctx context.Context,
	def marketplace.Definition,
	code string,
) (*domain.TokenSet, error) {
	form := c.ProviderFor(def.Slug).CodeForm(def, code)
	return c.exchange(ctx, def, GrantAuthorizationCode, form)
}

// ExchangeRefreshToken trades a refresh token for a new access token.
func (c *Client) ExchangeRefreshToken(
	ctx context.Context,
	def marketplace.Definition,
	refreshToken string,
) (*domain.TokenSet, error) {
	form := c.ProviderFor(def.Slug).RefreshForm(def, refreshToken)
	return c.exchange(ctx, def, GrantRefreshToken, form)
}

func (c *Client) exchange(
	ctx context.Context,
	def marketplace.Definition,
	grant string,
	form url.Values,
) (ts *domain.TokenSet, err error) {
	ctx, span := c.tracer.Start(ctx, "oauth.exchange", trace.WithAttributes(
		attribute.String("marketplace", def.Slug),
		attribute.String("grant_type", grant),
	))
	start := time.Now()
	outcome := "success"
	defer func() {
		metrics.TokenExchangesTotal.WithLabelValues(def.Slug, grant, outcome).Inc()
		elapsed := time.Since(start).Seconds()
		metrics.TokenExchangeDuration.WithLabelValues(def.Slug, grant).Observe(elapsed)
		if c.latency != nil {
			c.latency.Record(ctx, elapsed, metric.WithAttributes(
				attribute.String("marketplace", def.Slug),
				attribute.String("grant_type", grant),
				attribute.String("outcome", outcome),
			))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.throttle.Wait(reqCtx, def.Slug); err != nil {
		outcome = "error"
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		reqCtx,
		http.MethodPost,
		def.OAuth.TokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.ProviderFor(def.Slug).Authenticate(req, def)

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("token endpoint responded",
		"marketplace", def.Slug,
		"grant", grant,
		"status", resp.StatusCode,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "rejected"
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorRead)) //nolint:errcheck // best-effort error body
		secrets := sentSecrets(def, form)
		exErr := &ExchangeError{
			Marketplace: def.Slug,
			Grant:       grant,
			StatusCode:  resp.StatusCode,
			Body:        redactBody(body, secrets...),
		}
		var errResp tokenErrorResponse
		if json.Unmarshal(body, &errResp) == nil {
			exErr.Code = redactText(errResp.Error, secrets...)
			exErr.Description = redactText(errResp.ErrorDescription, secrets...)
		}
		return nil, exErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	ts, err = parseTokenResponse(body)
	if err != nil {
		outcome = "malformed"
		return nil, &ExchangeError{
			Marketplace: def.Slug,
			Grant:       grant,
			Reason:      err.Error(),
		}
	}

	c.log.Info("token exchange succeeded",
		"marketplace", def.Slug,
		"grant", grant,
		"expires_in", ts.ExpiresIn.String(),
		"refresh_token_issued", ts.RefreshToken != "",
	)
	return ts, nil
}
