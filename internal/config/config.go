// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Cache         CacheConfig         `yaml:"cache"`
	OAuth         OAuthConfig         `yaml:"oauth"`
	Marketplaces  []MarketplaceConfig `yaml:"marketplaces"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// BaseURL is the externally reachable origin used to build callback URLs.
	BaseURL string `yaml:"base_url"`
	// FallbackRedirectURL receives OAuth callbacks that have no marketplace
	// deep link to return to.
	FallbackRedirectURL string `yaml:"fallback_redirect_url"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
	// TokenEncryptionKey is a base64 encoded 32 byte AES key. Tokens are
	// stored in plaintext when empty.
	TokenEncryptionKey string `yaml:"token_encryption_key"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// EncryptionKey decodes TokenEncryptionKey. It returns nil when unset.
func (d *DatabaseConfig) EncryptionKey() ([]byte, error) {
	if d.TokenEncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(d.TokenEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decoding token encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("token encryption key must be 32 bytes (got %d)", len(key))
	}
	return key, nil
}

// CacheConfig selects the key-value backend used for OAuth state entries
// and cached marketplace views.
type CacheConfig struct {
	Backend string        `yaml:"backend"` // memory, redis
	Redis   RedisConfig   `yaml:"redis"`
	ViewTTL time.Duration `yaml:"view_ttl"`
}

// RedisConfig defines Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// OAuthConfig defines token lifecycle timing.
type OAuthConfig struct {
	StateTTL           time.Duration   `yaml:"state_ttl"`
	RefreshLookahead   time.Duration   `yaml:"refresh_lookahead"`
	ExchangeTimeout    time.Duration   `yaml:"exchange_timeout"`
	RefreshConcurrency int             `yaml:"refresh_concurrency"`
	RateLimit          RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines per-marketplace token endpoint throttling.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// MarketplaceConfig defines one marketplace and its OAuth client.
type MarketplaceConfig struct {
	ID               int               `yaml:"id"`
	Slug             string            `yaml:"slug"`
	Name             string            `yaml:"name"`
	IconURL          string            `yaml:"icon_url"`
	Supported        *bool             `yaml:"supported"`
	AuthorizeURL     string            `yaml:"authorize_url"`
	TokenURL         string            `yaml:"token_url"`
	ClientID         string            `yaml:"client_id"`
	ClientSecret     string            `yaml:"client_secret"`
	RedirectURI      string            `yaml:"redirect_uri"`
	Scope            string            `yaml:"scope"`
	AdditionalParams map[string]string `yaml:"additional_params"`
	MobileDeepLink   string            `yaml:"mobile_deep_link"`
}

// IsSupported reports whether the marketplace accepts new connections.
// Entries default to supported.
func (m *MarketplaceConfig) IsSupported() bool {
	return m.Supported == nil || *m.Supported
}

// ScheduleConfig defines cron intervals.
type ScheduleConfig struct {
	TokenRefreshInterval time.Duration `yaml:"token_refresh_interval"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// TelemetryConfig defines OpenTelemetry trace and metric export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
	Insecure     bool   `yaml:"insecure"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyCacheDefaults(&cfg.Cache)
	applyOAuthDefaults(&cfg.OAuth)
	cfg.Marketplaces = applyMarketplaceDefaults(cfg.Marketplaces, cfg.Server.BaseURL)
	applyScheduleDefaults(&cfg.Schedule)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
	if s.BaseURL == "" {
		s.BaseURL = fmt.Sprintf("http://localhost:%d", s.Port)
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	if s.FallbackRedirectURL == "" {
		s.FallbackRedirectURL = s.BaseURL + "/api/v1/oauth/complete"
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyCacheDefaults(c *CacheConfig) {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Backend == "redis" && c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.ViewTTL == 0 {
		c.ViewTTL = 300 * time.Second
	}
}

func applyOAuthDefaults(o *OAuthConfig) {
	if o.StateTTL == 0 {
		o.StateTTL = 10 * time.Minute
	}
	if o.RefreshLookahead == 0 {
		o.RefreshLookahead = 5 * time.Minute
	}
	if o.ExchangeTimeout == 0 {
		o.ExchangeTimeout = 15 * time.Second
	}
	if o.RefreshConcurrency == 0 {
		o.RefreshConcurrency = 8
	}
	if o.RateLimit.PerSecond == 0 {
		o.RateLimit.PerSecond = 5.0
	}
	if o.RateLimit.Burst == 0 {
		o.RateLimit.Burst = 10
	}
}

// builtinMarketplaces are used when the config lists none, and fill in
// endpoints for listed entries that reuse a known slug.
var builtinMarketplaces = []MarketplaceConfig{
	{
		ID:           1,
		Slug:         "ebay",
		Name:         "eBay",
		IconURL:      "https://ir.ebaystatic.com/cr/v/c1/ebay-logo-1-1200x630-margin.png",
		AuthorizeURL: "https://auth.ebay.com/oauth2/authorize",
		TokenURL:     "https://api.ebay.com/identity/v1/oauth2/token",
		Scope:        "https://api.ebay.com/oauth/api_scope",
	},
	{
		ID:           2,
		Slug:         "facebook",
		Name:         "Facebook Marketplace",
		IconURL:      "https://www.facebook.com/images/fb_icon_325x325.png",
		AuthorizeURL: "https://www.facebook.com/v12.0/dialog/oauth",
		TokenURL:     "https://graph.facebook.com/v12.0/oauth/access_token",
		Scope:        "marketplace_management",
	},
}

func applyMarketplaceDefaults(ms []MarketplaceConfig, baseURL string) []MarketplaceConfig {
	if len(ms) == 0 {
		ms = make([]MarketplaceConfig, len(builtinMarketplaces))
		copy(ms, builtinMarketplaces)
	}

	for i := range ms {
		m := &ms[i]
		for _, b := range builtinMarketplaces {
			if b.Slug != m.Slug {
				continue
			}
			if m.ID == 0 {
				m.ID = b.ID
			}
			if m.Name == "" {
				m.Name = b.Name
			}
			if m.IconURL == "" {
				m.IconURL = b.IconURL
			}
			if m.AuthorizeURL == "" {
				m.AuthorizeURL = b.AuthorizeURL
			}
			if m.TokenURL == "" {
				m.TokenURL = b.TokenURL
			}
			if m.Scope == "" {
				m.Scope = b.Scope
			}
		}
		if m.RedirectURI == "" && m.Slug != "" {
			m.RedirectURI = baseURL + "/api/v1/oauth/callback/" + m.Slug
		}
	}

	return ms
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.TokenRefreshInterval == 0 {
		s.TokenRefreshInterval = 2 * time.Hour
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "marketplace-connections"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}
	if _, err := cfg.Database.EncryptionKey(); err != nil {
		errs = append(errs, fmt.Errorf("database.token_encryption_key: %w", err))
	}

	switch cfg.Cache.Backend {
	case "memory", "redis":
	default:
		errs = append(
			errs,
			fmt.Errorf("cache.backend must be one of: memory, redis (got %q)", cfg.Cache.Backend),
		)
	}

	if cfg.OAuth.ExchangeTimeout > 15*time.Second {
		errs = append(errs, fmt.Errorf("oauth.exchange_timeout must not exceed 15s"))
	}
	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"),
		)
	}

	errs = append(errs, validateMarketplaces(cfg.Marketplaces)...)

	return errors.Join(errs...)
}

func validateMarketplaces(ms []MarketplaceConfig) []error {
	var errs []error
	ids := make(map[int]bool, len(ms))
	slugs := make(map[string]bool, len(ms))

	for i := range ms {
		m := &ms[i]
		prefix := fmt.Sprintf("marketplaces[%d]", i)

		if m.ID <= 0 {
			errs = append(errs, fmt.Errorf("%s.id must be a positive integer", prefix))
		} else if ids[m.ID] {
			errs = append(errs, fmt.Errorf("%s.id %d is duplicated", prefix, m.ID))
		}
		ids[m.ID] = true

		if m.Slug == "" {
			errs = append(errs, fmt.Errorf("%s.slug is required", prefix))
		} else if slugs[m.Slug] {
			errs = append(errs, fmt.Errorf("%s.slug %q is duplicated", prefix, m.Slug))
		}
		slugs[m.Slug] = true

		if !m.IsSupported() {
			continue
		}
		if m.AuthorizeURL == "" {
			errs = append(errs, fmt.Errorf("%s.authorize_url is required", prefix))
		}
		if m.TokenURL == "" {
			errs = append(errs, fmt.Errorf("%s.token_url is required", prefix))
		}
		if m.ClientID == "" {
			errs = append(errs, fmt.Errorf("%s.client_id is required", prefix))
		}
		if m.ClientSecret == "" {
			errs = append(errs, fmt.Errorf("%s.client_secret is required", prefix))
		}
	}

	return errs
}
