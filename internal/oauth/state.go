package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/donaldgifford/marketplace-connections/internal/cache"
	"github.com/donaldgifford/marketplace-connections/internal/metrics"
)

const (
	stateKeyPrefix = "oauth:state:"
	stateBytes     = 32
	// DefaultStateTTL bounds how long a user has to finish the provider flow.
	DefaultStateTTL = 10 * time.Minute
)

var stateTokenLen = base64.RawURLEncoding.EncodedLen(stateBytes)

type stateEntry struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StateService issues and consumes single-use OAuth state tokens.
type StateService struct {
	cache   cache.Cache
	ttl     time.Duration
	nowFunc func() time.Time
	log     *slog.Logger
}

// StateOption configures a StateService.
type StateOption func(*StateService)

// WithStateTTL overrides DefaultStateTTL.
func WithStateTTL(d time.Duration) StateOption {
	return func(s *StateService) {
		s.ttl = d
	}
}

// WithStateNowFunc overrides the clock for testing.
func WithStateNowFunc(f func() time.Time) StateOption {
	return func(s *StateService) {
		s.nowFunc = f
	}
}

// WithStateLogger sets the logger.
func WithStateLogger(l *slog.Logger) StateOption {
	return func(s *StateService) {
		s.log = l
	}
}

// NewStateService creates a StateService backed by c.
func NewStateService(c cache.Cache, opts ...StateOption) *StateService {
	s := &StateService{
		cache:   c,
		ttl:     DefaultStateTTL,
		nowFunc: time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StateKey returns the cache key for a state token.
func StateKey(token string) string {
	return stateKeyPrefix + token
}

// Issue creates a state token bound to userID. It fails if the cache cannot
// store the entry.
func (s *StateService) Issue(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("issuing state: empty user id")
	}

	raw := make([]byte, stateBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	entry, err := json.Marshal(stateEntry{UserID: userID, CreatedAt: s.nowFunc().UTC()})
	if err != nil {
		return "", fmt.Errorf("encoding state: %w", err)
	}

	if err := s.cache.Set(ctx, StateKey(token), entry, s.ttl); err != nil {
		return "", fmt.Errorf("storing state: %w", err)
	}

	metrics.StateTokensTotal.WithLabelValues("issued").Inc()
	return token, nil
}

// Consume validates and deletes a state token, returning the user it was
// issued for. Any failure, including an unreachable cache, yields
// ErrInvalidState.
func (s *StateService) Consume(ctx context.Context, token string) (string, error) {
	if !wellFormedState(token) {
		metrics.StateTokensTotal.WithLabelValues("invalid").Inc()
		return "", fmt.Errorf("%w: malformed token", ErrInvalidState)
	}

	raw, err := s.cache.Take(ctx, StateKey(token))
	if errors.Is(err, cache.ErrMiss) {
		metrics.StateTokensTotal.WithLabelValues("invalid").Inc()
		return "", fmt.Errorf("%w: not found", ErrInvalidState)
	}
	if err != nil {
		s.log.Error("state cache unavailable", "error", err)
		metrics.StateTokensTotal.WithLabelValues("invalid").Inc()
		return "", fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	var entry stateEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.UserID == "" {
		metrics.StateTokensTotal.WithLabelValues("invalid").Inc()
		return "", fmt.Errorf("%w: corrupt entry", ErrInvalidState)
	}

	if !entry.CreatedAt.IsZero() && s.nowFunc().Sub(entry.CreatedAt) >= s.ttl {
		metrics.StateTokensTotal.WithLabelValues("invalid").Inc()
		return "", fmt.Errorf("%w: expired", ErrInvalidState)
	}

	metrics.StateTokensTotal.WithLabelValues("consumed").Inc()
	return entry.UserID, nil
}

func wellFormedState(token string) bool {
	if len(token) != stateTokenLen {
		return false
	}
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
