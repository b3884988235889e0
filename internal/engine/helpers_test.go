package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-connections/internal/cache"
	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	notifyMocks "github.com/donaldgifford/marketplace-connections/internal/notify/mocks"
	"github.com/donaldgifford/marketplace-connections/internal/oauth"
	oauthMocks "github.com/donaldgifford/marketplace-connections/internal/oauth/mocks"
	"github.com/donaldgifford/marketplace-connections/internal/store"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// quietLogger returns a logger that discards output for tests.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errCheckViolation = errors.New("active connection without access token")

// memStore is an in-memory store.Store with the same upsert and check
// semantics as the Postgres schema.
type memStore struct {
	mu    sync.Mutex
	rows  map[string]*domain.Connection
	lists int

	// afterGet and beforeList let tests pause a reader mid-operation. Set
	// them before the store is shared.
	afterGet   func()
	beforeList func()
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*domain.Connection)}
}

func rowKey(userID string, marketplaceID int) string {
	return fmt.Sprintf("%s/%d", userID, marketplaceID)
}

func copyConn(c *domain.Connection) *domain.Connection {
	cp := *c
	return &cp
}

func (m *memStore) GetConnection(_ context.Context, userID string, marketplaceID int) (*domain.Connection, error) {
	m.mu.Lock()
	c, ok := m.rows[rowKey(userID, marketplaceID)]
	if ok {
		c = copyConn(c)
	}
	m.mu.Unlock()

	if m.afterGet != nil {
		m.afterGet()
	}
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *memStore) ListConnectionsByUser(_ context.Context, userID string) ([]domain.Connection, error) {
	m.mu.Lock()
	m.lists++
	m.mu.Unlock()
	if m.beforeList != nil {
		m.beforeList()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Connection
	for _, c := range m.rows {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarketplaceID < out[j].MarketplaceID })
	return out, nil
}

func (m *memStore) ListExpiringConnections(_ context.Context, before time.Time) ([]domain.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Connection
	for _, c := range m.rows {
		if c.Status == domain.StatusActive && c.TokenExpiresAt != nil && !c.TokenExpiresAt.After(before) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memStore) UpsertConnection(_ context.Context, c *domain.Connection) error {
	if c.Status == domain.StatusActive && c.AccessToken == "" {
		return errCheckViolation
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rowKey(c.UserID, c.MarketplaceID)
	now := time.Now()
	if existing, ok := m.rows[key]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		c.ID = uuid.NewString()
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	m.rows[key] = copyConn(c)
	return nil
}

func (m *memStore) SetStatus(_ context.Context, u store.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rowKey(u.UserID, u.MarketplaceID)
	c, ok := m.rows[key]
	if !ok {
		c = &domain.Connection{
			ID:            uuid.NewString(),
			UserID:        u.UserID,
			MarketplaceID: u.MarketplaceID,
			CreatedAt:     time.Now(),
		}
	} else {
		c = copyConn(c)
	}

	c.Status = u.Status
	c.ErrorMessage = u.ErrorMessage
	if u.LastSyncAt != nil {
		c.LastSyncAt = u.LastSyncAt
	}
	if u.ClearTokens {
		c.AccessToken = ""
		c.RefreshToken = ""
		c.TokenExpiresAt = nil
	}
	if c.Status == domain.StatusActive && c.AccessToken == "" {
		return errCheckViolation
	}
	c.UpdatedAt = time.Now()
	m.rows[key] = c
	return nil
}

func (m *memStore) UpdateTokens(_ context.Context, u store.TokenUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.rows[rowKey(u.UserID, u.MarketplaceID)]
	if !ok || c.Status != domain.StatusActive {
		return false, nil
	}
	c.AccessToken = u.AccessToken
	if u.RefreshToken != "" {
		c.RefreshToken = u.RefreshToken
	}
	c.TokenExpiresAt = u.TokenExpiresAt
	c.ErrorMessage = nil
	c.UpdatedAt = time.Now()
	return true, nil
}

func (m *memStore) MarkRefreshFailed(_ context.Context, f store.RefreshFailure) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.rows[rowKey(f.UserID, f.MarketplaceID)]
	if !ok || c.Status != domain.StatusActive || !c.UpdatedAt.Equal(f.UpdatedAt) {
		return false, nil
	}
	c.Status = domain.StatusDisconnected
	c.ErrorMessage = &f.ErrorMessage
	c.UpdatedAt = time.Now()
	return true, nil
}

func (m *memStore) Ping(context.Context) error    { return nil }
func (m *memStore) Migrate(context.Context) error { return nil }

func (m *memStore) put(c domain.Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	m.rows[rowKey(c.UserID, c.MarketplaceID)] = &c
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// brokenCache fails every operation.
type brokenCache struct{}

var errCacheDown = errors.New("cache unavailable")

func (brokenCache) Get(context.Context, string) ([]byte, error) { return nil, errCacheDown }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errCacheDown
}
func (brokenCache) Delete(context.Context, string) error          { return errCacheDown }
func (brokenCache) Take(context.Context, string) ([]byte, error) { return nil, errCacheDown }
func (brokenCache) Ping(context.Context) error                   { return errCacheDown }
func (brokenCache) Close() error                                 { return nil }

func testRegistry(t *testing.T) *marketplace.Registry {
	t.Helper()

	oauthSettings := func(slug string) marketplace.OAuthSettings {
		return marketplace.OAuthSettings{
			AuthorizeURL: "https://auth.example.com/" + slug + "/authorize",
			TokenURL:     "https://auth.example.com/" + slug + "/token",
			ClientID:     slug + "-client",
			ClientSecret: slug + "-secret",
			RedirectURI:  "https://app.example.com/api/v1/oauth/callback/" + slug,
			Scope:        "read",
		}
	}

	reg, err := marketplace.NewRegistry(
		marketplace.Definition{ID: 1, Slug: "ebay", Name: "eBay", Supported: true, OAuth: oauthSettings("ebay")},
		marketplace.Definition{ID: 2, Slug: "facebook", Name: "Facebook Marketplace", Supported: true, OAuth: oauthSettings("facebook")},
		marketplace.Definition{ID: 3, Slug: "mercari", Name: "Mercari"},
	)
	require.NoError(t, err)
	return reg
}

type harness struct {
	eng       *Engine
	store     *memStore
	cache     *cache.MemoryCache
	views     *cache.ViewCache
	clock     *fakeClock
	exchanger *oauthMocks.MockTokenExchanger
	notifier  *notifyMocks.MockNotifier
}

func newHarness(t *testing.T, opts ...EngineOption) *harness {
	t.Helper()

	h := &harness{
		store:     newMemStore(),
		clock:     &fakeClock{now: testEpoch},
		exchanger: oauthMocks.NewMockTokenExchanger(t),
		notifier:  notifyMocks.NewMockNotifier(t),
	}
	h.cache = cache.NewMemoryCache(cache.WithMemoryNowFunc(h.clock.Now))
	h.views = cache.NewViewCache(h.cache, 5*time.Minute)
	states := oauth.NewStateService(h.cache,
		oauth.WithStateNowFunc(h.clock.Now),
		oauth.WithStateLogger(quietLogger()),
	)

	base := []EngineOption{
		WithLogger(quietLogger()),
		WithNowFunc(h.clock.Now),
		WithNotifier(h.notifier),
	}
	h.eng = NewEngine(h.store, testRegistry(t), states, h.exchanger, h.views, append(base, opts...)...)
	return h
}

// issueState runs the authorize step and returns the state carried by the
// resulting URL.
func (h *harness) issueState(t *testing.T, slug, userID string) string {
	t.Helper()

	raw, err := h.eng.GenerateAuthorizationURL(context.Background(), slug, userID)
	require.NoError(t, err)
	return stateOf(t, raw)
}

func stateOf(t *testing.T, rawURL string) string {
	t.Helper()

	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

// seedView stores a placeholder view so tests can observe invalidation.
func (h *harness) seedView(t *testing.T, userID string) {
	t.Helper()
	_, gen, _, err := h.views.Get(context.Background(), userID)
	require.NoError(t, err)
	require.NoError(t, h.views.Set(context.Background(), userID, gen, []domain.MarketplaceView{{}}))
}

func (h *harness) viewCached(t *testing.T, userID string) bool {
	t.Helper()
	_, _, hit, err := h.views.Get(context.Background(), userID)
	require.NoError(t, err)
	return hit
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }

func activeConn(userID string, marketplaceID int, expiresAt time.Time) domain.Connection {
	return domain.Connection{
		UserID:         userID,
		MarketplaceID:  marketplaceID,
		Status:         domain.StatusActive,
		AccessToken:    "access-old",
		RefreshToken:   "refresh-old",
		TokenExpiresAt: &expiresAt,
		LastSyncAt:     timePtr(testEpoch.Add(-time.Hour)),
	}
}

func rejection(slug, grant string) *oauth.ExchangeError {
	return &oauth.ExchangeError{
		Marketplace: slug,
		Grant:       grant,
		StatusCode:  400,
		Code:        "invalid_grant",
		Description: "the provided authorization grant is invalid",
	}
}
