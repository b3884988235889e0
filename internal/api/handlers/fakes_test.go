package handlers_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-connections/internal/engine"
	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

type linkCall struct {
	userID        string
	marketplaceID int
	link          bool
}

type statusCall struct {
	userID        string
	marketplaceID int
	status        domain.ConnectionStatus
	errorMessage  *string
}

type callbackCall struct {
	slug, code, state, reason string
}

// fakeEngine is a test double for the engine-facing handler interfaces.
type fakeEngine struct {
	mu sync.Mutex

	registry *marketplace.Registry

	views    []domain.MarketplaceView
	viewsErr error

	link      *engine.LinkResult
	linkErr   error
	linkCalls []linkCall

	statusErr   error
	statusCalls []statusCall

	marketStatus    *domain.MarketplaceStatus
	marketStatusErr error

	authURL string
	authErr error

	callbackRes   *engine.CallbackResult
	callbackErr   error
	callbackCalls []callbackCall

	denialRes   *engine.CallbackResult
	denialErr   error
	denialCalls []callbackCall

	report    domain.RefreshReport
	reportErr error
}

func (f *fakeEngine) GetMarketplacesForUser(_ context.Context, _ string) ([]domain.MarketplaceView, error) {
	return f.views, f.viewsErr
}

func (f *fakeEngine) LinkMarketplace(
	_ context.Context,
	userID string,
	marketplaceID int,
	link bool,
) (*engine.LinkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linkCalls = append(f.linkCalls, linkCall{userID, marketplaceID, link})
	return f.link, f.linkErr
}

func (f *fakeEngine) UpdateStatus(
	_ context.Context,
	userID string,
	marketplaceID int,
	status domain.ConnectionStatus,
	errorMessage *string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, statusCall{userID, marketplaceID, status, errorMessage})
	return f.statusErr
}

func (f *fakeEngine) GetMarketplaceStatus(_ context.Context, _, _ string) (*domain.MarketplaceStatus, error) {
	return f.marketStatus, f.marketStatusErr
}

func (f *fakeEngine) GenerateAuthorizationURL(_ context.Context, _, _ string) (string, error) {
	return f.authURL, f.authErr
}

func (f *fakeEngine) HandleOAuthCallback(
	_ context.Context,
	slug, code, state string,
) (*engine.CallbackResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbackCalls = append(f.callbackCalls, callbackCall{slug: slug, code: code, state: state})
	return f.callbackRes, f.callbackErr
}

func (f *fakeEngine) HandleOAuthDenial(
	_ context.Context,
	slug, state, reason string,
) (*engine.CallbackResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denialCalls = append(f.denialCalls, callbackCall{slug: slug, state: state, reason: reason})
	return f.denialRes, f.denialErr
}

func (f *fakeEngine) Registry() *marketplace.Registry { return f.registry }

func (f *fakeEngine) RefreshExpiringTokens(_ context.Context) (domain.RefreshReport, error) {
	return f.report, f.reportErr
}

func testRegistry(t *testing.T) *marketplace.Registry {
	t.Helper()

	reg, err := marketplace.NewRegistry(
		marketplace.Definition{
			ID:             1,
			Slug:           "ebay",
			Name:           "eBay",
			Supported:      true,
			MobileDeepLink: "sellerapp://oauth/ebay",
		},
		marketplace.Definition{ID: 2, Slug: "facebook", Name: "Facebook Marketplace", Supported: true},
		marketplace.Definition{ID: 3, Slug: "mercari", Name: "Mercari"},
	)
	require.NoError(t, err)
	return reg
}

func ebayInfo() domain.MarketplaceInfo {
	return domain.MarketplaceInfo{ID: 1, Slug: "ebay", Name: "eBay", Supported: true}
}
