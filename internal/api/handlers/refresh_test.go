package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-connections/internal/api/handlers"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

func TestRefreshTokens_Success(t *testing.T) {
	t.Parallel()

	f := &fakeEngine{report: domain.RefreshReport{
		Scanned:   3,
		Refreshed: 2,
		Failed:    1,
		Failures: []domain.RefreshFail{
			{UserID: "user-2", MarketplaceID: 1, Reason: "Token refresh failed: invalid_grant"},
		},
	}}
	_, api := humatest.New(t)
	handlers.RegisterRefreshRoutes(api, handlers.NewRefreshHandler(f))

	resp := api.Post("/api/v1/tokens/refresh")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, `"scanned":3`)
	assert.Contains(t, body, `"refreshed":2`)
	assert.Contains(t, body, `"reason":"Token refresh failed: invalid_grant"`)
}

func TestRefreshTokens_Error(t *testing.T) {
	t.Parallel()

	f := &fakeEngine{reportErr: errors.New("listing expiring connections: db down")}
	_, api := humatest.New(t)
	handlers.RegisterRefreshRoutes(api, handlers.NewRefreshHandler(f))

	resp := api.Post("/api/v1/tokens/refresh")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "token refresh failed")
}
