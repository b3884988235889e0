package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListMarketplaces(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{
			name:       "problem detail",
			status:     http.StatusConflict,
			body:       `{"title":"Conflict","status":409,"detail":"marketplace not connected"}`,
			wantDetail: "marketplace not connected",
		},
		{
			name:       "title only",
			status:     http.StatusInternalServerError,
			body:       `{"title":"internal server error","status":500}`,
			wantDetail: "internal server error",
		},
		{
			name:       "plain text",
			status:     http.StatusBadGateway,
			body:       "bad gateway\n",
			wantDetail: "bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).ListMarketplaces(context.Background(), "user-1")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
		})
	}
}

func TestClient_ListMarketplaces(t *testing.T) {
	t.Parallel()

	views := []domain.MarketplaceView{
		{
			Marketplace: domain.MarketplaceInfo{ID: 1, Slug: "ebay", Name: "eBay", Supported: true},
			Status:      domain.StatusActive,
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/marketplaces/user%201", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(views)
	}))
	defer srv.Close()

	result, err := New(srv.URL).ListMarketplaces(context.Background(), "user 1")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, domain.StatusActive, result[0].Status)
}

func TestClient_LinkMarketplace(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/marketplaces/user-1/link", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.InDelta(t, 2.0, body["marketplace_id"], 0)
		assert.Equal(t, true, body["link"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"marketplace":{"id":2,"slug":"facebook","name":"Facebook","supported":true},` +
			`"connection_status":"disconnected","oauth_url":"https://www.facebook.com/v19.0/dialog/oauth?state=x"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).LinkMarketplace(context.Background(), "user-1", 2, true)
	require.NoError(t, err)
	assert.Equal(t, "facebook", res.Marketplace.Slug)
	assert.Equal(t, "https://www.facebook.com/v19.0/dialog/oauth?state=x", res.AuthorizationURL)
}

func TestClient_SetStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		message  string
		wantBody string
	}{
		{name: "with message", message: "Revoked", wantBody: `{"error_message":"Revoked","status":"disconnected"}`},
		{name: "without message", wantBody: `{"status":"disconnected"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				assert.Equal(t, "/api/v1/marketplaces/user-1/marketplace/1/status", r.URL.Path)

				var body map[string]any
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				got, _ := json.Marshal(body)
				assert.JSONEq(t, tt.wantBody, string(got))
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			err := New(srv.URL).SetStatus(context.Background(), "user-1", 1, domain.StatusDisconnected, tt.message)
			require.NoError(t, err)
		})
	}
}

func TestClient_StatusAndAuthorize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/marketplaces/user-1/ebay/status":
			_, _ = w.Write([]byte(`{"marketplace":{"id":1,"slug":"ebay","name":"eBay","supported":true},` +
				`"connection_status":"active","token_status":"expired"}`))
		case "/api/v1/marketplaces/user-1/ebay/authorize":
			_, _ = w.Write([]byte(`{"oauth_url":"https://auth.ebay.com/oauth2/authorize?state=s"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)

	st, err := c.GetMarketplaceStatus(context.Background(), "user-1", "ebay")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenExpired, st.TokenStatus)

	u, err := c.AuthorizationURL(context.Background(), "user-1", "ebay")
	require.NoError(t, err)
	assert.Equal(t, "https://auth.ebay.com/oauth2/authorize?state=s", u)
}

func TestClient_RefreshTokens(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tokens/refresh", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"scanned":4,"refreshed":3,"failed":1,"skipped":0,` +
			`"failures":[{"user_id":"u2","marketplace_id":1,"reason":"Token refresh failed: invalid_grant"}]}`))
	}))
	defer srv.Close()

	report, err := New(srv.URL).RefreshTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Scanned)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "u2", report.Failures[0].UserID)
}
