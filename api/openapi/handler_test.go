package openapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/marketplace-connections/api/openapi"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()

	e := echo.New()
	cfg := huma.DefaultConfig("Marketplace Connections API", "test")
	cfg.OpenAPIPath = ""
	cfg.DocsPath = ""
	api := humaecho.New(e, cfg)

	openapi.RegisterRoutes(e, api)

	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
	}, func(context.Context, *struct{}) (*struct{}, error) {
		return nil, nil
	})
	return e
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		path         string
		wantStatus   int
		wantContains string
		wantLocation string
	}{
		{
			name:         "json document includes late operations",
			path:         "/swagger/swagger.json",
			wantStatus:   http.StatusOK,
			wantContains: `"operationId":"ping"`,
		},
		{
			name:         "yaml document",
			path:         "/swagger/swagger.yaml",
			wantStatus:   http.StatusOK,
			wantContains: "operationId: ping",
		},
		{
			name:         "ui page uses title",
			path:         "/swagger/index.html",
			wantStatus:   http.StatusOK,
			wantContains: "<title>Marketplace Connections API</title>",
		},
		{
			name:         "bare path redirects",
			path:         "/swagger",
			wantStatus:   http.StatusMovedPermanently,
			wantLocation: "/swagger/index.html",
		},
	}

	e := newServer(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantContains != "" {
				assert.Contains(t, rec.Body.String(), tt.wantContains)
			}
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}
