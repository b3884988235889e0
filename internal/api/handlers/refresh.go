package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// TokenRefresher runs one batch token refresh.
type TokenRefresher interface {
	RefreshExpiringTokens(ctx context.Context) (domain.RefreshReport, error)
}

// RefreshHandler triggers token refresh on demand.
type RefreshHandler struct {
	engine TokenRefresher
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(e TokenRefresher) *RefreshHandler {
	return &RefreshHandler{engine: e}
}

// RefreshOutput is the batch refresh report.
type RefreshOutput struct {
	Body domain.RefreshReport
}

// Refresh refreshes every active connection close to expiry.
func (h *RefreshHandler) Refresh(ctx context.Context, _ *struct{}) (*RefreshOutput, error) {
	report, err := h.engine.RefreshExpiringTokens(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("token refresh failed: " + err.Error())
	}
	return &RefreshOutput{Body: report}, nil
}

// RegisterRefreshRoutes registers the token refresh trigger.
func RegisterRefreshRoutes(api huma.API, h *RefreshHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "refresh-tokens",
		Method:      http.MethodPost,
		Path:        "/api/v1/tokens/refresh",
		Summary:     "Refresh expiring tokens",
		Description: "Runs one batch refresh of active connections whose access tokens expire soon. " +
			"Per-connection failures are reported in the body.",
		Tags:   []string{"tokens"},
		Errors: []int{http.StatusInternalServerError},
	}, h.Refresh)
}
