package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/marketplace-connections/internal/engine"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// ConnectionsProvider defines the engine methods required by the
// marketplaces handler.
type ConnectionsProvider interface {
	GetMarketplacesForUser(ctx context.Context, userID string) ([]domain.MarketplaceView, error)
	LinkMarketplace(ctx context.Context, userID string, marketplaceID int, link bool) (*engine.LinkResult, error)
	UpdateStatus(
		ctx context.Context,
		userID string,
		marketplaceID int,
		status domain.ConnectionStatus,
		errorMessage *string,
	) error
	GetMarketplaceStatus(ctx context.Context, userID, slug string) (*domain.MarketplaceStatus, error)
	GenerateAuthorizationURL(ctx context.Context, slug, userID string) (string, error)
}

// MarketplacesHandler serves per-user marketplace connection endpoints.
type MarketplacesHandler struct {
	engine ConnectionsProvider
}

// NewMarketplacesHandler creates a new MarketplacesHandler.
func NewMarketplacesHandler(e ConnectionsProvider) *MarketplacesHandler {
	return &MarketplacesHandler{engine: e}
}

// UserInput identifies the user in the request path.
type UserInput struct {
	UserID string `path:"userId" minLength:"1" doc:"User identifier"`
}

// ListMarketplacesOutput is the per-user marketplace listing.
type ListMarketplacesOutput struct {
	Body []domain.MarketplaceView
}

// LinkInput is the request for a manual link toggle.
type LinkInput struct {
	UserID string `path:"userId" minLength:"1" doc:"User identifier"`
	Body   struct {
		MarketplaceID int  `json:"marketplace_id" minimum:"1" doc:"Marketplace ID" example:"1"`
		Link          bool `json:"link"                       doc:"true to link, false to unlink"`
	}
}

// LinkOutput is the outcome of a link toggle.
type LinkOutput struct {
	Body *engine.LinkResult
}

// UpdateStatusInput is the request for a direct status change.
type UpdateStatusInput struct {
	UserID        string `path:"userId"        minLength:"1" doc:"User identifier"`
	MarketplaceID int    `path:"marketplaceId" minimum:"1"   doc:"Marketplace ID"`
	Body          struct {
		Status       string  `json:"status"                  enum:"disconnected,pending,active" doc:"New connection status"`
		ErrorMessage *string `json:"error_message,omitempty" required:"false"                   doc:"Reason shown to the user"`
	}
}

// MarketplaceInput identifies a user and a marketplace slug.
type MarketplaceInput struct {
	UserID      string `path:"userId"      minLength:"1" doc:"User identifier"`
	Marketplace string `path:"marketplace" minLength:"1" doc:"Marketplace slug" example:"ebay"`
}

// MarketplaceStatusOutput is a single marketplace's connection state.
type MarketplaceStatusOutput struct {
	Body *domain.MarketplaceStatus
}

// AuthorizeOutput carries a provider consent URL.
type AuthorizeOutput struct {
	Body struct {
		AuthorizationURL string `json:"oauth_url" doc:"Provider consent URL"`
	}
}

// List returns every marketplace with the user's connection state.
func (h *MarketplacesHandler) List(ctx context.Context, input *UserInput) (*ListMarketplacesOutput, error) {
	views, err := h.engine.GetMarketplacesForUser(ctx, input.UserID)
	if err != nil {
		return nil, toHTTPError("listing marketplaces", err)
	}
	if views == nil {
		views = []domain.MarketplaceView{}
	}
	return &ListMarketplacesOutput{Body: views}, nil
}

// Link links or unlinks a marketplace for the user.
func (h *MarketplacesHandler) Link(ctx context.Context, input *LinkInput) (*LinkOutput, error) {
	res, err := h.engine.LinkMarketplace(ctx, input.UserID, input.Body.MarketplaceID, input.Body.Link)
	if err != nil {
		return nil, toHTTPError("linking marketplace", err)
	}
	return &LinkOutput{Body: res}, nil
}

// UpdateStatus sets the connection status directly.
func (h *MarketplacesHandler) UpdateStatus(ctx context.Context, input *UpdateStatusInput) (*struct{}, error) {
	err := h.engine.UpdateStatus(
		ctx,
		input.UserID,
		input.MarketplaceID,
		domain.ConnectionStatus(input.Body.Status),
		input.Body.ErrorMessage,
	)
	if err != nil {
		return nil, toHTTPError("updating status", err)
	}
	return nil, nil
}

// Status returns the connection and token state for one marketplace.
func (h *MarketplacesHandler) Status(ctx context.Context, input *MarketplaceInput) (*MarketplaceStatusOutput, error) {
	st, err := h.engine.GetMarketplaceStatus(ctx, input.UserID, input.Marketplace)
	if err != nil {
		return nil, toHTTPError("fetching marketplace status", err)
	}
	return &MarketplaceStatusOutput{Body: st}, nil
}

// Authorize issues a fresh consent URL for the marketplace.
func (h *MarketplacesHandler) Authorize(ctx context.Context, input *MarketplaceInput) (*AuthorizeOutput, error) {
	u, err := h.engine.GenerateAuthorizationURL(ctx, input.Marketplace, input.UserID)
	if err != nil {
		return nil, toHTTPError("generating authorization url", err)
	}
	out := &AuthorizeOutput{}
	out.Body.AuthorizationURL = u
	return out, nil
}

// RegisterMarketplaceRoutes registers marketplace endpoints with the Huma API.
func RegisterMarketplaceRoutes(api huma.API, h *MarketplacesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-marketplaces",
		Method:      http.MethodGet,
		Path:        "/api/v1/marketplaces/{userId}",
		Summary:     "List marketplaces for a user",
		Description: "Returns every known marketplace with the user's connection status. " +
			"Supported marketplaces that are not active include an authorization URL.",
		Tags:   []string{"marketplaces"},
		Errors: []int{http.StatusInternalServerError},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "link-marketplace",
		Method:      http.MethodPost,
		Path:        "/api/v1/marketplaces/{userId}/link",
		Summary:     "Link or unlink a marketplace",
		Description: "Unlinking disconnects and clears stored tokens. Linking a marketplace " +
			"that is not active returns an authorization URL to complete in the browser.",
		Tags: []string{"marketplaces"},
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, h.Link)

	huma.Register(api, huma.Operation{
		OperationID:   "update-connection-status",
		Method:        http.MethodPatch,
		Path:          "/api/v1/marketplaces/{userId}/marketplace/{marketplaceId}/status",
		Summary:       "Update connection status",
		Description:   "Sets the stored connection status. Active requires an existing access token.",
		Tags:          []string{"marketplaces"},
		DefaultStatus: http.StatusNoContent,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
		},
	}, h.UpdateStatus)

	huma.Register(api, huma.Operation{
		OperationID: "get-marketplace-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/marketplaces/{userId}/{marketplace}/status",
		Summary:     "Get marketplace connection status",
		Description: "Returns the connection status and access token freshness for one marketplace.",
		Tags:        []string{"marketplaces"},
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.Status)

	huma.Register(api, huma.Operation{
		OperationID: "authorize-marketplace",
		Method:      http.MethodGet,
		Path:        "/api/v1/marketplaces/{userId}/{marketplace}/authorize",
		Summary:     "Get an authorization URL",
		Description: "Issues a single-use state token and returns the provider consent URL.",
		Tags:        []string{"oauth"},
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.Authorize)
}
