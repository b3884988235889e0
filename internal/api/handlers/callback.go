package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/marketplace-connections/internal/engine"
	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	"github.com/donaldgifford/marketplace-connections/internal/oauth"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// Callback outcome values sent to the client in the status parameter.
const (
	CallbackSuccess = "success"
	CallbackError   = "error"
)

// User-facing callback failure messages.
const (
	msgUnsupported  = "Unsupported marketplace"
	msgInvalidState = "Authorization request expired or is invalid. Please try again."
	msgExchange     = "Failed to complete OAuth flow"
	msgUnexpected   = "An unexpected error occurred during the OAuth flow."
	msgDenied       = "Authorization was denied"
)

// CallbackProvider defines the engine methods required by the OAuth
// callback handler.
type CallbackProvider interface {
	HandleOAuthCallback(ctx context.Context, slug, code, state string) (*engine.CallbackResult, error)
	HandleOAuthDenial(ctx context.Context, slug, state, reason string) (*engine.CallbackResult, error)
	Registry() *marketplace.Registry
}

// CallbackHandler receives provider redirects and bounces the user back to
// the client application.
type CallbackHandler struct {
	engine   CallbackProvider
	fallback string
	log      *slog.Logger
}

// NewCallbackHandler creates a CallbackHandler. fallback is used when a
// marketplace has no deep link configured.
func NewCallbackHandler(e CallbackProvider, fallback string, log *slog.Logger) *CallbackHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CallbackHandler{engine: e, fallback: fallback, log: log}
}

// CallbackInput is the provider redirect.
type CallbackInput struct {
	Marketplace      string `path:"marketplace"       doc:"Marketplace slug"`
	Code             string `query:"code"             doc:"Authorization code"`
	State            string `query:"state"            doc:"State token issued with the authorization URL"`
	Error            string `query:"error"            doc:"Provider error code"`
	ErrorDescription string `query:"error_description" doc:"Provider error description"`
}

// RedirectOutput sends the user agent elsewhere.
type RedirectOutput struct {
	Status   int
	Location string `header:"Location"`
}

// CompleteInput is the landing page query when no deep link is configured.
type CompleteInput struct {
	Status           string `query:"status"           enum:"success,error"`
	Marketplace      string `query:"marketplace"`
	ConnectionStatus string `query:"connectionStatus"`
	Error            string `query:"error"`
}

// CompleteOutput echoes the callback outcome.
type CompleteOutput struct {
	Body struct {
		Status           string `json:"status"`
		Marketplace      string `json:"marketplace"`
		ConnectionStatus string `json:"connection_status,omitempty"`
		Error            string `json:"error,omitempty"`
	}
}

// Callback completes or records the outcome of an authorization and always
// answers with a redirect.
func (h *CallbackHandler) Callback(ctx context.Context, input *CallbackInput) (*RedirectOutput, error) {
	var (
		res *engine.CallbackResult
		err error
	)

	denied := input.Error != "" || input.Code == ""
	if denied {
		reason := input.ErrorDescription
		if reason == "" {
			reason = input.Error
		}
		res, err = h.engine.HandleOAuthDenial(ctx, input.Marketplace, input.State, reason)
	} else {
		res, err = h.engine.HandleOAuthCallback(ctx, input.Marketplace, input.Code, input.State)
	}

	params := url.Values{}
	params.Set("marketplace", input.Marketplace)

	switch {
	case err != nil:
		h.log.Warn("oauth callback failed",
			"marketplace", input.Marketplace,
			"error", err,
		)
		params.Set("status", CallbackError)
		params.Set("error", callbackMessage(err))
		params.Set("connectionStatus", string(domain.StatusDisconnected))
		if res != nil {
			params.Set("connectionStatus", string(res.Status))
		}
	case denied:
		params.Set("status", CallbackError)
		params.Set("error", msgDenied)
		params.Set("connectionStatus", string(res.Status))
	default:
		params.Set("status", CallbackSuccess)
		params.Set("connectionStatus", string(res.Status))
	}

	return &RedirectOutput{
		Status:   http.StatusFound,
		Location: withQuery(h.redirectBase(input.Marketplace), params),
	}, nil
}

// Complete is the landing endpoint used as the default fallback redirect.
func (*CallbackHandler) Complete(_ context.Context, input *CompleteInput) (*CompleteOutput, error) {
	out := &CompleteOutput{}
	out.Body.Status = input.Status
	out.Body.Marketplace = input.Marketplace
	out.Body.ConnectionStatus = input.ConnectionStatus
	out.Body.Error = input.Error
	return out, nil
}

func (h *CallbackHandler) redirectBase(slug string) string {
	if def, ok := h.engine.Registry().Get(slug); ok && def.MobileDeepLink != "" {
		return def.MobileDeepLink
	}
	return h.fallback
}

func withQuery(base string, params url.Values) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode()
}

func callbackMessage(err error) string {
	switch {
	case errors.Is(err, marketplace.ErrNotSupported):
		return msgUnsupported
	case errors.Is(err, oauth.ErrInvalidState):
		return msgInvalidState
	case errors.Is(err, oauth.ErrExchange):
		return msgExchange
	default:
		return msgUnexpected
	}
}

// RegisterCallbackRoutes registers the OAuth redirect endpoints.
func RegisterCallbackRoutes(api huma.API, h *CallbackHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "oauth-callback",
		Method:        http.MethodGet,
		Path:          "/api/v1/oauth/callback/{marketplace}",
		Summary:       "OAuth redirect target",
		Description:   "Completes the authorization code exchange and redirects to the client app.",
		Tags:          []string{"oauth"},
		DefaultStatus: http.StatusFound,
	}, h.Callback)

	huma.Register(api, huma.Operation{
		OperationID: "oauth-complete",
		Method:      http.MethodGet,
		Path:        "/api/v1/oauth/complete",
		Summary:     "OAuth completion landing",
		Description: "Fallback redirect target that reports the callback outcome as JSON.",
		Tags:        []string{"oauth"},
	}, h.Complete)
}
