// Package oauth implements the OAuth2 plumbing for marketplace connections:
// single-use state tokens, authorization URLs, and authorization code and
// refresh token exchange against each marketplace's token endpoint.
package oauth

import (
	"net/http"
	"net/url"

	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
)

// Grant types sent to token endpoints.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

// Provider adapts token requests to one marketplace's endpoint quirks.
type Provider interface {
	// CodeForm returns the body for an authorization code exchange.
	CodeForm(def marketplace.Definition, code string) url.Values
	// RefreshForm returns the body for a refresh token exchange.
	RefreshForm(def marketplace.Definition, refreshToken string) url.Values
	// Authenticate adds client credentials and headers to req.
	Authenticate(req *http.Request, def marketplace.Definition)
}

// GenericProvider sends client credentials in the form body, as most OAuth2
// servers (including Facebook) accept.
type GenericProvider struct{}

// CodeForm implements Provider.
func (GenericProvider) CodeForm(def marketplace.Definition, code string) url.Values {
	return url.Values{
		"grant_type":    {GrantAuthorizationCode},
		"code":          {code},
		"redirect_uri":  {def.OAuth.RedirectURI},
		"client_id":     {def.OAuth.ClientID},
		"client_secret": {def.OAuth.ClientSecret},
	}
}

// RefreshForm implements Provider.
func (GenericProvider) RefreshForm(def marketplace.Definition, refreshToken string) url.Values {
	return url.Values{
		"grant_type":    {GrantRefreshToken},
		"refresh_token": {refreshToken},
		"client_id":     {def.OAuth.ClientID},
		"client_secret": {def.OAuth.ClientSecret},
	}
}

// Authenticate implements Provider. Credentials travel in the body.
func (GenericProvider) Authenticate(req *http.Request, _ marketplace.Definition) {
	req.Header.Set("Accept", "application/json")
}

// DefaultProviders maps marketplace slugs to their adapters. Slugs not listed
// use GenericProvider.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		"ebay":     EbayProvider{},
		"facebook": GenericProvider{},
	}
}
