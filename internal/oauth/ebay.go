package oauth

import (
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
)

// EbayProvider authenticates with HTTP Basic credentials and repeats the
// scope on refresh, as the eBay identity API requires.
type EbayProvider struct{}

// CodeForm implements Provider.
func (EbayProvider) CodeForm(def marketplace.Definition, code string) url.Values {
	return url.Values{
		"grant_type":   {GrantAuthorizationCode},
		"code":         {code},
		"redirect_uri": {def.OAuth.RedirectURI},
	}
}

// RefreshForm implements Provider.
func (EbayProvider) RefreshForm(def marketplace.Definition, refreshToken string) url.Values {
	form := url.Values{
		"grant_type":    {GrantRefreshToken},
		"refresh_token": {refreshToken},
	}
	if def.OAuth.Scope != "" {
		form.Set("scope", def.OAuth.Scope)
	}
	return form
}

// Authenticate implements Provider.
func (EbayProvider) Authenticate(req *http.Request, def marketplace.Definition) {
	creds := base64.StdEncoding.EncodeToString(
		[]byte(def.OAuth.ClientID + ":" + def.OAuth.ClientSecret),
	)
	req.Header.Set("Authorization", "Basic "+creds)
	req.Header.Set("Accept", "application/json")
}
