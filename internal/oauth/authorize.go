package oauth

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
)

// AuthorizationURL builds the provider consent URL for def carrying state.
// Additional parameters are appended after the standard ones and may not
// override them.
func AuthorizationURL(def marketplace.Definition, state string) (string, error) {
	base, err := url.Parse(def.OAuth.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("parsing authorize url for %s: %w", def.Slug, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("authorize url for %s is not absolute", def.Slug)
	}

	q := base.Query()
	q.Set("client_id", def.OAuth.ClientID)
	q.Set("redirect_uri", def.OAuth.RedirectURI)
	q.Set("scope", def.OAuth.Scope)
	q.Set("response_type", "code")
	q.Set("state", state)

	keys := make([]string, 0, len(def.OAuth.AdditionalParams))
	for k := range def.OAuth.AdditionalParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case "client_id", "redirect_uri", "scope", "response_type", "state":
			continue
		}
		q.Set(k, def.OAuth.AdditionalParams[k])
	}

	base.RawQuery = q.Encode()
	return base.String(), nil
}
