// Package marketplace holds the static catalog of marketplaces the service
// can connect to, along with each marketplace's OAuth client settings.
package marketplace

import (
	"errors"
	"fmt"

	"github.com/donaldgifford/marketplace-connections/internal/config"
	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

// ErrNotSupported is returned for unknown slugs and for marketplaces that
// do not accept new connections.
var ErrNotSupported = errors.New("marketplace not supported")

// OAuthSettings is the OAuth2 client configuration for one marketplace.
type OAuthSettings struct {
	AuthorizeURL     string
	TokenURL         string
	ClientID         string
	ClientSecret     string
	RedirectURI      string
	Scope            string
	AdditionalParams map[string]string
}

// Definition describes one marketplace.
type Definition struct {
	ID             int
	Slug           string
	Name           string
	IconURL        string
	Supported      bool
	OAuth          OAuthSettings
	MobileDeepLink string
}

// Info returns the public view of the definition.
func (d Definition) Info() domain.MarketplaceInfo {
	return domain.MarketplaceInfo{
		ID:        d.ID,
		Slug:      d.Slug,
		Name:      d.Name,
		IconURL:   d.IconURL,
		Supported: d.Supported,
	}
}

// Registry is an immutable, ordered set of marketplace definitions.
// It is safe for concurrent use.
type Registry struct {
	ordered []Definition
	bySlug  map[string]int
	byID    map[int]int
}

// NewRegistry builds a registry. Definitions keep their given order.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		ordered: make([]Definition, 0, len(defs)),
		bySlug:  make(map[string]int, len(defs)),
		byID:    make(map[int]int, len(defs)),
	}

	for _, d := range defs {
		if d.Slug == "" {
			return nil, fmt.Errorf("marketplace %d has no slug", d.ID)
		}
		if _, ok := r.bySlug[d.Slug]; ok {
			return nil, fmt.Errorf("duplicate marketplace slug %q", d.Slug)
		}
		if _, ok := r.byID[d.ID]; ok {
			return nil, fmt.Errorf("duplicate marketplace id %d", d.ID)
		}
		r.bySlug[d.Slug] = len(r.ordered)
		r.byID[d.ID] = len(r.ordered)
		r.ordered = append(r.ordered, d)
	}

	return r, nil
}

// FromConfig builds a registry from loaded configuration.
func FromConfig(ms []config.MarketplaceConfig) (*Registry, error) {
	defs := make([]Definition, 0, len(ms))
	for i := range ms {
		m := &ms[i]
		params := make(map[string]string, len(m.AdditionalParams))
		for k, v := range m.AdditionalParams {
			params[k] = v
		}
		defs = append(defs, Definition{
			ID:        m.ID,
			Slug:      m.Slug,
			Name:      m.Name,
			IconURL:   m.IconURL,
			Supported: m.IsSupported(),
			OAuth: OAuthSettings{
				AuthorizeURL:     m.AuthorizeURL,
				TokenURL:         m.TokenURL,
				ClientID:         m.ClientID,
				ClientSecret:     m.ClientSecret,
				RedirectURI:      m.RedirectURI,
				Scope:            m.Scope,
				AdditionalParams: params,
			},
			MobileDeepLink: m.MobileDeepLink,
		})
	}
	return NewRegistry(defs...)
}

// Get looks up a definition by slug.
func (r *Registry) Get(slug string) (Definition, bool) {
	i, ok := r.bySlug[slug]
	if !ok {
		return Definition{}, false
	}
	return r.ordered[i], true
}

// GetByID looks up a definition by numeric id.
func (r *Registry) GetByID(id int) (Definition, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Definition{}, false
	}
	return r.ordered[i], true
}

// Lookup returns the supported definition for slug, or ErrNotSupported.
func (r *Registry) Lookup(slug string) (Definition, error) {
	d, ok := r.Get(slug)
	if !ok || !d.Supported {
		return Definition{}, fmt.Errorf("%w: %q", ErrNotSupported, slug)
	}
	return d, nil
}

// All returns every definition in configured order.
func (r *Registry) All() []Definition {
	out := make([]Definition, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Supported returns the definitions that accept new connections.
func (r *Registry) Supported() []Definition {
	var out []Definition
	for _, d := range r.ordered {
		if d.Supported {
			out = append(out, d)
		}
	}
	return out
}

// IsSupported reports whether slug names a supported marketplace.
func (r *Registry) IsSupported(slug string) bool {
	d, ok := r.Get(slug)
	return ok && d.Supported
}
