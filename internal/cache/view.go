package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

const (
	viewKeyPrefix = "marketplaces:view:"
	genKeyPrefix  = "marketplaces:view-gen:"

	// initialGeneration is used until a user's view is first invalidated.
	initialGeneration = "0"

	minGenerationTTL = 24 * time.Hour
)

// ViewCache stores the computed marketplace listing per user.
//
// Views are keyed by a per-user generation. Invalidate starts a new
// generation, so a view computed from a store read that raced the
// invalidation is written under a key no later reader looks up.
type ViewCache struct {
	cache  Cache
	ttl    time.Duration
	genTTL time.Duration
}

// NewViewCache wraps c. Entries expire after ttl.
func NewViewCache(c Cache, ttl time.Duration) *ViewCache {
	return &ViewCache{cache: c, ttl: ttl, genTTL: max(minGenerationTTL, 2*ttl)}
}

// ViewKey returns the cache key for a user's view in generation gen.
func ViewKey(userID, gen string) string {
	return viewKeyPrefix + userID + ":" + gen
}

// GenerationKey returns the cache key holding a user's current generation.
func GenerationKey(userID string) string {
	return genKeyPrefix + userID
}

// Get returns the cached view and the generation it was looked up in. The
// bool is false on a miss; err is set only when the backend failed or the
// entry could not be decoded. gen is empty when the generation itself
// could not be read, and such a result must not be cached.
func (v *ViewCache) Get(ctx context.Context, userID string) ([]domain.MarketplaceView, string, bool, error) {
	gen, err := v.generation(ctx, userID)
	if err != nil {
		return nil, "", false, err
	}

	b, err := v.cache.Get(ctx, ViewKey(userID, gen))
	if errors.Is(err, ErrMiss) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, err
	}

	var views []domain.MarketplaceView
	if err := json.Unmarshal(b, &views); err != nil {
		return nil, gen, false, fmt.Errorf("decoding cached view: %w", err)
	}
	return views, gen, true, nil
}

// Set stores views for userID under gen, the generation returned by the
// Get that preceded the store read.
func (v *ViewCache) Set(ctx context.Context, userID, gen string, views []domain.MarketplaceView) error {
	if gen == "" {
		return errors.New("caching view: unknown generation")
	}
	b, err := json.Marshal(views)
	if err != nil {
		return fmt.Errorf("encoding view: %w", err)
	}
	return v.cache.Set(ctx, ViewKey(userID, gen), b, v.ttl)
}

// Invalidate starts a new generation for userID, retiring every view
// cached so far.
func (v *ViewCache) Invalidate(ctx context.Context, userID string) error {
	return v.cache.Set(ctx, GenerationKey(userID), []byte(uuid.NewString()), v.genTTL)
}

func (v *ViewCache) generation(ctx context.Context, userID string) (string, error) {
	b, err := v.cache.Get(ctx, GenerationKey(userID))
	if errors.Is(err, ErrMiss) {
		return initialGeneration, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading view generation: %w", err)
	}
	return string(b), nil
}
