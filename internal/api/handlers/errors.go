package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/marketplace-connections/internal/engine"
	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	"github.com/donaldgifford/marketplace-connections/internal/oauth"
	"github.com/donaldgifford/marketplace-connections/internal/store"
)

// toHTTPError maps engine errors to API status errors. op prefixes the
// message of unexpected failures.
func toHTTPError(op string, err error) error {
	switch {
	case errors.Is(err, marketplace.ErrNotSupported):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, engine.ErrInvalidStatus):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, engine.ErrAlreadyInState):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, oauth.ErrInvalidState):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, engine.ErrNotConnected):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, engine.ErrMissingToken):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, oauth.ErrExchange):
		return huma.Error502BadGateway(err.Error())
	default:
		return huma.Error500InternalServerError(op + " failed: " + err.Error())
	}
}
