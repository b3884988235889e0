package engine

import "errors"

var (
	// ErrNotConnected is returned when a user has no active connection to
	// the marketplace.
	ErrNotConnected = errors.New("marketplace not connected")

	// ErrMissingToken is returned when a connection is set active without a
	// stored access token.
	ErrMissingToken = errors.New("active connection requires an access token")

	// ErrInvalidStatus is returned for statuses that cannot be stored.
	ErrInvalidStatus = errors.New("invalid connection status")

	// ErrAlreadyInState is returned when a link or unlink request would not
	// change the connection.
	ErrAlreadyInState = errors.New("connection already in requested state")
)
