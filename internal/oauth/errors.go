package oauth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidState is returned when a state token is unknown, expired,
	// already used, malformed, or cannot be checked.
	ErrInvalidState = errors.New("invalid or expired OAuth state")

	// ErrExchange matches every *ExchangeError.
	ErrExchange = errors.New("token exchange failed")
)

// ExchangeError describes a rejected or malformed token endpoint response.
// Body is size-bounded and scrubbed of credentials.
type ExchangeError struct {
	Marketplace string
	Grant       string
	StatusCode  int
	Code        string
	Description string
	Body        string
	Reason      string
}

func (e *ExchangeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s exchange failed", e.Marketplace, e.Grant)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	switch {
	case e.Code != "" && e.Description != "":
		fmt.Fprintf(&b, ": %s - %s", e.Code, e.Description)
	case e.Code != "":
		fmt.Fprintf(&b, ": %s", e.Code)
	case e.Reason != "":
		fmt.Fprintf(&b, ": %s", e.Reason)
	case e.Body != "":
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrExchange) true for any *ExchangeError.
func (e *ExchangeError) Is(target error) bool {
	return target == ErrExchange
}
