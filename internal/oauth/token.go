package oauth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	domain "github.com/donaldgifford/marketplace-connections/pkg/types"
)

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    json.RawMessage `json:"expires_in"`
	TokenType    string          `json:"token_type"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// UnmarshalJSON accepts both the RFC 6749 shape and Facebook's nested
// {"error":{"message":...,"type":...}} object.
func (t *tokenErrorResponse) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := raw["error_description"]; ok {
		_ = json.Unmarshal(v, &t.ErrorDescription) //nolint:errcheck // best-effort
	}
	v, ok := raw["error"]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(v, &t.Error); err == nil {
		return nil
	}
	var fb struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(v, &fb); err != nil {
		return err
	}
	t.Error = fb.Type
	t.ErrorDescription = fb.Message
	return nil
}

// parseTokenResponse normalizes a successful token endpoint body.
func parseTokenResponse(body []byte) (*domain.TokenSet, error) {
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	secs, err := parseExpiresIn(resp.ExpiresIn)
	if err != nil {
		return nil, err
	}

	return &domain.TokenSet{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    time.Duration(secs) * time.Second,
	}, nil
}

// parseExpiresIn accepts an integer JSON number or a string of digits.
func parseExpiresIn(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("token response missing expires_in")
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("invalid expires_in: %w", err)
		}
	}

	secs, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expires_in is not an integer: %q", text)
	}
	if secs < 0 {
		return 0, fmt.Errorf("expires_in is negative: %d", secs)
	}
	return secs, nil
}
