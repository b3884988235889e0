package oauth

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/donaldgifford/marketplace-connections/internal/marketplace"
	"github.com/donaldgifford/marketplace-connections/pkg/logger"
)

const (
	maxErrorBody = 512
	// minSecretLen keeps short values from masking ordinary words.
	minSecretLen = 8
)

var (
	jsonSecretField = regexp.MustCompile(`"([A-Za-z_]+)"\s*:\s*"[^"]*"`)
	formSecretField = regexp.MustCompile(`([A-Za-z_]+)=[^&\s]+`)
)

// redactBody masks credential values in a provider response body and caps
// its length. Any of the given secrets found verbatim is masked as well.
func redactBody(body []byte, secrets ...string) string {
	s := strings.TrimSpace(redactText(string(body), secrets...))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "...(truncated)"
	}
	return s
}

// redactText masks secret-named JSON and form fields in s and every
// occurrence of the given secrets.
func redactText(s string, secrets ...string) string {
	s = jsonSecretField.ReplaceAllStringFunc(s, func(m string) string {
		key := jsonSecretField.FindStringSubmatch(m)[1]
		if !logger.IsSecretKey(key) {
			return m
		}
		return `"` + key + `":"` + logger.Redacted + `"`
	})
	s = formSecretField.ReplaceAllStringFunc(s, func(m string) string {
		key := formSecretField.FindStringSubmatch(m)[1]
		if !logger.IsSecretKey(key) {
			return m
		}
		return key + "=" + logger.Redacted
	})
	for _, secret := range secrets {
		if len(secret) >= minSecretLen {
			s = strings.ReplaceAll(s, secret, logger.Redacted)
		}
	}
	return s
}

// sentSecrets collects the credential values carried by a token request.
func sentSecrets(def marketplace.Definition, form url.Values) []string {
	secrets := []string{def.OAuth.ClientSecret}
	for key, values := range form {
		if logger.IsSecretKey(key) {
			secrets = append(secrets, values...)
		}
	}
	return secrets
}
