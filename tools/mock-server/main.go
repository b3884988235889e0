// Package main implements a mock OAuth2 provider for local development.
// It issues authorization codes from a consent endpoint that redirects
// straight back to the caller and exchanges them at a token endpoint,
// accepting either eBay style Basic auth or client credentials in the body.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"
)

type provider struct {
	log       *slog.Logger
	expiresIn int

	mu       sync.Mutex
	codes    map[string]string // code -> client_id
	refresh  map[string]string // refresh token -> client_id
	denyNext bool
}

func newProvider(log *slog.Logger, expiresIn int) *provider {
	return &provider{
		log:       log,
		expiresIn: expiresIn,
		codes:     make(map[string]string),
		refresh:   make(map[string]string),
	}
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	expiresIn := flag.Int("expires-in", 7200, "access token lifetime in seconds")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := newProvider(logger, *expiresIn)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock OAuth provider", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, p.routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (p *provider) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{slug}/authorize", p.authorizeHandler)
	mux.HandleFunc("POST /{slug}/token", p.tokenHandler)
	mux.HandleFunc("POST /deny-next", p.denyNextHandler)
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// authorizeHandler skips consent and redirects to redirect_uri with a code,
// or with error=access_denied after a deny-next call.
func (p *provider) authorizeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirectURI := q.Get("redirect_uri")
	clientID := q.Get("client_id")
	if redirectURI == "" || clientID == "" || q.Get("response_type") != "code" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request",
			"client_id, redirect_uri and response_type=code are required")
		return
	}

	target, err := url.Parse(redirectURI)
	if err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "malformed redirect_uri")
		return
	}

	params := target.Query()
	params.Set("state", q.Get("state"))

	p.mu.Lock()
	deny := p.denyNext
	p.denyNext = false
	if !deny {
		code := "mock-code-" + randomHex()
		p.codes[code] = clientID
		params.Set("code", code)
	}
	p.mu.Unlock()

	if deny {
		params.Set("error", "access_denied")
		params.Set("error_description", "The user denied the request")
	}

	target.RawQuery = params.Encode()
	p.log.Info("authorization redirect", "marketplace", r.PathValue("slug"), "denied", deny)
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (p *provider) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	clientID, _, ok := r.BasicAuth()
	if !ok {
		clientID = r.PostForm.Get("client_id")
		if clientID == "" || r.PostForm.Get("client_secret") == "" {
			writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
			return
		}
	}

	var issued bool
	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		issued = p.redeem(p.codes, r.PostForm.Get("code"), clientID)
	case "refresh_token":
		issued = p.redeem(p.refresh, r.PostForm.Get("refresh_token"), clientID)
	default:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "grant_type not supported")
		return
	}
	if !issued {
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "the provided grant is invalid or expired")
		return
	}

	refreshToken := "mock-refresh-" + randomHex()
	p.mu.Lock()
	p.refresh[refreshToken] = clientID
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(map[string]any{
		"access_token":  "mock-access-" + randomHex(),
		"refresh_token": refreshToken,
		"expires_in":    p.expiresIn,
		"token_type":    "Bearer",
	})
	p.log.Info("issued mock token", "marketplace", r.PathValue("slug"), "grant_type", r.PostForm.Get("grant_type"))
}

func (p *provider) denyNextHandler(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	p.denyNext = true
	p.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// redeem consumes a single-use grant owned by clientID.
func (p *provider) redeem(grants map[string]string, grant, clientID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	owner, ok := grants[grant]
	if !ok || owner != clientID {
		return false
	}
	delete(grants, grant)
	return true
}

func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	})
}

func randomHex() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
