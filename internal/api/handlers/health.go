package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a HealthHandler that checks the database and
// the cache on readiness.
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{checks: map[string]Pinger{
		"database": db,
		"cache":    cache,
	}}
}

// ReadyResponse is the readiness response body.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 if every dependency is reachable, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	code := http.StatusOK

	for name, p := range h.checks {
		if err := p.Ping(c.Request().Context()); err != nil {
			resp.Checks[name] = "unavailable"
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	return c.JSON(code, resp)
}

// RegisterHealthRoutes adds the probe endpoints to e.
func RegisterHealthRoutes(e *echo.Echo, h *HealthHandler) {
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)
}
