package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
)

// ErrorBody is the response written after a recovered panic.
type ErrorBody struct {
	Title     string `json:"title"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// Recovery returns Echo middleware that recovers from panics, logs the stack
// trace, and returns a 500 problem response carrying the request ID.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)
					reqID := RequestIDFrom(c.Request().Context())

					log.Error("panic recovered",
						"error", fmt.Sprint(r),
						"method", c.Request().Method,
						"path", c.Request().URL.Path,
						"request_id", reqID,
						"stack", string(buf[:n]),
					)

					if c.Response().Committed {
						return
					}
					c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
					err = c.JSON(http.StatusInternalServerError, ErrorBody{
						Title:     "internal server error",
						Status:    http.StatusInternalServerError,
						RequestID: reqID,
					})
				}
			}()
			return next(c)
		}
	}
}
