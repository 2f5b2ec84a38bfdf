package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/property-listing/internal/auth"
)

// SessionSource exposes the state of a session slice.
type SessionSource interface {
    State() auth.SessionState
}

// RequireSessionsReady holds back protected requests until every session
// has finished restoring.  While one is still initializing the client gets
// 503 with Retry-After instead of a premature 401.
func RequireSessionsReady(sessions ...SessionSource) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            for _, s := range sessions {
                if st := s.State().Status; st == auth.Uninitialized || st == auth.Initializing {
                    c.Response().Header().Set("Retry-After", "1")
                    return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "session restore in progress"})
                }
            }
            return next(c)
        }
    }
}
