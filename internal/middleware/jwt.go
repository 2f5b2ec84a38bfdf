package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/property-listing/internal/utils" // token parsing shared with the session slices
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// issued by an admin or master login and injects the principal into the
// request context.  Handlers read it back with PrincipalFrom, or through
// the raw "user_id", "user_name" and "role" keys.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

            // ParseAccessToken accepts HMAC-signed, unexpired tokens only.
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            c.Set(ctxUserID, claims.Subject)
            c.Set(ctxUserName, claims.Name)
            c.Set(ctxRole, claims.Role)
            return next(c)
        }
    }
}
