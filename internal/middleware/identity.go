package middleware

// identity.go holds the context keys written by JWTAuth and the helpers
// reading them back.  Requests without a token resolve to the "guest"
// principal.

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/property-listing/internal/model"
)

const (
    ctxUserID   = "user_id"
    ctxUserName = "user_name"
    ctxRole     = "role"

    guestID = "guest"
)

// PrincipalFrom returns the authenticated principal of c.  ok is false for
// unauthenticated requests.
func PrincipalFrom(c echo.Context) (p model.Principal, ok bool) {
    id, _ := c.Get(ctxUserID).(string)
    if id == "" {
        return model.Principal{}, false
    }
    name, _ := c.Get(ctxUserName).(string)
    role, _ := c.Get(ctxRole).(string)
    return model.Principal{ID: id, Name: name, Role: role}, true
}

// userID extracts the principal id for keying, or "guest".
func userID(c echo.Context) string {
    if p, ok := PrincipalFrom(c); ok {
        return p.ID
    }
    return guestID
}
