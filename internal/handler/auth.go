package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/auth"
)

// AuthHandler exposes the admin and master sessions.
type AuthHandler struct {
	Admin  *auth.AdminSession
	Master *auth.MasterSession
}

func NewAuthHandler(admin *auth.AdminSession, master *auth.MasterSession) *AuthHandler {
	return &AuthHandler{Admin: admin, Master: master}
}

// ----- DTOs -----

type adminLoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type masterLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token   string            `json:"token"`
	Expires time.Time         `json:"expires"`
	Session auth.SessionState `json:"session"`
}

// loginError maps session login failures to responses.
func loginError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, auth.ErrAccountInactive):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is inactive"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
}

// AdminLogin: authenticate an admin account and return an access token.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "username/password required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	tok, err := h.Admin.Login(ctx, req.Username, req.Password)
	if err != nil {
		return loginError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResp{Token: tok.Token, Expires: tok.Exp, Session: h.Admin.State()})
}

func (h *AuthHandler) AdminLogout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	h.Admin.Logout(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) AdminSession(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Admin.State())
}

// MasterLogin: check the configured master credentials.
func (h *AuthHandler) MasterLogin(c echo.Context) error {
	var req masterLoginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	tok, err := h.Master.Login(ctx, req.Email, req.Password)
	if err != nil {
		return loginError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResp{Token: tok.Token, Expires: tok.Exp, Session: h.Master.State()})
}

func (h *AuthHandler) MasterLogout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	h.Master.Logout(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) MasterSession(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Master.State())
}

