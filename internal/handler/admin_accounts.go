package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/auth"
	"github.com/iliyamo/property-listing/internal/model"
)

// AccountHandler lets the master admin manage admin accounts.
type AccountHandler struct {
	Accounts *auth.Accounts
}

func NewAccountHandler(a *auth.Accounts) *AccountHandler {
	return &AccountHandler{Accounts: a}
}

type setActiveReq struct {
	IsActive *bool `json:"isActive"`
}

// result renders an account Result; failures use status.
func result(c echo.Context, r auth.Result, okStatus, failStatus int) error {
	if !r.Success {
		return c.JSON(failStatus, echo.Map{"error": r.Message})
	}
	return c.JSON(okStatus, r)
}

// List returns every account without password hashes.
func (h *AccountHandler) List(c echo.Context) error {
	list := h.Accounts.List()
	out := make([]model.PublicAdminAccount, 0, len(list))
	for _, a := range list {
		out = append(out, a.Public())
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AccountHandler) Create(c echo.Context) error {
	var in auth.CreateAdminInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	return result(c, h.Accounts.Create(ctx, in), http.StatusCreated, http.StatusBadRequest)
}

func (h *AccountHandler) SetActive(c echo.Context) error {
	var req setActiveReq
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return badRequest(c, "isActive required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	return result(c, h.Accounts.SetActive(ctx, c.Param("id"), *req.IsActive), http.StatusOK, http.StatusNotFound)
}

func (h *AccountHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	return result(c, h.Accounts.Delete(ctx, c.Param("id")), http.StatusOK, http.StatusNotFound)
}
