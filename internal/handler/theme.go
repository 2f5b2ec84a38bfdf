package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/theme"
)

// colorSchemeHint is the client hint carrying the OS color preference.
const colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"

// ThemeHandler exposes the theme slice.
type ThemeHandler struct {
	Theme *theme.Slice
}

func NewThemeHandler(t *theme.Slice) *ThemeHandler {
	return &ThemeHandler{Theme: t}
}

type themeNameReq struct {
	Name string `json:"name"`
}

type preferenceReq struct {
	Preference string `json:"preference"`
}

// detect records the color scheme hint when the client sends one and asks
// for it on every later request.
func (h *ThemeHandler) detect(c echo.Context) {
	c.Response().Header().Set("Accept-CH", colorSchemeHint)
	c.Response().Header().Add("Vary", colorSchemeHint)
	// the hint is a structured-field string, usually sent quoted
	if hint := strings.Trim(c.Request().Header.Get(colorSchemeHint), `" `); hint != "" {
		h.Theme.SetSystemPreference(hint)
	}
}

func (h *ThemeHandler) Get(c echo.Context) error {
	h.detect(c)
	return c.JSON(http.StatusOK, h.Theme.State())
}

// SetTheme activates a theme; unknown names are rejected with 404 and
// leave the active theme unchanged.
func (h *ThemeHandler) SetTheme(c echo.Context) error {
	var req themeNameReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if !h.Theme.SetTheme(ctx, req.Name) {
		return notFound(c, "theme")
	}
	return c.JSON(http.StatusOK, h.Theme.State())
}

func (h *ThemeHandler) Toggle(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	h.Theme.ToggleTheme(ctx)
	return c.JSON(http.StatusOK, h.Theme.State())
}

// SetSystemPreference records an explicitly reported OS preference.
func (h *ThemeHandler) SetSystemPreference(c echo.Context) error {
	var req preferenceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if !h.Theme.SetSystemPreference(req.Preference) {
		return badRequest(c, "preference must be light or dark")
	}
	return c.JSON(http.StatusOK, h.Theme.State())
}

func (h *ThemeHandler) UseSystem(c echo.Context) error {
	h.detect(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	h.Theme.UseSystemTheme(ctx)
	return c.JSON(http.StatusOK, h.Theme.State())
}

func (h *ThemeHandler) AddCustom(c echo.Context) error {
	var t theme.CustomTheme
	if err := c.Bind(&t); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if !h.Theme.AddCustomTheme(ctx, t) {
		return badRequest(c, "theme name is empty or reserved")
	}
	return c.JSON(http.StatusOK, h.Theme.State())
}

func (h *ThemeHandler) RemoveCustom(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if !h.Theme.RemoveCustomTheme(ctx, c.Param("name")) {
		return notFound(c, "theme")
	}
	return c.JSON(http.StatusOK, h.Theme.State())
}
