package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/store"
)

// Health reports liveness together with the store bookkeeping flags so a
// probe can tell a running sync or a failed one apart from a dead process.
func Health(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := st.State()
		body := echo.Map{
			"status":          "ok",
			"loading":         s.Loading,
			"apartments":      len(s.Apartments),
			"sale_apartments": len(s.SaleApartments),
		}
		if s.Error != nil {
			body["last_error"] = *s.Error
		}
		return c.JSON(http.StatusOK, body)
	}
}
