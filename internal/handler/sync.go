package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/remote"
	"github.com/iliyamo/property-listing/internal/store"
)

// SyncHandler triggers a remote refresh on demand.
type SyncHandler struct {
	Store   *store.Store
	Fetcher remote.Fetcher
}

func NewSyncHandler(st *store.Store, f remote.Fetcher) *SyncHandler {
	return &SyncHandler{Store: st, Fetcher: f}
}

type syncFunc func(c echo.Context) (int, error)

func (h *SyncHandler) run(c echo.Context, fn syncFunc) error {
	if h.Fetcher == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "remote sync not configured"})
	}
	n, err := fn(c)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"fetched": n})
}

func (h *SyncHandler) SyncRent(c echo.Context) error {
	return h.run(c, func(c echo.Context) (int, error) {
		return remote.SyncRent(c.Request().Context(), h.Store, h.Fetcher)
	})
}

func (h *SyncHandler) SyncSale(c echo.Context) error {
	return h.run(c, func(c echo.Context) (int, error) {
		return remote.SyncSale(c.Request().Context(), h.Store, h.Fetcher)
	})
}
