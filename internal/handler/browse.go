package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/store"
)

// BrowseHandler serves read-only views derived from the store.  Every
// response is computed from one snapshot, so a list never mixes two
// states.
type BrowseHandler struct {
	Store *store.Store
}

func NewBrowseHandler(st *store.Store) *BrowseHandler {
	return &BrowseHandler{Store: st}
}

// ListStudios returns available studios; ?all=true includes booked ones.
func (h *BrowseHandler) ListStudios(c echo.Context) error {
	s := h.Store.State()
	if c.QueryParam("all") == "true" {
		return c.JSON(http.StatusOK, store.AllStudios(s))
	}
	return c.JSON(http.StatusOK, store.AllAvailableStudios(s))
}

func (h *BrowseHandler) GetStudio(c echo.Context) error {
	st, ok := store.StudioByID(h.Store.State(), c.Param("id"))
	if !ok {
		return notFound(c, "studio")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *BrowseHandler) ListApartments(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.State().Apartments)
}

func (h *BrowseHandler) GetApartment(c echo.Context) error {
	apt, ok := store.ApartmentByID(h.Store.State(), c.Param("id"))
	if !ok {
		return notFound(c, "apartment")
	}
	return c.JSON(http.StatusOK, apt)
}

// ListSaleApartments returns sale listings not explicitly marked
// unavailable; ?all=true returns every listing.
func (h *BrowseHandler) ListSaleApartments(c echo.Context) error {
	s := h.Store.State()
	if c.QueryParam("all") == "true" {
		return c.JSON(http.StatusOK, s.SaleApartments)
	}
	return c.JSON(http.StatusOK, store.AllAvailableSaleApartments(s))
}

func (h *BrowseHandler) GetSaleApartment(c echo.Context) error {
	sa, ok := store.SaleApartmentByID(h.Store.State(), c.Param("id"))
	if !ok {
		return notFound(c, "sale apartment")
	}
	return c.JSON(http.StatusOK, sa)
}

// ListCreators returns every admin that created an apartment or studio.
func (h *BrowseHandler) ListCreators(c echo.Context) error {
	return c.JSON(http.StatusOK, store.AllAdminCreators(h.Store.State()))
}

func (h *BrowseHandler) CreatorStudios(c echo.Context) error {
	return c.JSON(http.StatusOK, store.StudiosByCreator(h.Store.State(), c.Param("id")))
}

// CreatorApartments returns the rental and sale listings of one creator.
func (h *BrowseHandler) CreatorApartments(c echo.Context) error {
	s := h.Store.State()
	creator := c.Param("id")
	return c.JSON(http.StatusOK, echo.Map{
		"apartments":     store.ApartmentsByCreator(s, creator),
		"saleApartments": store.SaleApartmentsByCreator(s, creator),
	})
}

// Snapshot returns the complete listing state including the loading flag
// and the last fetch error.
func (h *BrowseHandler) Snapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.State())
}
