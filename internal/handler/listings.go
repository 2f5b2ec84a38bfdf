package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/idgen"
	"github.com/iliyamo/property-listing/internal/middleware"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/store"
)

// ListingHandler turns admin requests into store actions.  It never edits
// state itself: every change is a dispatched intent.
type ListingHandler struct {
	Store *store.Store
	NewID idgen.Generator
}

func NewListingHandler(st *store.Store, gen idgen.Generator) *ListingHandler {
	if gen == nil {
		gen = idgen.New
	}
	return &ListingHandler{Store: st, NewID: gen}
}

// creator is the display name recorded on listings created by the caller.
func creator(c echo.Context) string {
	if p, ok := middleware.PrincipalFrom(c); ok {
		if p.Name != "" {
			return p.Name
		}
		return p.ID
	}
	return ""
}

// ----- rental apartments -----

func (h *ListingHandler) CreateApartment(c echo.Context) error {
	var apt model.Apartment
	if err := c.Bind(&apt); err != nil {
		return badRequest(c, "invalid body")
	}
	if apt.Title == "" {
		return badRequest(c, "title required")
	}
	// ids are assigned here so the response can name the new listing
	apt.ID = h.NewID(idgen.PrefixApartment)
	if apt.CreatedBy == "" {
		apt.CreatedBy = creator(c)
	}
	for i := range apt.Studios {
		if apt.Studios[i].ID == "" {
			apt.Studios[i].ID = h.NewID(idgen.PrefixStudio)
		}
		apt.Studios[i].ApartmentID = apt.ID
		if apt.Studios[i].CreatedBy == "" {
			apt.Studios[i].CreatedBy = apt.CreatedBy
		}
	}
	return dispatch(c, h.Store, store.AddApartment{Apartment: apt}, "apartment", func(s store.State) error {
		created, _ := store.ApartmentByID(s, apt.ID)
		return c.JSON(http.StatusCreated, created)
	})
}

// UpdateApartment replaces the whole apartment; the body must carry every
// field the caller wants to keep.
func (h *ListingHandler) UpdateApartment(c echo.Context) error {
	var apt model.Apartment
	if err := c.Bind(&apt); err != nil {
		return badRequest(c, "invalid body")
	}
	apt.ID = c.Param("id")
	return dispatch(c, h.Store, store.UpdateApartment{Apartment: apt}, "apartment", func(s store.State) error {
		updated, _ := store.ApartmentByID(s, apt.ID)
		return c.JSON(http.StatusOK, updated)
	})
}

func (h *ListingHandler) DeleteApartment(c echo.Context) error {
	return dispatch(c, h.Store, store.DeleteApartment{ID: c.Param("id")}, "apartment", func(store.State) error {
		return c.NoContent(http.StatusNoContent)
	})
}

// ----- studios -----

func (h *ListingHandler) CreateStudio(c echo.Context) error {
	var st model.Studio
	if err := c.Bind(&st); err != nil {
		return badRequest(c, "invalid body")
	}
	st.ID = h.NewID(idgen.PrefixStudio)
	if st.CreatedBy == "" {
		st.CreatedBy = creator(c)
	}
	aptID := c.Param("id")
	return dispatch(c, h.Store, store.AddStudio{ApartmentID: aptID, Studio: st}, "apartment", func(s store.State) error {
		created, _ := store.StudioByID(s, st.ID)
		return c.JSON(http.StatusCreated, created)
	})
}

func (h *ListingHandler) UpdateStudio(c echo.Context) error {
	var st model.Studio
	if err := c.Bind(&st); err != nil {
		return badRequest(c, "invalid body")
	}
	st.ID = c.Param("studioId")
	st.ApartmentID = c.Param("id")
	a := store.UpdateStudio{ApartmentID: st.ApartmentID, Studio: st}
	return dispatch(c, h.Store, a, "studio", func(s store.State) error {
		updated, _ := store.StudioByID(s, st.ID)
		return c.JSON(http.StatusOK, updated)
	})
}

func (h *ListingHandler) DeleteStudio(c echo.Context) error {
	a := store.DeleteStudio{ApartmentID: c.Param("id"), StudioID: c.Param("studioId")}
	return dispatch(c, h.Store, a, "studio", func(store.State) error {
		return c.NoContent(http.StatusNoContent)
	})
}

func (h *ListingHandler) ToggleStudio(c echo.Context) error {
	a := store.ToggleStudioAvailability{ApartmentID: c.Param("id"), StudioID: c.Param("studioId")}
	return dispatch(c, h.Store, a, "studio", func(s store.State) error {
		toggled, _ := store.StudioByID(s, a.StudioID)
		return c.JSON(http.StatusOK, toggled)
	})
}

// ----- sale apartments -----

func (h *ListingHandler) CreateSaleApartment(c echo.Context) error {
	var sa model.SaleApartment
	if err := c.Bind(&sa); err != nil {
		return badRequest(c, "invalid body")
	}
	if sa.Title == "" {
		return badRequest(c, "title required")
	}
	sa.ID = h.NewID(idgen.PrefixSaleApartment)
	if sa.CreatedBy == "" {
		sa.CreatedBy = creator(c)
	}
	return dispatch(c, h.Store, store.AddSaleApartment{SaleApartment: sa}, "sale apartment", func(s store.State) error {
		created, _ := store.SaleApartmentByID(s, sa.ID)
		return c.JSON(http.StatusCreated, created)
	})
}

func (h *ListingHandler) UpdateSaleApartment(c echo.Context) error {
	var sa model.SaleApartment
	if err := c.Bind(&sa); err != nil {
		return badRequest(c, "invalid body")
	}
	sa.ID = c.Param("id")
	return dispatch(c, h.Store, store.UpdateSaleApartment{SaleApartment: sa}, "sale apartment", func(s store.State) error {
		updated, _ := store.SaleApartmentByID(s, sa.ID)
		return c.JSON(http.StatusOK, updated)
	})
}

func (h *ListingHandler) DeleteSaleApartment(c echo.Context) error {
	return dispatch(c, h.Store, store.DeleteSaleApartment{ID: c.Param("id")}, "sale apartment", func(store.State) error {
		return c.NoContent(http.StatusNoContent)
	})
}

// ClearAll empties both collections.  Master only.
func (h *ListingHandler) ClearAll(c echo.Context) error {
	return dispatch(c, h.Store, store.ClearAllData{}, "listing", func(store.State) error {
		return c.NoContent(http.StatusNoContent)
	})
}
