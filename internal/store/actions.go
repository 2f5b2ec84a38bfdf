package store

import "github.com/iliyamo/property-listing/internal/model"

// Collections is a bit set naming the persisted collections an action
// touches.  The sync middleware re-persists exactly these.
type Collections uint8

const (
	CollApartments Collections = 1 << iota
	CollSaleApartments

	CollNone Collections = 0
	CollAll              = CollApartments | CollSaleApartments
)

// Has reports whether c includes other.
func (c Collections) Has(other Collections) bool { return c&other != 0 }

// Action is a named intent dispatched into the store.  Every action is
// plain data; the reducer gives it meaning.
type Action interface {
	Kind() string
	Affects() Collections
}

// SetApartments replaces the rental collection wholesale.  Used to hydrate
// the store after a remote fetch; last write wins, nothing is merged.
type SetApartments struct {
	Apartments []model.Apartment `json:"apartments"`
}

// SetSaleApartments replaces the sale collection wholesale.
type SetSaleApartments struct {
	SaleApartments []model.SaleApartment `json:"saleApartments"`
}

// AddApartment appends a rental apartment.  A missing ID is generated.
type AddApartment struct {
	Apartment model.Apartment `json:"apartment"`
}

// UpdateApartment replaces the apartment with the same ID.  The caller
// supplies the complete object; partial merging is the caller's job.
type UpdateApartment struct {
	Apartment model.Apartment `json:"apartment"`
}

// DeleteApartment removes an apartment together with its studios.
type DeleteApartment struct {
	ID string `json:"id"`
}

// AddStudio appends a studio to the apartment ApartmentID.
type AddStudio struct {
	ApartmentID string       `json:"apartmentId"`
	Studio      model.Studio `json:"studio"`
}

// UpdateStudio replaces the studio with Studio.ID inside ApartmentID.
type UpdateStudio struct {
	ApartmentID string       `json:"apartmentId"`
	Studio      model.Studio `json:"studio"`
}

// DeleteStudio removes StudioID from ApartmentID.
type DeleteStudio struct {
	ApartmentID string `json:"apartmentId"`
	StudioID    string `json:"studioId"`
}

// ToggleStudioAvailability flips IsAvailable of one studio.
type ToggleStudioAvailability struct {
	ApartmentID string `json:"apartmentId"`
	StudioID    string `json:"studioId"`
}

// AddSaleApartment appends a sale listing.  ID and ListedAt are stamped
// on dispatch; Type is always "sale".
type AddSaleApartment struct {
	SaleApartment model.SaleApartment `json:"saleApartment"`
}

// UpdateSaleApartment replaces the sale listing with the same ID.  ListedAt
// keeps its creation value.
type UpdateSaleApartment struct {
	SaleApartment model.SaleApartment `json:"saleApartment"`
}

// DeleteSaleApartment removes a sale listing.
type DeleteSaleApartment struct {
	ID string `json:"id"`
}

// ClearAllData empties both collections and clears the error.
type ClearAllData struct{}

// SetLoading records that a remote fetch is in flight.
type SetLoading struct {
	Loading bool `json:"loading"`
}

// SetError records the last fetch failure.  An empty message clears it.
type SetError struct {
	Message string `json:"message"`
}

func (SetApartments) Kind() string            { return "setApartments" }
func (SetSaleApartments) Kind() string        { return "setSaleApartments" }
func (AddApartment) Kind() string             { return "addApartment" }
func (UpdateApartment) Kind() string          { return "updateApartment" }
func (DeleteApartment) Kind() string          { return "deleteApartment" }
func (AddStudio) Kind() string                { return "addStudio" }
func (UpdateStudio) Kind() string             { return "updateStudio" }
func (DeleteStudio) Kind() string             { return "deleteStudio" }
func (ToggleStudioAvailability) Kind() string { return "toggleStudioAvailability" }
func (AddSaleApartment) Kind() string         { return "addSaleApartment" }
func (UpdateSaleApartment) Kind() string      { return "updateSaleApartment" }
func (DeleteSaleApartment) Kind() string      { return "deleteSaleApartment" }
func (ClearAllData) Kind() string             { return "clearAllData" }
func (SetLoading) Kind() string               { return "setLoading" }
func (SetError) Kind() string                 { return "setError" }

func (SetApartments) Affects() Collections            { return CollApartments }
func (SetSaleApartments) Affects() Collections        { return CollSaleApartments }
func (AddApartment) Affects() Collections             { return CollApartments }
func (UpdateApartment) Affects() Collections          { return CollApartments }
func (DeleteApartment) Affects() Collections          { return CollApartments }
func (AddStudio) Affects() Collections                { return CollApartments }
func (UpdateStudio) Affects() Collections             { return CollApartments }
func (DeleteStudio) Affects() Collections             { return CollApartments }
func (ToggleStudioAvailability) Affects() Collections { return CollApartments }
func (AddSaleApartment) Affects() Collections         { return CollSaleApartments }
func (UpdateSaleApartment) Affects() Collections      { return CollSaleApartments }
func (DeleteSaleApartment) Affects() Collections      { return CollSaleApartments }
func (ClearAllData) Affects() Collections             { return CollAll }
func (SetLoading) Affects() Collections               { return CollNone }
func (SetError) Affects() Collections                 { return CollNone }

// EntityID returns the id of the listing an action targets, or "" for
// bulk actions.  Used for event payloads and logs.
func EntityID(a Action) string {
	switch v := a.(type) {
	case AddApartment:
		return v.Apartment.ID
	case UpdateApartment:
		return v.Apartment.ID
	case DeleteApartment:
		return v.ID
	case AddStudio:
		return v.Studio.ID
	case UpdateStudio:
		return v.Studio.ID
	case DeleteStudio:
		return v.StudioID
	case ToggleStudioAvailability:
		return v.StudioID
	case AddSaleApartment:
		return v.SaleApartment.ID
	case UpdateSaleApartment:
		return v.SaleApartment.ID
	case DeleteSaleApartment:
		return v.ID
	}
	return ""
}
