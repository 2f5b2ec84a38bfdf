package model

import "time"

// ListingTypeSale is the fixed type tag carried by every sale apartment.
const ListingTypeSale = "sale"

// Apartment is a rental building owned by an admin.  It contains an
// ordered list of studio units that are rented out individually.
//
// Fields:
//  ID           – unique identifier, generated on creation when absent.
//  CreatedBy    – creator identifier (admin username, account or id).
//  Title        – display title.
//  Location     – free-form area or city name.
//  Address      – street address.
//  Description  – free-form description.
//  MapURL       – optional map link the coordinates can be extracted from.
//  Latitude     – optional latitude.
//  Longitude    – optional longitude.
//  Studios      – studio units of the apartment, in insertion order.
//  TotalStudios – denormalized len(Studios), recomputed by studio mutations.
//  CreatedAt    – creation timestamp.
//  Details      – any other descriptive fields, opaque to the store.
type Apartment struct {
	ID           string         `json:"id"`
	CreatedBy    string         `json:"createdBy,omitempty"`
	Title        string         `json:"title,omitempty"`
	Location     string         `json:"location,omitempty"`
	Address      string         `json:"address,omitempty"`
	Description  string         `json:"description,omitempty"`
	MapURL       string         `json:"mapUrl,omitempty"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	Studios      []Studio       `json:"studios"`
	TotalStudios int            `json:"totalStudios"`
	CreatedAt    *time.Time     `json:"createdAt,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// Studio is a single rentable unit inside an Apartment.  ApartmentID must
// match the ID of the apartment whose Studios list holds it; the store
// stamps it when the studio is added but trusts callers on replacement.
type Studio struct {
	ID          string         `json:"id"`
	ApartmentID string         `json:"apartmentId"`
	IsAvailable bool           `json:"isAvailable"`
	Price       float64        `json:"price"`
	CreatedBy   string         `json:"createdBy,omitempty"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Area        float64        `json:"area,omitempty"`
	Bedrooms    int            `json:"bedrooms,omitempty"`
	Bathrooms   int            `json:"bathrooms,omitempty"`
	Furnished   bool           `json:"furnished,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// SaleApartment is an apartment listed for sale.  It is a top-level
// listing and never nested inside a rental Apartment.  A nil IsAvailable
// means the listing has no explicit flag and counts as available.
type SaleApartment struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	ListedAt    time.Time      `json:"listedAt"`
	IsAvailable *bool          `json:"isAvailable,omitempty"`
	Price       float64        `json:"price"`
	CreatedBy   string         `json:"createdBy,omitempty"`
	Title       string         `json:"title,omitempty"`
	Location    string         `json:"location,omitempty"`
	Area        float64        `json:"area,omitempty"`
	Bedrooms    int            `json:"bedrooms,omitempty"`
	Bathrooms   int            `json:"bathrooms,omitempty"`
	Description string         `json:"description,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// Available reports whether the sale listing is on the market.  Only an
// explicit false takes it off.
func (s SaleApartment) Available() bool {
	return s.IsAvailable == nil || *s.IsAvailable
}

// Clone returns a copy of the apartment that shares no slices, maps or
// pointers with the receiver.
func (a Apartment) Clone() Apartment {
	out := a
	out.Latitude = cloneFloat(a.Latitude)
	out.Longitude = cloneFloat(a.Longitude)
	if a.CreatedAt != nil {
		t := *a.CreatedAt
		out.CreatedAt = &t
	}
	out.Details = cloneDetails(a.Details)
	out.Studios = make([]Studio, len(a.Studios))
	for i, s := range a.Studios {
		out.Studios[i] = s.Clone()
	}
	return out
}

// Clone returns a copy of the studio with its own Details map.
func (s Studio) Clone() Studio {
	out := s
	out.Details = cloneDetails(s.Details)
	return out
}

// Clone returns a copy of the sale apartment with its own Details map and
// availability pointer.
func (s SaleApartment) Clone() SaleApartment {
	out := s
	if s.IsAvailable != nil {
		v := *s.IsAvailable
		out.IsAvailable = &v
	}
	out.Details = cloneDetails(s.Details)
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// cloneDetails copies the top level of the map; values are opaque and
// treated as immutable.
func cloneDetails(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
