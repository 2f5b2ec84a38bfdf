package store

import (
	"sort"

	"github.com/iliyamo/property-listing/internal/model"
)

// Selectors are pure functions over a State.  They recompute on every call
// and return slices the caller owns.

// AllStudios flattens the studios of every apartment.
func AllStudios(s State) []model.Studio {
	out := []model.Studio{}
	for _, a := range s.Apartments {
		out = append(out, a.Studios...)
	}
	return out
}

// AllAvailableStudios flattens the studios whose IsAvailable is true.
func AllAvailableStudios(s State) []model.Studio {
	out := []model.Studio{}
	for _, a := range s.Apartments {
		for _, st := range a.Studios {
			if st.IsAvailable {
				out = append(out, st)
			}
		}
	}
	return out
}

// StudiosByCreator returns the studios whose CreatedBy equals creator.
func StudiosByCreator(s State, creator string) []model.Studio {
	out := []model.Studio{}
	for _, a := range s.Apartments {
		for _, st := range a.Studios {
			if st.CreatedBy == creator {
				out = append(out, st)
			}
		}
	}
	return out
}

// ApartmentsByCreator returns the apartments whose CreatedBy equals creator.
func ApartmentsByCreator(s State, creator string) []model.Apartment {
	out := []model.Apartment{}
	for _, a := range s.Apartments {
		if a.CreatedBy == creator {
			out = append(out, a)
		}
	}
	return out
}

// SaleApartmentsByCreator returns the sale listings whose CreatedBy equals
// creator.
func SaleApartmentsByCreator(s State, creator string) []model.SaleApartment {
	out := []model.SaleApartment{}
	for _, a := range s.SaleApartments {
		if a.CreatedBy == creator {
			out = append(out, a)
		}
	}
	return out
}

// StudioByID returns the first studio with id across all apartments.
func StudioByID(s State, id string) (model.Studio, bool) {
	for _, a := range s.Apartments {
		for _, st := range a.Studios {
			if st.ID == id {
				return st, true
			}
		}
	}
	return model.Studio{}, false
}

// ApartmentByID returns the apartment with id.
func ApartmentByID(s State, id string) (model.Apartment, bool) {
	for _, a := range s.Apartments {
		if a.ID == id {
			return a, true
		}
	}
	return model.Apartment{}, false
}

// SaleApartmentByID returns the sale listing with id.
func SaleApartmentByID(s State, id string) (model.SaleApartment, bool) {
	for _, a := range s.SaleApartments {
		if a.ID == id {
			return a, true
		}
	}
	return model.SaleApartment{}, false
}

// AllAvailableSaleApartments excludes only listings explicitly marked
// unavailable; a missing flag counts as available.
func AllAvailableSaleApartments(s State) []model.SaleApartment {
	out := []model.SaleApartment{}
	for _, a := range s.SaleApartments {
		if a.Available() {
			out = append(out, a)
		}
	}
	return out
}

// AllAdminCreators returns the distinct creator identifiers found on
// apartments and their studios.  Empty identifiers are skipped.  The
// result is sorted only to keep responses stable.
func AllAdminCreators(s State) []string {
	seen := map[string]struct{}{}
	for _, a := range s.Apartments {
		if a.CreatedBy != "" {
			seen[a.CreatedBy] = struct{}{}
		}
		for _, st := range a.Studios {
			if st.CreatedBy != "" {
				seen[st.CreatedBy] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
