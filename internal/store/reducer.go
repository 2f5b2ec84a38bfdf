package store

import (
	"github.com/iliyamo/property-listing/internal/model"
)

// Reduce computes the state following a. It never mutates s: collections
// that change are rebuilt, untouched elements are shared.  Ids and
// timestamps must already be stamped on a; Reduce reads neither the clock
// nor any randomness.
func Reduce(s State, a Action) (State, Outcome) {
	switch act := a.(type) {
	case SetApartments:
		next := s
		next.Apartments = cloneApartments(act.Apartments)
		return next, Updated

	case SetSaleApartments:
		next := s
		next.SaleApartments = cloneSales(act.SaleApartments)
		return next, Updated

	case AddApartment:
		apt := act.Apartment.Clone()
		apt.TotalStudios = len(apt.Studios)
		next := s
		next.Apartments = append(cloneSlice(s.Apartments), apt)
		return next, Updated

	case UpdateApartment:
		i := indexApartment(s.Apartments, act.Apartment.ID)
		if i < 0 {
			return s, NotFound
		}
		next := s
		next.Apartments = cloneSlice(s.Apartments)
		next.Apartments[i] = act.Apartment.Clone()
		return next, Updated

	case DeleteApartment:
		i := indexApartment(s.Apartments, act.ID)
		if i < 0 {
			return s, NotFound
		}
		next := s
		next.Apartments = removeAt(s.Apartments, i)
		return next, Updated

	case AddStudio:
		return withApartment(s, act.ApartmentID, func(apt *model.Apartment) bool {
			st := act.Studio.Clone()
			st.ApartmentID = apt.ID
			apt.Studios = append(apt.Studios, st)
			return true
		})

	case UpdateStudio:
		return withApartment(s, act.ApartmentID, func(apt *model.Apartment) bool {
			j := indexStudio(apt.Studios, act.Studio.ID)
			if j < 0 {
				return false
			}
			apt.Studios[j] = act.Studio.Clone()
			return true
		})

	case DeleteStudio:
		return withApartment(s, act.ApartmentID, func(apt *model.Apartment) bool {
			j := indexStudio(apt.Studios, act.StudioID)
			if j < 0 {
				return false
			}
			apt.Studios = removeAt(apt.Studios, j)
			return true
		})

	case ToggleStudioAvailability:
		return withApartment(s, act.ApartmentID, func(apt *model.Apartment) bool {
			j := indexStudio(apt.Studios, act.StudioID)
			if j < 0 {
				return false
			}
			apt.Studios[j].IsAvailable = !apt.Studios[j].IsAvailable
			return true
		})

	case AddSaleApartment:
		sale := act.SaleApartment.Clone()
		sale.Type = model.ListingTypeSale
		next := s
		next.SaleApartments = append(cloneSlice(s.SaleApartments), sale)
		return next, Updated

	case UpdateSaleApartment:
		i := indexSale(s.SaleApartments, act.SaleApartment.ID)
		if i < 0 {
			return s, NotFound
		}
		sale := act.SaleApartment.Clone()
		sale.Type = model.ListingTypeSale
		sale.ListedAt = s.SaleApartments[i].ListedAt
		next := s
		next.SaleApartments = cloneSlice(s.SaleApartments)
		next.SaleApartments[i] = sale
		return next, Updated

	case DeleteSaleApartment:
		i := indexSale(s.SaleApartments, act.ID)
		if i < 0 {
			return s, NotFound
		}
		next := s
		next.SaleApartments = removeAt(s.SaleApartments, i)
		return next, Updated

	case ClearAllData:
		next := s
		next.Apartments = []model.Apartment{}
		next.SaleApartments = []model.SaleApartment{}
		next.Error = nil
		return next, Updated

	case SetLoading:
		next := s
		next.Loading = act.Loading
		return next, Updated

	case SetError:
		next := s
		if act.Message == "" {
			next.Error = nil
		} else {
			msg := act.Message
			next.Error = &msg
		}
		return next, Updated
	}
	return s, NotFound
}

// withApartment applies fn to a private copy of the apartment id.  When the
// apartment is missing or fn reports no change, s is returned untouched.
// On change TotalStudios is recomputed from the studio list.
func withApartment(s State, id string, fn func(*model.Apartment) bool) (State, Outcome) {
	i := indexApartment(s.Apartments, id)
	if i < 0 {
		return s, NotFound
	}
	apt := s.Apartments[i].Clone()
	if !fn(&apt) {
		return s, NotFound
	}
	apt.TotalStudios = len(apt.Studios)
	next := s
	next.Apartments = cloneSlice(s.Apartments)
	next.Apartments[i] = apt
	return next, Updated
}

func indexApartment(list []model.Apartment, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexStudio(list []model.Studio, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexSale(list []model.SaleApartment, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// cloneSlice copies the backing array so the result can be modified
// without touching the original.  Elements are copied shallowly.
func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in), len(in)+1)
	copy(out, in)
	return out
}

func removeAt[T any](in []T, i int) []T {
	out := make([]T, 0, len(in)-1)
	out = append(out, in[:i]...)
	return append(out, in[i+1:]...)
}

func cloneApartments(in []model.Apartment) []model.Apartment {
	out := make([]model.Apartment, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

func cloneSales(in []model.SaleApartment) []model.SaleApartment {
	out := make([]model.SaleApartment, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
