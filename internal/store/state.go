// Package store holds the property listing state: rental apartments with
// their studios and apartments for sale.
//
// State transitions are computed by Reduce, a pure function.  The Store
// type orchestrates them: it stamps ids and timestamps, serializes
// dispatches, and runs the commit middlewares (write-through persistence,
// metrics, events) after each transition.
package store

import "github.com/iliyamo/property-listing/internal/model"

// State is one consistent snapshot of the listing slice.
type State struct {
	Apartments     []model.Apartment     `json:"apartments"`
	SaleApartments []model.SaleApartment `json:"saleApartments"`
	Loading        bool                  `json:"loading"`
	Error          *string               `json:"error"`
}

// Clone returns a deep copy sharing nothing with s.
func (s State) Clone() State {
	out := State{
		Apartments:     make([]model.Apartment, len(s.Apartments)),
		SaleApartments: make([]model.SaleApartment, len(s.SaleApartments)),
		Loading:        s.Loading,
	}
	for i, a := range s.Apartments {
		out.Apartments[i] = a.Clone()
	}
	for i, a := range s.SaleApartments {
		out.SaleApartments[i] = a.Clone()
	}
	if s.Error != nil {
		msg := *s.Error
		out.Error = &msg
	}
	return out
}

// Outcome names the result of a dispatch.  Not-found is an outcome, not an
// error, so retrying a delete of an already deleted id is harmless.
type Outcome int

const (
	Updated Outcome = iota
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}
