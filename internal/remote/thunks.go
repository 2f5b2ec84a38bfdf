package remote

import (
	"context"
	"log"

	"github.com/iliyamo/property-listing/internal/store"
)

// Dispatcher accepts store actions.  *store.Store satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, a store.Action) (store.Outcome, error)
}

// SyncRent fetches rental apartments and replaces the store collection
// with them.  The loading flag is raised for the duration of the fetch and
// a failure is recorded in the store error before being returned.
// Concurrent syncs are not sequenced: the last to resolve wins.
func SyncRent(ctx context.Context, d Dispatcher, f Fetcher) (int, error) {
	if err := begin(ctx, d); err != nil {
		return 0, err
	}
	items, err := f.FetchRentApartments(ctx)
	if err != nil {
		return 0, fail(ctx, d, err)
	}
	return len(items), finish(ctx, d, store.SetApartments{Apartments: items})
}

// SyncSale is SyncRent for the sale collection.
func SyncSale(ctx context.Context, d Dispatcher, f Fetcher) (int, error) {
	if err := begin(ctx, d); err != nil {
		return 0, err
	}
	items, err := f.FetchSaleApartments(ctx)
	if err != nil {
		return 0, fail(ctx, d, err)
	}
	return len(items), finish(ctx, d, store.SetSaleApartments{SaleApartments: items})
}

func begin(ctx context.Context, d Dispatcher) error {
	if _, err := d.Dispatch(ctx, store.SetError{}); err != nil {
		return err
	}
	_, err := d.Dispatch(ctx, store.SetLoading{Loading: true})
	return err
}

func finish(ctx context.Context, d Dispatcher, set store.Action) error {
	if _, err := d.Dispatch(ctx, set); err != nil {
		return err
	}
	_, err := d.Dispatch(ctx, store.SetLoading{Loading: false})
	return err
}

func fail(ctx context.Context, d Dispatcher, cause error) error {
	log.Printf("remote: sync failed: %v", cause)
	_, _ = d.Dispatch(ctx, store.SetError{Message: cause.Error()})
	_, _ = d.Dispatch(ctx, store.SetLoading{Loading: false})
	return cause
}
