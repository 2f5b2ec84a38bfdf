package store

import (
	"context"

	"github.com/iliyamo/property-listing/internal/bridge"
)

// SyncMiddleware writes the collections touched by an accepted action
// through to the bridge.  NotFound outcomes change nothing and are not
// persisted.  Apartments and sale apartments are saved independently.
func SyncMiddleware(b *bridge.Bridge) Middleware {
	return func(ctx context.Context, c Commit) {
		if c.Outcome != Updated {
			return
		}
		touched := c.Action.Affects()
		if touched.Has(CollApartments) {
			b.Save(ctx, bridge.KeyRentApartments, nonNil(c.Next.Apartments))
		}
		if touched.Has(CollSaleApartments) {
			b.Save(ctx, bridge.KeySaleApartments, nonNil(c.Next.SaleApartments))
		}
	}
}

// nonNil makes an empty collection serialize as [] rather than null.
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
