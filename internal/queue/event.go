// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/property-listing/internal/store"
)

// ListingQueueName is the durable queue carrying ListingChangedEvent.
const ListingQueueName = "listing.changed"

// ListingChangedEvent is published after every accepted listing mutation.
// It carries enough information for downstream consumers to audit or
// invalidate caches without reading the store.
type ListingChangedEvent struct {
    Kind           string `json:"kind"`
    Collection     string `json:"collection"`
    EntityID       string `json:"entity_id,omitempty"`
    ApartmentID    string `json:"apartment_id,omitempty"`
    Apartments     int    `json:"apartments"`
    SaleApartments int    `json:"sale_apartments"`
    ChangedAt      string `json:"changed_at"`
}

// NewListingChangedEvent builds the event for a commit.  ok is false for
// commits that changed no persisted collection (not-found outcomes and
// loading/error bookkeeping).
func NewListingChangedEvent(c store.Commit, at time.Time) (ev ListingChangedEvent, ok bool) {
    aff := c.Action.Affects()
    if c.Outcome != store.Updated || aff == store.CollNone {
        return ListingChangedEvent{}, false
    }
    ev = ListingChangedEvent{
        Kind:           c.Action.Kind(),
        Collection:     collectionName(aff),
        EntityID:       store.EntityID(c.Action),
        ApartmentID:    parentID(c.Action),
        Apartments:     len(c.Next.Apartments),
        SaleApartments: len(c.Next.SaleApartments),
        ChangedAt:      at.UTC().Format(time.RFC3339),
    }
    return ev, true
}

func collectionName(c store.Collections) string {
    switch c {
    case store.CollApartments:
        return "apartments"
    case store.CollSaleApartments:
        return "sale_apartments"
    }
    return "all"
}

// parentID names the apartment owning a studio for studio actions.
func parentID(a store.Action) string {
    switch v := a.(type) {
    case store.AddStudio:
        return v.ApartmentID
    case store.UpdateStudio:
        return v.ApartmentID
    case store.DeleteStudio:
        return v.ApartmentID
    case store.ToggleStudioAvailability:
        return v.ApartmentID
    }
    return ""
}
