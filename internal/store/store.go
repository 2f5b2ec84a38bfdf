package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/idgen"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/utils"
)

var (
	// ErrNotInitialized is returned by Dispatch before Init has run.
	ErrNotInitialized = errors.New("store not initialized")
	// ErrDisposed is returned by Dispatch and Init after Dispose.
	ErrDisposed = errors.New("store disposed")
)

// Commit describes one accepted transition.  Prev and Next are the
// store's internal snapshots; middlewares must treat them as read-only.
type Commit struct {
	Action  Action
	Outcome Outcome
	Prev    State
	Next    State
}

// Middleware observes every dispatched action after its transition has
// been applied.  Middlewares run in registration order while the store
// lock is held, so they see commits in dispatch order and must not
// dispatch themselves.
type Middleware func(ctx context.Context, c Commit)

type lifecycle int

const (
	created lifecycle = iota
	ready
	disposed
)

// Store owns the listing state for the lifetime of the process.
type Store struct {
	mu          sync.Mutex
	state       State
	phase       lifecycle
	bridge      *bridge.Bridge
	middlewares []Middleware
	now         func() time.Time
	newID       idgen.Generator
	version     atomic.Uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Store) { s.newID = g }
}

// WithMiddleware appends commit middlewares after the write-through one.
func WithMiddleware(mws ...Middleware) Option {
	return func(s *Store) { s.middlewares = append(s.middlewares, mws...) }
}

// New constructs a store persisting through b.  The write-through sync
// middleware is always installed first so a mutation is persisted before
// any other observer sees it.
func New(b *bridge.Bridge, opts ...Option) *Store {
	s := &Store{
		bridge: b,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  idgen.New,
	}
	s.middlewares = []Middleware{SyncMiddleware(b)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Init seeds the state from the bridge.  Calling it again on a ready
// store is a no-op.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case disposed:
		return ErrDisposed
	case ready:
		return nil
	}
	s.state = State{
		Apartments:     bridge.Load[model.Apartment](ctx, s.bridge, bridge.KeyRentApartments),
		SaleApartments: bridge.Load[model.SaleApartment](ctx, s.bridge, bridge.KeySaleApartments),
	}
	s.phase = ready
	return nil
}

// Dispose detaches the middlewares.  Later dispatches fail with
// ErrDisposed; the persisted copy is already current because every
// commit wrote through.
func (s *Store) Dispose(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = disposed
	s.middlewares = nil
}

// Use appends a middleware.
func (s *Store) Use(mw Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middlewares = append(s.middlewares, mw)
}

// Dispatch applies a and runs the commit step.  The whole operation runs
// to completion before another dispatch starts.  A missing target yields
// NotFound with a nil error.
func (s *Store) Dispatch(ctx context.Context, a Action) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(ctx, a)
}

// DispatchAndRead is Dispatch returning a copy of the state as this
// commit left it, before any later dispatch can change it.
func (s *Store) DispatchAndRead(ctx context.Context, a Action) (Outcome, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.dispatchLocked(ctx, a)
	if err != nil {
		return out, State{}, err
	}
	return out, s.state.Clone(), nil
}

func (s *Store) dispatchLocked(ctx context.Context, a Action) (Outcome, error) {
	switch s.phase {
	case created:
		return NotFound, ErrNotInitialized
	case disposed:
		return NotFound, ErrDisposed
	}
	a = s.prepare(a)
	prev := s.state
	next, out := Reduce(prev, a)
	if out == Updated && a.Affects() != CollNone {
		s.version.Add(1)
	}
	s.state = next
	c := Commit{Action: a, Outcome: out, Prev: prev, Next: next}
	for _, mw := range s.middlewares {
		mw(ctx, c)
	}
	return out, nil
}

// Version counts the commits that changed a listing collection.  It is
// bumped under the store lock before the new state becomes visible, so a
// reader that loads Version before State never pairs a version with an
// older state.
func (s *Store) Version() uint64 { return s.version.Load() }

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// prepare stamps generated ids and creation times on add actions and
// fills coordinates from a map link when they are missing.
func (s *Store) prepare(a Action) Action {
	switch act := a.(type) {
	case AddApartment:
		if act.Apartment.ID == "" {
			act.Apartment.ID = s.newID(idgen.PrefixApartment)
		}
		act.Apartment = act.Apartment.Clone()
		for i := range act.Apartment.Studios {
			if act.Apartment.Studios[i].ID == "" {
				act.Apartment.Studios[i].ID = s.newID(idgen.PrefixStudio)
			}
			act.Apartment.Studios[i].ApartmentID = act.Apartment.ID
		}
		if act.Apartment.CreatedAt == nil {
			t := s.now()
			act.Apartment.CreatedAt = &t
		}
		fillCoordinates(&act.Apartment.MapURL, &act.Apartment.Latitude, &act.Apartment.Longitude)
		return act
	case UpdateApartment:
		fillCoordinates(&act.Apartment.MapURL, &act.Apartment.Latitude, &act.Apartment.Longitude)
		return act
	case AddStudio:
		if act.Studio.ID == "" {
			act.Studio.ID = s.newID(idgen.PrefixStudio)
		}
		return act
	case AddSaleApartment:
		if act.SaleApartment.ID == "" {
			act.SaleApartment.ID = s.newID(idgen.PrefixSaleApartment)
		}
		act.SaleApartment.ListedAt = s.now()
		return act
	}
	return a
}

func fillCoordinates(mapURL *string, lat, lng **float64) {
	if *mapURL == "" || (*lat != nil && *lng != nil) {
		return
	}
	if la, lo, ok := utils.ExtractCoordinates(*mapURL); ok {
		*lat, *lng = &la, &lo
	}
}
