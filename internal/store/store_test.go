package store

import (
	"bytes"
	"context"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/idgen"
	"github.com/iliyamo/property-listing/internal/model"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (*Store, *bridge.Bridge) {
	t.Helper()
	b := bridge.New(bridge.NewMemory(), bridge.WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s := New(b, opts...)
	require.NoError(t, s.Init(context.Background()))
	return s, b
}

func dispatch(t *testing.T, s *Store, a Action) Outcome {
	t.Helper()
	out, err := s.Dispatch(context.Background(), a)
	require.NoError(t, err)
	return out
}

func TestScenario_ApartmentStudioLifecycle(t *testing.T) {
	s, _ := newTestStore(t)

	require.Equal(t, Updated, dispatch(t, s, AddApartment{Apartment: model.Apartment{Title: "A"}}))
	st := s.State()
	require.Len(t, st.Apartments, 1)
	apt := st.Apartments[0]
	assert.True(t, strings.HasPrefix(apt.ID, "apt_"), apt.ID)
	assert.Equal(t, 0, apt.TotalStudios)
	assert.NotNil(t, apt.Studios)

	require.Equal(t, Updated, dispatch(t, s, AddStudio{ApartmentID: apt.ID, Studio: model.Studio{Price: 100}}))
	apt, ok := ApartmentByID(s.State(), apt.ID)
	require.True(t, ok)
	require.Len(t, apt.Studios, 1)
	assert.Equal(t, 1, apt.TotalStudios)
	studio := apt.Studios[0]
	assert.True(t, strings.HasPrefix(studio.ID, "studio_"), studio.ID)
	assert.Equal(t, apt.ID, studio.ApartmentID)
	assert.False(t, studio.IsAvailable)

	require.Equal(t, Updated, dispatch(t, s, ToggleStudioAvailability{ApartmentID: apt.ID, StudioID: studio.ID}))
	got, ok := StudioByID(s.State(), studio.ID)
	require.True(t, ok)
	assert.True(t, got.IsAvailable)

	require.Equal(t, Updated, dispatch(t, s, DeleteApartment{ID: apt.ID}))
	_, ok = ApartmentByID(s.State(), apt.ID)
	assert.False(t, ok)
	for _, x := range AllStudios(s.State()) {
		assert.NotEqual(t, studio.ID, x.ID)
	}
}

func TestTotalStudiosTracksLength(t *testing.T) {
	s, _ := newTestStore(t, WithIDGenerator(idgen.Sequence()))
	dispatch(t, s, AddApartment{Apartment: model.Apartment{Title: "B"}})
	aptID := s.State().Apartments[0].ID

	check := func() {
		a, _ := ApartmentByID(s.State(), aptID)
		assert.Equal(t, len(a.Studios), a.TotalStudios)
	}
	for i := 0; i < 3; i++ {
		dispatch(t, s, AddStudio{ApartmentID: aptID, Studio: model.Studio{Price: float64(i)}})
		check()
	}
	a, _ := ApartmentByID(s.State(), aptID)
	dispatch(t, s, DeleteStudio{ApartmentID: aptID, StudioID: a.Studios[1].ID})
	check()
	assert.Equal(t, NotFound, dispatch(t, s, DeleteStudio{ApartmentID: aptID, StudioID: "nope"}))
	check()
	a, _ = ApartmentByID(s.State(), aptID)
	assert.Equal(t, 2, a.TotalStudios)
}

func TestAddApartment_NumbersNestedStudios(t *testing.T) {
	s, _ := newTestStore(t, WithIDGenerator(idgen.Sequence()))
	in := model.Apartment{Title: "C", Studios: []model.Studio{{Price: 1}, {ID: "studio_keep", Price: 2}}}
	dispatch(t, s, AddApartment{Apartment: in})

	a := s.State().Apartments[0]
	require.Len(t, a.Studios, 2)
	assert.Equal(t, 2, a.TotalStudios)
	assert.True(t, strings.HasPrefix(a.Studios[0].ID, "studio_"), a.Studios[0].ID)
	assert.Equal(t, "studio_keep", a.Studios[1].ID)
	for _, st := range a.Studios {
		assert.Equal(t, a.ID, st.ApartmentID)
	}
	assert.Empty(t, in.Studios[0].ID, "caller's value is untouched")
}

func TestDeleteApartment_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	dispatch(t, s, AddApartment{Apartment: model.Apartment{ID: "apt_x"}})
	assert.Equal(t, Updated, dispatch(t, s, DeleteApartment{ID: "apt_x"}))
	assert.Equal(t, NotFound, dispatch(t, s, DeleteApartment{ID: "apt_x"}))
	assert.Empty(t, s.State().Apartments)
}

func TestToggleTwiceRestores(t *testing.T) {
	s, _ := newTestStore(t)
	dispatch(t, s, AddApartment{Apartment: model.Apartment{ID: "a1"}})
	dispatch(t, s, AddStudio{ApartmentID: "a1", Studio: model.Studio{ID: "s1", IsAvailable: true}})

	dispatch(t, s, ToggleStudioAvailability{ApartmentID: "a1", StudioID: "s1"})
	dispatch(t, s, ToggleStudioAvailability{ApartmentID: "a1", StudioID: "s1"})
	st, _ := StudioByID(s.State(), "s1")
	assert.True(t, st.IsAvailable)

	assert.Equal(t, NotFound, dispatch(t, s, ToggleStudioAvailability{ApartmentID: "a1", StudioID: "missing"}))
	assert.Equal(t, NotFound, dispatch(t, s, ToggleStudioAvailability{ApartmentID: "missing", StudioID: "s1"}))
}

func TestStudioOpsRequireParent(t *testing.T) {
	s, b := newTestStore(t)
	assert.Equal(t, NotFound, dispatch(t, s, AddStudio{ApartmentID: "ghost", Studio: model.Studio{Price: 1}}))
	assert.Equal(t, NotFound, dispatch(t, s, UpdateStudio{ApartmentID: "ghost", Studio: model.Studio{ID: "s"}}))
	assert.Equal(t, NotFound, dispatch(t, s, DeleteStudio{ApartmentID: "ghost", StudioID: "s"}))
	assert.Empty(t, AllStudios(s.State()))
	// nothing was written through
	_, found, err := b.Backend().Get(context.Background(), bridge.KeyRentApartments)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateApartmentAndStudio_ReplaceWholeObject(t *testing.T) {
	s, _ := newTestStore(t)
	dispatch(t, s, AddApartment{Apartment: model.Apartment{ID: "a1", Title: "old", CreatedBy: "alice"}})
	dispatch(t, s, AddStudio{ApartmentID: "a1", Studio: model.Studio{ID: "s1", Price: 10, Title: "x"}})

	assert.Equal(t, Updated, dispatch(t, s, UpdateStudio{ApartmentID: "a1", Studio: model.Studio{ID: "s1", ApartmentID: "a1", Price: 20}}))
	st, _ := StudioByID(s.State(), "s1")
	assert.Equal(t, 20.0, st.Price)
	assert.Empty(t, st.Title, "update replaces, it does not merge")

	assert.Equal(t, Updated, dispatch(t, s, UpdateApartment{Apartment: model.Apartment{ID: "a1", Title: "new"}}))
	a, _ := ApartmentByID(s.State(), "a1")
	assert.Equal(t, "new", a.Title)
	assert.Empty(t, a.CreatedBy)
	assert.Empty(t, a.Studios)

	assert.Equal(t, NotFound, dispatch(t, s, UpdateApartment{Apartment: model.Apartment{ID: "zzz"}}))
}

func TestSaleApartments(t *testing.T) {
	s, _ := newTestStore(t)
	dispatch(t, s, AddSaleApartment{SaleApartment: model.SaleApartment{Price: 500000, Type: "rent"}})
	sale := s.State().SaleApartments[0]
	assert.True(t, strings.HasPrefix(sale.ID, "sale_apt_"), sale.ID)
	assert.Equal(t, model.ListingTypeSale, sale.Type)
	assert.Equal(t, fixedNow, sale.ListedAt)

	upd := sale
	upd.Price = 450000
	upd.ListedAt = fixedNow.Add(48 * time.Hour)
	upd.Type = ""
	assert.Equal(t, Updated, dispatch(t, s, UpdateSaleApartment{SaleApartment: upd}))
	got, ok := SaleApartmentByID(s.State(), sale.ID)
	require.True(t, ok)
	assert.Equal(t, 450000.0, got.Price)
	assert.Equal(t, fixedNow, got.ListedAt, "listedAt is set at creation only")
	assert.Equal(t, model.ListingTypeSale, got.Type)

	assert.Equal(t, Updated, dispatch(t, s, DeleteSaleApartment{ID: sale.ID}))
	assert.Equal(t, NotFound, dispatch(t, s, DeleteSaleApartment{ID: sale.ID}))
	assert.Equal(t, NotFound, dispatch(t, s, UpdateSaleApartment{SaleApartment: upd}))
}

func TestAllAvailableSaleApartments(t *testing.T) {
	yes, no := true, false
	st := State{SaleApartments: []model.SaleApartment{
		{ID: "absent"},
		{ID: "true", IsAvailable: &yes},
		{ID: "false", IsAvailable: &no},
	}}
	var ids []string
	for _, a := range AllAvailableSaleApartments(st) {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"absent", "true"}, ids)
}

func TestSelectors(t *testing.T) {
	st := State{Apartments: []model.Apartment{
		{ID: "a1", CreatedBy: "alice", Studios: []model.Studio{
			{ID: "s1", CreatedBy: "alice", IsAvailable: true},
			{ID: "s2", CreatedBy: "bob"},
		}},
		{ID: "a2", CreatedBy: "carol", Studios: []model.Studio{
			{ID: "s3", CreatedBy: "", IsAvailable: true},
		}},
	}, SaleApartments: []model.SaleApartment{{ID: "p1", CreatedBy: "alice"}, {ID: "p2", CreatedBy: "dave"}}}

	assert.Len(t, AllStudios(st), 3)
	avail := AllAvailableStudios(st)
	require.Len(t, avail, 2)
	assert.Equal(t, "s1", avail[0].ID)
	assert.Equal(t, "s3", avail[1].ID)

	assert.Len(t, StudiosByCreator(st, "bob"), 1)
	assert.Empty(t, StudiosByCreator(st, "Bob"), "exact match only")
	assert.Len(t, ApartmentsByCreator(st, "carol"), 1)
	assert.Len(t, SaleApartmentsByCreator(st, "alice"), 1)

	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, AllAdminCreators(st))

	_, ok := StudioByID(st, "nope")
	assert.False(t, ok)
	_, ok = SaleApartmentByID(st, "p2")
	assert.True(t, ok)
}

func TestClearAllData_PersistsEmpty(t *testing.T) {
	s, b := newTestStore(t)
	ctx := context.Background()
	dispatch(t, s, AddApartment{Apartment: model.Apartment{Title: "A"}})
	dispatch(t, s, AddSaleApartment{SaleApartment: model.SaleApartment{Price: 1}})
	dispatch(t, s, SetError{Message: "fetch failed"})
	require.NotEmpty(t, bridge.Load[model.Apartment](ctx, b, bridge.KeyRentApartments))
	require.NotEmpty(t, bridge.Load[model.SaleApartment](ctx, b, bridge.KeySaleApartments))

	assert.Equal(t, Updated, dispatch(t, s, ClearAllData{}))
	st := s.State()
	assert.Empty(t, st.Apartments)
	assert.Empty(t, st.SaleApartments)
	assert.Nil(t, st.Error)

	for _, key := range []string{bridge.KeyRentApartments, bridge.KeySaleApartments} {
		raw, found, err := b.Backend().Get(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "[]", string(raw))
	}
}

func TestWriteThroughAndReload(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t)
	dispatch(t, s, AddApartment{Apartment: model.Apartment{ID: "a1", Title: "kept"}})
	dispatch(t, s, AddStudio{ApartmentID: "a1", Studio: model.Studio{ID: "s1", Price: 99}})
	dispatch(t, s, AddSaleApartment{SaleApartment: model.SaleApartment{ID: "p1"}})
	s.Dispose(ctx)

	reopened := New(b)
	require.NoError(t, reopened.Init(ctx))
	st := reopened.State()
	require.Len(t, st.Apartments, 1)
	assert.Equal(t, "kept", st.Apartments[0].Title)
	assert.Equal(t, 1, st.Apartments[0].TotalStudios)
	require.Len(t, st.SaleApartments, 1)
	assert.Equal(t, fixedNow, st.SaleApartments[0].ListedAt)
}

func TestSetCollections_LastWriteWins(t *testing.T) {
	s, _ := newTestStore(t)
	dispatch(t, s, SetApartments{Apartments: []model.Apartment{{ID: "r1"}, {ID: "r2"}}})
	dispatch(t, s, SetApartments{Apartments: []model.Apartment{{ID: "r3"}}})
	st := s.State()
	require.Len(t, st.Apartments, 1)
	assert.Equal(t, "r3", st.Apartments[0].ID)

	dispatch(t, s, SetSaleApartments{SaleApartments: []model.SaleApartment{{ID: "p9"}}})
	assert.Len(t, s.State().SaleApartments, 1)
}

func TestLifecycleErrors(t *testing.T) {
	ctx := context.Background()
	b := bridge.New(bridge.NewMemory())
	s := New(b)
	_, err := s.Dispatch(ctx, ClearAllData{})
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx))
	s.Dispose(ctx)
	_, err = s.Dispatch(ctx, ClearAllData{})
	assert.ErrorIs(t, err, ErrDisposed)
	assert.ErrorIs(t, s.Init(ctx), ErrDisposed)
}

func TestMiddlewareSeesCommitsInOrder(t *testing.T) {
	var seen []string
	s, _ := newTestStore(t, WithMiddleware(func(_ context.Context, c Commit) {
		seen = append(seen, c.Action.Kind()+":"+c.Outcome.String())
	}))
	dispatch(t, s, AddApartment{Apartment: model.Apartment{ID: "a"}})
	dispatch(t, s, DeleteApartment{ID: "b"})
	assert.Equal(t, []string{"addApartment:updated", "deleteApartment:not_found"}, seen)
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	dispatch(t, s, AddApartment{Apartment: model.Apartment{ID: "a1"}})
	dispatch(t, s, AddStudio{ApartmentID: "a1", Studio: model.Studio{ID: "s1"}})

	snap := s.State()
	snap.Apartments[0].Studios[0].IsAvailable = true
	snap.Apartments[0].Title = "mutated"

	st, _ := StudioByID(s.State(), "s1")
	assert.False(t, st.IsAvailable)
	a, _ := ApartmentByID(s.State(), "a1")
	assert.Empty(t, a.Title)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	prev := State{Apartments: []model.Apartment{{ID: "a1", Studios: []model.Studio{{ID: "s1"}}, TotalStudios: 1}}}
	next, out := Reduce(prev, ToggleStudioAvailability{ApartmentID: "a1", StudioID: "s1"})
	require.Equal(t, Updated, out)
	assert.False(t, prev.Apartments[0].Studios[0].IsAvailable)
	assert.True(t, next.Apartments[0].Studios[0].IsAvailable)

	next, _ = Reduce(prev, DeleteStudio{ApartmentID: "a1", StudioID: "s1"})
	assert.Len(t, prev.Apartments[0].Studios, 1)
	assert.Equal(t, 0, next.Apartments[0].TotalStudios)
}

func TestAddApartment_FillsCoordinatesFromMapLink(t *testing.T) {
	s, _ := newTestStore(t)
	dispatch(t, s, AddApartment{Apartment: model.Apartment{ID: "a1", MapURL: "https://www.google.com/maps/@30.0444,31.2357,15z"}})
	a, _ := ApartmentByID(s.State(), "a1")
	require.NotNil(t, a.Latitude)
	require.NotNil(t, a.Longitude)
	assert.InDelta(t, 30.0444, *a.Latitude, 1e-9)
	assert.InDelta(t, 31.2357, *a.Longitude, 1e-9)
	require.NotNil(t, a.CreatedAt)
	assert.Equal(t, fixedNow, *a.CreatedAt)
}

func TestLoadingAndError(t *testing.T) {
	s, _ := newTestStore(t)
	dispatch(t, s, SetLoading{Loading: true})
	assert.True(t, s.State().Loading)
	dispatch(t, s, SetError{Message: "boom"})
	require.NotNil(t, s.State().Error)
	assert.Equal(t, "boom", *s.State().Error)
	dispatch(t, s, SetError{})
	assert.Nil(t, s.State().Error)
}

func TestDispatch_ConcurrentAddStudio(t *testing.T) {
	s, b := newTestStore(t)
	dispatch(t, s, AddApartment{Apartment: model.Apartment{ID: "a1", Title: "Tower"}})

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				out, err := s.Dispatch(context.Background(), AddStudio{ApartmentID: "a1", Studio: model.Studio{Price: float64(i)}})
				assert.NoError(t, err)
				assert.Equal(t, Updated, out)
				a, _ := ApartmentByID(s.State(), "a1")
				assert.Equal(t, len(a.Studios), a.TotalStudios)
			}
		}()
	}
	wg.Wait()

	a, ok := ApartmentByID(s.State(), "a1")
	require.True(t, ok)
	assert.Len(t, a.Studios, workers*perWorker)
	assert.Equal(t, workers*perWorker, a.TotalStudios)
	seen := map[string]bool{}
	for _, st := range a.Studios {
		assert.False(t, seen[st.ID], "duplicate id %s", st.ID)
		seen[st.ID] = true
	}
	persisted := bridge.Load[model.Apartment](context.Background(), b, bridge.KeyRentApartments)
	require.Len(t, persisted, 1)
	assert.Len(t, persisted[0].Studios, workers*perWorker)
}

func TestVersion_CountsListingCommits(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Equal(t, uint64(0), s.Version())

	dispatch(t, s, AddApartment{Apartment: model.Apartment{ID: "a1"}})
	assert.Equal(t, uint64(1), s.Version())

	dispatch(t, s, SetLoading{Loading: true})
	dispatch(t, s, SetError{Message: "boom"})
	assert.Equal(t, uint64(1), s.Version(), "bookkeeping leaves listings alone")

	assert.Equal(t, NotFound, dispatch(t, s, DeleteApartment{ID: "nope"}))
	assert.Equal(t, uint64(1), s.Version())

	dispatch(t, s, AddSaleApartment{SaleApartment: model.SaleApartment{ID: "s1"}})
	dispatch(t, s, ClearAllData{})
	assert.Equal(t, uint64(3), s.Version())
}

func TestDispatchAndRead_ReturnsCommittedState(t *testing.T) {
	s, _ := newTestStore(t)
	out, got, err := s.DispatchAndRead(context.Background(), AddApartment{Apartment: model.Apartment{ID: "a1", Title: "Loft"}})
	require.NoError(t, err)
	require.Equal(t, Updated, out)

	dispatch(t, s, DeleteApartment{ID: "a1"})
	a, ok := ApartmentByID(got, "a1")
	require.True(t, ok, "the returned copy is unaffected by later commits")
	assert.Equal(t, "Loft", a.Title)
	assert.Equal(t, &fixedNow, a.CreatedAt)

	_, _, err = New(bridge.New(bridge.NewMemory())).DispatchAndRead(context.Background(), ClearAllData{})
	assert.ErrorIs(t, err, ErrNotInitialized)
}
