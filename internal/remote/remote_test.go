package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/store"
)

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(rentPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"apt_1","title":"Nile View","studios":[{"id":"studio_1","isAvailable":true,"price":300}],"totalStudios":1}]`))
	})
	mux.HandleFunc(salePath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"sale_apt_1","type":"sale","price":90000},{"id":"sale_apt_2","type":"sale","isAvailable":false}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(bridge.New(bridge.NewMemory()))
	require.NoError(t, st.Init(context.Background()))
	return st
}

func TestClient_ArrayAndEnvelope(t *testing.T) {
	c := NewClient(upstream(t).URL + "/")
	ctx := context.Background()

	rent, err := c.FetchRentApartments(ctx)
	require.NoError(t, err)
	require.Len(t, rent, 1)
	assert.Equal(t, "Nile View", rent[0].Title)
	assert.True(t, rent[0].Studios[0].IsAvailable)

	sale, err := c.FetchSaleApartments(ctx)
	require.NoError(t, err)
	require.Len(t, sale, 2)
	assert.False(t, sale[1].Available())
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchRentApartments(context.Background())
	assert.ErrorContains(t, err, "502")

	_, err = NewClient("").FetchSaleApartments(context.Background())
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestSyncRent_HydratesStore(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	n, err := SyncRent(ctx, st, NewClient(upstream(t).URL))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s := st.State()
	assert.False(t, s.Loading)
	assert.Nil(t, s.Error)
	require.Len(t, s.Apartments, 1)
	assert.Equal(t, "apt_1", s.Apartments[0].ID)
}

type brokenFetcher struct{ err error }

func (b brokenFetcher) FetchRentApartments(context.Context) ([]model.Apartment, error) {
	return nil, b.err
}

func (b brokenFetcher) FetchSaleApartments(context.Context) ([]model.SaleApartment, error) {
	return nil, b.err
}

func TestSyncSale_RecordsFailure(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	_, err := st.Dispatch(ctx, store.AddSaleApartment{SaleApartment: model.SaleApartment{Title: "kept"}})
	require.NoError(t, err)

	_, err = SyncSale(ctx, st, brokenFetcher{err: assert.AnError})
	require.ErrorIs(t, err, assert.AnError)

	s := st.State()
	assert.False(t, s.Loading)
	require.NotNil(t, s.Error)
	assert.Equal(t, assert.AnError.Error(), *s.Error)
	assert.Len(t, s.SaleApartments, 1, "a failed fetch leaves the collection untouched")

	// the next successful sync clears the error
	_, err = SyncSale(ctx, st, NewClient(upstream(t).URL))
	require.NoError(t, err)
	assert.Nil(t, st.State().Error)
	assert.Len(t, st.State().SaleApartments, 2)
}

func TestSync_BeforeInit(t *testing.T) {
	st := store.New(bridge.New(bridge.NewMemory()))
	_, err := SyncRent(context.Background(), st, brokenFetcher{})
	assert.ErrorIs(t, err, store.ErrNotInitialized)
}
