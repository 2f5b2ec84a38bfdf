package metrics

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/property-listing/internal/bridge"
	"github.com/iliyamo/property-listing/internal/model"
	"github.com/iliyamo/property-listing/internal/store"
)

type readOnlyBackend struct{ *bridge.Memory }

func (readOnlyBackend) Set(context.Context, string, []byte) error { return errors.New("read only") }

func TestStoreMiddleware_CountsDispatches(t *testing.T) {
	ctx := context.Background()
	m := New()
	st := store.New(bridge.New(bridge.NewMemory()), store.WithMiddleware(m.StoreMiddleware()))
	require.NoError(t, st.Init(ctx))

	_, err := st.Dispatch(ctx, store.AddApartment{Apartment: model.Apartment{
		Title:   "Corniche",
		Studios: []model.Studio{{ID: "studio_a"}, {ID: "studio_b"}},
	}})
	require.NoError(t, err)
	_, err = st.Dispatch(ctx, store.DeleteApartment{ID: "missing"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("addApartment", "updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("deleteApartment", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listings.WithLabelValues("apartments")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.listings.WithLabelValues("studios")))
}

func TestBridgeFailureHook(t *testing.T) {
	m := New()
	b := bridge.New(readOnlyBackend{bridge.NewMemory()},
		bridge.WithLogger(log.New(&bytes.Buffer{}, "", 0)),
		bridge.WithFailureHook(m.BridgeFailureHook()),
	)
	b.Save(context.Background(), bridge.KeyTheme, "dark")
	b.Save(context.Background(), bridge.KeyTheme, "light")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bridgeFailures.WithLabelValues("save", bridge.KeyTheme)))
}

func TestHandler_ServesText(t *testing.T) {
	m := New()
	m.BridgeFailureHook()("load", bridge.KeyAdminAccounts)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `listing_bridge_failures_total{key="adminAccounts",op="load"} 1`)
}
