package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSyncDumpClear(t *testing.T) {
	t.Setenv("BRIDGE_DRIVER", "")
	t.Setenv("REMOTE_API_URL", "")
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/apartments/rent":
			_, _ = w.Write([]byte(`[{"id":"apt_1","title":"Zamalek Loft","studios":[]}]`))
		case "/apartments/sale":
			_, _ = w.Write([]byte(`{"items":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	db := filepath.Join(t.TempDir(), "state.db")
	flags := []string{"--driver", "sqlite", "--sqlite-path", db}

	out, err := run(t, append([]string{"sync", "--remote", upstream.URL}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "synced 1 rental apartments")
	assert.Contains(t, out, "synced 0 sale apartments")

	out, err = run(t, append([]string{"dump", "rentApartments"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Zamalek Loft"`)

	_, err = run(t, append([]string{"clear"}, flags...)...)
	assert.ErrorContains(t, err, "--yes")

	out, err = run(t, append([]string{"clear", "--yes"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "cleared 1 apartments and 0 sale apartments\n", out)

	out, err = run(t, append([]string{"dump", "rentApartments"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestDump_MissingKey(t *testing.T) {
	t.Setenv("BRIDGE_DRIVER", "")
	_, err := run(t, "dump", "theme", "--driver", "sqlite", "--sqlite-path", filepath.Join(t.TempDir(), "s.db"))
	assert.ErrorContains(t, err, `key "theme" is not set`)
}

func TestSync_Validation(t *testing.T) {
	t.Setenv("BRIDGE_DRIVER", "")
	t.Setenv("REMOTE_API_URL", "")
	flags := []string{"--driver", "memory"}

	_, err := run(t, append([]string{"sync"}, flags...)...)
	assert.ErrorContains(t, err, "no upstream configured")

	_, err = run(t, append([]string{"sync", "--remote", "http://x", "--only", "both"}, flags...)...)
	assert.ErrorContains(t, err, "--only")
}
