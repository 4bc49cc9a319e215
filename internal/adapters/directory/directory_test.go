package directory_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/stock-ledger/internal/adapters/directory"
	redis_a "github.com/ammerola/stock-ledger/internal/adapters/redis_adapter"
	"github.com/ammerola/stock-ledger/internal/core/domain"
	"github.com/ammerola/stock-ledger/test/helpers"
)

func branchServer(t *testing.T, hits *int32, known ...string) *httptest.Server {
	t.Helper()
	set := make(map[string]bool, len(known))
	for _, b := range known {
		set[b] = true
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /branches/{id}", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if set[r.PathValue("id")] {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBranchClient_BranchExists(t *testing.T) {
	var hits int32
	srv := branchServer(t, &hits, "b-1")
	c := directory.NewBranchClient(srv.URL, time.Second, helpers.TestLogger())

	ok, err := c.BranchExists(context.Background(), "b-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.BranchExists(context.Background(), "b-404")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBranchClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := directory.NewBranchClient(srv.URL, time.Second, helpers.TestLogger())
	ok, err := c.BranchExists(context.Background(), "b-1")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestBranchClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := directory.NewBranchClient(srv.URL, time.Second, helpers.TestLogger())
	_, err := c.BranchExists(context.Background(), "b-1")

	var statusErr *directory.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Status)
}

func TestCatalogClient_MissingItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/lookup", r.URL.Path)
		var req struct {
			Items []domain.ItemRef `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var missing []domain.ItemRef
		for _, ref := range req.Items {
			if ref.ItemID == "ghost" {
				missing = append(missing, ref)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"missing": missing})
	}))
	defer srv.Close()

	c := directory.NewCatalogClient(srv.URL, time.Second, helpers.TestLogger())
	missing, err := c.MissingItems(context.Background(), []domain.ItemRef{
		{ItemID: "P1", ItemKind: domain.ItemKindProduct},
		{ItemID: "ghost", ItemKind: domain.ItemKindMaterial},
	})

	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, domain.ItemRef{ItemID: "ghost", ItemKind: domain.ItemKindMaterial}, missing[0])
}

func TestCachedBranchDirectory(t *testing.T) {
	var hits int32
	srv := branchServer(t, &hits, "b-1")

	mr := miniredis.RunT(t)
	cache := redis_a.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, helpers.TestLogger())
	d := directory.NewCachedBranchDirectory(
		directory.NewBranchClient(srv.URL, time.Second, helpers.TestLogger()),
		cache, time.Minute, helpers.TestLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := d.BranchExists(ctx, "b-1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits), "known branches are cached")

	for i := 0; i < 2; i++ {
		ok, err := d.BranchExists(ctx, "b-2")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits), "unknown branches are asked every time")
}

func TestAllowAll(t *testing.T) {
	var a directory.AllowAll
	ok, err := a.BranchExists(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)

	missing, err := a.MissingItems(context.Background(), []domain.ItemRef{{ItemID: "x"}})
	require.NoError(t, err)
	assert.Empty(t, missing)
}
