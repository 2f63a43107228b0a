package serper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ConTROLLAPP/controll/httpcache"
	"github.com/ConTROLLAPP/controll/quota"
	"github.com/google/go-cmp/cmp"
)

func TestSearch(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("missing API key header")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["q"] != `"Seth D" site:yelp.com` {
			t.Errorf("query = %v", body["q"])
		}
		json.NewEncoder(w).Encode(Response{ //nolint:errcheck // test server
			Organic: []Result{
				{Title: "Seth D.'s Reviews", Link: "https://www.yelp.com/user_details?userid=x", Snippet: "Waltham, MA"},
			},
		})
	}))
	defer srv.Close()

	c, err := New("test-key", WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.Search(context.Background(), `"Seth D" site:yelp.com`, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []Result{{Title: "Seth D.'s Reviews", Link: "https://www.yelp.com/user_details?userid=x", Snippet: "Waltham, MA"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchRequiresAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New with empty key should fail")
	}
}

func TestSearchSpendsQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(Response{}) //nolint:errcheck // test server
	}))
	defer srv.Close()

	tracker := quota.New(filepath.Join(t.TempDir(), "usage.json"), quota.WithLimit(1))
	c, err := New("test-key", WithEndpoint(srv.URL), WithHTTPClient(srv.Client()), WithQuota(tracker))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := c.Search(ctx, "first", 5); err != nil {
		t.Fatalf("first Search: %v", err)
	}
	if _, err := c.Search(ctx, "second", 5); !errors.Is(err, quota.ErrExhausted) {
		t.Errorf("over-quota Search = %v, want ErrExhausted", err)
	}
}

func TestSearchCachedResponseSkipsQuota(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(Response{Organic: []Result{{Title: "hit"}}}) //nolint:errcheck // test server
	}))
	defer srv.Close()

	cache, err := httpcache.NewWithPath(time.Minute, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tracker := quota.New(filepath.Join(t.TempDir(), "usage.json"), quota.WithLimit(1))
	c, err := New("test-key",
		WithEndpoint(srv.URL), WithHTTPClient(srv.Client()), WithCache(cache), WithQuota(tracker))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := c.Search(ctx, "same query", 5); err != nil {
		t.Fatalf("first Search: %v", err)
	}
	// Second identical query hits the cache: no upstream call, no quota.
	got, err := c.Search(ctx, "same query", 5)
	if err != nil {
		t.Fatalf("cached Search: %v", err)
	}
	if len(got) != 1 || got[0].Title != "hit" {
		t.Errorf("cached results = %+v", got)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}
