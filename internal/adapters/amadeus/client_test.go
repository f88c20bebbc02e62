package amadeus_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"trip_planner/internal/adapters/amadeus"
	"trip_planner/internal/adapters/memcache"
	"trip_planner/internal/domain"
)

type directory struct {
	tokenCalls int32
	listCalls  int32
	reject     int32 // number of listing calls to answer with 401
	expiresIn  int   // seconds; 0 means 1799
	hotels     []map[string]any
}

func (d *directory) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&d.tokenCalls, 1)
		if r.Method != http.MethodPost || r.FormValue("grant_type") != "client_credentials" ||
			r.FormValue("client_id") != "id" || r.FormValue("client_secret") != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		exp := d.expiresIn
		if exp == 0 {
			exp = 1799
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-" + string(rune('0'+n)),
			"expires_in":   exp,
		})
	})
	mux.HandleFunc("/v1/reference-data/locations/hotels/by-city", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&d.listCalls, 1)
		if atomic.AddInt32(&d.reject, -1) >= 0 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Authorization") == "" || r.URL.Query().Get("cityCode") != "TYO" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": d.hotels})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, base string) *amadeus.Client {
	t.Helper()
	cl, err := amadeus.New(base, "id", "secret", memcache.New(time.Minute), 100, 2*time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return cl
}

func TestHotelsByCity_TokenIsCachedAcrossCalls(t *testing.T) {
	d := &directory{hotels: []map[string]any{{"hotelId": "H1", "name": "Tokyo Inn"}}}
	cl := newClient(t, d.server(t).URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		hs, err := cl.HotelsByCity(ctx, "tyo")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(hs) != 1 || hs[0]["hotelId"] != "H1" {
			t.Fatalf("unexpected hotels: %+v", hs)
		}
	}
	if n := atomic.LoadInt32(&d.tokenCalls); n != 1 {
		t.Fatalf("expected one token request, got %d", n)
	}
}

func TestHotelsByCity_UnauthorizedRefreshesOnce(t *testing.T) {
	d := &directory{reject: 1, hotels: []map[string]any{{"hotelId": "H1", "name": "Tokyo Inn"}}}
	cl := newClient(t, d.server(t).URL)

	if _, err := cl.HotelsByCity(context.Background(), "TYO"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	tc, lc := atomic.LoadInt32(&d.tokenCalls), atomic.LoadInt32(&d.listCalls)
	if tc != 2 || lc != 2 {
		t.Fatalf("expected 2 token and 2 list calls, got %d/%d", tc, lc)
	}
}

func TestHotelsByCity_EmptyListing(t *testing.T) {
	d := &directory{}
	cl := newClient(t, d.server(t).URL)

	_, err := cl.HotelsByCity(context.Background(), "TYO")
	if !errors.Is(err, domain.ErrNoHotels) {
		t.Fatalf("expected ErrNoHotels, got %v", err)
	}
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := amadeus.New("http://x", "", "", memcache.New(time.Minute), 1, time.Second); err == nil {
		t.Fatalf("expected error without credentials")
	}
}

func TestToken_RefreshedOnceExpired(t *testing.T) {
	// expires_in below the 30s slack clamps the cache TTL to one second
	d := &directory{expiresIn: 10}
	cl := newClient(t, d.server(t).URL)
	ctx := context.Background()

	first, err := cl.Token(ctx)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	again, err := cl.Token(ctx)
	if err != nil || again != first {
		t.Fatalf("expected cached token %q, got %q (%v)", first, again, err)
	}
	if n := atomic.LoadInt32(&d.tokenCalls); n != 1 {
		t.Fatalf("expected 1 token request before expiry, got %d", n)
	}

	time.Sleep(1200 * time.Millisecond)

	fresh, err := cl.Token(ctx)
	if err != nil {
		t.Fatalf("token after expiry: %v", err)
	}
	if fresh == first || fresh != "tok-2" {
		t.Fatalf("expected a new token after expiry, got %q", fresh)
	}
	if n := atomic.LoadInt32(&d.tokenCalls); n != 2 {
		t.Fatalf("expected 2 token requests, got %d", n)
	}
}
