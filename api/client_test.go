package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenBox is a mutable token source for tests.
type tokenBox struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func (b *tokenBox) source() (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.access, b.refresh
}

func (b *tokenBox) set(access, refresh string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = access
	b.refresh = refresh
}

func newTestClient(t *testing.T, handler http.Handler, tokens TokenSource) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}, tokens), srv
}

func TestBearerHeaderReadAtRequestTime(t *testing.T) {
	var seen []string
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]Project{})
	})

	box := &tokenBox{access: "first", refresh: "r"}
	client, _ := newTestClient(t, mux, box.source)

	_, err := client.ListProjects(context.Background())
	require.NoError(t, err)

	// The source is consulted per request, not captured at construction.
	box.set("second", "r")
	_, err = client.ListProjects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

func TestRefreshRetryOn401(t *testing.T) {
	box := &tokenBox{access: "stale", refresh: "refresh-1"}

	var refreshHits int
	var attempts []string
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		attempts = append(attempts, auth)
		if auth != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]Project{{ID: 1, Name: "alpha"}})
	})
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshHits++
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-1", body["refresh"])
		json.NewEncoder(w).Encode(map[string]string{"access": "fresh"})
	})

	client, _ := newTestClient(t, mux, box.source)
	client.SetRefreshHook(func(access string) {
		box.set(access, "refresh-1")
	})

	projects, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "alpha", projects[0].Name)

	assert.Equal(t, 1, refreshHits, "exactly one refresh exchange")
	assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, attempts)

	access, _ := box.source()
	assert.Equal(t, "fresh", access, "hook received the rotated token")
}

func TestConcurrentRequestsShareOneRefresh(t *testing.T) {
	box := &tokenBox{access: "stale", refresh: "refresh-1"}

	// Both requests must be rejected before the exchange answers, so the
	// refresh handler waits until two stale attempts have arrived.
	var bothRejected sync.WaitGroup
	bothRejected.Add(2)

	var mu sync.Mutex
	refreshHits := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			bothRejected.Done()
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]Project{{ID: 1, Name: "alpha"}})
	})
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		bothRejected.Wait()
		mu.Lock()
		refreshHits++
		mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"access": "fresh"})
	})

	client, _ := newTestClient(t, mux, box.source)
	client.SetRefreshHook(func(access string) {
		box.set(access, "refresh-1")
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.ListProjects(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, refreshHits, "the second caller reuses the rotated token")
}

func TestRefreshSkipsExchangeAfterRotation(t *testing.T) {
	var refreshHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshHits++
		json.NewEncoder(w).Encode(map[string]string{"access": "fresh"})
	})

	box := &tokenBox{access: "stale", refresh: "refresh-1"}
	client, _ := newTestClient(t, mux, box.source)
	client.SetRefreshHook(func(access string) {
		box.set(access, "refresh-1")
	})

	require.NoError(t, client.refreshAccessToken(context.Background(), "stale"))
	assert.Equal(t, 1, refreshHits)

	// A second 401 holder of the same stale token finds it already
	// rotated and must not spend the refresh token again.
	require.NoError(t, client.refreshAccessToken(context.Background(), "stale"))
	assert.Equal(t, 1, refreshHits)
}

func TestRefreshFailureSurfacesUnauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	box := &tokenBox{access: "stale", refresh: "dead"}
	client, _ := newTestClient(t, mux, box.source)

	_, err := client.ListProjects(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNoRefreshWithoutRefreshToken(t *testing.T) {
	var refreshHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshHits++
		w.WriteHeader(http.StatusUnauthorized)
	})

	box := &tokenBox{access: "stale"}
	client, _ := newTestClient(t, mux, box.source)

	_, err := client.ListProjects(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, refreshHits, "no refresh token, no exchange")
}

func TestAnonymousCallSkipsRefresh(t *testing.T) {
	var refreshHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshHits++
	})

	box := &tokenBox{access: "a", refresh: "r"}
	client, _ := newTestClient(t, mux, box.source)

	_, err := client.ObtainToken(context.Background(), "u", "p")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, refreshHits)
}

func TestDoBlobSuggestedFilename(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/event-logs/download/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("project"))
		w.Header().Set("Content-Disposition", `attachment; filename="event-logs.csv"`)
		w.Write([]byte("id,message\n1,hello\n"))
	})

	box := &tokenBox{access: "a", refresh: "r"}
	client, _ := newTestClient(t, mux, box.source)

	data, filename, err := client.DownloadEventLogsCSV(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "event-logs.csv", filename)
	assert.Equal(t, "id,message\n1,hello\n", string(data))
}

func TestNetworkErrorWrapsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: url}, nil)
	_, err := client.ListProjects(context.Background())

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestCurrentUserWithUsesOverrideToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/user/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer uncommitted", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(User{ID: 3, Username: "dana"})
	})

	// The token source holds nothing; login has not committed yet.
	box := &tokenBox{}
	client, _ := newTestClient(t, mux, box.source)

	user, err := client.CurrentUserWith(context.Background(), "uncommitted")
	require.NoError(t, err)
	assert.Equal(t, "dana", user.Username)
}
