package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logdeck/api"
	"logdeck/session"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// memPersister keeps tokens in memory, standing in for the SQLite store.
type memPersister struct {
	access  string
	refresh string
}

func (p *memPersister) SaveTokens(access, refresh string) error {
	p.access = access
	p.refresh = refresh
	return nil
}

func (p *memPersister) LoadTokens() (string, string, error) {
	return p.access, p.refresh, nil
}

func (p *memPersister) ClearTokens() error {
	p.access = ""
	p.refresh = ""
	return nil
}

func signedToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{"exp": time.Now().Add(ttl).Unix(), "user_id": 1}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return token
}

func newTestController(t *testing.T, handler http.Handler, persist *memPersister) (*Controller, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewStore(persist)
	client := api.NewClient(api.Config{BaseURL: srv.URL}, store.Tokens)
	return NewController(client, store, nopLogger{}), store
}

func TestLoginCommitsAfterProfileFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dana", body["username"])
		json.NewEncoder(w).Encode(api.TokenPair{Access: "acc", Refresh: "ref"})
	})
	mux.HandleFunc("/auth/user/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer acc", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(api.User{ID: 1, Username: "dana", Email: "d@example.com"})
	})

	persist := &memPersister{}
	ctrl, store := newTestController(t, mux, persist)

	require.NoError(t, ctrl.Login(context.Background(), "dana", "pw"))

	assert.Equal(t, StateAuthenticated, ctrl.State())
	assert.True(t, store.Authenticated())
	assert.Equal(t, "dana", store.User().Username)
	assert.Equal(t, "acc", persist.access)
	assert.Equal(t, "ref", persist.refresh)
}

func TestLoginRejectedCredentialsStayAnonymous(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"detail": "No active account found with the given credentials",
		})
	})

	ctrl, store := newTestController(t, mux, &memPersister{})

	err := ctrl.Login(context.Background(), "dana", "wrong")
	var credErr *api.CredentialsError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, "No active account found with the given credentials", credErr.Detail)

	assert.Equal(t, StateAnonymous, ctrl.State())
	assert.False(t, store.Authenticated())
}

func TestLoginProfileFailureCommitsNothing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.TokenPair{Access: "acc", Refresh: "ref"})
	})
	mux.HandleFunc("/auth/user/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	persist := &memPersister{}
	ctrl, store := newTestController(t, mux, persist)

	require.Error(t, ctrl.Login(context.Background(), "dana", "pw"))
	assert.False(t, store.Authenticated())
	assert.Empty(t, persist.access, "no partial session reaches durable storage")
}

func TestRegisterPasswordMismatchSkipsNetwork(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	ctrl, _ := newTestController(t, mux, &memPersister{})

	err := ctrl.Register(context.Background(), "dana", "d@example.com", "pw1", "pw2")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Zero(t, hits)
}

func TestBootRestoresValidSession(t *testing.T) {
	access := signedToken(t, time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/user/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+access, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(api.User{ID: 1, Username: "dana"})
	})

	persist := &memPersister{access: access, refresh: "ref"}
	ctrl, store := newTestController(t, mux, persist)

	assert.False(t, ctrl.BootDone())
	require.NoError(t, ctrl.LoadSessionOnBoot(context.Background()))

	assert.True(t, ctrl.BootDone())
	assert.True(t, store.Authenticated())
	assert.Equal(t, "dana", store.User().Username)
}

func TestBootClearsExpiredToken(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	persist := &memPersister{access: signedToken(t, -time.Hour), refresh: "ref"}
	ctrl, store := newTestController(t, mux, persist)

	require.NoError(t, ctrl.LoadSessionOnBoot(context.Background()))

	assert.True(t, ctrl.BootDone())
	assert.False(t, store.Authenticated())
	assert.Empty(t, persist.access, "expired tokens are removed from storage")
	assert.Zero(t, hits, "an expired token is not worth a round trip")
}

func TestBootClearsRejectedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/user/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	persist := &memPersister{access: signedToken(t, time.Hour), refresh: "ref"}
	ctrl, store := newTestController(t, mux, persist)

	require.NoError(t, ctrl.LoadSessionOnBoot(context.Background()))
	assert.False(t, store.Authenticated())
	assert.Empty(t, persist.access)
}

func TestBootNetworkFailureKeepsPersistedTokens(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	access := signedToken(t, time.Hour)
	persist := &memPersister{access: access, refresh: "ref"}
	store := session.NewStore(persist)
	client := api.NewClient(api.Config{BaseURL: url}, store.Tokens)
	ctrl := NewController(client, store, nopLogger{})

	err := ctrl.LoadSessionOnBoot(context.Background())
	require.Error(t, err)

	assert.True(t, ctrl.BootDone())
	assert.False(t, store.Authenticated(), "session stays anonymous")
	assert.Equal(t, access, persist.access, "tokens survive for the next start")
}

func TestGoogleCallbackConsumesCodeOnce(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/google/callback/", func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(api.GoogleCallbackResult{
			AccessToken:  "acc",
			RefreshToken: "ref",
			User:         api.User{ID: 1, Username: "dana"},
		})
	})

	ctrl, store := newTestController(t, mux, &memPersister{})

	require.NoError(t, ctrl.GoogleCallback(context.Background(), "code-1"))
	assert.True(t, store.Authenticated())

	err := ctrl.GoogleCallback(context.Background(), "code-1")
	assert.ErrorIs(t, err, ErrCodeAlreadyUsed)
	assert.Equal(t, 1, hits, "duplicate submissions never reach the server")

	// A different code is its own exchange.
	require.NoError(t, ctrl.GoogleCallback(context.Background(), "code-2"))
	assert.Equal(t, 2, hits)
}

func TestGoogleCallbackRequiresCode(t *testing.T) {
	ctrl, _ := newTestController(t, http.NewServeMux(), &memPersister{})
	assert.Error(t, ctrl.GoogleCallback(context.Background(), ""))
}

func TestHandleUnauthorizedLogsOut(t *testing.T) {
	mux := http.NewServeMux()
	persist := &memPersister{}
	ctrl, store := newTestController(t, mux, persist)

	// No session: nothing to do.
	ctrl.HandleUnauthorized()
	assert.False(t, store.Authenticated())

	require.NoError(t, store.SetAuth(&api.User{ID: 1}, "acc", "ref"))
	ctrl.HandleUnauthorized()
	assert.False(t, store.Authenticated())
	assert.Empty(t, persist.access)
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCode  string
		wantState string
		wantErr   bool
	}{
		{
			name:     "standard redirect URL",
			raw:      "http://localhost:8000/callback?code=abc123&scope=email",
			wantCode: "abc123",
		},
		{
			name:      "code with state",
			raw:       "http://localhost:8000/callback?code=abc123&state=nonce-1",
			wantCode:  "abc123",
			wantState: "nonce-1",
		},
		{
			name:     "bare code pasted without URL",
			raw:      "abc123",
			wantCode: "abc123",
		},
		{
			name:     "query after fragment",
			raw:      "http://localhost:8000/app#/callback?code=abc123",
			wantCode: "abc123",
		},
		{
			name:     "surrounding whitespace",
			raw:      "  http://localhost:8000/callback?code=abc123  ",
			wantCode: "abc123",
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "URL without a code",
			raw:     "http://localhost:8000/callback?error=access_denied",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, state, err := ExtractCode(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestTokenExpired(t *testing.T) {
	assert.False(t, tokenExpired(signedToken(t, time.Hour)))
	assert.True(t, tokenExpired(signedToken(t, -time.Hour)))
	assert.True(t, tokenExpired("not-a-jwt"), "undecodable tokens are treated as expired")
}
