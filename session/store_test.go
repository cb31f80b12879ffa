package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logdeck/api"
)

// fakePersister records every durability call in order.
type fakePersister struct {
	calls   []string
	access  string
	refresh string
	failure error
}

func (p *fakePersister) SaveTokens(access, refresh string) error {
	p.calls = append(p.calls, "save")
	if p.failure != nil {
		return p.failure
	}
	p.access = access
	p.refresh = refresh
	return nil
}

func (p *fakePersister) LoadTokens() (string, string, error) {
	p.calls = append(p.calls, "load")
	return p.access, p.refresh, p.failure
}

func (p *fakePersister) ClearTokens() error {
	p.calls = append(p.calls, "clear")
	if p.failure != nil {
		return p.failure
	}
	p.access = ""
	p.refresh = ""
	return nil
}

func TestSetAuthCommitsWholeSession(t *testing.T) {
	persist := &fakePersister{}
	store := NewStore(persist)

	user := &api.User{ID: 1, Username: "dana"}
	require.NoError(t, store.SetAuth(user, "acc", "ref"))

	assert.True(t, store.Authenticated())
	access, refresh := store.Tokens()
	assert.Equal(t, "acc", access)
	assert.Equal(t, "ref", refresh)
	assert.Equal(t, "acc", persist.access)
	assert.Equal(t, "ref", persist.refresh)
}

func TestSetAuthRejectsPartialState(t *testing.T) {
	tests := []struct {
		name    string
		user    *api.User
		access  string
		refresh string
	}{
		{"nil user", nil, "acc", "ref"},
		{"missing access", &api.User{ID: 1}, "", "ref"},
		{"missing refresh", &api.User{ID: 1}, "acc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(&fakePersister{})
			require.NoError(t, store.SetAuth(&api.User{ID: 9}, "old", "old"))

			// A partial commit clears everything instead of storing half a session.
			require.NoError(t, store.SetAuth(tt.user, tt.access, tt.refresh))
			assert.False(t, store.Authenticated())
			assert.Nil(t, store.User())
			access, refresh := store.Tokens()
			assert.Empty(t, access)
			assert.Empty(t, refresh)
		})
	}
}

func TestMirrorHappensBeforeNotify(t *testing.T) {
	persist := &fakePersister{}
	store := NewStore(persist)

	// Capture how many durability calls had happened by the time each
	// subscriber ran; the mirror must already be done.
	var seenAtNotify []int
	store.Subscribe(func() {
		seenAtNotify = append(seenAtNotify, len(persist.calls))
	})

	require.NoError(t, store.SetAuth(&api.User{ID: 1}, "acc", "ref"))
	require.NoError(t, store.ClearAuth())

	assert.Equal(t, []string{"save", "clear"}, persist.calls)
	assert.Equal(t, []int{1, 2}, seenAtNotify)
}

func TestClearAuthIdempotent(t *testing.T) {
	persist := &fakePersister{}
	store := NewStore(persist)

	require.NoError(t, store.ClearAuth())
	require.NoError(t, store.ClearAuth())
	assert.False(t, store.Authenticated())
}

func TestRotateAccessToken(t *testing.T) {
	persist := &fakePersister{}
	store := NewStore(persist)

	// Rotation without a session is a no-op.
	require.NoError(t, store.RotateAccessToken("fresh"))
	access, _ := store.Tokens()
	assert.Empty(t, access)

	require.NoError(t, store.SetAuth(&api.User{ID: 1}, "stale", "ref"))
	require.NoError(t, store.RotateAccessToken("fresh"))

	access, refresh := store.Tokens()
	assert.Equal(t, "fresh", access)
	assert.Equal(t, "ref", refresh, "refresh token survives rotation")
	assert.Equal(t, "fresh", persist.access, "rotation is mirrored")
}

func TestUserReturnsCopy(t *testing.T) {
	store := NewStore(nil)
	require.NoError(t, store.SetAuth(&api.User{ID: 1, Username: "dana"}, "acc", "ref"))

	u := store.User()
	u.Username = "mallory"
	assert.Equal(t, "dana", store.User().Username)
}

func TestSetAuthSurfacesPersistFailure(t *testing.T) {
	persist := &fakePersister{failure: errors.New("disk full")}
	store := NewStore(persist)

	err := store.SetAuth(&api.User{ID: 1}, "acc", "ref")
	assert.Error(t, err)
	// The in-memory session still commits; durability errors are advisory.
	assert.True(t, store.Authenticated())
}
