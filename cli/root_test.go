package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logdeck/api"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{
		"login", "logout", "register", "whoami",
		"projects", "keys", "logs", "export", "stats", "notify", "app",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRootShowsHelpWithoutArgs(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(nil)

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "logdeck")
	assert.Contains(t, out.String(), "Available Commands")
}

func TestVersionFlag(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, fmt.Sprintf("logdeck %s\n", Version), out.String())
}

func TestSurfaceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unauthorized suggests logging in again",
			err:  api.ErrUnauthorized,
			want: "session expired",
		},
		{
			name: "not found mentions deletion elsewhere",
			err:  api.ErrNotFound,
			want: "may have been deleted elsewhere",
		},
		{
			name: "network failures suggest a retry",
			err:  &api.NetworkError{Err: errors.New("connection refused")},
			want: "check your connection and retry",
		},
		{
			name: "wrapped sentinels still match",
			err:  fmt.Errorf("listing projects: %w", api.ErrUnauthorized),
			want: "session expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := surfaceError(tt.err)
			assert.True(t, strings.Contains(got.Error(), tt.want),
				"expected %q in %q", tt.want, got.Error())
		})
	}

	plain := errors.New("something else")
	assert.Equal(t, plain, surfaceError(plain))
}
