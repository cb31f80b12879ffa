package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeErrorBody(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		credentialCall bool
		check          func(t *testing.T, err error)
	}{
		{
			name:   "401 maps to ErrUnauthorized",
			status: 401,
			body:   `{"detail": "token expired"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
			},
		},
		{
			name:   "404 maps to ErrNotFound",
			status: 404,
			body:   `{"detail": "Not found."}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
			},
		},
		{
			name:           "rejected credentials keep the server message verbatim",
			status:         400,
			body:           `{"detail": "No active account found with the given credentials"}`,
			credentialCall: true,
			check: func(t *testing.T, err error) {
				var credErr *CredentialsError
				require.ErrorAs(t, err, &credErr)
				assert.Equal(t, "No active account found with the given credentials", credErr.Detail)
				assert.Equal(t, "No active account found with the given credentials", credErr.Error())
			},
		},
		{
			name:   "field errors become a validation error",
			status: 400,
			body:   `{"email": ["Enter a valid email address."], "username": "This field is required."}`,
			check: func(t *testing.T, err error) {
				var valErr *ValidationError
				require.ErrorAs(t, err, &valErr)
				assert.Equal(t, []string{"Enter a valid email address."}, valErr.Fields["email"])
				assert.Equal(t, []string{"This field is required."}, valErr.Fields["username"])
			},
		},
		{
			name:   "non-JSON body becomes a generic error",
			status: 500,
			body:   "Internal Server Error",
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "API error (status 500): Internal Server Error")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, decodeErrorBody(tt.status, []byte(tt.body), tt.credentialCall))
		})
	}
}

func TestValidationErrorDisplay(t *testing.T) {
	err := &ValidationError{Fields: map[string][]string{
		"username": {"This field is required."},
		"email":    {"Enter a valid email address.", "Email already in use."},
	}}

	// Fields render in sorted order so the output is stable.
	assert.Equal(t,
		"email: Enter a valid email address.\nemail: Email already in use.\nusername: This field is required.",
		err.Display())
}

func TestValidationErrorDisplayGenericKeys(t *testing.T) {
	err := &ValidationError{Fields: map[string][]string{
		"non_field_errors": {"Passwords do not match."},
	}}
	assert.Equal(t, "Passwords do not match.", err.Display())

	empty := &ValidationError{}
	assert.Equal(t, "validation failed", empty.Display())
}

func TestParseFieldErrors(t *testing.T) {
	assert.Nil(t, parseFieldErrors([]byte("not json")))
	assert.Nil(t, parseFieldErrors([]byte(`{}`)))
	assert.Nil(t, parseFieldErrors([]byte(`{"count": 5}`)))

	fields := parseFieldErrors([]byte(`{"name": "too long", "tags": ["a", "b"]}`))
	require.NotNil(t, fields)
	assert.Equal(t, []string{"too long"}, fields["name"])
	assert.Equal(t, []string{"a", "b"}, fields["tags"])
}
