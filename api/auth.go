package api

import (
	"context"
	"net/http"
)

// ObtainToken exchanges username/password credentials for a token pair.
// A rejected exchange yields *CredentialsError carrying the server's
// detail message verbatim.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (*TokenPair, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var pair TokenPair
	err := c.doJSON(ctx, http.MethodPost, "/auth/token/", nil, body, &pair,
		requestOpts{anonymous: true, credentialCall: true})
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. Server-side field rejections come back
// as *ValidationError.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register/", nil, req, nil,
		requestOpts{anonymous: true})
}

// CurrentUserWith fetches the profile authorized by an explicit access
// token. Login uses this before the token pair is committed, so a partial
// session never becomes observable.
func (c *Client) CurrentUserWith(ctx context.Context, access string) (*User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodGet, "/auth/user/", nil, nil, &user,
		requestOpts{overrideToken: access})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser fetches the profile of the account owning the access token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/user/", nil, nil, &user, requestOpts{}); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile replaces the mutable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, username, email string) (*User, error) {
	body := map[string]string{
		"username": username,
		"email":    email,
	}
	var user User
	if err := c.doJSON(ctx, http.MethodPut, "/auth/user/profile/", nil, body, &user, requestOpts{}); err != nil {
		return nil, err
	}
	return &user, nil
}

// GoogleLoginURL asks the server for the external provider's redirect URL.
func (c *Client) GoogleLoginURL(ctx context.Context) (string, error) {
	var out struct {
		AuthURL string `json:"auth_url"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/auth/google/login/", nil, nil, &out,
		requestOpts{anonymous: true})
	if err != nil {
		return "", err
	}
	return out.AuthURL, nil
}

// GoogleCallbackResult is the server's response to the OAuth code
// exchange: a committed token pair plus the resolved profile.
type GoogleCallbackResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// GoogleCallback submits the one-time OAuth code. Codes are single-use on
// the server side; the auth controller additionally guards against
// duplicate submissions client-side.
func (c *Client) GoogleCallback(ctx context.Context, code string) (*GoogleCallbackResult, error) {
	body := map[string]string{"code": code}
	var out GoogleCallbackResult
	err := c.doJSON(ctx, http.MethodPost, "/auth/google/callback/", nil, body, &out,
		requestOpts{anonymous: true, credentialCall: true})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
