// Package auth implements the session lifecycle shared by both
// frontends: password login, registration, logout, boot-time session
// reconciliation and the Google OAuth handshake.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"logdeck/api"
	"logdeck/session"
)

// State is the controller's lifecycle position.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

var (
	// ErrPasswordMismatch is returned by Register before any network
	// call when the confirmation does not match.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrCodeAlreadyUsed is returned when an OAuth code is submitted a
	// second time, e.g. from a duplicated callback.
	ErrCodeAlreadyUsed = errors.New("authorization code already used")
)

// Logger is the subset of the app logger the controller needs.
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Controller drives the session state machine. The token-pair commit
// always happens after the profile fetch succeeds, so the route guard can
// never observe a token without a user or vice versa.
type Controller struct {
	client *api.Client
	store  *session.Store
	logger Logger

	mu         sync.Mutex
	state      State
	bootDone   bool
	usedCodes  map[string]struct{}
	oauthState string
}

// NewController wires the controller to the API client and session store.
// The client's refresh hook is pointed at the store so rotated access
// tokens are mirrored to durable storage.
func NewController(client *api.Client, store *session.Store, logger Logger) *Controller {
	c := &Controller{
		client:    client,
		store:     store,
		logger:    logger,
		state:     StateAnonymous,
		usedCodes: make(map[string]struct{}),
	}
	client.SetRefreshHook(func(access string) {
		if err := store.RotateAccessToken(access); err != nil {
			logger.Warn("Failed to persist rotated access token: %v", err)
		}
	})
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BootDone reports whether LoadSessionOnBoot has completed. The route
// guard renders a loading state until it has; redirect decisions made
// earlier would flash an authenticated user to the login page.
func (c *Controller) BootDone() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bootDone
}

// Login exchanges credentials for a token pair, fetches the profile with
// the new token, and only then commits the session in one step.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	c.setState(StateAuthenticating)

	pair, err := c.client.ObtainToken(ctx, username, password)
	if err != nil {
		c.setState(StateAnonymous)
		return err
	}

	user, err := c.client.CurrentUserWith(ctx, pair.Access)
	if err != nil {
		c.setState(StateAnonymous)
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	if err := c.store.SetAuth(user, pair.Access, pair.Refresh); err != nil {
		c.logger.Warn("Failed to persist session: %v", err)
	}
	c.setState(StateAuthenticated)
	c.logger.Info("Logged in as %s", user.Username)
	return nil
}

// Register validates the password confirmation locally, then creates the
// account. It does not log in; callers follow up with Login.
func (c *Controller) Register(ctx context.Context, username, email, password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return c.client.Register(ctx, api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
}

// Logout clears the session. Safe to call with no session; concurrent
// calls are idempotent.
func (c *Controller) Logout() {
	if err := c.store.ClearAuth(); err != nil {
		c.logger.Warn("Failed to clear persisted session: %v", err)
	}
	c.setState(StateAnonymous)
	c.logger.Info("Logged out")
}

// LoadSessionOnBoot reconstructs the session from durable storage. An
// expired access token clears the session; a valid one is committed after
// the profile fetch succeeds. A network failure leaves the persisted
// tokens in place but the session anonymous, so the next start retries.
func (c *Controller) LoadSessionOnBoot(ctx context.Context) error {
	defer func() {
		c.mu.Lock()
		c.bootDone = true
		c.mu.Unlock()
	}()

	access, refresh, err := c.store.PersistedTokens()
	if err != nil {
		return fmt.Errorf("failed to read persisted session: %w", err)
	}
	if access == "" {
		return nil
	}

	if tokenExpired(access) {
		c.logger.Info("Persisted access token expired, clearing session")
		if err := c.store.ClearAuth(); err != nil {
			return fmt.Errorf("failed to clear expired session: %w", err)
		}
		return nil
	}

	c.setState(StateAuthenticating)
	user, err := c.client.CurrentUserWith(ctx, access)
	if err != nil {
		c.setState(StateAnonymous)
		if errors.Is(err, api.ErrUnauthorized) {
			c.logger.Info("Persisted access token rejected, clearing session")
			if clearErr := c.store.ClearAuth(); clearErr != nil {
				return fmt.Errorf("failed to clear rejected session: %w", clearErr)
			}
			return nil
		}
		return fmt.Errorf("failed to refresh profile: %w", err)
	}

	if err := c.store.SetAuth(user, access, refresh); err != nil {
		c.logger.Warn("Failed to persist session: %v", err)
	}
	c.setState(StateAuthenticated)
	c.logger.Info("Session restored for %s", user.Username)
	return nil
}

// GoogleLoginURL fetches the provider redirect URL and tags it with a
// state nonce that HandleGoogleRedirect verifies when present.
func (c *Controller) GoogleLoginURL(ctx context.Context) (string, error) {
	authURL, err := c.client.GoogleLoginURL(ctx)
	if err != nil {
		return "", err
	}

	nonce := uuid.NewString()
	c.mu.Lock()
	c.oauthState = nonce
	c.mu.Unlock()

	u, err := url.Parse(authURL)
	if err != nil {
		return authURL, nil
	}
	q := u.Query()
	if q.Get("state") == "" {
		q.Set("state", nonce)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// HandleGoogleRedirect extracts the one-time code from the redirect URL
// and completes the callback exchange.
func (c *Controller) HandleGoogleRedirect(ctx context.Context, rawURL string) error {
	code, state, err := ExtractCode(rawURL)
	if err != nil {
		return err
	}

	c.mu.Lock()
	expected := c.oauthState
	c.mu.Unlock()
	if expected != "" && state != "" && state != expected {
		return errors.New("OAuth state mismatch")
	}

	return c.GoogleCallback(ctx, code)
}

// GoogleCallback submits the OAuth code and commits the session. Each
// code is consumed exactly once: a duplicate submission returns
// ErrCodeAlreadyUsed without touching the session.
func (c *Controller) GoogleCallback(ctx context.Context, code string) error {
	if code == "" {
		return errors.New("missing authorization code")
	}

	c.mu.Lock()
	if _, used := c.usedCodes[code]; used {
		c.mu.Unlock()
		return ErrCodeAlreadyUsed
	}
	c.usedCodes[code] = struct{}{}
	c.mu.Unlock()

	c.setState(StateAuthenticating)
	result, err := c.client.GoogleCallback(ctx, code)
	if err != nil {
		c.setState(StateAnonymous)
		return err
	}

	user := result.User
	if err := c.store.SetAuth(&user, result.AccessToken, result.RefreshToken); err != nil {
		c.logger.Warn("Failed to persist session: %v", err)
	}
	c.setState(StateAuthenticated)
	c.logger.Info("Logged in via Google as %s", user.Username)
	return nil
}

// HandleUnauthorized reacts to a surfaced ErrUnauthorized from any API
// call: the refresh exchange already failed inside the client, so the
// session is cleared and the route guard redirects to login.
func (c *Controller) HandleUnauthorized() {
	if !c.store.Authenticated() {
		return
	}
	c.logger.Info("Access rejected after refresh attempt, logging out")
	c.Logout()
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// ExtractCode pulls the code (and state, when present) out of an OAuth
// redirect URL. Hosts route the redirect differently, so the query may
// live on the path, after the fragment, or the value may be pasted bare.
func ExtractCode(rawURL string) (code, state string, err error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", "", errors.New("empty redirect URL")
	}

	// A bare code pasted without any URL structure.
	if !strings.ContainsAny(raw, "?&=/#") {
		return raw, "", nil
	}

	candidates := []string{raw}
	if i := strings.Index(raw, "#"); i >= 0 {
		// Some hosts place the query after the fragment.
		candidates = append(candidates, raw[i+1:])
	}

	for _, candidate := range candidates {
		query := candidate
		if i := strings.Index(candidate, "?"); i >= 0 {
			query = candidate[i+1:]
		}
		values, parseErr := url.ParseQuery(query)
		if parseErr != nil {
			continue
		}
		if c := values.Get("code"); c != "" {
			return c, values.Get("state"), nil
		}
	}
	return "", "", errors.New("no authorization code in redirect URL")
}

// tokenExpired decodes the access token's exp claim without verifying the
// signature; verification is the server's job, the client only needs to
// know whether a round trip is worth attempting.
func tokenExpired(access string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(access, jwt.MapClaims{})
	if err != nil {
		// Not a decodable JWT: treat as expired so boot clears it.
		return true
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(time.Now())
}
