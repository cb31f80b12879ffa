package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenSource supplies the current token pair. It is consulted at request
// time, not at client construction, so rotated tokens are picked up
// without re-instantiating the client.
type TokenSource func() (access, refresh string)

// Client talks to the logging platform's REST API. All protected calls
// carry the current access token as a bearer credential. On a 401 the
// client attempts exactly one refresh-token exchange, retries once, and
// surfaces ErrUnauthorized if that also fails.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource

	// onRefresh is invoked with the rotated access token after a
	// successful refresh exchange so the session store stays in sync.
	onRefresh func(access string)

	refreshMu sync.Mutex
}

// Config holds client construction options.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates an API client. tokens may be nil for a client that
// only performs unauthenticated calls.
func NewClient(cfg Config, tokens TokenSource) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// SetRefreshHook registers the callback invoked when the access token is
// rotated by an automatic refresh exchange.
func (c *Client) SetRefreshHook(fn func(access string)) {
	c.onRefresh = fn
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// requestOpts controls per-request behavior of do.
type requestOpts struct {
	// anonymous requests skip the bearer header and the refresh retry.
	anonymous bool
	// credentialCall maps a 400 body onto CredentialsError.
	credentialCall bool
	// overrideToken bypasses the token source for this request. Used
	// during login, where the new token exists before it is committed.
	overrideToken string
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out (which may be nil for empty responses).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}, opts requestOpts) error {
	resp, data, err := c.do(ctx, method, path, query, body, opts)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doBlob issues a request whose response is a raw byte payload (CSV
// exports). The suggested filename is taken from the Content-Disposition
// header when present.
func (c *Client) doBlob(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	resp, data, err := c.do(ctx, http.MethodGet, path, query, nil, requestOpts{})
	if err != nil {
		return nil, "", err
	}

	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}
	return data, filename, nil
}

// do performs one request, retrying once through the refresh exchange on
// a 401. The response body is fully read before returning.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, opts requestOpts) (*http.Response, []byte, error) {
	var staleAccess string
	if c.tokens != nil {
		staleAccess, _ = c.tokens()
	}

	resp, data, err := c.send(ctx, method, path, query, body, opts)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !opts.anonymous && opts.overrideToken == "" {
		if refreshErr := c.refreshAccessToken(ctx, staleAccess); refreshErr != nil {
			return nil, nil, ErrUnauthorized
		}
		resp, data, err = c.send(ctx, method, path, query, body, opts)
		if err != nil {
			return nil, nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, decodeErrorBody(resp.StatusCode, data, opts.credentialCall)
	}
	return resp, data, nil
}

// send performs a single request attempt without any retry policy.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body interface{}, opts requestOpts) (*http.Response, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, opts)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Err: err}
	}
	return resp, data, nil
}

// setHeaders sets content type and, for protected calls, the bearer
// credential read from the token source at request time.
func (c *Client) setHeaders(req *http.Request, opts requestOpts) {
	req.Header.Set("Content-Type", "application/json")
	if opts.overrideToken != "" {
		req.Header.Set("Authorization", "Bearer "+opts.overrideToken)
		return
	}
	if opts.anonymous || c.tokens == nil {
		return
	}
	if access, _ := c.tokens(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
}

// refreshAccessToken exchanges the refresh token for a new access token.
// Exchanges are single-flight: stale is the token the rejected request
// carried, and a caller that acquires the lock after another request
// already rotated it skips the exchange and just retries.
func (c *Client) refreshAccessToken(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.tokens == nil {
		return ErrUnauthorized
	}
	current, refresh := c.tokens()
	if current != "" && current != stale {
		return nil
	}
	if refresh == "" {
		return ErrUnauthorized
	}

	var out struct {
		Access string `json:"access"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/token/refresh/",
		nil, map[string]string{"refresh": refresh}, &out, requestOpts{anonymous: true})
	if err != nil {
		return fmt.Errorf("refresh exchange failed: %w", err)
	}
	if out.Access == "" {
		return ErrUnauthorized
	}
	if c.onRefresh != nil {
		c.onRefresh(out.Access)
	}
	return nil
}

// projectQuery builds the ?project= query used by the log endpoints.
func projectQuery(projectID int64) url.Values {
	q := url.Values{}
	if projectID > 0 {
		q.Set("project", fmt.Sprintf("%d", projectID))
	}
	return q
}
