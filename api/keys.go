package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListAPIKeys fetches the current user's API keys.
func (c *Client) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	var keys []APIKey
	if err := c.doJSON(ctx, http.MethodGet, "/api-keys/", nil, nil, &keys, requestOpts{}); err != nil {
		return nil, err
	}
	return keys, nil
}

// CreateAPIKey issues a new key. The returned Key field is the only time
// the secret is available in plaintext.
func (c *Client) CreateAPIKey(ctx context.Context, name string) (*APIKey, error) {
	body := map[string]string{"name": name}
	var key APIKey
	if err := c.doJSON(ctx, http.MethodPost, "/api-keys/", nil, body, &key, requestOpts{}); err != nil {
		return nil, err
	}
	return &key, nil
}

// UpdateAPIKey toggles a key's active flag or renames it.
func (c *Client) UpdateAPIKey(ctx context.Context, id int64, name *string, isActive *bool) (*APIKey, error) {
	body := map[string]interface{}{}
	if name != nil {
		body["name"] = *name
	}
	if isActive != nil {
		body["is_active"] = *isActive
	}
	var key APIKey
	path := fmt.Sprintf("/api-keys/%d/", id)
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, body, &key, requestOpts{}); err != nil {
		return nil, err
	}
	return &key, nil
}

// DeleteAPIKey revokes a key permanently.
func (c *Client) DeleteAPIKey(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api-keys/%d/", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil, requestOpts{})
}
