package api

import (
	"context"
	"net/http"
)

// NotificationPrefs fetches the user's email notification settings.
func (c *Client) NotificationPrefs(ctx context.Context) (*NotificationPreferences, error) {
	var prefs NotificationPreferences
	if err := c.doJSON(ctx, http.MethodGet, "/email-notifications/", nil, nil, &prefs, requestOpts{}); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdateNotificationPrefs replaces the notification settings in full.
func (c *Client) UpdateNotificationPrefs(ctx context.Context, prefs NotificationPreferences) (*NotificationPreferences, error) {
	var out NotificationPreferences
	if err := c.doJSON(ctx, http.MethodPut, "/email-notifications/", nil, prefs, &out, requestOpts{}); err != nil {
		return nil, err
	}
	return &out, nil
}
