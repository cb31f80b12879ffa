// Package cache is the read-through resource layer shared by both
// frontends. List results are cached under keys that include the project
// filter; every successful mutation invalidates the affected kind's
// cached views and the next read re-fetches. The cache is never patched
// optimistically, so server-computed fields (log counts, timestamps)
// cannot drift.
package cache

import (
	"context"
	"fmt"
	"sync"

	"logdeck/api"
)

// Resource kinds used as cache key prefixes.
const (
	kindProjects  = "projects"
	kindAPIKeys   = "api-keys"
	kindEventLogs = "event-logs"
	kindLlmLogs   = "llm-logs"
	kindAnalytics = "analytics"
	kindUserStats = "user-stats"
	kindNotify    = "email-notifications"
)

// Resources wraps the API client with a filter-keyed list cache.
type Resources struct {
	client *api.Client

	mu      sync.Mutex
	entries map[string]interface{}
}

// New creates the resource layer over an API client.
func New(client *api.Client) *Resources {
	return &Resources{
		client:  client,
		entries: make(map[string]interface{}),
	}
}

// Invalidate drops every cached view of one resource kind. The next read
// goes back to the server.
func (r *Resources) Invalidate(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := kind + "/"
	for key := range r.entries {
		if key == kind || len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(r.entries, key)
		}
	}
}

// InvalidateAll empties the cache entirely. Used on logout so one
// account's data can never leak into the next session.
func (r *Resources) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]interface{})
}

func (r *Resources) cached(key string) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[key]
	return v, ok
}

func (r *Resources) put(key string, v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = v
}

func projectKey(kind string, projectID int64) string {
	return fmt.Sprintf("%s/%d", kind, projectID)
}

// Projects returns the cached project list, fetching on a miss.
func (r *Resources) Projects(ctx context.Context) ([]api.Project, error) {
	if v, ok := r.cached(kindProjects); ok {
		return v.([]api.Project), nil
	}
	projects, err := r.client.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	r.put(kindProjects, projects)
	return projects, nil
}

// CreateProject creates a project and invalidates the project views.
func (r *Resources) CreateProject(ctx context.Context, req api.CreateProjectRequest) (*api.Project, error) {
	project, err := r.client.CreateProject(ctx, req)
	if err != nil {
		return nil, err
	}
	r.Invalidate(kindProjects)
	return project, nil
}

// UpdateProject patches a project and invalidates the project views.
func (r *Resources) UpdateProject(ctx context.Context, id int64, req api.UpdateProjectRequest) (*api.Project, error) {
	project, err := r.client.UpdateProject(ctx, id, req)
	if err != nil {
		return nil, err
	}
	r.Invalidate(kindProjects)
	return project, nil
}

// DeleteProject removes a project. Its logs and analytics views go stale
// with it, so those kinds are invalidated too.
func (r *Resources) DeleteProject(ctx context.Context, id int64) error {
	if err := r.client.DeleteProject(ctx, id); err != nil {
		return err
	}
	r.Invalidate(kindProjects)
	r.Invalidate(kindEventLogs)
	r.Invalidate(kindLlmLogs)
	r.Invalidate(kindAnalytics)
	return nil
}

// APIKeys returns the cached key list, fetching on a miss.
func (r *Resources) APIKeys(ctx context.Context) ([]api.APIKey, error) {
	if v, ok := r.cached(kindAPIKeys); ok {
		return v.([]api.APIKey), nil
	}
	keys, err := r.client.ListAPIKeys(ctx)
	if err != nil {
		return nil, err
	}
	r.put(kindAPIKeys, keys)
	return keys, nil
}

// CreateAPIKey issues a key and invalidates the key views. The returned
// key carries the plaintext secret, shown once and never cached.
func (r *Resources) CreateAPIKey(ctx context.Context, name string) (*api.APIKey, error) {
	key, err := r.client.CreateAPIKey(ctx, name)
	if err != nil {
		return nil, err
	}
	r.Invalidate(kindAPIKeys)
	return key, nil
}

// UpdateAPIKey renames or toggles a key and invalidates the key views.
func (r *Resources) UpdateAPIKey(ctx context.Context, id int64, name *string, isActive *bool) (*api.APIKey, error) {
	key, err := r.client.UpdateAPIKey(ctx, id, name, isActive)
	if err != nil {
		return nil, err
	}
	r.Invalidate(kindAPIKeys)
	return key, nil
}

// DeleteAPIKey revokes a key and invalidates the key views.
func (r *Resources) DeleteAPIKey(ctx context.Context, id int64) error {
	if err := r.client.DeleteAPIKey(ctx, id); err != nil {
		return err
	}
	r.Invalidate(kindAPIKeys)
	return nil
}

// EventLogs returns the cached event logs for one project filter.
func (r *Resources) EventLogs(ctx context.Context, projectID int64) ([]api.EventLog, error) {
	key := projectKey(kindEventLogs, projectID)
	if v, ok := r.cached(key); ok {
		return v.([]api.EventLog), nil
	}
	logs, err := r.client.ListEventLogs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	r.put(key, logs)
	return logs, nil
}

// DeleteEventLog removes one record and invalidates the event log views.
// Project log counts change server-side, so projects are invalidated too.
func (r *Resources) DeleteEventLog(ctx context.Context, id int64) error {
	if err := r.client.DeleteEventLog(ctx, id); err != nil {
		return err
	}
	r.Invalidate(kindEventLogs)
	r.Invalidate(kindProjects)
	return nil
}

// LlmLogs returns the cached LLM logs for one project filter.
func (r *Resources) LlmLogs(ctx context.Context, projectID int64) ([]api.LlmLog, error) {
	key := projectKey(kindLlmLogs, projectID)
	if v, ok := r.cached(key); ok {
		return v.([]api.LlmLog), nil
	}
	logs, err := r.client.ListLlmLogs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	r.put(key, logs)
	return logs, nil
}

// DeleteLlmLog removes one record and invalidates the LLM log views.
func (r *Resources) DeleteLlmLog(ctx context.Context, id int64) error {
	if err := r.client.DeleteLlmLog(ctx, id); err != nil {
		return err
	}
	r.Invalidate(kindLlmLogs)
	r.Invalidate(kindProjects)
	return nil
}

// DeleteAllLogs wipes a project's logs and invalidates every log-derived
// view of it.
func (r *Resources) DeleteAllLogs(ctx context.Context, projectID int64) error {
	if err := r.client.DeleteAllLogs(ctx, projectID); err != nil {
		return err
	}
	r.Invalidate(kindEventLogs)
	r.Invalidate(kindLlmLogs)
	r.Invalidate(kindAnalytics)
	r.Invalidate(kindProjects)
	return nil
}

// Analytics returns the cached snapshot for one project.
func (r *Resources) Analytics(ctx context.Context, projectID int64) (*api.AnalyticsSnapshot, error) {
	key := projectKey(kindAnalytics, projectID)
	if v, ok := r.cached(key); ok {
		return v.(*api.AnalyticsSnapshot), nil
	}
	snap, err := r.client.Analytics(ctx, projectID)
	if err != nil {
		return nil, err
	}
	r.put(key, snap)
	return snap, nil
}

// UserStats returns the cached account summary.
func (r *Resources) UserStats(ctx context.Context) (*api.UserStats, error) {
	if v, ok := r.cached(kindUserStats); ok {
		return v.(*api.UserStats), nil
	}
	stats, err := r.client.UserStats(ctx)
	if err != nil {
		return nil, err
	}
	r.put(kindUserStats, stats)
	return stats, nil
}

// NotificationPrefs returns the cached notification settings.
func (r *Resources) NotificationPrefs(ctx context.Context) (*api.NotificationPreferences, error) {
	if v, ok := r.cached(kindNotify); ok {
		return v.(*api.NotificationPreferences), nil
	}
	prefs, err := r.client.NotificationPrefs(ctx)
	if err != nil {
		return nil, err
	}
	r.put(kindNotify, prefs)
	return prefs, nil
}

// UpdateNotificationPrefs replaces the settings and invalidates the view.
func (r *Resources) UpdateNotificationPrefs(ctx context.Context, prefs api.NotificationPreferences) (*api.NotificationPreferences, error) {
	out, err := r.client.UpdateNotificationPrefs(ctx, prefs)
	if err != nil {
		return nil, err
	}
	r.Invalidate(kindNotify)
	return out, nil
}

// Refresh drops one kind's views so the next read re-fetches. This backs
// the manual "Refresh" affordances; there is no automatic retry anywhere.
func (r *Resources) Refresh(kind string) {
	r.Invalidate(kind)
}

// Exported kind names for Refresh callers.
const (
	KindProjects  = kindProjects
	KindAPIKeys   = kindAPIKeys
	KindEventLogs = kindEventLogs
	KindLlmLogs   = kindLlmLogs
	KindAnalytics = kindAnalytics
	KindUserStats = kindUserStats
	KindNotify    = kindNotify
)
