package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Analytics fetches the aggregate snapshot for one project.
func (c *Client) Analytics(ctx context.Context, projectID int64) (*AnalyticsSnapshot, error) {
	q := url.Values{}
	q.Set("project_id", fmt.Sprintf("%d", projectID))

	var snap AnalyticsSnapshot
	if err := c.doJSON(ctx, http.MethodGet, "/analytics/", q, nil, &snap, requestOpts{}); err != nil {
		return nil, err
	}
	return &snap, nil
}

// DownloadAnalyticsCSV fetches the CSV export of one analytics data type
// ("monthly_logs", "llm_sources" or "log_levels").
func (c *Client) DownloadAnalyticsCSV(ctx context.Context, dataType string) ([]byte, string, error) {
	path := fmt.Sprintf("/analytics/download/%s/", url.PathEscape(dataType))
	return c.doBlob(ctx, path, nil)
}

// UserStats fetches the account-wide dashboard summary.
func (c *Client) UserStats(ctx context.Context) (*UserStats, error) {
	var stats UserStats
	if err := c.doJSON(ctx, http.MethodGet, "/user/stats/", nil, nil, &stats, requestOpts{}); err != nil {
		return nil, err
	}
	return &stats, nil
}
