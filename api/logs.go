package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListEventLogs fetches event logs, optionally scoped to one project. The
// server returns the full collection; filtering and pagination happen
// client-side in the view layer.
func (c *Client) ListEventLogs(ctx context.Context, projectID int64) ([]EventLog, error) {
	var logs []EventLog
	err := c.doJSON(ctx, http.MethodGet, "/event-logs/", projectQuery(projectID), nil, &logs, requestOpts{})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// DeleteEventLog removes a single event log record.
func (c *Client) DeleteEventLog(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/event-logs/%d/", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil, requestOpts{})
}

// DownloadEventLogsCSV fetches the CSV export of a project's event logs
// as a raw byte payload.
func (c *Client) DownloadEventLogsCSV(ctx context.Context, projectID int64) ([]byte, string, error) {
	return c.doBlob(ctx, "/event-logs/download/", projectQuery(projectID))
}

// ListLlmLogs fetches LLM interaction logs, optionally scoped to one
// project.
func (c *Client) ListLlmLogs(ctx context.Context, projectID int64) ([]LlmLog, error) {
	var logs []LlmLog
	err := c.doJSON(ctx, http.MethodGet, "/llm-logs/", projectQuery(projectID), nil, &logs, requestOpts{})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// DeleteLlmLog removes a single LLM log record.
func (c *Client) DeleteLlmLog(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/llm-logs/%d/", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil, requestOpts{})
}

// DownloadLlmLogsCSV fetches the CSV export of a project's LLM logs.
func (c *Client) DownloadLlmLogsCSV(ctx context.Context, projectID int64) ([]byte, string, error) {
	return c.doBlob(ctx, "/llm-logs/download/", projectQuery(projectID))
}

// DownloadAllLogsCSV fetches the combined export of every log kind for a
// project.
func (c *Client) DownloadAllLogsCSV(ctx context.Context, projectID int64) ([]byte, string, error) {
	return c.doBlob(ctx, "/download/all-logs/", projectQuery(projectID))
}

// DeleteAllLogs wipes every log record of a project. Destructive; the
// frontends require explicit confirmation before calling this.
func (c *Client) DeleteAllLogs(ctx context.Context, projectID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/delete/all-logs/", projectQuery(projectID), nil, nil, requestOpts{})
}
