package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListProjects fetches all projects owned by the current user.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.doJSON(ctx, http.MethodGet, "/projects/", nil, nil, &projects, requestOpts{}); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProjectRequest is the payload for project creation.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ProjectType string `json:"project_type"`
}

// CreateProject creates a project. Server-computed fields (id, counts,
// created_at) come back in the response.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	var project Project
	if err := c.doJSON(ctx, http.MethodPost, "/projects/", nil, req, &project, requestOpts{}); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProjectRequest carries the patchable project fields. Nil fields
// are left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateProject patches a project.
func (c *Client) UpdateProject(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error) {
	var project Project
	path := fmt.Sprintf("/projects/%d/", id)
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, req, &project, requestOpts{}); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project and, server-side, its logs.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/projects/%d/", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil, requestOpts{})
}
