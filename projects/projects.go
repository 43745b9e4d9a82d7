// Package projects is the typed client for project administration.
package projects

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/openclusterclaw/clawctl/api"
)

// Project groups instances within a tenant.
type Project struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateRequest is the payload for creating a project.
type CreateRequest struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

// UpdateRequest is the payload for renaming a project.
type UpdateRequest struct {
	Name string `json:"name,omitempty"`
}

// ListResult is one page of projects.
type ListResult struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// Client issues project operations through the shared request pipeline.
type Client struct {
	api *api.Client
}

// NewClient creates a projects client.
func NewClient(apiClient *api.Client) (*Client, error) {
	if apiClient == nil {
		return nil, errors.New("[projects.NewClient] api client is required")
	}
	return &Client{api: apiClient}, nil
}

// List returns projects, optionally narrowed to one tenant.
func (c *Client) List(ctx context.Context, tenantID string) ([]Project, error) {
	query := url.Values{}
	if tenantID != "" {
		query.Set("tenant_id", tenantID)
	}
	var result ListResult
	if err := c.api.Get(ctx, "/projects", query, &result); err != nil {
		return nil, errors.Wrap(err, "[projects.List]")
	}
	return result.Projects, nil
}

// Get returns one project by ID.
func (c *Client) Get(ctx context.Context, id string) (*Project, error) {
	var project Project
	if err := c.api.Get(ctx, "/projects/"+id, nil, &project); err != nil {
		return nil, errors.Wrapf(err, "[projects.Get] %s", id)
	}
	return &project, nil
}

// Create registers a new project under a tenant.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	var project Project
	if err := c.api.Post(ctx, "/projects", req, &project); err != nil {
		return nil, errors.Wrap(err, "[projects.Create]")
	}
	return &project, nil
}

// Update renames an existing project.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*Project, error) {
	var project Project
	if err := c.api.Put(ctx, "/projects/"+id, req, &project); err != nil {
		return nil, errors.Wrapf(err, "[projects.Update] %s", id)
	}
	return &project, nil
}

// Delete removes a project.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/projects/"+id); err != nil {
		return errors.Wrapf(err, "[projects.Delete] %s", id)
	}
	return nil
}
