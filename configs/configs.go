// Package configs is the typed client for configuration templates.
package configs

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/openclusterclaw/clawctl/api"
)

// Variable is one template variable definition. Secret variables are
// display-masked by consumers; the client never caches their values.
type Variable struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Default     string `json:"default"`
	Required    bool   `json:"required"`
	Secret      bool   `json:"secret"`
	Description string `json:"description"`
}

// Template is a reusable instance configuration template.
type Template struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Variables   []Variable `json:"variables"`
	AdapterType string     `json:"adapter_type"`
	Version     string     `json:"version"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// CreateRequest is the payload for creating a template.
type CreateRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Variables   []Variable `json:"variables"`
	AdapterType string     `json:"adapter_type"`
	Version     string     `json:"version,omitempty"`
}

// UpdateRequest is the payload for updating a template.
type UpdateRequest struct {
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Variables   []Variable `json:"variables,omitempty"`
	Version     string     `json:"version,omitempty"`
}

// ListResult is one page of templates.
type ListResult struct {
	Templates []Template `json:"templates"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

// Client issues template operations through the shared request pipeline.
type Client struct {
	api *api.Client
}

// NewClient creates a configs client.
func NewClient(apiClient *api.Client) (*Client, error) {
	if apiClient == nil {
		return nil, errors.New("[configs.NewClient] api client is required")
	}
	return &Client{api: apiClient}, nil
}

// List returns templates, optionally narrowed to one adapter type.
func (c *Client) List(ctx context.Context, adapterType string) ([]Template, error) {
	query := url.Values{}
	if adapterType != "" {
		query.Set("adapter_type", adapterType)
	}
	var result ListResult
	if err := c.api.Get(ctx, "/configs", query, &result); err != nil {
		return nil, errors.Wrap(err, "[configs.List]")
	}
	return result.Templates, nil
}

// Get returns one template by ID.
func (c *Client) Get(ctx context.Context, id string) (*Template, error) {
	var template Template
	if err := c.api.Get(ctx, "/configs/"+id, nil, &template); err != nil {
		return nil, errors.Wrapf(err, "[configs.Get] %s", id)
	}
	return &template, nil
}

// Create registers a new template.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Template, error) {
	var template Template
	if err := c.api.Post(ctx, "/configs", req, &template); err != nil {
		return nil, errors.Wrap(err, "[configs.Create]")
	}
	return &template, nil
}

// Update modifies an existing template.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*Template, error) {
	var template Template
	if err := c.api.Put(ctx, "/configs/"+id, req, &template); err != nil {
		return nil, errors.Wrapf(err, "[configs.Update] %s", id)
	}
	return &template, nil
}

// Delete removes a template.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/configs/"+id); err != nil {
		return errors.Wrapf(err, "[configs.Delete] %s", id)
	}
	return nil
}
