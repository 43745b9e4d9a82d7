// Package tenants is the typed client for tenant administration.
package tenants

import (
	"context"

	"github.com/pkg/errors"

	"github.com/openclusterclaw/clawctl/api"
)

// Tenant represents a multi-tenant organization with its resource quota.
type Tenant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MaxInstances int    `json:"max_instances"`
	MaxCPU       string `json:"max_cpu"`
	MaxMemory    string `json:"max_memory"`
	MaxStorage   string `json:"max_storage"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// CreateRequest is the payload for creating a tenant. Quota fields are
// optional; the server applies defaults.
type CreateRequest struct {
	Name         string `json:"name"`
	MaxInstances int    `json:"max_instances,omitempty"`
	MaxCPU       string `json:"max_cpu,omitempty"`
	MaxMemory    string `json:"max_memory,omitempty"`
	MaxStorage   string `json:"max_storage,omitempty"`
}

// UpdateRequest is the payload for updating a tenant.
type UpdateRequest struct {
	Name         string `json:"name,omitempty"`
	MaxInstances int    `json:"max_instances,omitempty"`
	MaxCPU       string `json:"max_cpu,omitempty"`
	MaxMemory    string `json:"max_memory,omitempty"`
	MaxStorage   string `json:"max_storage,omitempty"`
}

// ListResult is one page of tenants.
type ListResult struct {
	Tenants  []Tenant `json:"tenants"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// Client issues tenant operations through the shared request pipeline.
type Client struct {
	api *api.Client
}

// NewClient creates a tenants client.
func NewClient(apiClient *api.Client) (*Client, error) {
	if apiClient == nil {
		return nil, errors.New("[tenants.NewClient] api client is required")
	}
	return &Client{api: apiClient}, nil
}

// List returns all tenants visible to the caller.
func (c *Client) List(ctx context.Context) ([]Tenant, error) {
	var result ListResult
	if err := c.api.Get(ctx, "/tenants", nil, &result); err != nil {
		return nil, errors.Wrap(err, "[tenants.List]")
	}
	return result.Tenants, nil
}

// Get returns one tenant by ID.
func (c *Client) Get(ctx context.Context, id string) (*Tenant, error) {
	var tenant Tenant
	if err := c.api.Get(ctx, "/tenants/"+id, nil, &tenant); err != nil {
		return nil, errors.Wrapf(err, "[tenants.Get] %s", id)
	}
	return &tenant, nil
}

// Create registers a new tenant.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Tenant, error) {
	var tenant Tenant
	if err := c.api.Post(ctx, "/tenants", req, &tenant); err != nil {
		return nil, errors.Wrap(err, "[tenants.Create]")
	}
	return &tenant, nil
}

// Update modifies an existing tenant.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*Tenant, error) {
	var tenant Tenant
	if err := c.api.Put(ctx, "/tenants/"+id, req, &tenant); err != nil {
		return nil, errors.Wrapf(err, "[tenants.Update] %s", id)
	}
	return &tenant, nil
}

// Delete removes a tenant.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/tenants/"+id); err != nil {
		return errors.Wrapf(err, "[tenants.Delete] %s", id)
	}
	return nil
}
