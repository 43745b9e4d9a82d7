// Package instances is the typed client for managed Claw instances: CRUD,
// lifecycle actions (start/stop/restart), and log retrieval.
package instances

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/openclusterclaw/clawctl/api"
)

// Status is the lifecycle state reported by the control plane.
type Status string

const (
	StatusCreating  Status = "Creating"
	StatusRunning   Status = "Running"
	StatusStopped   Status = "Stopped"
	StatusFailed    Status = "Failed"
	StatusDestroyed Status = "Destroyed"
)

// ResourceSpec is the CPU/memory allocation of an instance.
type ResourceSpec struct {
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
}

// StorageSpec describes the instance's mounted storage.
type StorageSpec struct {
	ConfigDir string `json:"config_dir"`
	DataDir   string `json:"data_dir"`
	Size      string `json:"size"`
}

// Config binds an instance to a configuration template with per-instance
// variable overrides.
type Config struct {
	TemplateName string            `json:"template_name"`
	Overrides    map[string]string `json:"overrides"`
}

// Instance is a managed Claw instance.
type Instance struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	TenantID  string        `json:"tenant_id"`
	ProjectID string        `json:"project_id"`
	Type      string        `json:"type"`
	Version   string        `json:"version"`
	Status    Status        `json:"status"`
	Config    *Config       `json:"config,omitempty"`
	Resources *ResourceSpec `json:"resources,omitempty"`
	Storage   *StorageSpec  `json:"storage,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

// CreateRequest is the payload for creating an instance.
type CreateRequest struct {
	Name      string  `json:"name"`
	TenantID  string  `json:"tenant_id"`
	ProjectID string  `json:"project_id"`
	Type      string  `json:"type"`
	Version   string  `json:"version"`
	Config    *Config `json:"config,omitempty"`
	CPU       string  `json:"cpu,omitempty"`
	Memory    string  `json:"memory,omitempty"`
}

// UpdateRequest is the payload for updating an instance. Zero-valued fields
// are left unchanged server-side.
type UpdateRequest struct {
	Name   string  `json:"name,omitempty"`
	Config *Config `json:"config,omitempty"`
	CPU    string  `json:"cpu,omitempty"`
	Memory string  `json:"memory,omitempty"`
}

// ListFilter narrows and pages a listing. Zero values mean "no filter" and
// the server's default page.
type ListFilter struct {
	TenantID  string
	ProjectID string
	Page      int
	PageSize  int
}

// ListResult is one page of instances.
type ListResult struct {
	Instances []Instance `json:"instances"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

// Logs is a chunk of instance log output.
type Logs struct {
	Logs      string `json:"logs"`
	TailLines int    `json:"tail_lines"`
}

// Client issues instance operations through the shared request pipeline.
type Client struct {
	api *api.Client
}

// NewClient creates an instances client.
func NewClient(apiClient *api.Client) (*Client, error) {
	if apiClient == nil {
		return nil, errors.New("[instances.NewClient] api client is required")
	}
	return &Client{api: apiClient}, nil
}

// List returns one page of instances matching the filter.
func (c *Client) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	query := url.Values{}
	if filter.TenantID != "" {
		query.Set("tenant_id", filter.TenantID)
	}
	if filter.ProjectID != "" {
		query.Set("project_id", filter.ProjectID)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(filter.PageSize))
	}

	var result ListResult
	if err := c.api.Get(ctx, "/instances", query, &result); err != nil {
		return nil, errors.Wrap(err, "[instances.List]")
	}
	return &result, nil
}

// Get returns one instance by ID.
func (c *Client) Get(ctx context.Context, id string) (*Instance, error) {
	var instance Instance
	if err := c.api.Get(ctx, "/instances/"+id, nil, &instance); err != nil {
		return nil, errors.Wrapf(err, "[instances.Get] %s", id)
	}
	return &instance, nil
}

// Create provisions a new instance.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Instance, error) {
	var instance Instance
	if err := c.api.Post(ctx, "/instances", req, &instance); err != nil {
		return nil, errors.Wrap(err, "[instances.Create]")
	}
	return &instance, nil
}

// Update modifies an existing instance.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*Instance, error) {
	var instance Instance
	if err := c.api.Put(ctx, "/instances/"+id, req, &instance); err != nil {
		return nil, errors.Wrapf(err, "[instances.Update] %s", id)
	}
	return &instance, nil
}

// Delete removes an instance.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/instances/"+id); err != nil {
		return errors.Wrapf(err, "[instances.Delete] %s", id)
	}
	return nil
}

// Start starts a stopped instance.
func (c *Client) Start(ctx context.Context, id string) error {
	return c.action(ctx, id, "start")
}

// Stop stops a running instance.
func (c *Client) Stop(ctx context.Context, id string) error {
	return c.action(ctx, id, "stop")
}

// Restart restarts an instance.
func (c *Client) Restart(ctx context.Context, id string) error {
	return c.action(ctx, id, "restart")
}

func (c *Client) action(ctx context.Context, id, verb string) error {
	if err := c.api.Post(ctx, "/instances/"+id+"/"+verb, nil, nil); err != nil {
		return errors.Wrapf(err, "[instances.%s] %s", verb, id)
	}
	return nil
}

// GetLogs returns up to tailLines of recent log output for an instance.
func (c *Client) GetLogs(ctx context.Context, id string, tailLines int) (*Logs, error) {
	query := url.Values{}
	if tailLines > 0 {
		query.Set("tail_lines", strconv.Itoa(tailLines))
	}
	var logs Logs
	if err := c.api.Get(ctx, "/instances/"+id+"/logs", query, &logs); err != nil {
		return nil, errors.Wrapf(err, "[instances.GetLogs] %s", id)
	}
	return &logs, nil
}
