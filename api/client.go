package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/openclusterclaw/clawctl/internal/config"
	"github.com/openclusterclaw/clawctl/transport"
)

// envelope is the wrapper around every response body from the control plane.
// code 0 denotes success; a transport-level 2xx can still carry a nonzero
// application code.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Error is an application-level failure reported by the control plane.
type Error struct {
	Status  int    // HTTP status code
	Code    int    // application code from the envelope
	Message string // human-readable message from the envelope
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d, code %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error (status %d, code %d)", e.Status, e.Code)
}

// Client is the single outbound gateway to the control plane. Protected calls
// ride the transport pipeline (bearer attach, 401 refresh-and-retry); the
// auth negotiation calls use a bare client so the expiring access token is
// never attached to them.
type Client struct {
	base   string
	prefix string
	authed *http.Client
	bare   *http.Client
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithBaseTransport replaces the underlying RoundTripper the pipeline wraps
// (primarily for testing).
func WithBaseTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.bare.Transport = rt
		if p, ok := c.authed.Transport.(*transport.Pipeline); ok {
			p.SetNext(rt)
		}
	}
}

// New builds a Client whose protected calls go through a transport.Pipeline
// bound to the given token store.
func New(cfg config.Config, tokens transport.TokenStore, options ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("[api.New] config is required")
	}
	if tokens == nil {
		return nil, errors.New("[api.New] token store is required")
	}

	c := &Client{
		base:   cfg.GetAPIBaseURL(),
		prefix: cfg.GetAPIPrefix(),
		bare:   &http.Client{Timeout: cfg.GetRequestTimeout()},
	}
	pipeline := transport.New(tokens, c.refreshExchange, transport.WithRefreshTimeout(cfg.GetRefreshTimeout()))
	c.authed = &http.Client{Transport: pipeline, Timeout: cfg.GetRequestTimeout()}

	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Pipeline exposes the underlying request pipeline so callers can install
// hooks (e.g. the session-expired hint in the CLI).
func (c *Client) Pipeline() *transport.Pipeline {
	p, _ := c.authed.Transport.(*transport.Pipeline)
	return p
}

// Get issues a protected GET. query may be nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, c.authed, http.MethodGet, c.withQuery(path, query), nil, out)
}

// Post issues a protected POST with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, c.authed, http.MethodPost, path, body, out)
}

// Put issues a protected PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, c.authed, http.MethodPut, path, body, out)
}

// Delete issues a protected DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, c.authed, http.MethodDelete, path, nil, nil)
}

func (c *Client) withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// do sends one request and decodes the response envelope into out. Transport
// failures and application errors both surface as errors; nothing is retried
// here (the pipeline owns the one permitted 401 retry).
func (c *Client) do(ctx context.Context, httpc *http.Client, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+c.prefix+path, reader)
	if err != nil {
		return errors.Wrap(err, "[Client.do] build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] %s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "[Client.do] read response body")
	}

	var env envelope
	if len(raw) > 0 {
		// A body that is not the standard envelope is reported with whatever
		// status the transport gave us.
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			}
			return errors.Wrap(err, "[Client.do] decode envelope")
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if env.Code != 0 {
		return &Error{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "[Client.do] decode data payload")
		}
	}
	return nil
}
