// Package transport implements the outbound request pipeline: every call to
// the control plane passes through one Pipeline that attaches the current
// access token and recovers exactly one class of failure locally — a single
// 401-triggered refresh-and-retry per request. Everything else propagates to
// the caller unchanged.
package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	clawerrors "github.com/openclusterclaw/clawctl/internal/errors"
)

// TokenStore is the pipeline's view of the token lifecycle manager. Every
// read hits the store fresh; the pipeline never caches tokens.
type TokenStore interface {
	AccessToken() (string, bool)
	RefreshToken() (string, bool)
	// SetTokenPair atomically replaces the access/refresh pair, leaving the
	// cached user untouched.
	SetTokenPair(access, refresh string) error
	ClearTokens() error
}

// RefreshFunc exchanges a refresh token for a new access/refresh pair. It
// must not route back through the pipeline: the refresh call is
// unauthenticated by design, keyed only on the refresh token.
type RefreshFunc func(ctx context.Context, refreshToken string) (access, refresh string, err error)

// Pipeline is an http.RoundTripper decorator. Concurrent 401s coalesce into a
// single refresh exchange: the backend may rotate the refresh token on first
// use, so a second concurrent exchange would race against a just-consumed
// token and log the user out spuriously.
type Pipeline struct {
	next           http.RoundTripper
	tokens         TokenStore
	refresh        RefreshFunc
	group          singleflight.Group
	refreshTimeout time.Duration
	onExpired      func()
}

// PipelineOption defines a function type to modify the Pipeline instance.
type PipelineOption func(*Pipeline)

// WithNext sets the wrapped RoundTripper (defaults to http.DefaultTransport).
func WithNext(rt http.RoundTripper) PipelineOption {
	return func(p *Pipeline) {
		p.next = rt
	}
}

// WithRefreshTimeout bounds the shared refresh exchange. The exchange runs on
// a detached context so one caller's cancellation cannot fail the flight for
// the others sharing it.
func WithRefreshTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.refreshTimeout = d
	}
}

// WithExpiredFunc sets the hook invoked after a failed refresh has cleared
// the session. The CLI uses it to print the re-login hint; the browser
// original forced navigation to /login.
func WithExpiredFunc(fn func()) PipelineOption {
	return func(p *Pipeline) {
		p.onExpired = fn
	}
}

// New creates a Pipeline bound to a token store and refresh exchange.
func New(tokens TokenStore, refresh RefreshFunc, options ...PipelineOption) *Pipeline {
	p := &Pipeline{
		next:           http.DefaultTransport,
		tokens:         tokens,
		refresh:        refresh,
		refreshTimeout: 15 * time.Second,
		onExpired:      func() {},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// SetNext replaces the wrapped RoundTripper after construction (testing).
func (p *Pipeline) SetNext(rt http.RoundTripper) {
	p.next = rt
}

// SetExpiredFunc replaces the session-expired hook after construction.
func (p *Pipeline) SetExpiredFunc(fn func()) {
	if fn != nil {
		p.onExpired = fn
	}
}

// RoundTrip sends the request with the current access token attached. On a
// 401 it refreshes once and resubmits once; a 401 on the resubmitted request
// propagates unchanged.
func (p *Pipeline) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := uuid.New().String()

	resp, err := p.send(req, requestID)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	refreshToken, ok := p.tokens.RefreshToken()
	if !ok {
		// Nothing to refresh with: the original rejection stands.
		return resp, nil
	}

	log.Debug().Str("request_id", requestID).Str("path", req.URL.Path).Msg("401 received, refreshing session")

	access, err := p.refreshShared(refreshToken)
	if err != nil {
		// Terminal for the session: the caller sees the refresh failure, not
		// its original 401.
		drain(resp)
		return nil, err
	}

	drain(resp)
	return p.resend(req, requestID, access)
}

// send dispatches one attempt with the freshest access token.
func (p *Pipeline) send(req *http.Request, requestID string) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("X-Request-Id", requestID)
	if access, ok := p.tokens.AccessToken(); ok {
		r.Header.Set("Authorization", "Bearer "+access)
	}
	return p.next.RoundTrip(r)
}

// resend replays the original request exactly once with the new bearer.
func (p *Pipeline) resend(req *http.Request, requestID, access string) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("X-Request-Id", requestID)
	r.Header.Set("Authorization", "Bearer "+access)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Wrap(err, "[Pipeline.resend] rewind request body")
		}
		r.Body = body
	}
	return p.next.RoundTrip(r)
}

// refreshError marks a failed exchange so callers can match it against
// errors.ErrRefreshFailed while keeping the underlying cause in the chain.
type refreshError struct {
	cause error
}

func (e *refreshError) Error() string { return "token refresh failed: " + e.cause.Error() }
func (e *refreshError) Unwrap() error { return e.cause }
func (e *refreshError) Is(target error) bool {
	return target == clawerrors.ErrRefreshFailed
}

// refreshShared performs the single-flight refresh exchange. All requests
// hitting a 401 while one exchange is in flight await its outcome instead of
// issuing their own.
func (p *Pipeline) refreshShared(refreshToken string) (string, error) {
	v, err, shared := p.group.Do("refresh", func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), p.refreshTimeout)
		defer cancel()

		access, refresh, err := p.refresh(ctx, refreshToken)
		if err != nil {
			if clearErr := p.tokens.ClearTokens(); clearErr != nil {
				log.Warn().Err(clearErr).Msg("failed clearing tokens after refresh failure")
			}
			p.onExpired()
			return nil, &refreshError{cause: err}
		}
		if err := p.tokens.SetTokenPair(access, refresh); err != nil {
			return nil, errors.Wrap(err, "[Pipeline.refreshShared] persist token pair")
		}
		log.Debug().Msg("session refreshed")
		return access, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		log.Debug().Msg("refresh outcome shared with concurrent request")
	}
	return v.(string), nil
}

// drain discards a response we will not return so the connection can be
// reused.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
