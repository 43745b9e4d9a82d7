package transport_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/openclusterclaw/clawctl/credentials"
	clawerrors "github.com/openclusterclaw/clawctl/internal/errors"
	"github.com/openclusterclaw/clawctl/session"
	"github.com/openclusterclaw/clawctl/transport"
)

var signingKey = []byte("test-signing-key")

// mintToken issues a real signed JWT the way the control plane would; the
// pipeline treats it as an opaque string throughout.
func mintToken(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	signed, err := token.SignedString(signingKey)
	require.NoError(t, err)
	return signed
}

func newTokens(t *testing.T) *session.TokenManager {
	t.Helper()
	tokens, err := session.NewTokenManager(credentials.NewInMemoryRepo())
	require.NoError(t, err)
	return tokens
}

func newClient(p *transport.Pipeline) *http.Client {
	return &http.Client{Transport: p}
}

func TestPipeline_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	tokens := newTokens(t)
	access := mintToken(t, "u1", time.Hour)
	require.NoError(t, tokens.SetTokens(access, "RT1", nil))

	pipeline := transport.New(tokens, nil)
	resp, err := newClient(pipeline).Get(backend.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "Bearer "+access, gotAuth)
	require.NotEmpty(t, gotRequestID)
}

func TestPipeline_UnauthenticatedWhenNoToken(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	pipeline := transport.New(newTokens(t), nil)
	resp, err := newClient(pipeline).Get(backend.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Empty(t, gotAuth)
}

func TestPipeline_RefreshAndRetry(t *testing.T) {
	tokens := newTokens(t)
	staleAccess := mintToken(t, "u1", -time.Minute)
	freshAccess := mintToken(t, "u1", time.Hour)
	require.NoError(t, tokens.SetTokens(staleAccess, "RT1", nil))

	var refreshCalls int32
	var seenBearers []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		seenBearers = append(seenBearers, bearer)
		if bearer != freshAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"code":0,"message":"ok"}`)
	}))
	defer backend.Close()

	refresh := func(_ context.Context, refreshToken string) (string, string, error) {
		atomic.AddInt32(&refreshCalls, 1)
		require.Equal(t, "RT1", refreshToken)
		return freshAccess, "RT2", nil
	}

	pipeline := transport.New(tokens, refresh)
	resp, err := newClient(pipeline).Get(backend.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Exactly one refresh, the original request resubmitted with the new
	// token, and the caller sees the eventual success.
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	require.Equal(t, []string{staleAccess, freshAccess}, seenBearers)

	// The rotated pair was persisted; the user entry is untouched.
	access, _ := tokens.AccessToken()
	require.Equal(t, freshAccess, access)
	refreshToken, _ := tokens.RefreshToken()
	require.Equal(t, "RT2", refreshToken)
}

func TestPipeline_RetriedRequestKeepsBody(t *testing.T) {
	tokens := newTokens(t)
	require.NoError(t, tokens.SetTokens("stale", "RT1", nil))

	var bodies []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	refresh := func(_ context.Context, _ string) (string, string, error) {
		return "fresh", "RT2", nil
	}
	pipeline := transport.New(tokens, refresh)

	resp, err := newClient(pipeline).Post(backend.URL, "application/json", bytes.NewReader([]byte(`{"name":"claw-1"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{`{"name":"claw-1"}`, `{"name":"claw-1"}`}, bodies)
}

func TestPipeline_SecondUnauthorizedPropagates(t *testing.T) {
	tokens := newTokens(t)
	require.NoError(t, tokens.SetTokens("stale", "RT1", nil))

	var requests int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	var refreshCalls int32
	refresh := func(_ context.Context, _ string) (string, string, error) {
		atomic.AddInt32(&refreshCalls, 1)
		return "fresh", "RT2", nil
	}
	pipeline := transport.New(tokens, refresh)

	resp, err := newClient(pipeline).Get(backend.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	// One retry only: request, refresh, retry, then the 401 stands.
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(2), atomic.LoadInt32(&requests))
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
}

func TestPipeline_NoRefreshTokenPropagatesOriginal(t *testing.T) {
	tokens := newTokens(t)
	require.NoError(t, tokens.SetTokenPair("stale", ""))

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	refresh := func(_ context.Context, _ string) (string, string, error) {
		t.Fatal("refresh must not be attempted without a refresh token")
		return "", "", nil
	}
	pipeline := transport.New(tokens, refresh)

	resp, err := newClient(pipeline).Get(backend.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPipeline_RefreshFailureClearsSession(t *testing.T) {
	tokens := newTokens(t)
	require.NoError(t, tokens.SetTokens("stale", "RT1", nil))

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	expired := false
	refresh := func(_ context.Context, _ string) (string, string, error) {
		return "", "", fmt.Errorf("refresh token revoked")
	}
	pipeline := transport.New(tokens, refresh, transport.WithExpiredFunc(func() { expired = true }))

	resp, err := newClient(pipeline).Get(backend.URL)
	require.Error(t, err)
	require.Nil(t, resp)

	// The caller sees the refresh failure, not the original 401, and the
	// store is fully cleared.
	require.ErrorIs(t, err, clawerrors.ErrRefreshFailed)
	require.True(t, expired)
	require.False(t, tokens.IsAuthenticated())
	_, ok := tokens.RefreshToken()
	require.False(t, ok)
	require.Nil(t, tokens.User())
}

func TestPipeline_OtherFailuresPropagateUnchanged(t *testing.T) {
	tokens := newTokens(t)
	require.NoError(t, tokens.SetTokens("AT1", "RT1", nil))

	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusInternalServerError} {
		t.Run(fmt.Sprintf("status %d", status), func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer backend.Close()

			refresh := func(_ context.Context, _ string) (string, string, error) {
				t.Fatal("refresh must only run on a 401")
				return "", "", nil
			}
			pipeline := transport.New(tokens, refresh)

			resp, err := newClient(pipeline).Get(backend.URL)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, status, resp.StatusCode)
		})
	}
}

func TestPipeline_ConcurrentUnauthorizedSharesOneRefresh(t *testing.T) {
	tokens := newTokens(t)
	staleAccess := mintToken(t, "u1", -time.Minute)
	freshAccess := mintToken(t, "u1", time.Hour)
	require.NoError(t, tokens.SetTokens(staleAccess, "RT1", nil))

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") != freshAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	var refreshCalls int32
	refresh := func(_ context.Context, _ string) (string, string, error) {
		atomic.AddInt32(&refreshCalls, 1)
		// Hold the flight open long enough for the other 401s to pile up
		// behind it.
		time.Sleep(50 * time.Millisecond)
		return freshAccess, "RT2", nil
	}
	pipeline := transport.New(tokens, refresh)
	client := newClient(pipeline)

	const parallel = 8
	var wg sync.WaitGroup
	statuses := make([]int, parallel)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(backend.URL)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	// A refresh token may be invalidated server-side after first use: all
	// concurrent 401s must coalesce into a single exchange.
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	for i := 0; i < parallel; i++ {
		require.Equal(t, http.StatusOK, statuses[i])
	}
}
