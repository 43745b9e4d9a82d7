// Package session owns the client-side session lifecycle: the token
// lifecycle manager over the credential store, the login state machine, and
// the guard consulted before protected operations.
package session

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/openclusterclaw/clawctl/api"
	"github.com/openclusterclaw/clawctl/credentials"
)

// TokenManager owns the rules for reading, writing, and clearing the
// credential store. All session reads and writes route through it; nothing
// else touches the store directly. Reads always hit the store fresh.
type TokenManager struct {
	repo credentials.Repo
}

// NewTokenManager creates a TokenManager over a credential repository.
func NewTokenManager(repo credentials.Repo) (*TokenManager, error) {
	if repo == nil {
		return nil, errors.New("[NewTokenManager] credentials repo is required")
	}
	return &TokenManager{repo: repo}, nil
}

// SetTokens overwrites the access token, refresh token, and cached user
// together. The pair is never written one without the other.
func (m *TokenManager) SetTokens(access, refresh string, user *api.User) error {
	if err := m.SetTokenPair(access, refresh); err != nil {
		return err
	}

	serialized := ""
	if user != nil {
		b, err := json.Marshal(user)
		if err != nil {
			return errors.Wrap(err, "[TokenManager.SetTokens] marshal user")
		}
		serialized = string(b)
	}
	if err := m.repo.Set(credentials.KeyUser, serialized); err != nil {
		return errors.Wrap(err, "[TokenManager.SetTokens] store user")
	}
	return nil
}

// SetTokenPair replaces the access/refresh pair, leaving the cached user
// unchanged. Used by the refresh path.
func (m *TokenManager) SetTokenPair(access, refresh string) error {
	if err := m.repo.Set(credentials.KeyAccessToken, access); err != nil {
		return errors.Wrap(err, "[TokenManager.SetTokenPair] store access token")
	}
	if err := m.repo.Set(credentials.KeyRefreshToken, refresh); err != nil {
		return errors.Wrap(err, "[TokenManager.SetTokenPair] store refresh token")
	}
	return nil
}

// ClearTokens removes all three entries. Idempotent; safe when already empty.
func (m *TokenManager) ClearTokens() error {
	for _, key := range []string{credentials.KeyAccessToken, credentials.KeyRefreshToken, credentials.KeyUser} {
		if err := m.repo.Delete(key); err != nil {
			return errors.Wrapf(err, "[TokenManager.ClearTokens] delete %s", key)
		}
	}
	return nil
}

// AccessToken returns the stored access token, if present.
func (m *TokenManager) AccessToken() (string, bool) {
	return m.read(credentials.KeyAccessToken)
}

// RefreshToken returns the stored refresh token, if present.
func (m *TokenManager) RefreshToken() (string, bool) {
	return m.read(credentials.KeyRefreshToken)
}

// User returns the cached profile, or nil when the stored value is absent or
// malformed. A corrupt entry degrades to "no user", never a failure.
func (m *TokenManager) User() *api.User {
	raw, ok := m.read(credentials.KeyUser)
	if !ok || raw == "" || raw == "undefined" {
		return nil
	}
	var user api.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Debug().Err(err).Msg("cached user profile unparseable")
		return nil
	}
	return &user
}

// IsAuthenticated reports whether an access token is present. This is a
// presence check, not a validity check: an expired-but-present token still
// reports authenticated, and actual validity is discovered lazily by the
// first rejected request.
func (m *TokenManager) IsAuthenticated() bool {
	_, ok := m.AccessToken()
	return ok
}

func (m *TokenManager) read(key string) (string, bool) {
	value, ok, err := m.repo.Get(key)
	if err != nil {
		log.Debug().Str("key", key).Err(err).Msg("credential read failed, treating as absent")
		return "", false
	}
	if value == "" {
		return "", false
	}
	return value, ok
}
