package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openclusterclaw/clawctl/api"
	"github.com/openclusterclaw/clawctl/credentials"
	"github.com/openclusterclaw/clawctl/session"
)

func newManager(t *testing.T) (*session.TokenManager, *credentials.InMemoryRepo) {
	t.Helper()
	repo := credentials.NewInMemoryRepo()
	manager, err := session.NewTokenManager(repo)
	require.NoError(t, err)
	return manager, repo
}

func testUser() *api.User {
	return &api.User{
		ID:        "u1",
		Username:  "admin",
		TenantID:  "t1",
		Role:      "admin",
		IsActive:  true,
		CreatedAt: "2024-01-01T00:00:00Z",
	}
}

func TestTokenManager_SetAndClear(t *testing.T) {
	manager, _ := newManager(t)

	t.Run("not authenticated when empty", func(t *testing.T) {
		require.False(t, manager.IsAuthenticated())
		_, ok := manager.AccessToken()
		require.False(t, ok)
	})

	t.Run("authenticated immediately after SetTokens", func(t *testing.T) {
		require.NoError(t, manager.SetTokens("AT1", "RT1", testUser()))
		require.True(t, manager.IsAuthenticated())

		access, ok := manager.AccessToken()
		require.True(t, ok)
		require.Equal(t, "AT1", access)

		refresh, ok := manager.RefreshToken()
		require.True(t, ok)
		require.Equal(t, "RT1", refresh)

		user := manager.User()
		require.NotNil(t, user)
		require.Equal(t, "admin", user.Username)
		require.Equal(t, "t1", user.TenantID)
	})

	t.Run("not authenticated immediately after ClearTokens", func(t *testing.T) {
		require.NoError(t, manager.ClearTokens())
		require.False(t, manager.IsAuthenticated())
		_, ok := manager.RefreshToken()
		require.False(t, ok)
		require.Nil(t, manager.User())
	})

	t.Run("clear when already empty", func(t *testing.T) {
		require.NoError(t, manager.ClearTokens())
	})
}

func TestTokenManager_SetTokenPairKeepsUser(t *testing.T) {
	manager, _ := newManager(t)
	require.NoError(t, manager.SetTokens("AT1", "RT1", testUser()))

	require.NoError(t, manager.SetTokenPair("AT2", "RT2"))

	access, _ := manager.AccessToken()
	require.Equal(t, "AT2", access)
	refresh, _ := manager.RefreshToken()
	require.Equal(t, "RT2", refresh)

	user := manager.User()
	require.NotNil(t, user)
	require.Equal(t, "admin", user.Username)
}

func TestTokenManager_CorruptUserDegradesToNil(t *testing.T) {
	manager, repo := newManager(t)

	t.Run("literal undefined", func(t *testing.T) {
		require.NoError(t, repo.Set(credentials.KeyUser, "undefined"))
		require.Nil(t, manager.User())
	})

	t.Run("invalid json", func(t *testing.T) {
		require.NoError(t, repo.Set(credentials.KeyUser, "{nope"))
		require.Nil(t, manager.User())
	})

	t.Run("empty string", func(t *testing.T) {
		require.NoError(t, repo.Set(credentials.KeyUser, ""))
		require.Nil(t, manager.User())
	})

	t.Run("nil user stored as absent", func(t *testing.T) {
		require.NoError(t, manager.SetTokens("AT1", "RT1", nil))
		require.Nil(t, manager.User())
		require.True(t, manager.IsAuthenticated())
	})
}
