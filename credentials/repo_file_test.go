package credentials_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openclusterclaw/clawctl/credentials"
)

func TestFileRepo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo, err := credentials.NewFileRepo(dir)
	require.NoError(t, err)

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, repo.Set(credentials.KeyAccessToken, "AT1"))
		value, ok, err := repo.Get(credentials.KeyAccessToken)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "AT1", value)
	})

	t.Run("absent key", func(t *testing.T) {
		_, ok, err := repo.Get("never_written")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, repo.Set(credentials.KeyAccessToken, "AT2"))
		value, ok, err := repo.Get(credentials.KeyAccessToken)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "AT2", value)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(credentials.KeyAccessToken))
		require.NoError(t, repo.Delete(credentials.KeyAccessToken))
		_, ok, err := repo.Get(credentials.KeyAccessToken)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		require.Error(t, repo.Set("", "x"))
		_, _, err := repo.Get("")
		require.Error(t, err)
		require.Error(t, repo.Delete(""))
	})
}

func TestFileRepo_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	repo, err := credentials.NewFileRepo(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Set(credentials.KeyRefreshToken, "RT1"))

	reopened, err := credentials.NewFileRepo(dir)
	require.NoError(t, err)
	value, ok, err := reopened.Get(credentials.KeyRefreshToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "RT1", value)
}

func TestFileRepo_SealedAtRest(t *testing.T) {
	dir := t.TempDir()
	repo, err := credentials.NewFileRepo(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Set(credentials.KeyAccessToken, "very-secret-token"))

	raw, err := os.ReadFile(filepath.Join(dir, "credentials.json"))
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "very-secret-token"))
}

func TestFileRepo_CorruptStoreDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	repo, err := credentials.NewFileRepo(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Set(credentials.KeyAccessToken, "AT1"))

	t.Run("unparseable document", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("{not json"), 0o600))
		_, ok, err := repo.Get(credentials.KeyAccessToken)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("undecryptable entry", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"),
			[]byte(`{"access_token":"garbage|garbage"}`), 0o600))
		_, ok, err := repo.Get(credentials.KeyAccessToken)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("writable again after corruption", func(t *testing.T) {
		require.NoError(t, repo.Set(credentials.KeyAccessToken, "AT3"))
		value, ok, err := repo.Get(credentials.KeyAccessToken)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "AT3", value)
	})
}

func TestInMemoryRepo(t *testing.T) {
	repo := credentials.NewInMemoryRepo()

	require.NoError(t, repo.Set("k", "v"))
	value, ok, err := repo.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", value)

	require.NoError(t, repo.Delete("k"))
	_, ok, err = repo.Get("k")
	require.NoError(t, err)
	require.False(t, ok)
}
