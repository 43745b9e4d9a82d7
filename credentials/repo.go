package credentials

// Fixed keys for the three persisted entries. Every reader and writer goes
// through a Repo; nothing else touches the underlying storage.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Repo is durable key-value persistence for the session credentials.
// Implementations must treat an absent or unreadable entry as "not present"
// rather than a fatal error: a corrupt store degrades to "no session".
type Repo interface {
	// Get returns the stored value and whether it was present.
	Get(key string) (string, bool, error)
	// Set overwrites the value for key.
	Set(key, value string) error
	// Delete removes the entry for key. Deleting an absent key is not an error.
	Delete(key string) error
}
