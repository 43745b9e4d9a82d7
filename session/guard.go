package session

import (
	"fmt"

	clawerrors "github.com/openclusterclaw/clawctl/internal/errors"
)

// Guard gates protected operations on authentication state. The check is a
// pure predicate over the token manager: presence of an access token permits
// the operation, anything else redirects the user to login while preserving
// the target they were headed for.
type Guard struct {
	tokens *TokenManager
}

// NewGuard creates a Guard over the token lifecycle manager.
func NewGuard(tokens *TokenManager) *Guard {
	return &Guard{tokens: tokens}
}

// RedirectError reports a blocked operation together with the originally
// intended target, so a successful login can return the user there.
type RedirectError struct {
	Target string
}

func (e *RedirectError) Error() string {
	if e.Target == "" {
		return clawerrors.ErrLoginRequired.Error()
	}
	return fmt.Sprintf("%s to access %q", clawerrors.ErrLoginRequired.Error(), e.Target)
}

func (e *RedirectError) Unwrap() error {
	return clawerrors.ErrLoginRequired
}

// Check permits the operation when a session is present. The token may be
// expired; that is discovered lazily by the first rejected request, not here.
func (g *Guard) Check(target string) error {
	if g.tokens.IsAuthenticated() {
		return nil
	}
	return &RedirectError{Target: target}
}
