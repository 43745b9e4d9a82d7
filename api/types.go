package api

// User is the cached profile attached to a session. It is advisory only:
// the client renders it but never re-validates it against storage.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	TenantID  string `json:"tenant_id"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// TokenPayload is the full token response from the login, OTP-verify, and
// refresh endpoints.
type TokenPayload struct {
	// AccessToken is the short-lived bearer credential for protected calls.
	// Usage: "Authorization: Bearer <access_token>". Treated as opaque.
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived credential exchanged for a new pair.
	// Used exactly once per refresh; the backend may rotate it on use.
	RefreshToken string `json:"refresh_token"`

	// ExpiresIn is the access token lifetime in seconds. A hint only: actual
	// expiry is discovered lazily by the first rejected request.
	ExpiresIn int `json:"expires_in"`

	// User is the profile of the authenticated user.
	User *User `json:"user"`
}

// LoginResult is the tagged response of POST /auth/login. Exactly one branch
// is populated:
//   - RequiresOTP true: TempToken carries the single-purpose credential for
//     the OTP step-up; the token fields are empty.
//   - RequiresOTP false: the embedded TokenPayload is complete.
//
// Callers must check RequiresOTP explicitly rather than assuming any field
// is present.
type LoginResult struct {
	TokenPayload

	RequiresOTP bool   `json:"requires_otp"`
	TempToken   string `json:"temp_token"`
}

// Complete reports whether the result carries a usable token/user payload.
func (r *LoginResult) Complete() bool {
	return r.AccessToken != "" && r.User != nil
}
