package api

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// Login submits credentials. The call is unauthenticated by design: no bearer
// is ever attached, so it uses the bare client rather than the pipeline.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, c.bare, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login]")
	}
	return &result, nil
}

// VerifyOTP completes an OTP step-up using the temp token issued at login.
// Like Login, it is keyed on the request body alone and bypasses the pipeline.
func (c *Client) VerifyOTP(ctx context.Context, tempToken, code string) (*TokenPayload, error) {
	var payload TokenPayload
	err := c.do(ctx, c.bare, http.MethodPost, "/auth/otp/verify", map[string]string{
		"temp_token": tempToken,
		"code":       code,
	}, &payload)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.VerifyOTP]")
	}
	return &payload, nil
}

// Logout invalidates the session server-side. Callers clear the local store
// regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Post(ctx, "/auth/logout", nil, nil); err != nil {
		return errors.Wrap(err, "[Client.Logout]")
	}
	return nil
}

// Me fetches the current user profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, errors.Wrap(err, "[Client.Me]")
	}
	return &user, nil
}

// refreshExchange exchanges a refresh token for a new pair over the bare
// client. Installed into the pipeline as its RefreshFunc; the expiring access
// token is never attached here.
func (c *Client) refreshExchange(ctx context.Context, refreshToken string) (string, string, error) {
	var payload TokenPayload
	err := c.do(ctx, c.bare, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	}, &payload)
	if err != nil {
		return "", "", errors.Wrap(err, "[Client.refreshExchange]")
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return "", "", errors.New("[Client.refreshExchange] incomplete token payload")
	}
	return payload.AccessToken, payload.RefreshToken, nil
}
