// Package otp is the typed client for the one-time-password second factor:
// enrollment (generate, enable), disable, backup codes, and status. The
// login-time verify step lives on the api client because it is part of the
// unauthenticated session negotiation.
package otp

import (
	"context"

	"github.com/pkg/errors"

	"github.com/openclusterclaw/clawctl/api"
)

// Enrollment is the server-generated secret for authenticator setup. The QR
// payload is display-only.
type Enrollment struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"`
}

// BackupCodes are single-use fallback credentials. They are shown exactly
// once at enrollment completion and must never be cached beyond the current
// view.
type BackupCodes struct {
	BackupCodes []string `json:"backup_codes"`
}

// Status reports whether the second factor is enabled for the current user.
type Status struct {
	OTPEnabled bool `json:"otp_enabled"`
}

// Client issues OTP management operations through the shared request
// pipeline. All of these calls are protected (they act on the logged-in
// user), unlike the login-time verify.
type Client struct {
	api *api.Client
}

// NewClient creates an OTP client.
func NewClient(apiClient *api.Client) (*Client, error) {
	if apiClient == nil {
		return nil, errors.New("[otp.NewClient] api client is required")
	}
	return &Client{api: apiClient}, nil
}

// Generate creates a new secret for enrollment. Idempotent on retry: each
// call replaces any pending unconfirmed secret.
func (c *Client) Generate(ctx context.Context) (*Enrollment, error) {
	var enrollment Enrollment
	if err := c.api.Post(ctx, "/auth/otp/generate", nil, &enrollment); err != nil {
		return nil, errors.Wrap(err, "[otp.Generate]")
	}
	return &enrollment, nil
}

// Enable confirms enrollment with a code from the authenticator and returns
// the one-time backup codes. The code is validated locally first; an invalid
// code never reaches the network.
func (c *Client) Enable(ctx context.Context, code string) (*BackupCodes, error) {
	if err := ValidateCode(code); err != nil {
		return nil, errors.Wrap(err, "[otp.Enable]")
	}
	var codes BackupCodes
	if err := c.api.Post(ctx, "/auth/otp/enable", map[string]string{"code": code}, &codes); err != nil {
		return nil, errors.Wrap(err, "[otp.Enable]")
	}
	return &codes, nil
}

// Disable turns the second factor off. Requires a currently valid code,
// validated locally before the call.
func (c *Client) Disable(ctx context.Context, code string) error {
	if err := ValidateCode(code); err != nil {
		return errors.Wrap(err, "[otp.Disable]")
	}
	if err := c.api.Post(ctx, "/auth/otp/disable", map[string]string{"code": code}, nil); err != nil {
		return errors.Wrap(err, "[otp.Disable]")
	}
	return nil
}

// GetBackupCodes returns the remaining backup codes.
func (c *Client) GetBackupCodes(ctx context.Context) ([]string, error) {
	var codes BackupCodes
	if err := c.api.Get(ctx, "/auth/otp/backup", nil, &codes); err != nil {
		return nil, errors.Wrap(err, "[otp.GetBackupCodes]")
	}
	return codes.BackupCodes, nil
}

// GetStatus reports whether OTP is enabled for the current user.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.api.Get(ctx, "/auth/otp/status", nil, &status); err != nil {
		return nil, errors.Wrap(err, "[otp.GetStatus]")
	}
	return &status, nil
}
