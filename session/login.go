package session

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/openclusterclaw/clawctl/api"
	clawerrors "github.com/openclusterclaw/clawctl/internal/errors"
	"github.com/openclusterclaw/clawctl/otp"
)

// Phase is the login state machine phase.
type Phase string

const (
	PhaseCredentials Phase = "credentials"
	PhaseOTPRequired Phase = "otp_required"
	PhaseComplete    Phase = "complete"
)

// AuthAPI is the negotiation surface the state machine drives.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*api.LoginResult, error)
	VerifyOTP(ctx context.Context, tempToken, code string) (*api.TokenPayload, error)
}

// Login drives one login attempt: credentials, the optional OTP step-up, and
// finalisation into the credential store. The temp token lives only in this
// struct for the duration of the attempt; it is never persisted and never
// attached to ordinary calls. A Login is single-use: PhaseComplete is
// terminal and the next attempt gets a fresh instance.
type Login struct {
	authAPI   AuthAPI
	tokens    *TokenManager
	phase     Phase
	tempToken string
}

// NewLogin creates a state machine in the credentials phase.
func NewLogin(authAPI AuthAPI, tokens *TokenManager) (*Login, error) {
	if authAPI == nil {
		return nil, errors.New("[NewLogin] auth API is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewLogin] token manager is required")
	}
	return &Login{
		authAPI: authAPI,
		tokens:  tokens,
		phase:   PhaseCredentials,
	}, nil
}

// Phase returns the current phase.
func (l *Login) Phase() Phase {
	return l.phase
}

// Submit sends the credential pair. Three outcomes:
//   - full token/user payload: persisted, PhaseComplete.
//   - requires_otp with a temp token: PhaseOTPRequired, nothing persisted.
//   - anything else: error, machine stays in PhaseCredentials.
func (l *Login) Submit(ctx context.Context, username, password string) (Phase, error) {
	if l.phase != PhaseCredentials {
		return l.phase, errors.Wrapf(clawerrors.ErrWrongPhase, "[Login.Submit] phase %s", l.phase)
	}

	result, err := l.authAPI.Login(ctx, username, password)
	if err != nil {
		return l.phase, errors.Wrap(err, "[Login.Submit]")
	}

	if result.RequiresOTP {
		if result.TempToken == "" {
			return l.phase, errors.Wrap(clawerrors.ErrMalformedPayload, "[Login.Submit] requires_otp without temp_token")
		}
		l.tempToken = result.TempToken
		l.phase = PhaseOTPRequired
		log.Debug().Msg("login requires one-time password step-up")
		return l.phase, nil
	}

	if !result.Complete() {
		return l.phase, errors.Wrap(clawerrors.ErrMalformedPayload, "[Login.Submit] neither token payload nor otp challenge")
	}

	if err := l.complete(&result.TokenPayload); err != nil {
		return l.phase, err
	}
	return l.phase, nil
}

// VerifyOTP submits the 6-digit code with the held temp token. A code that is
// not exactly 6 digits is rejected locally, without a network call. On a
// server-side failure (wrong code, expired temp token) the machine stays in
// PhaseOTPRequired so the caller can retry with a new code.
func (l *Login) VerifyOTP(ctx context.Context, code string) (Phase, error) {
	if l.phase != PhaseOTPRequired {
		return l.phase, errors.Wrapf(clawerrors.ErrWrongPhase, "[Login.VerifyOTP] phase %s", l.phase)
	}

	if err := otp.ValidateCode(code); err != nil {
		return l.phase, errors.Wrap(clawerrors.ErrInvalidOTPCode, err.Error())
	}

	payload, err := l.authAPI.VerifyOTP(ctx, l.tempToken, code)
	if err != nil {
		return l.phase, errors.Wrap(err, "[Login.VerifyOTP]")
	}
	if payload.AccessToken == "" || payload.User == nil {
		return l.phase, errors.Wrap(clawerrors.ErrMalformedPayload, "[Login.VerifyOTP] incomplete token payload")
	}

	if err := l.complete(payload); err != nil {
		return l.phase, err
	}
	return l.phase, nil
}

// Cancel discards the temp token and returns to the credentials phase.
func (l *Login) Cancel() (Phase, error) {
	if l.phase != PhaseOTPRequired {
		return l.phase, errors.Wrapf(clawerrors.ErrWrongPhase, "[Login.Cancel] phase %s", l.phase)
	}
	l.tempToken = ""
	l.phase = PhaseCredentials
	return l.phase, nil
}

func (l *Login) complete(payload *api.TokenPayload) error {
	if err := l.tokens.SetTokens(payload.AccessToken, payload.RefreshToken, payload.User); err != nil {
		return errors.Wrap(err, "[Login.complete] persist session")
	}
	l.tempToken = ""
	l.phase = PhaseComplete
	log.Debug().Str("username", payload.User.Username).Msg("session established")
	return nil
}
