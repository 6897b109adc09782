package goIdentity

import (
	"context"
	"net/http"

	"github.com/MrEthical07/goIdentity/token"
)

type twoFactorCodeRequest struct {
	Code string `json:"code"`
}

type twoFactorLoginRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// EnableTwoFactor starts two-factor enrollment and returns the shared secret
// plus one-time backup codes. Enrollment is not active until the first code
// is verified with [Client.VerifyTwoFactor].
func (c *Client) EnableTwoFactor(ctx context.Context) (*TwoFactorSetup, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}

	var setup TwoFactorSetup
	if err := c.do(ctx, http.MethodPost, c.ep.twoFactor("enable"), nil, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// VerifyTwoFactor confirms enrollment with a code from the authenticator
// app, activating two-factor authentication for the account.
func (c *Client) VerifyTwoFactor(ctx context.Context, code string) (string, error) {
	if c == nil {
		return "", ErrClientNotReady
	}

	var env apiEnvelope
	if err := c.do(ctx, http.MethodPost, c.ep.twoFactor("verify"), twoFactorCodeRequest{Code: code}, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

// DisableTwoFactor turns two-factor authentication off. The server requires
// a current code so a hijacked session cannot silently weaken the account.
func (c *Client) DisableTwoFactor(ctx context.Context, code string) (string, error) {
	if c == nil {
		return "", ErrClientNotReady
	}

	var env apiEnvelope
	if err := c.do(ctx, http.MethodPost, c.ep.twoFactor("disable"), twoFactorCodeRequest{Code: code}, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

// AuthenticateTwoFactor completes a login that returned RequiresTwoFactor.
// On success the token pair is persisted exactly as a plain login would.
func (c *Client) AuthenticateTwoFactor(ctx context.Context, email, code string) (*AuthResult, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}

	var result AuthResult
	if err := c.do(ctx, http.MethodPost, c.ep.twoFactor("authenticate"), twoFactorLoginRequest{Email: email, Code: code}, &result); err != nil {
		c.metrics.Inc(MetricLoginFailure)
		c.auditAuth(ctx, "login_failure", "", err.Error())
		return nil, err
	}

	if !result.Succeeded {
		c.metrics.Inc(MetricLoginFailure)
		c.auditAuth(ctx, "login_failure", "", result.Message)
		return &result, nil
	}

	c.adoptTokens(ctx, result.AccessToken, result.RefreshToken)
	c.metrics.Inc(MetricLoginSuccess)
	subject := ""
	if claims := token.DecodeClaims(result.AccessToken); claims != nil {
		subject = claims.Subject
	}
	c.auditAuth(ctx, "login_success", subject, "")

	return &result, nil
}

// BackupCodes reports how many unused backup codes remain. The codes
// themselves are never retrievable after enrollment; use
// [Client.RegenerateBackupCodes] to mint a fresh set.
func (c *Client) BackupCodes(ctx context.Context) (*TwoFactorSetup, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}

	var setup TwoFactorSetup
	if err := c.do(ctx, http.MethodGet, c.ep.twoFactor("backup-codes"), nil, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// RegenerateBackupCodes replaces the account's one-time backup codes. The
// previous set stops working immediately.
func (c *Client) RegenerateBackupCodes(ctx context.Context, code string) ([]string, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}

	var setup TwoFactorSetup
	if err := c.do(ctx, http.MethodPost, c.ep.twoFactorBackupCodesRegenerate(), twoFactorCodeRequest{Code: code}, &setup); err != nil {
		return nil, err
	}
	return setup.BackupCodes, nil
}
