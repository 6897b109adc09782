package goIdentity

import (
	"context"
	"net/http"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword asks the server to send a password reset email. The server
// answers identically whether or not the address exists, so callers learn
// nothing about account existence from the result.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	if c == nil {
		return "", ErrClientNotReady
	}

	var env apiEnvelope
	if err := c.do(ctx, http.MethodPost, c.ep.forgotPassword(), forgotPasswordRequest{Email: email}, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

// ResetPassword completes a password reset with the emailed token. The
// endpoint is credential-exempt; it must work for a user who cannot log in.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (string, error) {
	if c == nil {
		return "", ErrClientNotReady
	}

	var env apiEnvelope
	if err := c.do(ctx, http.MethodPost, c.ep.resetPassword(), req, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}
