package goIdentity

import (
	"context"
	"net/http"
)

type resendConfirmationRequest struct {
	Email string `json:"email"`
}

// ConfirmEmail redeems the confirmation token a new user received by email.
func (c *Client) ConfirmEmail(ctx context.Context, req ConfirmEmailRequest) (string, error) {
	if c == nil {
		return "", ErrClientNotReady
	}

	var env apiEnvelope
	if err := c.do(ctx, http.MethodPost, c.ep.confirmEmail(), req, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

// ResendEmailConfirmation requests a fresh confirmation email. Like the
// forgot-password endpoint the response does not reveal account existence.
func (c *Client) ResendEmailConfirmation(ctx context.Context, email string) (string, error) {
	if c == nil {
		return "", ErrClientNotReady
	}

	var env apiEnvelope
	if err := c.do(ctx, http.MethodPost, c.ep.resendEmailConfirmation(), resendConfirmationRequest{Email: email}, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}
