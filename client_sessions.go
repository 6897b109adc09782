package goIdentity

import (
	"context"
	"net/http"
	"strconv"
)

// Sessions lists the active sessions of the current account. The request
// carries the refresh token in its dedicated header so the server can mark
// which listed session is the calling one.
func (c *Client) Sessions(ctx context.Context) ([]SessionInfo, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}

	var sessions []SessionInfo
	if err := c.do(ctx, http.MethodGet, c.ep.sessions(), nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// RevokeSession invalidates one session by its identifier. Revoking the
// current session does not clear local credentials; the next request fails
// with 401 and the normal termination path takes over.
func (c *Client) RevokeSession(ctx context.Context, id int64) error {
	if c == nil {
		return ErrClientNotReady
	}
	return c.do(ctx, http.MethodDelete, c.ep.session(strconv.FormatInt(id, 10)), nil, nil)
}

// RevokeAllSessions invalidates every session except the calling one, which
// the server recognizes by the refresh token header.
func (c *Client) RevokeAllSessions(ctx context.Context) error {
	if c == nil {
		return ErrClientNotReady
	}
	return c.do(ctx, http.MethodDelete, c.ep.sessionsAll(), nil, nil)
}
