package goIdentity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MrEthical07/goIdentity/token"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login authenticates with the identity service. On success the returned
// token pair is persisted and the session terminator is re-armed. When the
// account has two-factor authentication enabled the result carries
// RequiresTwoFactor and no tokens; complete the login with
// [Client.AuthenticateTwoFactor].
//
// A rejected credential is not an error: the result carries Succeeded=false
// and the server's message. Errors are reserved for transport and terminal
// HTTP failures.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}

	var result AuthResult
	if err := c.do(ctx, http.MethodPost, c.ep.authentication(), req, &result); err != nil {
		c.metrics.Inc(MetricLoginFailure)
		c.auditAuth(ctx, "login_failure", "", err.Error())
		return nil, err
	}

	if !result.Succeeded || result.RequiresTwoFactor {
		if !result.Succeeded {
			c.metrics.Inc(MetricLoginFailure)
			c.auditAuth(ctx, "login_failure", "", result.Message)
		}
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

// Register creates a new account. Registration does not authenticate; the
// user confirms their email and logs in afterwards.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}

	var result AuthResult
	if err := c.do(ctx, http.MethodPost, c.ep.register(), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout ends the session on both sides: it revokes the refresh token
// server-side (best effort) and terminates locally. Local termination
// happens regardless of whether the revoke call reached the server.
func (c *Client) Logout(ctx context.Context) {
	if c == nil {
		return
	}

	if !c.cfg.Terminate.RevokeOnTerminate {
		// An explicit logout always revokes, even when automatic
		// termination is configured not to. When RevokeOnTerminate is set
		// the terminator performs the call itself.
		c.revokeCurrentToken(ctx)
	}

	c.metrics.Inc(MetricLogout)
	c.auditAuth(ctx, "logout", "", "")
	c.term.Terminate(ctx, returnURLFromContext(ctx))
}

// IsAuthenticated reports whether an unexpired access token is stored. It is
// a local check; the server remains the authority on every request.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	if c == nil {
		return false
	}
	return !c.tokens.AccessTokenExpired(ctx)
}

// CurrentUser returns the identity claims decoded from the stored access
// token, nil when no valid token is stored. Purely local; no network call.
func (c *Client) CurrentUser(ctx context.Context) *token.Claims {
	if c == nil {
		return nil
	}
	return c.tokens.AccessClaims(ctx)
}

// WatchLogout polls the credential backend for the logout broadcast flag and
// terminates this client when a sibling context raised it. The returned
// channel receives one value per observed broadcast. Polling stops when ctx
// is cancelled.
func (c *Client) WatchLogout(ctx context.Context, interval time.Duration) <-chan struct{} {
	events := make(chan struct{}, 1)
	if c == nil {
		close(events)
		return events
	}
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	go func() {
		defer close(events)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		seen := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				raised := c.tokens.Flag(ctx, token.LogoutEventKey) == "true"
				if raised && !seen {
					c.term.Terminate(ctx, "")
					select {
					case events <- struct{}{}:
					default:
					}
				}
				seen = raised
			}
		}
	}()

	return events
}

// AdoptTokens ingests a token pair issued out of band, typically delivered
// through a cross-application single sign-on handoff where another trusted
// frontend obtained the pair from the same identity server. The access token
// must decode; the pair is persisted and the session terminator is re-armed
// exactly as after [Client.Login].
func (c *Client) AdoptTokens(ctx context.Context, access, refresh string) error {
	if c == nil {
		return ErrClientNotReady
	}

	claims := token.DecodeClaims(access)
	if claims == nil {
		c.auditAuth(ctx, "tokens_adopted", "", "access token does not decode")
		return fmt.Errorf("%w: access token does not decode", ErrInvalidToken)
	}
	if token.IsExpired(access) {
		c.auditAuth(ctx, "tokens_adopted", claims.Subject, "access token already expired")
		return fmt.Errorf("%w: access token already expired", ErrInvalidToken)
	}

	c.adoptTokens(ctx, access, refresh)
	c.metrics.Inc(MetricLoginSuccess)
	c.auditAuth(ctx, "tokens_adopted", claims.Subject, "")
	return nil
}

// refreshOnce is the single network refresh call the coordinator leader
// performs. It never touches the store; the coordinator owns persistence
// ordering.
func (c *Client) refreshOnce(ctx context.Context, refreshToken string) (tokenPair, error) {
	var env apiEnvelope
	err := c.do(ctx, http.MethodPost, c.ep.refreshToken(), refreshRequest{RefreshToken: refreshToken}, &env)
	if err == nil && (!env.Succeeded || env.AccessToken == "") {
		err = fmt.Errorf("%w: server rejected refresh: %s", ErrRefreshFailed, env.Message)
	}
	if err != nil {
		c.metrics.Inc(MetricRefreshFailure)
		c.auditAuth(ctx, "refresh_failure", "", err.Error())
		return tokenPair{}, err
	}

	c.metrics.Inc(MetricRefreshSuccess)
	c.auditAuth(ctx, "refresh_success", "", "")
	return tokenPair{access: env.AccessToken, refresh: env.RefreshToken}, nil
}

// revokeCurrentToken asks the server to invalidate the stored refresh token.
// Best effort: failures are logged through the normal pipeline and ignored.
func (c *Client) revokeCurrentToken(ctx context.Context) {
	refresh := c.tokens.RefreshToken(ctx)
	if refresh == "" {
		return
	}
	_ = c.do(ctx, http.MethodPost, c.ep.revokeToken(), refreshRequest{RefreshToken: refresh}, nil)
}

// adoptTokens persists a fresh pair and re-arms termination.
func (c *Client) adoptTokens(ctx context.Context, access, refresh string) {
	c.tokens.SetTokens(ctx, access, refresh)
	c.term.Reset()
}

func (c *Client) auditAuth(ctx context.Context, eventType, subject, errMsg string) {
	c.audit.Emit(ctx, AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Subject:   subject,
		Success:   errMsg == "",
		Error:     errMsg,
		Metadata:  c.auditMetadata(ctx),
	})
}

func (c *Client) auditMetadata(ctx context.Context) map[string]string {
	meta := map[string]string{"instance_id": c.instanceID}
	if requestID := requestIDFromContext(ctx); requestID != "" {
		meta["request_id"] = requestID
	}
	return meta
}
