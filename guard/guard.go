package guard

import (
	"context"
	"net/url"
	"strings"

	"github.com/MrEthical07/goIdentity/token"
)

// Session is the slice of client state guards read. *goIdentity.Client
// satisfies it.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) *token.Claims
}

// Navigator applies a redirect decision.
type Navigator interface {
	Navigate(target string)
}

// Decision is a guard verdict: either Allow, or a redirect target.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Config defines a public type used by guard APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	LoginPath       string // where unauthenticated sessions are sent
	LandingPath     string // where RequireAnonymous sends authenticated sessions
	VerifyEmailPath string // where RequireVerifiedEmail sends unconfirmed sessions
}

// Guard defines a public type used by guard APIs.
//
// Guard instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Guard struct {
	session Session
	cfg     Config
}

// New describes the new operation and its observable behavior.
func New(session Session, cfg Config) *Guard {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth/login"
	}
	if cfg.LandingPath == "" {
		cfg.LandingPath = "/profile"
	}
	if cfg.VerifyEmailPath == "" {
		cfg.VerifyEmailPath = "/auth/verify-email"
	}
	return &Guard{session: session, cfg: cfg}
}

// RequireAuth admits authenticated sessions. Anyone else is sent to the
// login path carrying the requested path as returnUrl, so login can resume
// the interrupted navigation.
func (g *Guard) RequireAuth(ctx context.Context, requestedPath string) Decision {
	if g == nil || g.session == nil {
		return Decision{RedirectTo: "/auth/login"}
	}
	if g.session.IsAuthenticated(ctx) {
		return Decision{Allow: true}
	}

	target := g.cfg.LoginPath
	if safeReturnURL(requestedPath) {
		query := url.Values{"returnUrl": {requestedPath}}
		target = g.cfg.LoginPath + "?" + query.Encode()
	}
	return Decision{RedirectTo: target}
}

// RequireAnonymous admits only unauthenticated sessions. A logged-in user
// hitting the login or registration route is sent to the landing path
// instead.
func (g *Guard) RequireAnonymous(ctx context.Context) Decision {
	if g == nil || g.session == nil {
		return Decision{Allow: true}
	}
	if g.session.IsAuthenticated(ctx) {
		return Decision{RedirectTo: g.cfg.LandingPath}
	}
	return Decision{Allow: true}
}

// RequireVerifiedEmail admits authenticated sessions whose email claim is
// confirmed. Unauthenticated sessions go to login; unconfirmed ones to the
// verification path.
func (g *Guard) RequireVerifiedEmail(ctx context.Context, requestedPath string) Decision {
	if d := g.RequireAuth(ctx, requestedPath); !d.Allow {
		return d
	}

	claims := g.session.CurrentUser(ctx)
	if claims == nil || !claims.EmailConfirmed {
		return Decision{RedirectTo: g.cfg.VerifyEmailPath}
	}
	return Decision{Allow: true}
}

// Apply navigates when the decision denies access and reports whether the
// route may proceed.
func Apply(d Decision, nav Navigator) bool {
	if d.Allow {
		return true
	}
	if nav != nil && d.RedirectTo != "" {
		nav.Navigate(d.RedirectTo)
	}
	return false
}

// safeReturnURL admits only application-relative paths. An absolute URL or a
// protocol-relative //host would be an open-redirect vector.
func safeReturnURL(target string) bool {
	if target == "" {
		return false
	}
	if !strings.HasPrefix(target, "/") {
		return false
	}
	return !strings.HasPrefix(target, "//")
}
