package goIdentity

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goIdentity/token"
)

// Navigator is the navigation collaborator invoked when the client redirects
// the user, for session termination and guard denials. Implementations
// receive an application-relative URL.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to the [Navigator] interface.
type NavigatorFunc func(target string)

// Navigate describes the navigate operation and its observable behavior.
func (f NavigatorFunc) Navigate(target string) { f(target) }

// terminator ends the local session: it clears stored credentials, raises
// the short-lived logout broadcast flag for sibling contexts, and redirects
// to the login entry point. Concurrent invocations collapse to one effective
// termination; the client re-arms it on the next successful login.
type terminator struct {
	mu         sync.Mutex
	terminated bool

	store        *token.Store
	nav          Navigator
	loginPath    string
	broadcastTTL time.Duration
	revoke       func(ctx context.Context) // optional, best-effort
	after        func(d time.Duration, f func()) // injectable for tests
	onTerminated func()
}

func newTerminator(store *token.Store, nav Navigator, cfg TerminateConfig) *terminator {
	return &terminator{
		store:        store,
		nav:          nav,
		loginPath:    cfg.LoginPath,
		broadcastTTL: cfg.BroadcastTTL,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Terminate clears credentials, broadcasts the logout, and navigates to the
// login entry point, carrying returnURL when it passes the open-redirect
// check. The credential clear completes before any navigation so a guard
// evaluated next sees "unauthenticated". Only the first of any concurrent
// calls has an effect.
func (t *terminator) Terminate(ctx context.Context, returnURL string) {
	if t == nil {
		return
	}

	t.mu.Lock()
	if t.terminated {
		t.mu.Unlock()
		return
	}
	t.terminated = true
	t.mu.Unlock()

	if t.revoke != nil {
		// Revocation is courtesy; termination proceeds regardless.
		t.revoke(ctx)
	}

	t.store.ClearTokens(ctx)

	t.store.SetFlag(ctx, token.LogoutEventKey, "true", t.broadcastTTL)
	t.after(t.broadcastTTL, func() {
		t.store.ClearFlag(context.Background(), token.LogoutEventKey)
	})

	if t.onTerminated != nil {
		t.onTerminated()
	}

	target := t.loginPath
	if validReturnURL(returnURL) {
		query := url.Values{"returnUrl": {returnURL}}
		target = t.loginPath + "?" + query.Encode()
	} else if returnURL != "" {
		log.Print("goIdentity: rejected unsafe return url")
	}
	if t.nav != nil {
		t.nav.Navigate(target)
	}
}

// Reset re-arms the terminator. Called after a successful authentication so a
// later irrecoverable failure can terminate the new session.
func (t *terminator) Reset() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.terminated = false
	t.mu.Unlock()
}

// validReturnURL admits only application-relative paths: an absolute URL or
// a protocol-relative //host would be an open-redirect vector.
func validReturnURL(returnURL string) bool {
	if returnURL == "" {
		return false
	}
	if !strings.HasPrefix(returnURL, "/") {
		return false
	}
	return !strings.HasPrefix(returnURL, "//")
}
