package goIdentity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goIdentity/token"
)

func newTestTerminator(nav Navigator) (*terminator, *token.Store) {
	store := token.NewStore(token.NewMemoryKV())
	term := newTerminator(store, nav, TerminateConfig{
		LoginPath:    "/auth/login",
		BroadcastTTL: time.Second,
	})
	return term, store
}

func TestTerminateClearsCredentialsAndNavigates(t *testing.T) {
	nav := &recordingNavigator{}
	term, store := newTestTerminator(nav)
	ctx := context.Background()

	store.SetTokens(ctx, "access-1", "refresh-1")
	term.Terminate(ctx, "")

	if got := store.AccessToken(ctx); got != "" {
		t.Fatalf("expected cleared access token, got %q", got)
	}
	if got := store.RefreshToken(ctx); got != "" {
		t.Fatalf("expected cleared refresh token, got %q", got)
	}
	if got := store.Flag(ctx, token.LogoutEventKey); got != "true" {
		t.Fatalf("expected raised logout broadcast, got %q", got)
	}

	targets := nav.Targets()
	if len(targets) != 1 || targets[0] != "/auth/login" {
		t.Fatalf("expected navigation to login, got %v", targets)
	}
}

func TestTerminateIdempotentUntilReset(t *testing.T) {
	nav := &recordingNavigator{}
	term, store := newTestTerminator(nav)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			term.Terminate(ctx, "")
		}()
	}
	wg.Wait()

	if got := len(nav.Targets()); got != 1 {
		t.Fatalf("expected one effective termination, got %d navigations", got)
	}

	// A new login re-arms the terminator.
	term.Reset()
	store.SetTokens(ctx, "access-2", "refresh-2")
	term.Terminate(ctx, "")

	if got := len(nav.Targets()); got != 2 {
		t.Fatalf("expected second termination after reset, got %d navigations", got)
	}
	if got := store.AccessToken(ctx); got != "" {
		t.Fatalf("expected cleared credentials after second termination, got %q", got)
	}
}

func TestTerminateCarriesValidReturnURL(t *testing.T) {
	nav := &recordingNavigator{}
	term, _ := newTestTerminator(nav)

	term.Terminate(context.Background(), "/settings/billing")

	targets := nav.Targets()
	if len(targets) != 1 || targets[0] != "/auth/login?returnUrl=%2Fsettings%2Fbilling" {
		t.Fatalf("expected returnUrl query, got %v", targets)
	}
}

func TestTerminateDropsUnsafeReturnURL(t *testing.T) {
	cases := []string{
		"https://evil.example.com/phish",
		"//evil.example.com/phish",
		"settings/billing",
		"",
	}
	for _, returnURL := range cases {
		nav := &recordingNavigator{}
		term, _ := newTestTerminator(nav)

		term.Terminate(context.Background(), returnURL)

		targets := nav.Targets()
		if len(targets) != 1 || targets[0] != "/auth/login" {
			t.Fatalf("returnURL %q: expected bare login target, got %v", returnURL, targets)
		}
	}
}

func TestTerminateBroadcastFlagRemovedAfterTTL(t *testing.T) {
	nav := &recordingNavigator{}
	term, store := newTestTerminator(nav)
	ctx := context.Background()

	var pending []func()
	term.after = func(_ time.Duration, f func()) {
		pending = append(pending, f)
	}

	term.Terminate(ctx, "")
	if got := store.Flag(ctx, token.LogoutEventKey); got != "true" {
		t.Fatalf("expected raised flag, got %q", got)
	}

	for _, f := range pending {
		f()
	}
	if got := store.Flag(ctx, token.LogoutEventKey); got != "" {
		t.Fatalf("expected cleared flag after TTL, got %q", got)
	}
}

func TestTerminateRevokeIsBestEffort(t *testing.T) {
	nav := &recordingNavigator{}
	term, store := newTestTerminator(nav)
	ctx := context.Background()

	revoked := 0
	term.revoke = func(context.Context) { revoked++ }

	store.SetTokens(ctx, "access-1", "refresh-1")
	term.Terminate(ctx, "")

	if revoked != 1 {
		t.Fatalf("expected one revoke call, got %d", revoked)
	}
	if got := store.AccessToken(ctx); got != "" {
		t.Fatal("termination must proceed past revoke")
	}
}
