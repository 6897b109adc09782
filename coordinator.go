package goIdentity

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrEthical07/goIdentity/token"
)

// tokenPair is the broadcast value a finished refresh hands to every waiter.
type tokenPair struct {
	access  string
	refresh string
}

type refreshOutcome struct {
	pair tokenPair
	err  error
}

// refreshCoordinator serializes token refresh across concurrent in-flight
// requests. It is a two-state machine, idle and refreshing, owned exclusively
// by the Client: the first refreshable 401 becomes the leader and performs
// the one network call; every later arrival parks as a waiter and receives
// the leader's outcome. The transition back to idle is deferred and therefore
// unconditional, so a later 401 can always start a fresh attempt.
type refreshCoordinator struct {
	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome

	store     *token.Store
	refreshFn func(ctx context.Context, refreshToken string) (tokenPair, error)
	terminate func(ctx context.Context)
	onLeader  func()
	onWaiter  func()
}

func newRefreshCoordinator(
	store *token.Store,
	refreshFn func(ctx context.Context, refreshToken string) (tokenPair, error),
	terminate func(ctx context.Context),
) *refreshCoordinator {
	return &refreshCoordinator{
		store:     store,
		refreshFn: refreshFn,
		terminate: terminate,
	}
}

// Refresh returns the credential pair the caller must replay its request
// with. Exactly one network refresh call is outstanding at any time; callers
// that arrive while one is in flight suspend until it resolves. On failure
// the session has already been terminated by the time Refresh returns.
func (rc *refreshCoordinator) Refresh(ctx context.Context) (tokenPair, error) {
	if rc == nil {
		return tokenPair{}, ErrClientNotReady
	}

	rc.mu.Lock()
	if rc.refreshing {
		ch := make(chan refreshOutcome, 1)
		rc.waiters = append(rc.waiters, ch)
		rc.mu.Unlock()
		if rc.onWaiter != nil {
			rc.onWaiter()
		}

		select {
		case out := <-ch:
			return out.pair, out.err
		case <-ctx.Done():
			// The shared refresh keeps running for the other waiters;
			// only this caller gives up.
			return tokenPair{}, ctx.Err()
		}
	}

	refreshToken := rc.store.RefreshToken(ctx)
	if refreshToken == "" {
		// Nothing to refresh with. Terminal, and no network call is made.
		rc.mu.Unlock()
		rc.terminate(ctx)
		return tokenPair{}, ErrNoRefreshToken
	}

	rc.refreshing = true
	rc.mu.Unlock()
	if rc.onLeader != nil {
		rc.onLeader()
	}

	out := rc.lead(ctx, refreshToken)
	return out.pair, out.err
}

// lead performs the single network refresh and broadcasts the outcome. The
// release of state and waiters is deferred so it happens on success, failure,
// and panic alike.
func (rc *refreshCoordinator) lead(ctx context.Context, refreshToken string) (out refreshOutcome) {
	defer func() {
		if out.err != nil {
			// Exactly once, and before releasing state: a 401 arriving
			// after release must find the store already cleared, not the
			// stale refresh token. Waiters only observe the rejection.
			rc.terminate(ctx)
		}

		rc.mu.Lock()
		rc.refreshing = false
		waiters := rc.waiters
		rc.waiters = nil
		rc.mu.Unlock()

		// Buffered channels, delivered in enqueue order: no waiter blocks
		// the drain, none is skipped, none is resolved twice.
		for _, ch := range waiters {
			ch <- out
		}
	}()

	pair, err := rc.refreshFn(ctx, refreshToken)
	if err != nil {
		out = refreshOutcome{err: fmt.Errorf("%w: %v", ErrRefreshFailed, err)}
		return out
	}
	if token.DecodeClaims(pair.access) == nil {
		out = refreshOutcome{err: fmt.Errorf("%w: undecodable access token", ErrRefreshFailed)}
		return out
	}
	if pair.refresh == "" {
		// Servers may rotate only the access token; keep the proven
		// refresh token in that case.
		pair.refresh = refreshToken
	}

	// Persist before broadcasting so a released waiter re-reading the store
	// always observes the refreshed pair, never the stale one.
	rc.store.SetTokens(ctx, pair.access, pair.refresh)

	out = refreshOutcome{pair: pair}
	return out
}
