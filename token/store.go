package token

import (
	"context"
	"errors"
	"log"
	"time"
)

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"

	// LogoutEventKey is the broadcast flag written during session
	// termination so sibling contexts sharing the backend observe the
	// logout. It is short-lived; the terminator removes it after about a
	// second.
	LogoutEventKey = "auth_logout_event"
)

// Store persists the credential pair over a [KV] backend. Reads and writes
// never fail from the caller's perspective: backend errors are logged and
// degrade to "no credential". A Store with a nil backend is a no-op that
// always reports no credentials, which is the correct behavior on platforms
// without persistent storage.
//
// Store methods are safe for concurrent use when the backend is.
type Store struct {
	kv KV
}

// NewStore creates a credential store over kv. A nil kv yields a no-op store.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// SetTokens persists both credentials. The access token is written first so a
// concurrent reader never observes a new refresh token paired with the old
// access token.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) {
	if s == nil || s.kv == nil {
		return
	}
	if err := s.kv.Set(ctx, accessTokenKey, access, 0); err != nil {
		log.Print("goIdentity: access token write failed")
	}
	if err := s.kv.Set(ctx, refreshTokenKey, refresh, 0); err != nil {
		log.Print("goIdentity: refresh token write failed")
	}
}

// AccessToken returns the stored access token, or "" when absent or the
// backend fails.
func (s *Store) AccessToken(ctx context.Context) string {
	return s.read(ctx, accessTokenKey)
}

// RefreshToken returns the stored refresh token, or "" when absent or the
// backend fails.
func (s *Store) RefreshToken(ctx context.Context) string {
	return s.read(ctx, refreshTokenKey)
}

// ClearTokens removes both credentials. It returns only after the backend
// delete has been attempted, so a guard evaluated afterwards sees
// "unauthenticated".
func (s *Store) ClearTokens(ctx context.Context) {
	if s == nil || s.kv == nil {
		return
	}
	if err := s.kv.Del(ctx, accessTokenKey, refreshTokenKey); err != nil {
		log.Print("goIdentity: token clear failed")
	}
}

// AccessTokenExpired applies the fail-closed expiry rule to the stored access
// token. No stored token counts as expired.
func (s *Store) AccessTokenExpired(ctx context.Context) bool {
	return IsExpired(s.AccessToken(ctx))
}

// AccessClaims decodes the stored access token, nil when absent or
// malformed.
func (s *Store) AccessClaims(ctx context.Context) *Claims {
	return DecodeClaims(s.AccessToken(ctx))
}

// SetFlag writes a transient broadcast value under key with the given TTL.
func (s *Store) SetFlag(ctx context.Context, key, value string, ttl time.Duration) {
	if s == nil || s.kv == nil {
		return
	}
	if err := s.kv.Set(ctx, key, value, ttl); err != nil {
		log.Print("goIdentity: broadcast flag write failed")
	}
}

// Flag reads a broadcast value, "" when absent or the backend fails.
func (s *Store) Flag(ctx context.Context, key string) string {
	return s.read(ctx, key)
}

// ClearFlag removes a broadcast value.
func (s *Store) ClearFlag(ctx context.Context, key string) {
	if s == nil || s.kv == nil {
		return
	}
	if err := s.kv.Del(ctx, key); err != nil {
		log.Print("goIdentity: broadcast flag clear failed")
	}
}

func (s *Store) read(ctx context.Context, key string) string {
	if s == nil || s.kv == nil {
		return ""
	}
	value, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Print("goIdentity: credential read failed")
		}
		return ""
	}
	return value
}
