package token

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded view of an access token's payload. Fields the token
// does not carry are left at their zero values; a zero ExpiresAt means the
// token has no usable expiry and must be treated as expired.
type Claims struct {
	Subject        string
	Email          string
	Role           string
	EmailConfirmed bool
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// Identity APIs are not consistent about claim names; each logical field is
// resolved against an ordered list of accepted keys, first hit wins.
var (
	subjectClaimKeys        = []string{"sub", "uid", "nameid"}
	emailClaimKeys          = []string{"email", "unique_name"}
	roleClaimKeys           = []string{"role", "roles"}
	emailConfirmedClaimKeys = []string{"email_confirmed", "emailConfirmed", "email_verified"}
)

var unverifiedParser = jwt.NewParser()

// DecodeClaims decodes the payload segment of an access token without
// verifying its signature; the client is not the token's validator, it only
// needs expiry and display claims. Any malformed input (wrong segment count,
// bad base64, bad JSON) yields nil, never an error.
func DecodeClaims(raw string) *Claims {
	if raw == "" {
		return nil
	}

	payload := jwt.MapClaims{}
	if _, _, err := unverifiedParser.ParseUnverified(raw, payload); err != nil {
		return nil
	}

	claims := &Claims{
		Subject:        stringClaim(payload, subjectClaimKeys),
		Email:          stringClaim(payload, emailClaimKeys),
		Role:           stringClaim(payload, roleClaimKeys),
		EmailConfirmed: boolClaim(payload, emailConfirmedClaimKeys),
	}
	if exp, ok := timeClaim(payload, "exp"); ok {
		claims.ExpiresAt = exp
	}
	if iat, ok := timeClaim(payload, "iat"); ok {
		claims.IssuedAt = iat
	}
	return claims
}

// IsExpired reports whether the token can no longer be presented. Decode
// failure, a missing expiry claim, and an expiry at or before now all count
// as expired: ambiguity forces a refresh rather than risking a stale
// credential.
func IsExpired(raw string) bool {
	claims := DecodeClaims(raw)
	if claims == nil || claims.ExpiresAt.IsZero() {
		return true
	}
	return !claims.ExpiresAt.After(time.Now())
}

// ExpirationTime returns the token's expiry claim when one can be decoded.
func ExpirationTime(raw string) (time.Time, bool) {
	claims := DecodeClaims(raw)
	if claims == nil || claims.ExpiresAt.IsZero() {
		return time.Time{}, false
	}
	return claims.ExpiresAt, true
}

func stringClaim(payload jwt.MapClaims, keys []string) string {
	for _, key := range keys {
		value, ok := payload[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case []interface{}:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func boolClaim(payload jwt.MapClaims, keys []string) bool {
	for _, key := range keys {
		value, ok := payload[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case bool:
			return v
		case string:
			return v == "true" || v == "True"
		}
	}
	return false
}

func timeClaim(payload jwt.MapClaims, key string) (time.Time, bool) {
	value, ok := payload[key]
	if !ok {
		return time.Time{}, false
	}
	switch v := value.(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case json.Number:
		seconds, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(seconds, 0), true
	}
	return time.Time{}, false
}
