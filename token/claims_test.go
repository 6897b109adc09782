package token

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

func makeToken(t *testing.T, payload map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]any{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(body) + "." + enc.EncodeToString([]byte("sig"))
}

func TestDecodeClaimsReadsStandardFields(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	raw := makeToken(t, map[string]any{
		"sub":             "user-1",
		"email":           "alice@example.com",
		"role":            "admin",
		"email_confirmed": true,
		"exp":             exp,
		"iat":             exp - 3600,
	})

	claims := DecodeClaims(raw)
	if claims == nil {
		t.Fatal("expected claims, got nil")
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject user-1, got %q", claims.Subject)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Role != "admin" {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if !claims.EmailConfirmed {
		t.Fatal("expected confirmed email")
	}
	if claims.ExpiresAt.Unix() != exp {
		t.Fatalf("expected exp %d, got %d", exp, claims.ExpiresAt.Unix())
	}
}

func TestDecodeClaimsAlternateKeyNames(t *testing.T) {
	raw := makeToken(t, map[string]any{
		"nameid":         "user-2",
		"unique_name":    "bob@example.com",
		"roles":          []string{"member", "auditor"},
		"email_verified": "true",
	})

	claims := DecodeClaims(raw)
	if claims == nil {
		t.Fatal("expected claims, got nil")
	}
	if claims.Subject != "user-2" {
		t.Fatalf("expected subject from nameid, got %q", claims.Subject)
	}
	if claims.Email != "bob@example.com" {
		t.Fatalf("expected email from unique_name, got %q", claims.Email)
	}
	if claims.Role != "member" {
		t.Fatalf("expected first role, got %q", claims.Role)
	}
	if !claims.EmailConfirmed {
		t.Fatal("expected confirmed email from string claim")
	}
}

func TestDecodeClaimsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"not-a-token",
		"a.b",
		"a.b.c.d",
		"!!!.???.###",
		makeToken(t, nil)[:10] + ".x.y",
	}
	for _, raw := range cases {
		if claims := DecodeClaims(raw); claims != nil {
			t.Fatalf("expected nil claims for %q, got %+v", raw, claims)
		}
	}
}

func TestIsExpiredFailClosed(t *testing.T) {
	if !IsExpired("") {
		t.Fatal("empty token must count as expired")
	}
	if !IsExpired("garbage") {
		t.Fatal("undecodable token must count as expired")
	}

	noExp := makeToken(t, map[string]any{"sub": "user-1"})
	if !IsExpired(noExp) {
		t.Fatal("token without exp claim must count as expired")
	}

	past := makeToken(t, map[string]any{"exp": time.Now().Add(-time.Minute).Unix()})
	if !IsExpired(past) {
		t.Fatal("past exp must count as expired")
	}

	future := makeToken(t, map[string]any{"exp": time.Now().Add(time.Hour).Unix()})
	if IsExpired(future) {
		t.Fatal("future exp must not count as expired")
	}
}

func TestExpirationTime(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Unix()
	raw := makeToken(t, map[string]any{"exp": exp})

	got, ok := ExpirationTime(raw)
	if !ok {
		t.Fatal("expected expiry")
	}
	if got.Unix() != exp {
		t.Fatalf("expected %d, got %d", exp, got.Unix())
	}

	if _, ok := ExpirationTime("garbage"); ok {
		t.Fatal("expected no expiry for undecodable token")
	}
}
