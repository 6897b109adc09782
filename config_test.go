package goIdentity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goIdentity/token"
)

func validTestConfig() Config {
	cfg := defaultConfig()
	cfg.API.BaseURL = "https://api.example.com"
	return cfg
}

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := defaultConfig()

	if cfg.API.IdentityPath != "/v1/identity" {
		t.Fatalf("unexpected identity path %q", cfg.API.IdentityPath)
	}
	if cfg.Retry.MaxRetries != 2 {
		t.Fatalf("unexpected retry cap %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.BaseDelay != time.Second || cfg.Retry.MaxDelay != 5*time.Second {
		t.Fatalf("unexpected retry delays %v/%v", cfg.Retry.BaseDelay, cfg.Retry.MaxDelay)
	}
	if cfg.Terminate.LoginPath != "/auth/login" {
		t.Fatalf("unexpected login path %q", cfg.Terminate.LoginPath)
	}
	if cfg.Terminate.BroadcastTTL != time.Second {
		t.Fatalf("unexpected broadcast TTL %v", cfg.Terminate.BroadcastTTL)
	}
	if cfg.Guard.LandingPath != "/profile" || cfg.Guard.VerifyEmailPath != "/auth/verify-email" {
		t.Fatalf("unexpected guard paths %+v", cfg.Guard)
	}
}

func TestConfigValidateAcceptsDefaults(t *testing.T) {
	if err := validTestConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"missing base url", func(c *Config) { c.API.BaseURL = "" }, "BaseURL required"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "api.example.com" }, "absolute URL"},
		{"identity path", func(c *Config) { c.API.IdentityPath = "v1/identity" }, "IdentityPath"},
		{"negative timeout", func(c *Config) { c.API.RequestTimeout = -time.Second }, "timeout"},
		{"negative retries", func(c *Config) { c.Retry.MaxRetries = -1 }, "retry cap"},
		{"excessive retries", func(c *Config) { c.Retry.MaxRetries = 11 }, "retry cap"},
		{"negative delay", func(c *Config) { c.Retry.BaseDelay = -time.Second }, "retry delays"},
		{"base above max", func(c *Config) { c.Retry.BaseDelay = 10 * time.Second }, "exceeds MaxDelay"},
		{"login path", func(c *Config) { c.Terminate.LoginPath = "auth/login" }, "LoginPath"},
		{"negative broadcast ttl", func(c *Config) { c.Terminate.BroadcastTTL = -time.Second }, "broadcast TTL"},
		{"landing path", func(c *Config) { c.Guard.LandingPath = "profile" }, "LandingPath"},
		{"verify email path", func(c *Config) { c.Guard.VerifyEmailPath = "verify" }, "VerifyEmailPath"},
	}

	for _, tc := range cases {
		cfg := validTestConfig()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected rejection", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Fatalf("%s: expected %q in error, got %v", tc.name, tc.wantMsg, err)
		}
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := NewBuilder().WithConfig(validTestConfig())
	client, err := b.Build()
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	defer client.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}

func TestBuilderRejectsConflictingBackends(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	_, err = NewBuilder().
		WithConfig(validTestConfig()).
		WithKV(token.NewMemoryKV()).
		WithRedis(rdb).
		Build()
	if err == nil {
		t.Fatal("expected rejection of conflicting credential backends")
	}
}

func TestBuilderRedisBackedClient(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	client, err := NewBuilder().
		WithConfig(validTestConfig()).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	client.tokens.SetTokens(ctx, "access-1", "refresh-1")
	if !mr.Exists("idc:access_token") {
		t.Fatal("expected credential persisted in redis")
	}
	if got := client.tokens.AccessToken(ctx); got != "access-1" {
		t.Fatalf("expected round trip through redis, got %q", got)
	}
}
