package goIdentity

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config defines a public type used by goIdentity APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API       APIConfig
	Retry     RetryConfig
	Terminate TerminateConfig
	Guard     GuardConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig defines a public type used by goIdentity APIs.
//
// APIConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type APIConfig struct {
	BaseURL        string // scheme://host of the identity service
	IdentityPath   string // path of the identity endpoint family, default /v1/identity
	RequestTimeout time.Duration
	UserAgent      string
}

/*
====================================
RETRY CONFIG
====================================
*/

// RetryConfig bounds automatic retry of transient failures (network errors
// and 5xx responses). Delay before attempt n is BaseDelay * 2^(n-1), capped
// at MaxDelay. 4xx responses are never retried regardless of these values.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

/*
====================================
TERMINATE CONFIG
====================================
*/

// TerminateConfig defines a public type used by goIdentity APIs.
//
// TerminateConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TerminateConfig struct {
	LoginPath         string // navigation target after termination
	BroadcastTTL      time.Duration
	RevokeOnTerminate bool // best-effort revoke-token call before clearing
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig defines a public type used by goIdentity APIs.
//
// GuardConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GuardConfig struct {
	LandingPath     string // where RequireAnonymous sends authenticated users
	VerifyEmailPath string // where RequireVerifiedEmail sends unconfirmed users
}

// AuditConfig defines a public type used by goIdentity APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goIdentity APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			IdentityPath:   "/v1/identity",
			RequestTimeout: 15 * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries: 2,
			BaseDelay:  time.Second,
			MaxDelay:   5 * time.Second,
		},
		Terminate: TerminateConfig{
			LoginPath:    "/auth/login",
			BroadcastTTL: time.Second,
		},
		Guard: GuardConfig{
			LandingPath:     "/profile",
			VerifyEmailPath: "/auth/verify-email",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API BaseURL required")
	}
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("API BaseURL must be an absolute URL")
	}
	if !strings.HasPrefix(c.API.IdentityPath, "/") {
		return errors.New("API IdentityPath must start with /")
	}
	if c.API.RequestTimeout < 0 {
		return errors.New("invalid request timeout")
	}
	if c.Retry.MaxRetries < 0 || c.Retry.MaxRetries > 10 {
		return errors.New("invalid retry cap")
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		return errors.New("invalid retry delays")
	}
	if c.Retry.MaxDelay > 0 && c.Retry.BaseDelay > c.Retry.MaxDelay {
		return errors.New("retry BaseDelay exceeds MaxDelay")
	}
	if !strings.HasPrefix(c.Terminate.LoginPath, "/") {
		return errors.New("Terminate LoginPath must start with /")
	}
	if c.Terminate.BroadcastTTL < 0 {
		return errors.New("invalid broadcast TTL")
	}
	if !strings.HasPrefix(c.Guard.LandingPath, "/") {
		return errors.New("Guard LandingPath must start with /")
	}
	if !strings.HasPrefix(c.Guard.VerifyEmailPath, "/") {
		return errors.New("Guard VerifyEmailPath must start with /")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("invalid audit buffer size")
	}
	return nil
}
