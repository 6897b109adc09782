package goIdentity

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goIdentity/token"
)

// Builder defines a public type used by goIdentity APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	httpClient *http.Client
	kv         token.KV
	redis      redis.UniversalClient
	navigator  Navigator
	auditSink  AuditSink

	built bool
}

// NewBuilder describes the newbuilder operation and its observable behavior.
//
// NewBuilder does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewBuilder() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL describes the withbaseurl operation and its observable behavior.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithHTTPClient describes the withhttpclient operation and its observable behavior.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithKV selects the credential backend. When neither WithKV nor WithRedis is
// called credentials live in an in-process store.
func (b *Builder) WithKV(kv token.KV) *Builder {
	b.kv = kv
	return b
}

// WithRedis stores credentials in Redis so sibling processes share the
// session and observe each other's logout broadcast.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithNavigator describes the withnavigator operation and its observable behavior.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.kv != nil && b.redis != nil {
		return nil, errors.New("WithKV and WithRedis are mutually exclusive")
	}

	kv := b.kv
	if kv == nil {
		if b.redis != nil {
			kv = token.NewRedisKV(b.redis, "")
		} else {
			kv = token.NewMemoryKV()
		}
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.API.RequestTimeout}
	}

	store := token.NewStore(kv)

	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		ep:         newEndpoints(cfg.API),
		tokens:     store,
		instanceID: uuid.NewString(),
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}

	c.metrics = NewMetrics(cfg.Metrics)
	c.audit = newAuditDispatcher(cfg.Audit, b.auditSink)

	// -------- SESSION TERMINATOR --------
	c.term = newTerminator(store, b.navigator, cfg.Terminate)
	if cfg.Terminate.RevokeOnTerminate {
		c.term.revoke = c.revokeCurrentToken
	}
	c.term.onTerminated = func() {
		c.metrics.Inc(MetricSessionTerminated)
		c.audit.Emit(context.Background(), AuditEvent{
			Timestamp: time.Now().UTC(),
			EventType: "session_terminated",
			Success:   true,
		})
	}

	// -------- REFRESH COORDINATOR --------
	c.coord = newRefreshCoordinator(store, c.refreshOnce, func(ctx context.Context) {
		c.term.Terminate(ctx, returnURLFromContext(ctx))
	})
	c.coord.onWaiter = func() {
		c.metrics.Inc(MetricRefreshCoalesced)
	}

	b.built = true

	return c, nil
}
