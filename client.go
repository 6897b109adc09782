package goIdentity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goIdentity/token"
)

// Client is the identity frontend: it owns the credential store, attaches
// bearer tokens to outgoing requests, refreshes expired credentials with
// de-duplication across concurrent callers, retries transient failures, and
// terminates the session on irrecoverable authentication errors.
//
// A Client is safe for concurrent use. Construct it through [NewBuilder];
// the zero value is not usable.
type Client struct {
	cfg        Config
	httpClient *http.Client
	ep         endpoints
	tokens     *token.Store
	coord      *refreshCoordinator
	term       *terminator
	metrics    *Metrics
	audit      *auditDispatcher
	instanceID string

	// sleep is the retry delay primitive, injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Tokens exposes the credential store, mainly for guards and tests.
func (c *Client) Tokens() *token.Store {
	if c == nil {
		return nil
	}
	return c.tokens
}

// Metrics describes the metrics operation and its observable behavior.
func (c *Client) Metrics() *Metrics {
	if c == nil {
		return nil
	}
	return c.metrics
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms, the form the exporters consume.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{}
	}
	return c.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// Close flushes and stops the audit pipeline. The Client must not be used
// after Close.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.audit.Close()
}

// Terminate ends the session immediately: credentials cleared, logout
// broadcast, navigation to the login entry point. Idempotent until the next
// successful login.
func (c *Client) Terminate(ctx context.Context) {
	if c == nil {
		return
	}
	c.term.Terminate(ctx, returnURLFromContext(ctx))
}

/*
====================================
REQUEST PIPELINE
====================================
*/

// Do performs an authorized JSON request against the configured API: bearer
// attachment, transient retry, refresh-on-401 with replay, and terminal
// error mapping all apply. body is JSON-encoded when non-nil; the response
// is decoded into out when out is non-nil. path is relative to the base URL.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out)
}

// do runs one logical request to completion: authorization, transport,
// transient retry, refresh-on-401 with a single replay, and terminal error
// mapping. The retry counter spans the whole logical request, replay
// included. On success the response body is decoded into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c == nil {
		return ErrClientNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode body: %v", ErrRequestFailed, err)
		}
	}

	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	start := time.Now()
	retries := 0
	refreshed := false
	fullURL := c.ep.url(path)

	for {
		req, err := c.newHTTPRequest(ctx, method, path, payload, requestID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if retries < c.cfg.Retry.MaxRetries {
				retries++
				if err := c.backoff(ctx, method, fullURL, retries); err != nil {
					return err
				}
				continue
			}
			c.metrics.Inc(MetricRetriesExhausted)
			return c.terminal(ctx, requestID, method, fullURL, 0, "", err)
		}

		status := resp.StatusCode
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			respBody = nil
		}

		switch {
		case status >= 200 && status < 300:
			c.metrics.Observe(MetricRequestLatency, time.Since(start))
			if out == nil || len(respBody) == 0 {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
			}
			return nil

		case status == http.StatusUnauthorized && !refreshed && !c.ep.isExcluded(path):
			// The replay re-reads the store, which holds the refreshed pair
			// by the time Refresh returns.
			if _, err := c.coord.Refresh(ctx); err != nil {
				if errors.Is(err, ErrNoRefreshToken) {
					c.metrics.Inc(MetricRefreshSkippedNoToken)
				}
				return c.terminal(ctx, requestID, method, fullURL, status, serverMessage(respBody),
					fmt.Errorf("%w: %v", ErrSessionTerminated, err))
			}
			refreshed = true
			continue

		case status >= 500:
			if retries < c.cfg.Retry.MaxRetries {
				retries++
				if err := c.backoff(ctx, method, fullURL, retries); err != nil {
					return err
				}
				continue
			}
			c.metrics.Inc(MetricRetriesExhausted)
			return c.terminal(ctx, requestID, method, fullURL, status, serverMessage(respBody), nil)

		default:
			return c.terminal(ctx, requestID, method, fullURL, status, serverMessage(respBody), nil)
		}
	}
}

// newHTTPRequest builds the per-attempt request. It is rebuilt on every
// attempt so a replay after refresh reads the current credentials rather
// than the ones the failed attempt carried.
func (c *Client) newHTTPRequest(ctx context.Context, method, path string, payload []byte, requestID string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.ep.url(path), body)
	if err != nil {
		return nil, err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.cfg.API.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.API.UserAgent)
	}

	if !c.ep.isExcluded(path) {
		if access := c.tokens.AccessToken(ctx); access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
		if c.ep.isSessionEndpoint(path) {
			// Session management verifies the refresh token server-side so a
			// stolen access token alone cannot revoke other devices.
			if refresh := c.tokens.RefreshToken(ctx); refresh != "" {
				req.Header.Set("Refresh-Token", refresh)
			}
		}
	}

	return req, nil
}

// backoff sleeps before retry n using exponential delay capped at MaxDelay.
func (c *Client) backoff(ctx context.Context, method, url string, n int) error {
	delay := c.cfg.Retry.BaseDelay << (n - 1)
	if c.cfg.Retry.MaxDelay > 0 && delay > c.cfg.Retry.MaxDelay {
		delay = c.cfg.Retry.MaxDelay
	}

	c.metrics.Inc(MetricRequestRetried)
	c.audit.Emit(ctx, AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: "request_retried",
		Method:    method,
		URL:       url,
		Success:   false,
		Metadata:  map[string]string{"attempt": fmt.Sprint(n)},
	})

	return c.sleep(ctx, delay)
}

// terminal maps a finally-failed request onto the one error surface callers
// handle. The message preference order is: server-supplied message, then the
// fixed fallback for the status class.
func (c *Client) terminal(ctx context.Context, requestID, method, url string, status int, serverMsg string, cause error) error {
	msg := messageForStatus(status, serverMsg)

	c.metrics.Inc(MetricTerminalError)
	log.Printf("goIdentity: request failed: %s %s status=%d msg=%q", method, url, status, msg)
	c.audit.Emit(ctx, AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: "terminal_error",
		Method:    method,
		URL:       url,
		Status:    status,
		Success:   false,
		Error:     msg,
		Metadata:  map[string]string{"request_id": requestID},
	})

	if cause == nil {
		cause = ErrRequestFailed
	}
	return &APIError{
		Status:  status,
		Message: msg,
		Method:  method,
		URL:     url,
		Err:     cause,
	}
}

// messageForStatus returns the user-displayable message for a terminal
// failure. Server messages win where the status class allows them; the
// authentication statuses use fixed wording so server detail never leaks
// into what the user sees.
func messageForStatus(status int, serverMsg string) string {
	switch {
	case status == 0:
		return "Network error"
	case status == http.StatusUnauthorized:
		return "Unauthorized"
	case status == http.StatusForbidden:
		return "Access forbidden"
	case status == http.StatusNotFound:
		return "Resource not found"
	case status == http.StatusTooManyRequests:
		if serverMsg != "" {
			return serverMsg
		}
		return "Too many requests"
	case status >= 500:
		if serverMsg != "" {
			return serverMsg
		}
		return "Internal server error"
	default:
		if serverMsg != "" {
			return serverMsg
		}
		return fmt.Sprintf("Error Code: %d", status)
	}
}

// serverMessage extracts the envelope message from a failed response body,
// tolerating bodies that are not the standard envelope.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}
