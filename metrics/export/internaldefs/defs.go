package internaldefs

import (
	goIdentity "github.com/MrEthical07/goIdentity"
)

// CounterDef defines a public type used by goIdentity APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goIdentity.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goIdentity APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goIdentity.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the identity client.
var CounterDefs = []CounterDef{
	{ID: goIdentity.MetricLoginSuccess, Name: "goidentity_login_success_total", Help: "Successful login attempts."},
	{ID: goIdentity.MetricLoginFailure, Name: "goidentity_login_failure_total", Help: "Failed login attempts."},
	{ID: goIdentity.MetricLogout, Name: "goidentity_logout_total", Help: "Explicit logout operations."},
	{ID: goIdentity.MetricRefreshSuccess, Name: "goidentity_refresh_success_total", Help: "Successful refresh operations."},
	{ID: goIdentity.MetricRefreshFailure, Name: "goidentity_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: goIdentity.MetricRefreshCoalesced, Name: "goidentity_refresh_coalesced_total", Help: "Requests that waited on an in-flight refresh."},
	{ID: goIdentity.MetricRefreshSkippedNoToken, Name: "goidentity_refresh_skipped_no_token_total", Help: "Refresh attempts abandoned because no refresh token was stored."},
	{ID: goIdentity.MetricRequestRetried, Name: "goidentity_request_retried_total", Help: "Transient-failure retry attempts."},
	{ID: goIdentity.MetricRetriesExhausted, Name: "goidentity_retries_exhausted_total", Help: "Requests that failed after the retry cap."},
	{ID: goIdentity.MetricTerminalError, Name: "goidentity_terminal_error_total", Help: "Requests that ended in a terminal error."},
	{ID: goIdentity.MetricSessionTerminated, Name: "goidentity_session_terminated_total", Help: "Local session terminations."},
}

// HistogramDefs is an exported constant or variable used by the identity client.
var HistogramDefs = []HistogramDef{
	{ID: goIdentity.MetricRequestLatency, Name: "goidentity_request_latency_seconds", Help: "Logical request latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the identity client.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the identity client.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
