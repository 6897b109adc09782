// Package prometheus provides Prometheus collectors for goIdentity metrics.
//
// [NewPrometheusExporter] accepts a [goIdentity.Client] and exposes an [http.Handler]
// that renders all goIdentity counters and histograms in Prometheus text exposition
// format. Counter names are prefixed goidentity_*_total; the single histogram is
// goidentity_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry (callers mount the Handler).
//   - Mutate client state.
package prometheus
