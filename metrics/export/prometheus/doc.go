// Package prometheus renders engine counters in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [sessionauth.Engine] and exposes an
// [net/http.Handler] for a metrics endpoint. Counter names are prefixed
// sessionauth_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
