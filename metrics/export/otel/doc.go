// Package otel provides OpenTelemetry metric bindings for the engine
// counters.
//
// [NewOTelExporter] registers an Int64ObservableCounter per metric and a
// single callback that reads [sessionauth.Engine.MetricsSnapshot] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate engine state.
package otel
