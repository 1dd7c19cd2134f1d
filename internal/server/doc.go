// Package server holds the state shared by the MCP tools of a running
// calimport server and the optional HTTP side channel for metrics.
//
// ServerContext owns the configuration, the authenticator and one cached
// Google Calendar client per account. MetricsServer exposes /metrics from
// the instrumentation provider's private Prometheus registry together with
// the /healthz and /readyz endpoints of HealthChecker.
package server
