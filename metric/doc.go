// Package metric provides Prometheus collectors for gateway observability.
//
// The Registry owns a dedicated Prometheus registry and the gateway's
// collectors: a request counter labeled by endpoint pattern and outcome, a
// queue depth gauge, and a dispatch latency histogram. The exposition handler
// is mounted by the gateway HTTP server under the reserved metrics prefix.
//
// # Basic Usage
//
//	registry := metric.NewRegistry()
//	gw, _ := gateway.New(cfg, logger)
//	gw.SetMetricRegistry(registry)
//
// The registry is optional. Without it the gateway still maintains its
// per-endpoint JSON metrics; only the Prometheus exposition is skipped.
//
// # Label Lifecycle
//
// Unregistering an endpoint removes its label series via RemoveEndpoint, so
// scrapes do not accumulate series for endpoints that no longer exist.
package metric
