// Package gateway provides an embeddable HTTP ingress gateway core.
//
// A Gateway instance owns a dynamic registry of endpoints keyed by path
// pattern (colon notation, e.g. "/api/users/:id"), per-endpoint metrics, and
// the dispatch logic that routes captured requests to their endpoints.
//
// # Endpoint Kinds
//
// Each endpoint is backed by exactly one of:
//
//   - a handler: the EndpointHandler runs synchronously on dispatch and its
//     response is returned to the external caller
//   - a queue: the request is buffered in a bounded FIFO and acknowledged
//     immediately (202 by default); consumers retrieve buffered requests via
//     Poll, typically through the internal long-poll API
//
// # Dispatch Semantics
//
//	┌─────────────────┐
//	│  HTTP Client    │  POST /api/events/order-created
//	└────────┬────────┘
//	         ↓
//	┌────────────────────────────────────────┐
//	│  gateway/http.Server (Port 5050)       │
//	│  CORS → size limit → Dispatch          │
//	└────────┬───────────────────────────────┘
//	         ↓
//	┌────────────────────────────────────────┐
//	│  Gateway registry                      │
//	│  first matching pattern in             │
//	│  registration order wins               │
//	└────────────────────────────────────────┘
//
// Resolution is deterministic: patterns are tried in registration order and
// the first structural match wins. A parameter matches exactly one path
// segment, so "/a/:x" never swallows "/a/5/b".
//
// Backpressure is explicit: a full queue rejects the request with 503 and a
// Retry-After hint rather than blocking the ingress path. Oversized bodies
// are rejected with 413 before dispatch. Handler panics are contained at the
// dispatch boundary and surface as a generic 500.
//
// # Instances
//
// All state is per-instance. Hosts may embed several gateways in one process,
// each with its own listener, registry, and metrics.
//
// The HTTP transport lives in gateway/http. Prometheus collectors (metric
// package) and an OpenAPI document cache (openapi package) attach via
// SetMetricRegistry and SetDocCache.
package gateway
