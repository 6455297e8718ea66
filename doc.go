// Package appgateway provides an embeddable HTTP ingress gateway with
// dynamic endpoint registration, bounded request queues, and long-poll
// retrieval.
//
// # Philosophy
//
// The gateway is a library first and a binary second. A host application
// creates an explicit gateway instance, registers endpoints at runtime, and
// either consumes requests through synchronous handlers or pulls them from
// bounded per-endpoint queues. There is no global state: two gateways in the
// same process are fully independent.
//
// Endpoints come in exactly two kinds:
//
//   - Handler-backed: a function is invoked on dispatch and its response is
//     returned to the external caller.
//   - Queue-backed: the request is buffered in a bounded FIFO queue, the
//     caller gets an immediate acknowledgement (202 by default), and a
//     consumer retrieves the request later via long-poll.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│         gateway/http.Server         │  Listener, CORS, body limits,
//	│   (ingress, poll, metrics, docs)    │  request IDs, reserved paths
//	└─────────────────────────────────────┘
//	           ↓ dispatches to
//	┌─────────────────────────────────────┐
//	│          gateway.Gateway            │  Pattern routing in
//	│  (registry, dispatch, poll, close)  │  registration order
//	└─────────────────────────────────────┘
//	     ↓ handler               ↓ queue
//	┌──────────────┐      ┌──────────────┐
//	│ EndpointHandler│    │ bounded FIFO │  TryEnqueue / long-poll
//	│  (synchronous) │    │    queue     │  Dequeue with timeout
//	└──────────────┘      └──────────────┘
//
// Routing patterns use colon parameters ("/api/users/:id"); parameters match
// exactly one path segment. Patterns are tried in registration order and the
// first structural match wins, so routing is deterministic regardless of map
// iteration.
//
// # Packages
//
// Core:
//   - gateway: instance, endpoint registry, dispatch, queues, poll, metrics
//   - gateway/http: HTTP transport (listener, ingress dispatcher, internal
//     poll surface, JSON and Prometheus metrics, OpenAPI and Swagger UI)
//   - pattern: colon-parameter pattern compilation and matching
//   - openapi: cached OpenAPI 3 document generation from the live registry
//
// Infrastructure:
//   - errors: structured error handling with transient/fatal/invalid classes
//   - logging: component loggers with optional NATS log mirroring
//   - metric: Prometheus metrics
//   - pkg/security, pkg/tlsutil: TLS and mTLS listener configuration
//   - pkg/timestamp: millisecond timestamp utilities
//
// # Usage
//
// Embedding the gateway:
//
//	gw, _ := gateway.New(gateway.DefaultConfig(), nil)
//	defer gw.Close()
//
//	// Synchronous endpoint
//	gw.RegisterEndpoint("/api/users/:id", "user lookup",
//	    func(req *gateway.Request) (*gateway.Response, error) {
//	        return gateway.OK(map[string]string{"id": req.PathParams["id"]}), nil
//	    })
//
//	// Buffered endpoint with long-poll consumption
//	gw.RegisterQueueEndpoint("/hooks/:source", "webhook intake", 100, nil)
//	go func() {
//	    for {
//	        req, err := gw.Poll(ctx, "/hooks/:source", 0)
//	        if err != nil {
//	            continue
//	        }
//	        process(req)
//	    }
//	}()
//
//	server := gatewayhttp.NewServer(gw, nil)
//	server.Start(ctx)
//
// Hosts with an existing HTTP server mount server.Handler() on their own mux
// instead of calling Start.
//
// # Binary
//
// The standalone binary loads endpoints from a JSON config and serves them:
//
//	./bin/appgateway --config configs/gateway.json
//	./bin/appgateway --config configs/gateway.json --validate
//
// Remote consumers retrieve buffered requests over HTTP:
//
//	GET /_internal/poll/hooks/:source?timeout=30s   # 200 envelope or 204
//	GET /_metrics                                   # JSON per-endpoint metrics
//	GET /openapi.json                               # generated API document
package appgateway
