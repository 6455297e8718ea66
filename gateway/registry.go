package gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nocodenation/appgateway/errors"
	"github.com/nocodenation/appgateway/logging"
	"github.com/nocodenation/appgateway/metric"
	"github.com/nocodenation/appgateway/pattern"
	"github.com/nocodenation/appgateway/pkg/timestamp"
)

// Route is the result of resolving a concrete request path against the
// registered endpoint patterns.
type Route struct {
	// Pattern is the matched endpoint pattern
	Pattern string
	// Params holds the extracted path parameter values
	Params map[string]string
}

// EndpointInfo is a read-only view of a registered endpoint, used for
// documentation generation and introspection.
type EndpointInfo struct {
	Pattern       string
	Description   string
	Parameters    []string
	Queued        bool
	QueueCapacity int
	RegisteredAt  int64
}

// registration is the tagged union behind an endpoint: exactly one of
// handler or queue is set.
type registration struct {
	pattern      string
	matcher      *pattern.Matcher
	description  string
	handler      EndpointHandler
	queue        *requestQueue
	ack          *Response
	metrics      *EndpointMetrics
	registeredAt int64
}

// Gateway is the endpoint registry and dispatcher. All state lives on the
// instance; hosts may run several gateways in one process.
type Gateway struct {
	config Config
	logger *logging.Logger

	// Guards order, byPattern, closed, docCache, promRegistry
	mu        sync.RWMutex
	order     []*registration
	byPattern map[string]*registration
	closed    bool

	docCache     DocCache
	promRegistry *metric.Registry
}

// New creates a gateway from configuration. The config is validated and
// defaults applied; queue endpoints declared in config are registered in
// declaration order. logger may be nil.
func New(cfg Config, logger *logging.Logger) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Gateway", "New", "config validation")
	}

	if logger == nil {
		logger = logging.NewLogger("gateway", nil, nil)
	}

	g := &Gateway{
		config:    cfg,
		logger:    logger,
		byPattern: make(map[string]*registration),
	}

	for i := range cfg.Endpoints {
		m := &cfg.Endpoints[i]
		if err := g.RegisterQueueEndpoint(m.Pattern, m.Description, m.QueueCapacity, m.Ack()); err != nil {
			return nil, errors.WrapInvalid(err, "Gateway", "New",
				fmt.Sprintf("register configured endpoint %s", m.Pattern))
		}
	}

	return g, nil
}

// Config returns a copy of the validated gateway configuration.
func (g *Gateway) Config() Config {
	return g.config
}

// SetDocCache attaches a cache to invalidate on endpoint topology changes.
func (g *Gateway) SetDocCache(c DocCache) {
	g.mu.Lock()
	g.docCache = c
	g.mu.Unlock()
}

// SetMetricRegistry attaches Prometheus collectors. Optional.
func (g *Gateway) SetMetricRegistry(r *metric.Registry) {
	g.mu.Lock()
	g.promRegistry = r
	g.mu.Unlock()
}

// RegisterEndpoint registers a handler-backed endpoint. The handler is
// invoked synchronously on dispatch and its response returned to the caller.
func (g *Gateway) RegisterEndpoint(pat, description string, handler EndpointHandler) error {
	if handler == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Gateway", "RegisterEndpoint",
			"handler cannot be nil")
	}
	return g.register(&registration{
		pattern:     pat,
		description: description,
		handler:     handler,
	})
}

// RegisterQueueEndpoint registers a queue-backed endpoint. Dispatched
// requests are buffered for retrieval via Poll and acknowledged immediately
// with ack (default 202). capacity 0 uses the gateway-wide default.
func (g *Gateway) RegisterQueueEndpoint(pat, description string, capacity int, ack *Response) error {
	if capacity <= 0 {
		capacity = g.config.MaxQueueSize
	}
	if ack == nil {
		ack = Accepted()
	}
	return g.register(&registration{
		pattern:     pat,
		description: description,
		queue:       newRequestQueue(capacity),
		ack:         ack,
	})
}

func (g *Gateway) register(reg *registration) error {
	if strings.HasPrefix(reg.pattern, InternalPathPrefix) || strings.HasPrefix(reg.pattern, MetricsPathPrefix) {
		return errors.WrapInvalid(errors.ErrReservedPath, "Gateway", "RegisterEndpoint",
			fmt.Sprintf("pattern %s", reg.pattern))
	}

	matcher, err := pattern.Compile(reg.pattern)
	if err != nil {
		return errors.WrapInvalid(err, "Gateway", "RegisterEndpoint",
			fmt.Sprintf("compile pattern %s", reg.pattern))
	}
	reg.matcher = matcher
	reg.metrics = NewEndpointMetrics()
	reg.registeredAt = timestamp.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return errors.WrapTransient(errors.ErrShuttingDown, "Gateway", "RegisterEndpoint",
			fmt.Sprintf("register %s", reg.pattern))
	}
	if _, exists := g.byPattern[reg.pattern]; exists {
		return errors.WrapInvalid(errors.ErrDuplicateEndpoint, "Gateway", "RegisterEndpoint",
			fmt.Sprintf("pattern %s", reg.pattern))
	}

	g.byPattern[reg.pattern] = reg
	g.order = append(g.order, reg)
	g.invalidateDocCacheLocked()

	g.logger.Info("endpoint registered", "pattern", reg.pattern, "queued", reg.queue != nil)
	return nil
}

// UnregisterEndpoint removes an endpoint. Its queue is closed and drained and
// its metrics discarded.
func (g *Gateway) UnregisterEndpoint(pat string) error {
	g.mu.Lock()
	reg, exists := g.byPattern[pat]
	if !exists {
		g.mu.Unlock()
		return errors.WrapInvalid(errors.ErrEndpointNotFound, "Gateway", "UnregisterEndpoint",
			fmt.Sprintf("pattern %s", pat))
	}

	delete(g.byPattern, pat)
	for i, r := range g.order {
		if r == reg {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	prom := g.promRegistry
	g.invalidateDocCacheLocked()
	g.mu.Unlock()

	if reg.queue != nil {
		reg.queue.Close()
		dropped := reg.queue.Drain()
		if dropped > 0 {
			g.logger.Warn("dropped queued requests on unregister",
				"pattern", pat, "dropped", dropped)
		}
	}
	if prom != nil {
		prom.RemoveEndpoint(pat)
	}

	g.logger.Info("endpoint unregistered", "pattern", pat)
	return nil
}

// ListRegisteredPatterns returns patterns in registration order.
func (g *Gateway) ListRegisteredPatterns() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	patterns := make([]string, len(g.order))
	for i, reg := range g.order {
		patterns[i] = reg.pattern
	}
	return patterns
}

// Endpoints returns a documentation view of all endpoints in registration order.
func (g *Gateway) Endpoints() []EndpointInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()

	infos := make([]EndpointInfo, len(g.order))
	for i, reg := range g.order {
		info := EndpointInfo{
			Pattern:      reg.pattern,
			Description:  reg.description,
			Parameters:   reg.matcher.ParameterNames(),
			Queued:       reg.queue != nil,
			RegisteredAt: reg.registeredAt,
		}
		if reg.queue != nil {
			info.QueueCapacity = reg.queue.Capacity()
		}
		infos[i] = info
	}
	return infos
}

// ResolveRoute matches a concrete path against registered patterns.
// Patterns are tried in registration order; the first structural match wins.
func (g *Gateway) ResolveRoute(path string) (Route, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, reg := range g.order {
		if params, ok := reg.matcher.Match(path); ok {
			return Route{Pattern: reg.pattern, Params: params}, true
		}
	}
	return Route{}, false
}

// lookup returns the registration for a path in registration order.
func (g *Gateway) lookup(path string) (*registration, map[string]string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, reg := range g.order {
		if params, ok := reg.matcher.Match(path); ok {
			return reg, params, true
		}
	}
	return nil, nil, false
}

// Dispatch routes a captured request to its endpoint and returns the response
// for the external caller. Unroutable paths get a 404 without touching any
// endpoint metrics. Handler panics are contained here and surface as a
// generic 500.
func (g *Gateway) Dispatch(req *Request) *Response {
	reg, params, ok := g.lookup(req.Path)
	if !ok {
		return NotFound(req.Path)
	}

	req.PathParams = params
	reg.metrics.RecordRequest()
	start := time.Now()

	if reg.handler != nil {
		return g.dispatchHandler(reg, req, start)
	}
	return g.dispatchQueue(reg, req, start)
}

func (g *Gateway) dispatchHandler(reg *registration, req *Request, start time.Time) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("handler panic",
				errors.WrapFatal(errors.ErrHandlerPanic, "Gateway", "Dispatch", fmt.Sprintf("%v", r)),
				"pattern", reg.pattern, "request_id", req.ID)
			g.recordFailure(reg)
			resp = InternalError()
		}
	}()

	result, err := reg.handler(req)
	if err != nil {
		g.logger.Error("handler error", err, "pattern", reg.pattern, "request_id", req.ID)
		g.recordFailure(reg)
		return InternalError()
	}
	if result == nil {
		g.logger.Error("handler returned nil response", nil, "pattern", reg.pattern, "request_id", req.ID)
		g.recordFailure(reg)
		return InternalError()
	}

	g.recordSuccess(reg, time.Since(start))
	return result
}

func (g *Gateway) dispatchQueue(reg *registration, req *Request, start time.Time) *Response {
	err := reg.queue.TryEnqueue(req)
	switch {
	case err == nil:
		g.syncQueueDepth(reg)
		g.recordSuccess(reg, time.Since(start))
		return reg.ack
	case stderrors.Is(err, errors.ErrQueueFull):
		g.recordQueueFull(reg)
		g.logger.Warn("queue full", "pattern", reg.pattern, "request_id", req.ID)
		return QueueFull()
	default:
		g.recordFailure(reg)
		g.logger.Error("enqueue failed", err, "pattern", reg.pattern, "request_id", req.ID)
		if errors.IsTransient(err) {
			return ErrorResponse(http.StatusServiceUnavailable, "endpoint unavailable")
		}
		return InternalError()
	}
}

// RejectOversized counts an inbound request that was rejected for body size
// before dispatch. The transport layer calls this after route resolution so
// the 413 shows up in the endpoint's metrics.
func (g *Gateway) RejectOversized(pat string) {
	g.mu.RLock()
	reg, exists := g.byPattern[pat]
	g.mu.RUnlock()

	if !exists {
		return
	}
	reg.metrics.RecordRequest()
	g.recordFailure(reg)
}

// Poll waits for the next buffered request on a queue-backed endpoint.
// timeout <= 0 uses the configured default; waits are capped at MaxPollTimeout.
// Returns ErrNoRequest when the wait expires and ErrEndpointNotFound for
// unknown or handler-backed patterns.
func (g *Gateway) Poll(ctx context.Context, pat string, timeout time.Duration) (*Request, error) {
	g.mu.RLock()
	reg, exists := g.byPattern[pat]
	g.mu.RUnlock()

	if !exists || reg.queue == nil {
		return nil, errors.WrapInvalid(errors.ErrEndpointNotFound, "Gateway", "Poll",
			fmt.Sprintf("pattern %s", pat))
	}

	if timeout <= 0 {
		timeout = g.config.PollTimeout()
	}
	if timeout > MaxPollTimeout {
		timeout = MaxPollTimeout
	}

	req, err := reg.queue.Dequeue(ctx, timeout)
	if err != nil {
		return nil, err
	}

	g.syncQueueDepth(reg)
	return req, nil
}

// MetricsSnapshot returns per-endpoint metrics keyed by pattern.
func (g *Gateway) MetricsSnapshot() map[string]MetricsSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[string]MetricsSnapshot, len(g.order))
	for _, reg := range g.order {
		out[reg.pattern] = reg.metrics.Snapshot()
	}
	return out
}

// EndpointMetricsSnapshot returns metrics for a single endpoint.
func (g *Gateway) EndpointMetricsSnapshot(pat string) (MetricsSnapshot, bool) {
	g.mu.RLock()
	reg, exists := g.byPattern[pat]
	g.mu.RUnlock()

	if !exists {
		return MetricsSnapshot{}, false
	}
	return reg.metrics.Snapshot(), true
}

/// Close shuts the gateway down: further registrations fail and all queues are
// closed so pending polls return promptly.
func (g *Gateway) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	regs := make([]*registration, len(g.order))
	copy(regs, g.order)
	g.mu.Unlock()

	for _, reg := range regs {
		if reg.queue != nil {
			reg.queue.Close()
		}
	}

	g.logger.Info("gateway closed", "endpoints", len(regs))
	return nil
}

func (g *Gateway) invalidateDocCacheLocked() {
	if g.docCache != nil {
		g.docCache.Invalidate()
	}
}

func (g *Gateway) recordSuccess(reg *registration, latency time.Duration) {
	reg.metrics.RecordSuccess(latency)
	if prom := g.prom(); prom != nil {
		prom.ObserveSuccess(reg.pattern, latency)
	}
}

func (g *Gateway) recordFailure(reg *registration) {
	reg.metrics.RecordFailure()
	if prom := g.prom(); prom != nil {
		prom.ObserveFailure(reg.pattern)
	}
}

func (g *Gateway) recordQueueFull(reg *registration) {
	reg.metrics.RecordQueueFull()
	if prom := g.prom(); prom != nil {
		prom.ObserveQueueFull(reg.pattern)
	}
}

func (g *Gateway) syncQueueDepth(reg *registration) {
	depth := reg.queue.Size()
	reg.metrics.SetQueueSize(depth)
	if prom := g.prom(); prom != nil {
		prom.SetQueueDepth(reg.pattern, depth)
	}
}

func (g *Gateway) prom() *metric.Registry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.promRegistry
}
