package openapi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nocodenation/appgateway/errors"
	"github.com/nocodenation/appgateway/gateway"
	"github.com/nocodenation/appgateway/pattern"
)

// DefaultCacheTTL bounds how stale a cached document can get even without
// explicit invalidation.
const DefaultCacheTTL = 5 * time.Second

// Generator builds OpenAPI documents from the gateway's live endpoint
// registry and caches the serialized result. The cache is invalidated
// explicitly on topology changes and expires after the TTL either way.
// Generator implements gateway.DocCache.
type Generator struct {
	info      InfoSpec
	serverURL string
	snapshot  func() []gateway.EndpointInfo
	ttl       time.Duration

	// Guards cached and cachedAt
	mu       sync.Mutex
	cached   []byte
	cachedAt time.Time
}

// NewGenerator creates a generator over an endpoint snapshot function,
// typically (*gateway.Gateway).Endpoints. ttl 0 uses DefaultCacheTTL.
func NewGenerator(info InfoSpec, serverURL string, snapshot func() []gateway.EndpointInfo, ttl time.Duration) *Generator {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Generator{
		info:      info,
		serverURL: serverURL,
		snapshot:  snapshot,
		ttl:       ttl,
	}
}

// Invalidate discards the cached document. Called by the gateway on endpoint
// registration and unregistration.
func (g *Generator) Invalidate() {
	g.mu.Lock()
	g.cached = nil
	g.mu.Unlock()
}

// JSON returns the serialized OpenAPI document, regenerating it when the
// cache is empty or older than the TTL.
func (g *Generator) JSON() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cached != nil && time.Since(g.cachedAt) < g.ttl {
		return g.cached, nil
	}

	doc := g.build()
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, errors.WrapFatal(err, "Generator", "JSON", "marshal document")
	}

	g.cached = data
	g.cachedAt = time.Now()
	return data, nil
}

// Document builds an uncached document, mainly for tests and tooling.
func (g *Generator) Document() *Document {
	return g.build()
}

func (g *Generator) build() *Document {
	endpoints := g.snapshot()

	doc := &Document{
		OpenAPI: "3.0.3",
		Info:    g.info,
		Paths:   make(map[string]PathSpec, len(endpoints)),
		Components: &Components{
			Schemas: map[string]Schema{
				"AcceptedResponse": {
					Type: "object",
					Properties: map[string]Schema{
						"status": {Type: "string", Example: "accepted"},
					},
				},
				"ErrorResponse": {
					Type: "object",
					Properties: map[string]Schema{
						"error":  {Type: "string"},
						"status": {Type: "integer"},
					},
				},
			},
		},
		Tags: []TagSpec{
			{Name: "ingress", Description: "Dynamically registered gateway endpoints"},
		},
	}

	if g.serverURL != "" {
		doc.Servers = []ServerSpec{{URL: g.serverURL, Description: "Gateway listener"}}
	}

	for _, ep := range endpoints {
		displayPath := pattern.ToDisplayForm(ep.Pattern)
		doc.Paths[displayPath] = PathSpec{POST: g.buildOperation(ep)}
	}

	return doc
}

func (g *Generator) buildOperation(ep gateway.EndpointInfo) *OperationSpec {
	summary := ep.Description
	if summary == "" {
		summary = fmt.Sprintf("Ingress endpoint %s", ep.Pattern)
	}

	op := &OperationSpec{
		Summary:     summary,
		OperationID: operationID(ep.Pattern),
		Tags:        []string{"ingress"},
		RequestBody: &RequestBodySpec{
			Description: "Arbitrary JSON payload forwarded to the endpoint consumer",
			Content: map[string]MediaTypeSpec{
				"application/json": {Schema: Schema{Type: "object"}},
			},
		},
		Responses: map[string]ResponseSpec{
			"404": {
				Description: "No endpoint registered for this path",
				Content: map[string]MediaTypeSpec{
					"application/json": {Schema: Schema{Ref: "#/components/schemas/ErrorResponse"}},
				},
			},
			"413": {
				Description: "Request body exceeds the configured size limit",
				Content: map[string]MediaTypeSpec{
					"application/json": {Schema: Schema{Ref: "#/components/schemas/ErrorResponse"}},
				},
			},
		},
	}

	if ep.Queued {
		op.Responses["202"] = ResponseSpec{
			Description: "Request accepted and buffered for retrieval",
			Content: map[string]MediaTypeSpec{
				"application/json": {Schema: Schema{Ref: "#/components/schemas/AcceptedResponse"}},
			},
		}
		op.Responses["503"] = ResponseSpec{
			Description: "Endpoint queue full, retry later",
			Content: map[string]MediaTypeSpec{
				"application/json": {Schema: Schema{Ref: "#/components/schemas/ErrorResponse"}},
			},
		}
	} else {
		op.Responses["200"] = ResponseSpec{
			Description: "Handler response",
			Content: map[string]MediaTypeSpec{
				"application/json": {Schema: Schema{Type: "object"}},
			},
		}
		op.Responses["500"] = ResponseSpec{
			Description: "Handler failure",
			Content: map[string]MediaTypeSpec{
				"application/json": {Schema: Schema{Ref: "#/components/schemas/ErrorResponse"}},
			},
		}
	}

	for _, name := range ep.Parameters {
		op.Parameters = append(op.Parameters, ParameterSpec{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   Schema{Type: "string"},
		})
	}

	return op
}

// operationID derives a stable identifier from a pattern,
// e.g. "/api/users/:id" -> "ingress_api_users_id".
func operationID(pat string) string {
	cleaned := strings.NewReplacer("/", "_", ":", "", ".", "_").Replace(strings.Trim(pat, "/"))
	if cleaned == "" {
		cleaned = "root"
	}
	return "ingress_" + cleaned
}
