package openapi

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nocodenation/appgateway/gateway"
)

type snapshotStub struct {
	mu        sync.Mutex
	calls     int
	endpoints []gateway.EndpointInfo
}

func (s *snapshotStub) snapshot() []gateway.EndpointInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.endpoints
}

func (s *snapshotStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testInfo() InfoSpec {
	return InfoSpec{Title: "App Gateway", Description: "Ingress endpoints", Version: "1.0.0"}
}

func TestGeneratorDocumentShape(t *testing.T) {
	stub := &snapshotStub{endpoints: []gateway.EndpointInfo{
		{Pattern: "/api/users/:id", Description: "user intake", Parameters: []string{"id"}, Queued: true, QueueCapacity: 100},
		{Pattern: "/api/status", Queued: false},
	}}

	gen := NewGenerator(testInfo(), "http://localhost:5050", stub.snapshot, 0)
	doc := gen.Document()

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "App Gateway", doc.Info.Title)
	require.Len(t, doc.Servers, 1)
	assert.Equal(t, "http://localhost:5050", doc.Servers[0].URL)

	// Colon notation converts to brace notation.
	queued, ok := doc.Paths["/api/users/{id}"]
	require.True(t, ok)
	require.NotNil(t, queued.POST)
	assert.Equal(t, "user intake", queued.POST.Summary)
	require.Len(t, queued.POST.Parameters, 1)
	assert.Equal(t, "id", queued.POST.Parameters[0].Name)
	assert.Equal(t, "path", queued.POST.Parameters[0].In)
	assert.True(t, queued.POST.Parameters[0].Required)

	// Queue-backed endpoints document 202 and 503.
	assert.Contains(t, queued.POST.Responses, "202")
	assert.Contains(t, queued.POST.Responses, "503")

	// Handler endpoints document 200 and 500 instead.
	handler, ok := doc.Paths["/api/status"]
	require.True(t, ok)
	assert.Contains(t, handler.POST.Responses, "200")
	assert.Contains(t, handler.POST.Responses, "500")
	assert.NotContains(t, handler.POST.Responses, "202")

	require.NotNil(t, doc.Components)
	assert.Contains(t, doc.Components.Schemas, "AcceptedResponse")
	assert.Contains(t, doc.Components.Schemas, "ErrorResponse")
}

func TestGeneratorJSONIsValid(t *testing.T) {
	stub := &snapshotStub{endpoints: []gateway.EndpointInfo{
		{Pattern: "/api/events/:type", Queued: true},
	}}
	gen := NewGenerator(testInfo(), "", stub.snapshot, 0)

	data, err := gen.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "3.0.3", decoded["openapi"])
}

func TestGeneratorCachesWithinTTL(t *testing.T) {
	stub := &snapshotStub{}
	gen := NewGenerator(testInfo(), "", stub.snapshot, time.Minute)

	_, err := gen.JSON()
	require.NoError(t, err)
	_, err = gen.JSON()
	require.NoError(t, err)

	assert.Equal(t, 1, stub.callCount())
}

func TestGeneratorTTLExpiry(t *testing.T) {
	stub := &snapshotStub{}
	gen := NewGenerator(testInfo(), "", stub.snapshot, 30*time.Millisecond)

	_, err := gen.JSON()
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = gen.JSON()
	require.NoError(t, err)
	assert.Equal(t, 2, stub.callCount())
}

func TestGeneratorInvalidate(t *testing.T) {
	stub := &snapshotStub{}
	gen := NewGenerator(testInfo(), "", stub.snapshot, time.Minute)

	_, err := gen.JSON()
	require.NoError(t, err)

	gen.Invalidate()

	_, err = gen.JSON()
	require.NoError(t, err)
	assert.Equal(t, 2, stub.callCount())
}

func TestGeneratorAgainstLiveGateway(t *testing.T) {
	gw, err := gateway.New(gateway.DefaultConfig(), nil)
	require.NoError(t, err)
	defer gw.Close()

	gen := NewGenerator(testInfo(), "", gw.Endpoints, 0)
	gw.SetDocCache(gen)

	first, err := gen.JSON()
	require.NoError(t, err)
	assert.NotContains(t, string(first), "/api/events")

	require.NoError(t, gw.RegisterQueueEndpoint("/api/events/:type", "events", 10, nil))

	// Registration invalidated the cache, so the new endpoint appears
	// immediately even within the TTL.
	second, err := gen.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(second), "/api/events/{type}")
}

func TestOperationID(t *testing.T) {
	tests := []struct {
		pattern  string
		expected string
	}{
		{"/api/users/:id", "ingress_api_users_id"},
		{"/", "ingress_root"},
		{"/v1.2/items", "ingress_v1_2_items"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.expected, operationID(tt.pattern))
		})
	}
}
