package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nocodenation/appgateway/errors"
	"github.com/nocodenation/appgateway/gateway"
	"github.com/nocodenation/appgateway/metric"
)

func TestPollReturnsEnvelope(t *testing.T) {
	gw := newTestGateway(t, testConfig())
	require.NoError(t, gw.RegisterQueueEndpoint("/hooks/:source", "", 10, nil))

	srv := newTestServer(t, gw)

	req, err := http.NewRequest(http.MethodPost,
		srv.URL+"/hooks/github?sig=abc123", strings.NewReader(`{"event":"push"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", gateway.ContentTypeJSON)
	req.Header.Set("X-Event-Id", "evt-7")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	poll, err := http.Get(srv.URL + "/_internal/poll/hooks/:source")
	require.NoError(t, err)
	defer poll.Body.Close()
	require.Equal(t, http.StatusOK, poll.StatusCode)

	var env pollEnvelope
	require.NoError(t, json.NewDecoder(poll.Body).Decode(&env))

	assert.Equal(t, http.MethodPost, env.Method)
	assert.Equal(t, "/hooks/github", env.Path)
	assert.Equal(t, gateway.ContentTypeJSON, env.ContentType)
	assert.Equal(t, "evt-7", env.Headers["X-Event-Id"])
	assert.NotEmpty(t, env.ClientAddress)

	if diff := cmp.Diff(map[string]string{"sig": "abc123"}, env.QueryParameters); diff != "" {
		t.Errorf("query parameters mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"source": "github"}, env.PathParameters); diff != "" {
		t.Errorf("path parameters mismatch (-want +got):\n%s", diff)
	}

	decoded, err := base64.StdEncoding.DecodeString(env.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"push"}`, string(decoded))
	assert.JSONEq(t, `{"event":"push"}`, env.BodyText)

	_, err = time.Parse(time.RFC3339, env.Timestamp)
	assert.NoError(t, err)
}

func TestPollEncodedPattern(t *testing.T) {
	gw := newTestGateway(t, testConfig())
	require.NoError(t, gw.RegisterQueueEndpoint("/hooks/:source", "", 10, nil))

	srv := newTestServer(t, gw)

	resp, err := http.Post(srv.URL+"/hooks/gitlab", gateway.ContentTypeJSON, strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()

	poll, err := http.Get(srv.URL + "/_internal/poll/" + "%2Fhooks%2F%3Asource")
	require.NoError(t, err)
	defer poll.Body.Close()

	assert.Equal(t, http.StatusOK, poll.StatusCode)
}

func TestPollTimeoutReturns204(t *testing.T) {
	gw := newTestGateway(t, testConfig())
	require.NoError(t, gw.RegisterQueueEndpoint("/hooks/empty", "", 10, nil))

	srv := newTestServer(t, gw)

	start := time.Now()
	poll, err := http.Get(srv.URL + "/_internal/poll/hooks/empty?timeout=50ms")
	require.NoError(t, err)
	defer poll.Body.Close()

	assert.Equal(t, http.StatusNoContent, poll.StatusCode)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	raw, err := io.ReadAll(poll.Body)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestPollUnknownPattern(t *testing.T) {
	gw := newTestGateway(t, testConfig())
	srv := newTestServer(t, gw)

	poll, err := http.Get(srv.URL + "/_internal/poll/hooks/missing?timeout=1s")
	require.NoError(t, err)
	defer poll.Body.Close()

	require.Equal(t, http.StatusNotFound, poll.StatusCode)
	msg, _ := decodeErrorBody(t, poll)
	assert.Contains(t, msg, "/hooks/missing")
}

func TestPollInvalidTimeout(t *testing.T) {
	gw := newTestGateway(t, testConfig())
	require.NoError(t, gw.RegisterQueueEndpoint("/hooks/x", "", 10, nil))

	srv := newTestServer(t, gw)

	poll, err := http.Get(srv.URL + "/_internal/poll/hooks/x?timeout=soon")
	require.NoError(t, err)
	defer poll.Body.Close()

	assert.Equal(t, http.StatusBadRequest, poll.StatusCode)
}

func TestPollMethodNotAllowed(t *testing.T) {
	gw := newTestGateway(t, testConfig())
	srv := newTestServer(t, gw)

	resp, err := http.Post(srv.URL+"/_internal/poll/hooks/x", gateway.ContentTypeJSON, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRespondNotImplemented(t *testing.T) {
	gw := newTestGateway(t, testConfig())
	srv := newTestServer(t, gw)

	resp, err := http.Post(srv.URL+"/_internal/respond/req-1", gateway.ContentTypeJSON,
		strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	_, status := decodeErrorBody(t, resp)
	assert.Equal(t, http.StatusNotImplemented, status)
}

func TestStatusForErrorClass(t *testing.T) {
	base := fmt.Errorf("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", errors.WrapInvalid(base, "Gateway", "Poll", "parse"), http.StatusBadRequest},
		{"invalid sentinel", errors.ErrInvalidPattern, http.StatusBadRequest},
		{"transient", errors.WrapTransient(base, "Gateway", "Poll", "wait"), http.StatusServiceUnavailable},
		{"transient sentinel", errors.ErrQueueFull, http.StatusServiceUnavailable},
		{"fatal", errors.WrapFatal(base, "Gateway", "Poll", "wait"), http.StatusInternalServerError},
		{"unclassified", base, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gw := newTestGateway(t, testConfig())
	require.NoError(t, gw.RegisterQueueEndpoint("/hooks/metered", "", 10, nil))

	srv := newTestServer(t, gw)

	resp, err := http.Post(srv.URL+"/hooks/metered", gateway.ContentTypeJSON, strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()

	metricsResp, err := http.Get(srv.URL + "/_metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	require.Equal(t, http.StatusOK, metricsResp.StatusCode)

	var doc struct {
		Endpoints map[string]gateway.MetricsSnapshot `json:"endpoints"`
	}
	require.NoError(t, json.NewDecoder(metricsResp.Body).Decode(&doc))

	snap, ok := doc.Endpoints["/hooks/metered"]
	require.True(t, ok)
	assert.Equal(t, uint64(1), snap.TotalRequests)
	assert.Equal(t, uint64(1), snap.SuccessfulRequests)
	assert.Equal(t, float64(1), snap.SuccessRate)
	assert.NotNil(t, snap.LastRequestTime)
}

func TestMetricsMethodNotAllowed(t *testing.T) {
	gw := newTestGateway(t, testConfig())
	srv := newTestServer(t, gw)

	resp, err := http.Post(srv.URL+"/_metrics", gateway.ContentTypeJSON, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPrometheusExposition(t *testing.T) {
	gw := newTestGateway(t, testConfig())
	require.NoError(t, gw.RegisterQueueEndpoint("/hooks/prom", "", 10, nil))

	server := NewServer(gw, nil)
	server.SetMetricRegistry(metric.NewRegistry())

	srv := newHTTPTestServer(t, server)

	resp, err := http.Post(srv.URL+"/hooks/prom", gateway.ContentTypeJSON, strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	promResp, err := http.Get(srv.URL + "/_metrics/prometheus")
	require.NoError(t, err)
	defer promResp.Body.Close()
	require.Equal(t, http.StatusOK, promResp.StatusCode)

	raw, err := io.ReadAll(promResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "appgateway_requests_total")
}
