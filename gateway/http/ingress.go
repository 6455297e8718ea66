package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nocodenation/appgateway/gateway"
	"github.com/nocodenation/appgateway/pkg/timestamp"
)

// getOrGenerateRequestID extracts the request ID from headers or generates a
// new one so every response carries a correlation ID.
func getOrGenerateRequestID(r *http.Request) string {
	if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
		return reqID
	}
	return uuid.NewString()
}

// handleIngress is the catch-all dispatcher for external traffic. Order
// matters: preflight is answered before routing, reserved prefixes are
// rejected before pattern matching, and the body limit is enforced after
// route resolution so the rejection lands in the endpoint's metrics.
func (s *Server) handleIngress(w http.ResponseWriter, r *http.Request) {
	requestID := getOrGenerateRequestID(r)
	w.Header().Set("X-Request-ID", requestID)

	if s.cors.IsPreflight(r) {
		s.cors.Apply(w, r)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.cors.Apply(w, r)

	path := r.URL.Path
	if strings.HasPrefix(path, gateway.InternalPathPrefix) ||
		strings.HasPrefix(path, gateway.MetricsPathPrefix) {
		writeResponse(w, gateway.NotFound(path))
		return
	}

	route, ok := s.gw.ResolveRoute(path)
	if !ok {
		writeResponse(w, gateway.NotFound(path))
		return
	}

	defer r.Body.Close()

	// Read one byte past the limit to distinguish at-limit from over-limit.
	limit := s.config.MaxRequestSize
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		s.logger.Warn("request body read failed",
			"request_id", requestID, "path", path, "error", err.Error())
		writeResponse(w, gateway.BadRequest("failed to read request body"))
		return
	}
	if int64(len(body)) > limit {
		s.gw.RejectOversized(route.Pattern)
		writeResponse(w, gateway.PayloadTooLarge(limit))
		return
	}

	resp := s.gw.Dispatch(captureRequest(r, requestID, body))
	writeResponse(w, resp)
}

// captureRequest snapshots the inbound request into the transport-neutral
// form handlers and poll consumers receive. Multi-valued headers and query
// parameters keep their first value only.
func captureRequest(r *http.Request, requestID string, body []byte) *gateway.Request {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	query := make(map[string]string)
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			query[name] = values[0]
		}
	}

	return &gateway.Request{
		ID:            requestID,
		Method:        r.Method,
		Path:          r.URL.Path,
		Headers:       headers,
		QueryParams:   query,
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
		ClientAddress: r.RemoteAddr,
		ReceivedAt:    timestamp.Now(),
	}
}

func writeResponse(w http.ResponseWriter, resp *gateway.Response) {
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}
}
