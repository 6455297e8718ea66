package http

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nocodenation/appgateway/errors"
	"github.com/nocodenation/appgateway/gateway"
	"github.com/nocodenation/appgateway/pkg/timestamp"
)

// statusFor maps error classifications to HTTP status codes at the transport
// boundary: invalid input is the caller's fault, transient conditions invite
// a retry, everything else is a server failure.
func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// pollEnvelope is the wire form of a buffered request handed to a poll
// consumer. The body travels twice: base64 for binary-safe transport and as
// raw text for the common JSON case.
type pollEnvelope struct {
	Method          string            `json:"method"`
	Path            string            `json:"path"`
	Headers         map[string]string `json:"headers"`
	QueryParameters map[string]string `json:"queryParameters"`
	PathParameters  map[string]string `json:"pathParameters"`
	ContentType     string            `json:"contentType"`
	Body            string            `json:"body"`
	BodyText        string            `json:"bodyText"`
	ClientAddress   string            `json:"clientAddress"`
	Timestamp       string            `json:"timestamp"`
}

func newPollEnvelope(req *gateway.Request) pollEnvelope {
	encoded := ""
	if len(req.Body) > 0 {
		encoded = base64.StdEncoding.EncodeToString(req.Body)
	}
	return pollEnvelope{
		Method:          req.Method,
		Path:            req.Path,
		Headers:         req.Headers,
		QueryParameters: req.QueryParams,
		PathParameters:  req.PathParams,
		ContentType:     req.ContentType,
		Body:            encoded,
		BodyText:        string(req.Body),
		ClientAddress:   req.ClientAddress,
		Timestamp:       timestamp.Format(req.ReceivedAt),
	}
}

// handlePoll serves GET /_internal/poll/<pattern>. The pattern may be
// URL-encoded; a missing leading slash is tolerated so callers can encode
// the whole pattern in one path segment. An optional ?timeout= duration
// overrides the configured default wait.
func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeResponse(w, gateway.ErrorResponse(http.StatusMethodNotAllowed,
			fmt.Sprintf("method %s not allowed", r.Method)))
		return
	}

	encoded := strings.TrimPrefix(r.URL.EscapedPath(), gateway.InternalPathPrefix+"/poll/")
	pat, err := url.PathUnescape(encoded)
	if err != nil || pat == "" {
		writeResponse(w, gateway.ErrorResponse(http.StatusBadRequest,
			"invalid poll pattern"))
		return
	}
	if !strings.HasPrefix(pat, "/") {
		pat = "/" + pat
	}

	var timeout time.Duration
	if tstr := r.URL.Query().Get("timeout"); tstr != "" {
		parsed, err := time.ParseDuration(tstr)
		if err != nil || parsed <= 0 {
			writeResponse(w, gateway.ErrorResponse(http.StatusBadRequest,
				fmt.Sprintf("invalid timeout: %s", tstr)))
			return
		}
		timeout = parsed
	}

	req, err := s.gw.Poll(r.Context(), pat, timeout)
	switch {
	case err == nil:
		writeResponse(w, gateway.OK(newPollEnvelope(req)))
	case stderrors.Is(err, errors.ErrNoRequest):
		w.WriteHeader(http.StatusNoContent)
	case stderrors.Is(err, errors.ErrEndpointNotFound):
		writeResponse(w, gateway.ErrorResponse(http.StatusNotFound,
			fmt.Sprintf("no pollable endpoint for pattern %s", pat)))
	case stderrors.Is(err, errors.ErrQueueClosed):
		writeResponse(w, gateway.ErrorResponse(http.StatusServiceUnavailable,
			"endpoint shutting down"))
	case stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded):
		// The caller abandoned the wait, not the endpoint.
		writeResponse(w, gateway.ErrorResponse(http.StatusInternalServerError,
			"poll interrupted"))
	default:
		writeResponse(w, gateway.ErrorResponse(statusFor(err), "poll failed"))
	}
}

// handleRespond reserves the response-correlation surface. Buffered requests
// are fire-and-forget: the external caller already got the acknowledgement,
// so there is nothing to correlate a late response to.
func (s *Server) handleRespond(w http.ResponseWriter, _ *http.Request) {
	writeResponse(w, gateway.ErrorResponse(http.StatusNotImplemented,
		"response correlation is not supported"))
}

// handleMetrics serves the JSON metrics snapshot for all endpoints.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeResponse(w, gateway.ErrorResponse(http.StatusMethodNotAllowed,
			fmt.Sprintf("method %s not allowed", r.Method)))
		return
	}

	writeResponse(w, gateway.OK(map[string]any{
		"endpoints": s.gw.MetricsSnapshot(),
	}))
}
