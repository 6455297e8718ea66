package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Request is an immutable snapshot of an inbound HTTP request, captured after
// body reading and route resolution. Handlers and poll consumers receive the
// same representation.
type Request struct {
	// ID is the request correlation ID (X-Request-ID or generated)
	ID string `json:"id"`

	// Method is the HTTP method of the original request
	Method string `json:"method"`

	// Path is the concrete request path, e.g. "/api/users/42"
	Path string `json:"path"`

	// Headers holds single-valued request headers
	Headers map[string]string `json:"headers"`

	// QueryParams holds single-valued query parameters
	QueryParams map[string]string `json:"queryParameters"`

	// PathParams holds values extracted from the matched pattern
	PathParams map[string]string `json:"pathParameters"`

	// ContentType is the Content-Type header of the request
	ContentType string `json:"contentType"`

	// Body is the raw request body, already size-checked
	Body []byte `json:"-"`

	// ClientAddress is the remote address of the caller
	ClientAddress string `json:"clientAddress"`

	// ReceivedAt is the capture time in Unix milliseconds
	ReceivedAt int64 `json:"receivedAt"`
}

// Response describes what the gateway sends back to the external caller.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// ContentTypeJSON is the content type set on all gateway-generated responses
const ContentTypeJSON = "application/json"

// Accepted returns the default acknowledgement for queue-backed endpoints.
func Accepted() *Response {
	return &Response{
		StatusCode: http.StatusAccepted,
		Headers:    map[string]string{"Content-Type": ContentTypeJSON},
		Body:       []byte(`{"status":"accepted"}`),
	}
}

// OK returns a 200 response with a JSON-encoded body.
func OK(v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		return ErrorResponse(http.StatusInternalServerError, "response encoding failed")
	}
	return &Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": ContentTypeJSON},
		Body:       body,
	}
}

// ErrorResponse returns a JSON error response in the standard
// {"error": ..., "status": ...} shape.
func ErrorResponse(statusCode int, message string) *Response {
	body, _ := json.Marshal(map[string]any{
		"error":  message,
		"status": statusCode,
	})
	return &Response{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": ContentTypeJSON},
		Body:       body,
	}
}

// BadRequest returns a 400 response with the given message.
func BadRequest(message string) *Response {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFound returns a 404 response for unroutable paths.
func NotFound(path string) *Response {
	return ErrorResponse(http.StatusNotFound, fmt.Sprintf("no endpoint registered for path %s", path))
}

// PayloadTooLarge returns a 413 response for oversized request bodies.
func PayloadTooLarge(limit int64) *Response {
	return ErrorResponse(http.StatusRequestEntityTooLarge,
		fmt.Sprintf("request body exceeds maximum size of %d bytes", limit))
}

// QueueFull returns the 503 backpressure response with a retry hint.
func QueueFull() *Response {
	resp := ErrorResponse(http.StatusServiceUnavailable, "endpoint queue full, retry later")
	resp.Headers["Retry-After"] = "5"
	return resp
}

// InternalError returns a generic 500 response. Error details stay in logs.
func InternalError() *Response {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}
