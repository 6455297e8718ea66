package gateway

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nocodenation/appgateway/errors"
	"github.com/nocodenation/appgateway/pattern"
	"github.com/nocodenation/appgateway/pkg/security"
)

// Reserved path prefixes. Endpoint patterns may not start with these and the
// dispatcher never routes them to registered endpoints.
const (
	InternalPathPrefix = "/_internal"
	MetricsPathPrefix  = "/_metrics"
)

// Size and timing defaults
const (
	DefaultPort           = 5050
	DefaultMaxQueueSize   = 100
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultPollTimeout    = 30 * time.Second
	MaxPollTimeout        = 5 * time.Minute
)

// EndpointMapping declares a queue-backed endpoint in configuration, letting
// a host register ingestion endpoints without code.
type EndpointMapping struct {
	// Pattern is the endpoint path pattern (e.g., "/api/events/:type")
	Pattern string `json:"pattern"`

	// Description for OpenAPI documentation
	Description string `json:"description,omitempty"`

	// AckStatus is the HTTP status returned on successful enqueue (default: 202)
	AckStatus int `json:"ack_status,omitempty"`

	// AckBody is the JSON body returned on successful enqueue
	// (default: {"status":"accepted"})
	AckBody string `json:"ack_body,omitempty"`

	// QueueCapacity overrides the gateway-wide max queue size (0 = use default)
	QueueCapacity int `json:"queue_capacity,omitempty"`
}

// Validate ensures the endpoint mapping is valid
func (m *EndpointMapping) Validate() error {
	if err := pattern.Validate(m.Pattern); err != nil {
		return errors.WrapInvalid(err, "EndpointMapping", "Validate",
			fmt.Sprintf("invalid pattern %q", m.Pattern))
	}

	if m.AckStatus == 0 {
		m.AckStatus = http.StatusAccepted
	}
	if m.AckStatus < 100 || m.AckStatus > 599 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "EndpointMapping", "Validate",
			fmt.Sprintf("ack_status %d out of range", m.AckStatus))
	}

	if m.QueueCapacity < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "EndpointMapping", "Validate",
			"queue_capacity cannot be negative")
	}

	return nil
}

// Ack builds the acknowledgement response for this mapping.
func (m *EndpointMapping) Ack() *Response {
	if m.AckStatus == http.StatusAccepted && m.AckBody == "" {
		return Accepted()
	}
	resp := &Response{
		StatusCode: m.AckStatus,
		Headers:    map[string]string{"Content-Type": ContentTypeJSON},
		Body:       []byte(m.AckBody),
	}
	if m.AckBody == "" {
		resp.Body = []byte(`{"status":"accepted"}`)
	}
	return resp
}

// Config holds gateway configuration
type Config struct {
	// Host is the listen address (default: "0.0.0.0")
	Host string `json:"host,omitempty"`

	// Port is the listen port (default: 5050)
	Port int `json:"port,omitempty"`

	// MaxQueueSize is the default capacity for endpoint queues (default: 100)
	MaxQueueSize int `json:"max_queue_size,omitempty"`

	// MaxRequestSize limits request body size in bytes (default: 10MB)
	MaxRequestSize int64 `json:"max_request_size,omitempty"`

	// EnableCORS enables CORS headers (default: false, requires explicit cors_origins)
	EnableCORS bool `json:"enable_cors"`

	// CORSOrigins lists allowed CORS origins (required when EnableCORS is true)
	// Use ["*"] for development only - production should specify exact origins
	CORSOrigins []string `json:"cors_origins,omitempty"`

	// CORSAllowedMethods is the Access-Control-Allow-Methods header value
	CORSAllowedMethods string `json:"cors_allowed_methods,omitempty"`

	// CORSAllowedHeaders is the Access-Control-Allow-Headers header value
	CORSAllowedHeaders string `json:"cors_allowed_headers,omitempty"`

	// CORSMaxAge is the Access-Control-Max-Age value in seconds (default: 3600)
	CORSMaxAge int `json:"cors_max_age,omitempty"`

	// PollTimeoutStr is the default long-poll wait (default: "30s", max "5m")
	PollTimeoutStr string `json:"poll_timeout,omitempty"`

	// SwaggerEnabled serves the Swagger UI page when true
	SwaggerEnabled bool `json:"swagger_enabled"`

	// SwaggerPath is where the Swagger UI page is served (default: "/swagger")
	SwaggerPath string `json:"swagger_path,omitempty"`

	// OpenAPIPath is where the OpenAPI document is served (default: "/openapi.json")
	OpenAPIPath string `json:"openapi_path,omitempty"`

	// Endpoints declares queue-backed endpoints to register at startup
	Endpoints []EndpointMapping `json:"endpoints,omitempty"`

	// TLS configures the HTTPS listener from static files. Hosts with their
	// own certificate management pass a TLSProvider to the server instead.
	TLS security.ServerTLSConfig `json:"tls,omitempty"`

	// pollTimeout is the parsed duration (internal use)
	pollTimeout time.Duration
}

// Validate ensures the gateway configuration is valid and applies defaults
func (c *Config) Validate() error {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}

	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("port %d out of range", c.Port))
	}

	if c.MaxQueueSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_queue_size cannot be negative")
	}
	if c.MaxQueueSize == 0 {
		c.MaxQueueSize = DefaultMaxQueueSize
	}

	if c.MaxRequestSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_request_size cannot be negative")
	}
	if c.MaxRequestSize == 0 {
		c.MaxRequestSize = DefaultMaxRequestSize
	}
	if c.MaxRequestSize > 100*1024*1024 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_request_size cannot exceed 100MB")
	}

	// CORS requires explicit origin configuration for security
	if c.EnableCORS && len(c.CORSOrigins) == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"enable_cors requires explicit cors_origins configuration (use [\"*\"] for development only)")
	}
	if c.CORSAllowedMethods == "" {
		c.CORSAllowedMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	}
	if c.CORSAllowedHeaders == "" {
		c.CORSAllowedHeaders = "Content-Type, Authorization, X-Requested-With, X-Event-Id, X-Timestamp, X-Stage"
	}
	if c.CORSMaxAge < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"cors_max_age cannot be negative")
	}
	if c.CORSMaxAge == 0 {
		c.CORSMaxAge = 3600
	}

	// Parse poll timeout
	if c.PollTimeoutStr == "" {
		c.pollTimeout = DefaultPollTimeout
	} else {
		parsed, err := time.ParseDuration(c.PollTimeoutStr)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "Validate",
				fmt.Sprintf("invalid poll_timeout format: %s", c.PollTimeoutStr))
		}
		c.pollTimeout = parsed
	}
	if c.pollTimeout < time.Second || c.pollTimeout > MaxPollTimeout {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"poll_timeout must be between 1s and 5m")
	}

	if c.SwaggerPath == "" {
		c.SwaggerPath = "/swagger"
	}
	if c.OpenAPIPath == "" {
		c.OpenAPIPath = "/openapi.json"
	}
	for _, p := range []string{c.SwaggerPath, c.OpenAPIPath} {
		if !strings.HasPrefix(p, "/") || p == "/" {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("documentation path must start with '/' and not be the root: %s", p))
		}
		if strings.HasPrefix(p, InternalPathPrefix) || strings.HasPrefix(p, MetricsPathPrefix) {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("documentation path collides with reserved prefix: %s", p))
		}
	}
	if c.SwaggerPath == c.OpenAPIPath {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"swagger_path and openapi_path must differ")
	}

	// Validate declared endpoints
	for i := range c.Endpoints {
		if err := c.Endpoints[i].Validate(); err != nil {
			return errors.WrapInvalid(err, "Config", "Validate",
				fmt.Sprintf("invalid endpoint at index %d", i))
		}
	}

	return nil
}

// PollTimeout returns the parsed default long-poll wait
func (c *Config) PollTimeout() time.Duration {
	if c.pollTimeout == 0 {
		return DefaultPollTimeout
	}
	return c.pollTimeout
}

// ListenAddress returns the host:port string for the HTTP listener
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DefaultConfig returns default gateway configuration
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           DefaultPort,
		MaxQueueSize:   DefaultMaxQueueSize,
		MaxRequestSize: DefaultMaxRequestSize,
		EnableCORS:     false, // Disabled by default (requires explicit configuration)
		CORSOrigins:    []string{},
		SwaggerEnabled: false,
		SwaggerPath:    "/swagger",
		OpenAPIPath:    "/openapi.json",
		pollTimeout:    DefaultPollTimeout,
	}
}
