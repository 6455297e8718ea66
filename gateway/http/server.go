// Package http provides the HTTP transport for the gateway: the listener,
// the ingress dispatcher, the internal poll and metrics surfaces, and the
// OpenAPI documentation endpoints.
package http

import (
	"context"
	"crypto/tls"
	stderrors "errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nocodenation/appgateway/errors"
	"github.com/nocodenation/appgateway/gateway"
	"github.com/nocodenation/appgateway/logging"
	"github.com/nocodenation/appgateway/metric"
	"github.com/nocodenation/appgateway/openapi"
	"github.com/nocodenation/appgateway/pkg/tlsutil"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultReadTimeout       = 30 * time.Second
	defaultIdleTimeout       = 60 * time.Second
)

// Server owns the HTTP listener for a gateway instance. All request traffic,
// the internal poll surface, metrics, and documentation are served from the
// same listener. Hosts embedding the gateway without their own HTTP server
// use this; hosts with an existing server can mount Handler() instead.
type Server struct {
	gw     *gateway.Gateway
	config gateway.Config
	logger *logging.Logger
	cors   gateway.CORSPolicy

	apiInfo     openapi.InfoSpec
	tlsProvider gateway.TLSProvider
	metrics     *metric.Registry

	mu        sync.Mutex
	generator *openapi.Generator
	server    *http.Server
	listener  net.Listener
	running   bool
}

// NewServer creates a server over a gateway instance. logger may be nil.
func NewServer(gw *gateway.Gateway, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewLogger("http-server", nil, nil)
	}
	cfg := gw.Config()
	return &Server{
		gw:     gw,
		config: cfg,
		logger: logger,
		cors:   gateway.NewCORSPolicy(cfg),
		apiInfo: openapi.InfoSpec{
			Title:       "App Gateway API",
			Description: "Dynamically registered ingress endpoints",
			Version:     "0.1.0",
		},
	}
}

// SetOpenAPIInfo overrides the documentation metadata. Must be called before
// Start or Handler.
func (s *Server) SetOpenAPIInfo(info openapi.InfoSpec) {
	s.mu.Lock()
	s.apiInfo = info
	s.mu.Unlock()
}

// SetTLSProvider overrides file-based TLS configuration with a host-supplied
// certificate source. Must be called before Start.
func (s *Server) SetTLSProvider(p gateway.TLSProvider) {
	s.mu.Lock()
	s.tlsProvider = p
	s.mu.Unlock()
}

// SetMetricRegistry wires Prometheus collectors into the gateway and exposes
// the exposition endpoint under the metrics prefix. Optional.
func (s *Server) SetMetricRegistry(r *metric.Registry) {
	s.mu.Lock()
	s.metrics = r
	s.mu.Unlock()
	s.gw.SetMetricRegistry(r)
}

// Handler returns the routing handler for the full gateway surface. The
// ingress dispatcher is the catch-all; reserved and documentation paths get
// dedicated handlers.
func (s *Server) Handler() http.Handler {
	s.ensureGenerator()

	s.mu.Lock()
	metrics := s.metrics
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(gateway.InternalPathPrefix+"/poll/", s.handlePoll)
	mux.HandleFunc(gateway.InternalPathPrefix+"/respond/", s.handleRespond)
	mux.HandleFunc(gateway.MetricsPathPrefix, s.handleMetrics)
	if metrics != nil {
		mux.Handle(gateway.MetricsPathPrefix+"/prometheus", metrics.Handler())
	}
	mux.HandleFunc(s.config.OpenAPIPath, s.handleOpenAPI)
	if s.config.SwaggerEnabled {
		mux.HandleFunc(s.config.SwaggerPath, s.handleSwaggerUI)
	}
	mux.HandleFunc("/", s.handleIngress)
	return mux
}

// ensureGenerator lazily builds the OpenAPI generator and registers it as the
// gateway's doc cache so endpoint changes invalidate it.
func (s *Server) ensureGenerator() *openapi.Generator {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generator == nil {
		s.generator = openapi.NewGenerator(s.apiInfo, "", s.gw.Endpoints, 0)
		s.gw.SetDocCache(s.generator)
	}
	return s.generator
}

// Start binds the listener and begins serving in the background. Bind and
// TLS setup failures are returned synchronously.
//
// WriteTimeout is left unset on the underlying server: long-poll responses
// are held open up to gateway.MaxPollTimeout.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Server", "Start",
			"server already running")
	}
	s.mu.Unlock()

	tlsConfig, err := s.resolveTLS()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress())
	if err != nil {
		return errors.WrapTransient(err, "Server", "Start",
			"listen on "+s.config.ListenAddress())
	}
	if tlsConfig != nil {
		ln = tls.NewListener(ln, tlsConfig)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		ReadTimeout:       defaultReadTimeout,
		IdleTimeout:       defaultIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.server = srv
	s.listener = ln
	s.running = true
	s.mu.Unlock()

	s.logger.Info("gateway listening",
		"address", ln.Addr().String(), "tls", tlsConfig != nil)

	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the server down, waiting up to timeout for in-flight
// requests. Close the gateway first so blocked pollers are released instead
// of holding connections open for the full wait. Stopping a server that was
// never started is a no-op.
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.listener = nil
	running := s.running
	s.running = false
	s.mu.Unlock()

	if !running || srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		srv.Close()
		return errors.WrapTransient(err, "Server", "Stop", "graceful shutdown")
	}
	return nil
}

// Addr returns the bound listener address, or the configured address when
// the server has not started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ListenAddress()
}

func (s *Server) resolveTLS() (*tls.Config, error) {
	s.mu.Lock()
	provider := s.tlsProvider
	s.mu.Unlock()

	if provider != nil {
		cfg, err := provider.ServerTLSConfig()
		if err != nil {
			return nil, errors.WrapFatal(err, "Server", "Start", "TLS provider")
		}
		return cfg, nil
	}
	return tlsutil.LoadServerTLSConfig(s.config.TLS)
}
