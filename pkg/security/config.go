// Package security provides TLS configuration types for the gateway listener.
package security

// ServerTLSConfig holds TLS configuration for the gateway HTTP server.
// Certificate sourcing beyond static files (ACME, rotation) is the host
// application's responsibility; hosts with their own certificate management
// supply a gateway.TLSProvider instead.
type ServerTLSConfig struct {
	Enabled    bool   `json:"enabled"`
	CertFile   string `json:"cert_file,omitempty"`
	KeyFile    string `json:"key_file,omitempty"`
	MinVersion string `json:"min_version,omitempty"` // "1.2" or "1.3"

	// mTLS support (client certificate validation)
	MTLS ServerMTLSConfig `json:"mtls,omitempty"`
}

// ServerMTLSConfig holds mTLS configuration for the server side
type ServerMTLSConfig struct {
	Enabled           bool     `json:"enabled"`
	ClientCAFiles     []string `json:"client_ca_files,omitempty"`     // CA certs to trust for client validation
	RequireClientCert bool     `json:"require_client_cert,omitempty"` // true = require, false = optional
	AllowedClientCNs  []string `json:"allowed_client_cns,omitempty"`  // Optional CN whitelist
}
