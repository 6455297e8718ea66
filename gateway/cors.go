package gateway

import (
	"net/http"
	"strconv"
)

// CORSPolicy applies cross-origin headers to gateway responses. The zero
// value is a disabled policy. Stateless and safe for concurrent use.
type CORSPolicy struct {
	Enabled        bool
	AllowedOrigins []string
	AllowedMethods string
	AllowedHeaders string
	MaxAge         int
}

// NewCORSPolicy builds a policy from validated gateway configuration.
func NewCORSPolicy(cfg Config) CORSPolicy {
	return CORSPolicy{
		Enabled:        cfg.EnableCORS,
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: cfg.CORSAllowedMethods,
		AllowedHeaders: cfg.CORSAllowedHeaders,
		MaxAge:         cfg.CORSMaxAge,
	}
}

// IsPreflight reports whether the request is a CORS preflight that the policy
// should answer before routing.
func (p CORSPolicy) IsPreflight(r *http.Request) bool {
	return p.Enabled && r.Method == http.MethodOptions && r.Header.Get("Origin") != ""
}

// Apply sets CORS headers on the response if the request origin is allowed.
func (p CORSPolicy) Apply(w http.ResponseWriter, r *http.Request) {
	if !p.Enabled {
		return
	}

	origin := r.Header.Get("Origin")

	allowed := false
	for _, allowedOrigin := range p.AllowedOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}

	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
	} else {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}
	w.Header().Set("Access-Control-Allow-Methods", p.AllowedMethods)
	w.Header().Set("Access-Control-Allow-Headers", p.AllowedHeaders)
	w.Header().Set("Access-Control-Max-Age", strconv.Itoa(p.MaxAge))
}
