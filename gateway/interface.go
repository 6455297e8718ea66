package gateway

import "crypto/tls"

// EndpointHandler processes a dispatched request synchronously and returns
// the response to send to the caller. Returning an error produces a generic
// 500 response; error details are logged, never exposed to clients.
type EndpointHandler func(req *Request) (*Response, error)

// TLSProvider supplies server TLS material for the gateway listener. Hosts
// with their own certificate management (rotation, ACME, hardware tokens)
// implement this instead of pointing the gateway at static files.
type TLSProvider interface {
	ServerTLSConfig() (*tls.Config, error)
}

// DocCache is implemented by caches that must be discarded when the endpoint
// topology changes, such as the OpenAPI document cache.
type DocCache interface {
	Invalidate()
}
