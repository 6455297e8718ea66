package http

import (
	"fmt"
	"net/http"

	"github.com/nocodenation/appgateway/gateway"
)

// handleOpenAPI serves the generated OpenAPI document. The document is
// always CORS-open so browser-based API explorers can fetch it regardless
// of the gateway's ingress CORS policy.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method != http.MethodGet {
		writeResponse(w, gateway.ErrorResponse(http.StatusMethodNotAllowed,
			fmt.Sprintf("method %s not allowed", r.Method)))
		return
	}

	data, err := s.ensureGenerator().JSON()
	if err != nil {
		s.logger.Error("openapi generation failed", err)
		writeResponse(w, gateway.InternalError())
		return
	}

	w.Header().Set("Content-Type", gateway.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>App Gateway API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css"/>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      SwaggerUIBundle({
        url: %q,
        dom_id: '#swagger-ui',
        deepLinking: true,
        tryItOutEnabled: true
      });
    };
  </script>
</body>
</html>
`

// handleSwaggerUI serves the interactive documentation page pointing at the
// OpenAPI endpoint.
func (s *Server) handleSwaggerUI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeResponse(w, gateway.ErrorResponse(http.StatusMethodNotAllowed,
			fmt.Sprintf("method %s not allowed", r.Method)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, swaggerUIPage, s.config.OpenAPIPath)
}
