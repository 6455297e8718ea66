// Package openapi builds OpenAPI 3 documents for gateway endpoints.
package openapi

import "encoding/json"

// Document is a complete OpenAPI 3 document for a gateway instance.
type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       InfoSpec            `json:"info"`
	Servers    []ServerSpec        `json:"servers,omitempty"`
	Paths      map[string]PathSpec `json:"paths"`
	Components *Components         `json:"components,omitempty"`
	Tags       []TagSpec           `json:"tags,omitempty"`
}

// Components holds reusable schema definitions
type Components struct {
	Schemas map[string]Schema `json:"schemas,omitempty"`
}

// PathSpec defines HTTP operations for a specific path
type PathSpec struct {
	GET    *OperationSpec `json:"get,omitempty"`
	POST   *OperationSpec `json:"post,omitempty"`
	PUT    *OperationSpec `json:"put,omitempty"`
	DELETE *OperationSpec `json:"delete,omitempty"`
}

// OperationSpec defines a single HTTP operation
type OperationSpec struct {
	Summary     string                  `json:"summary"`
	Description string                  `json:"description,omitempty"`
	OperationID string                  `json:"operationId,omitempty"`
	Parameters  []ParameterSpec         `json:"parameters,omitempty"`
	RequestBody *RequestBodySpec        `json:"requestBody,omitempty"`
	Responses   map[string]ResponseSpec `json:"responses"`
	Tags        []string                `json:"tags,omitempty"`
}

// ParameterSpec defines an operation parameter
type ParameterSpec struct {
	Name        string `json:"name"`
	In          string `json:"in"` // "query", "path", "header"
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Schema      Schema `json:"schema,omitempty"`
}

// RequestBodySpec defines an operation request body
type RequestBodySpec struct {
	Description string                   `json:"description,omitempty"`
	Required    bool                     `json:"required,omitempty"`
	Content     map[string]MediaTypeSpec `json:"content"`
}

// MediaTypeSpec binds a media type to its schema
type MediaTypeSpec struct {
	Schema Schema `json:"schema"`
}

// ResponseSpec defines an operation response
type ResponseSpec struct {
	Description string                   `json:"description"`
	Content     map[string]MediaTypeSpec `json:"content,omitempty"`
}

// Schema defines a parameter, body, or response schema
type Schema struct {
	Ref        string            `json:"$ref,omitempty"`
	Type       string            `json:"type,omitempty"`
	Format     string            `json:"format,omitempty"`
	Properties map[string]Schema `json:"properties,omitempty"`
	Items      *Schema           `json:"items,omitempty"`
	Example    any               `json:"example,omitempty"`
}

// InfoSpec contains API metadata
type InfoSpec struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// ServerSpec defines an API server
type ServerSpec struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// TagSpec defines an API tag for grouping operations
type TagSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MarshalJSON implements json.Marshaler for Document
func (d *Document) MarshalJSON() ([]byte, error) {
	type alias Document
	return json.Marshal((*alias)(d))
}
