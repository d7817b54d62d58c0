// Package models defines request and response types for the bindzone REST API.
// All types are JSON-serializable and include binding tags where appropriate.
package models

// ErrorResponse represents an API error response. Kind names the error
// category (NotFound, AlreadyExists, InvalidFormat, AccessDenied, AuthError,
// ConnectError, TransportError, PermissionDenied, NoSpace, Internal).
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusResponse represents a simple status response.
type StatusResponse struct {
	Status string `json:"status"`
}

// MessageResponse acknowledges an operation that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}
