package httpserver

import (
	"encoding/json"
	"net/http"
)

// Client facing error messages.
const (
	msgInvalidID      = "Invalid ID"
	msgNotFound       = "Property not found"
	msgInvalidJSON    = "invalid JSON request body"
	msgBodyUnreadable = "failed to read request body"
	msgInternalError  = "internal server error"
	msgRateLimited    = "rate limit exceeded"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Message: message})
}
