package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Encoding errors are logged rather than dropped.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondError sends {"error": message} with the given status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// RespondErrorWithDetails adds a details string for upstream failures.
func RespondErrorWithDetails(w http.ResponseWriter, message, details string, statusCode int) {
	RespondJSON(w, ErrorResponse{Error: message, Details: details}, statusCode)
}

// ErrInvalidJSON is returned by DecodeJSON for an unreadable body.
var ErrInvalidJSON = errors.New("invalid JSON")

var errTrailingData = errors.New("unexpected data after JSON value")

// DecodeJSON reads at most limit bytes of r.Body into dst. The body must
// hold exactly one JSON value.
func DecodeJSON(r *http.Request, dst any, limit int64) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, limit))
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrInvalidJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.Join(ErrInvalidJSON, errTrailingData)
	}
	return nil
}
