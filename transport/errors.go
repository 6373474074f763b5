package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/ttb-portal/internal/utils"
)

// Error is the uniform shape every transport failure is normalized into.
type Error struct {
	Message string
	Status  int                 // HTTP status, 0 when the server could not be reached
	Errors  map[string][]string // field errors supplied by the server, if any
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

const (
	msgConnectivity    = "Unable to connect to server. Please check your internet connection."
	msgUnauthorized    = "Unauthorized. Please login again."
	msgForbidden       = "Access forbidden."
	msgNotFound        = "Resource not found."
	msgServerError     = "Server error. Please try again later."
	msgInvalidResponse = "Invalid response from server."
)

// StatusMessage maps an HTTP status to the fixed human readable message shown to users.
func StatusMessage(status int) string {
	switch status {
	case 0:
		return msgConnectivity
	case http.StatusUnauthorized:
		return msgUnauthorized
	case http.StatusForbidden:
		return msgForbidden
	case http.StatusNotFound:
		return msgNotFound
	case http.StatusInternalServerError:
		return msgServerError
	default:
		return fmt.Sprintf("Error: %d %s", status, http.StatusText(status))
	}
}

// errorFromResponse builds an Error for a non-2xx response. A message supplied by the server
// takes precedence over the status mapping.
func errorFromResponse(status int, body []byte) *Error {
	e := &Error{
		Message: StatusMessage(status),
		Status:  status,
	}

	var payload struct {
		Message string                     `json:"message"`
		Errors  map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}
	if payload.Message != "" {
		e.Message = payload.Message
	}
	if len(payload.Errors) > 0 {
		e.Errors = make(map[string][]string, len(payload.Errors))
		for field, raw := range payload.Errors {
			e.Errors[field] = fieldMessages(raw)
		}
	}
	return e
}

// fieldMessages accepts either a single string or a list for a field error.
func fieldMessages(raw json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	var many []any
	if err := json.Unmarshal(raw, &many); err == nil {
		return utils.ToStringSlice(many)
	}
	return nil
}
