package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrAuthenticationRequired is returned before any network call when no access token is stored.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrUnauthorized is matched by every *HTTPError carrying a 401 status.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrContractViolation means the backend answered with success but without the data it promised.
	ErrContractViolation = errors.New("backend contract violation")
	ErrPrefNotFound      = errors.New("preference not found")
)

// HTTPError is a non-success answer from the backend.
type HTTPError struct {
	Op      string
	Status  int
	Message string
}

// NewHTTPError builds an HTTPError, extracting the backend's message from body when it has one.
func NewHTTPError(op string, status int, body []byte) *HTTPError {
	return &HTTPError{Op: op, Status: status, Message: backendMessage(status, body)}
}

func (e *HTTPError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// IsUnauthorized reports whether err is (or wraps) a 401 from the backend.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.Status
	}
	return 0
}

// backendMessage reads `message` (a string or a list of strings) or `error` from a JSON body,
// falling back to the raw text and finally to the status text.
func backendMessage(status int, body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		var msg string
		if err := json.Unmarshal(payload.Message, &msg); err == nil && msg != "" {
			return msg
		}
		var msgs []string
		if err := json.Unmarshal(payload.Message, &msgs); err == nil && len(msgs) > 0 {
			return strings.Join(msgs, " ")
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if txt := strings.TrimSpace(string(body)); txt != "" {
		return txt
	}
	return http.StatusText(status)
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if len(err.Fields) > 0 {
		msgs := make([]string, 0, len(err.Fields))
		for _, fld := range err.Fields {
			msgs = append(msgs, fld.Field+": "+fld.Error)
		}
		return strings.Join(msgs, "; ")
	}
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error {
	return err.Err
}
