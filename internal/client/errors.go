package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is a non-2xx response from the Program Service.
type ServiceError struct {
	Status  int
	Message string
	// Fields maps form fields to their first error message, when the
	// service reported any.
	Fields map[string]string
}

func (e *ServiceError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("program service: %d %s %v", e.Status, e.Message, e.Fields)
	}
	return fmt.Sprintf("program service: %d %s", e.Status, e.Message)
}

// NetworkError means the request never produced a usable response: the
// transport failed or the body was not JSON.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: Network error. Please check your connection. (%v)", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is a 401 from the service.
func IsUnauthorized(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// parseServiceError turns a non-2xx body into a *ServiceError. Field errors
// come from {"errors": {...}} or, on 400, from DRF-style {field: [msg]}.
// A body that is not JSON yields a *NetworkError.
func parseServiceError(op string, status int, body []byte) error {
	var data map[string]any
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		var raw any
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return &NetworkError{Op: op, Err: fmt.Errorf("status %d with non-JSON body: %w", status, err)}
		}
		data, _ = raw.(map[string]any)
	}

	fields := fieldErrors(status, data)
	detail, _ := data["detail"].(string)

	se := &ServiceError{Status: status}
	switch status {
	case http.StatusUnauthorized:
		se.Message = "Please sign in again."
		se.Fields = fields
	case http.StatusForbidden:
		se.Message = firstNonEmpty(detail, "You don't have permission to do this.")
		se.Fields = fields
	case http.StatusBadRequest:
		se.Message = firstNonEmpty(detail, "Validation Error")
		se.Fields = fields
	case http.StatusInternalServerError:
		se.Message = "Server Error"
	default:
		message, _ := data["message"].(string)
		se.Message = firstNonEmpty(detail, message, "An error occurred")
	}
	return se
}

func fieldErrors(status int, data map[string]any) map[string]string {
	if nested, ok := data["errors"].(map[string]any); ok {
		out := make(map[string]string, len(nested))
		for k, v := range nested {
			if msg := firstMessage(v); msg != "" {
				out[k] = msg
			}
		}
		return out
	}
	if status != http.StatusBadRequest || data == nil {
		return nil
	}
	out := map[string]string{}
	for k, v := range data {
		if k == "detail" {
			continue
		}
		if msg := firstMessage(v); msg != "" {
			out[k] = msg
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstMessage(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		if len(val) > 0 {
			return fmt.Sprint(val[0])
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
