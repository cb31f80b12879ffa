package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors surfaced to the frontends.
var (
	// ErrUnauthorized means the access token was rejected and a refresh
	// attempt (if one was possible) also failed. The auth controller
	// responds by clearing the session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the request referenced an id the server no longer
	// knows, typically a stale row after a deletion elsewhere.
	ErrNotFound = errors.New("not found")
)

// CredentialsError is returned when a login exchange is rejected. Detail
// carries the server's message verbatim so the UI can display it as-is.
type CredentialsError struct {
	Detail string
}

func (e *CredentialsError) Error() string {
	if e.Detail == "" {
		return "invalid credentials"
	}
	return e.Detail
}

// ValidationError carries field-keyed messages from a rejected write.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return e.Display()
}

// Display aggregates all field messages into one string, fields in sorted
// order so the output is stable.
func (e *ValidationError) Display() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		for _, msg := range e.Fields[name] {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			if name == "detail" || name == "non_field_errors" {
				sb.WriteString(msg)
			} else {
				sb.WriteString(fmt.Sprintf("%s: %s", name, msg))
			}
		}
	}
	return sb.String()
}

// NetworkError wraps a request that never completed (DNS, refused
// connection, timeout). It is distinct from server-side rejections so the
// frontends can offer a manual retry instead of inline form errors.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// decodeErrorBody converts a non-2xx response body into the taxonomy
// above. Bodies are expected to be JSON objects mapping field names to a
// message or list of messages; anything else becomes a generic error.
func decodeErrorBody(status int, body []byte, credentialCall bool) error {
	fields := parseFieldErrors(body)

	switch {
	case status == 401:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status == 400 && credentialCall:
		detail := ""
		if msgs, ok := fields["detail"]; ok && len(msgs) > 0 {
			detail = msgs[0]
		}
		return &CredentialsError{Detail: detail}
	case status == 400 && len(fields) > 0:
		return &ValidationError{Fields: fields}
	}

	if len(fields) > 0 {
		return fmt.Errorf("API error (status %d): %s", status, (&ValidationError{Fields: fields}).Display())
	}
	return fmt.Errorf("API error (status %d): %s", status, strings.TrimSpace(string(body)))
}

// parseFieldErrors normalizes {"field": "msg"} and {"field": ["msg", ...]}
// bodies into a field -> messages map. Returns nil when the body is not a
// JSON object.
func parseFieldErrors(body []byte) map[string][]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil
	}

	fields := make(map[string][]string, len(raw))
	for name, val := range raw {
		var single string
		if err := json.Unmarshal(val, &single); err == nil {
			fields[name] = []string{single}
			continue
		}
		var many []string
		if err := json.Unmarshal(val, &many); err == nil && len(many) > 0 {
			fields[name] = many
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
