package api

import (
	"fmt"
	"net/http"
	"strings"
)

// TransportError means no response arrived at all. CertRelated marks
// failures whose underlying text points at TLS/certificate trouble,
// which in practice is usually a wrong system clock.
type TransportError struct {
	Err         error
	CertRelated bool
}

func (e *TransportError) Error() string {
	if e.CertRelated {
		return "certificate verification failed; check the system date and time"
	}
	return fmt.Sprintf("cannot reach the server: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func certRelated(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "certificate") ||
		strings.Contains(s, "x509") ||
		strings.Contains(s, "tls")
}

// StatusError is a non-2xx response. Message is the best human-readable
// text that could be dug out of the body; Body keeps whatever was parsed
// for callers that want more.
type StatusError struct {
	Status  int
	Message string
	Body    any
}

func (e *StatusError) Error() string { return e.Message }

// extractMessage digs an error text out of a parsed response body.
// Services behind this API have answered with a bare string, an "error"
// field (string or {message}), a "message" field, an "errors" array, or
// nothing useful at all; each is tried in that order.
func extractMessage(body any, status int) string {
	fallback := fmt.Sprintf("API error: %d %s", status, http.StatusText(status))

	switch b := body.(type) {
	case string:
		if b != "" {
			return b
		}
	case map[string]any:
		switch e := b["error"].(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if m, ok := e["message"].(string); ok && m != "" {
				return m
			}
		}
		if m, ok := b["message"].(string); ok && m != "" {
			return m
		}
		if arr, ok := b["errors"].([]any); ok {
			if joined := joinErrors(arr); joined != "" {
				return joined
			}
		}
		// Last resort: any string-valued field.
		for _, v := range b {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}

func joinErrors(arr []any) string {
	parts := make([]string, 0, len(arr))
	for _, e := range arr {
		switch t := e.(type) {
		case string:
			parts = append(parts, t)
		case map[string]any:
			if m, ok := t["message"].(string); ok && m != "" {
				parts = append(parts, m)
			} else if f, ok := t["field"].(string); ok && f != "" {
				parts = append(parts, f)
			}
		}
	}
	return strings.Join(parts, "; ")
}
