package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// APIRequest is a saved, reusable description of one HTTP call.
type APIRequest struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	URL          string            `json:"url"`
	Method       string            `json:"method"`
	Headers      map[string]string `json:"headers,omitempty"`
	Auth         *AuthSpec         `json:"authentication,omitempty"`
	Body         json.RawMessage   `json:"body,omitempty"`
	CollectionID string            `json:"collectionId"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// AllowedMethods lists the HTTP methods the proxy will dispatch, in display order.
var AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// NormalizeMethod upper-cases m and reports whether it is an allowed method.
func NormalizeMethod(m string) (string, bool) {
	norm := strings.ToUpper(strings.TrimSpace(m))
	for _, allowed := range AllowedMethods {
		if norm == allowed {
			return norm, true
		}
	}
	return norm, false
}

// MethodAllowsBody reports whether a request body is forwarded for method.
func MethodAllowsBody(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH":
		return true
	default:
		return false
	}
}

// HasBody reports whether raw carries a JSON value other than null.
func HasBody(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
