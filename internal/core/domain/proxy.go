package domain

import (
	"encoding/json"
	"time"
)

// ProxyCall is a validated outbound call, ready for dispatch.
type ProxyCall struct {
	URL     string
	Method  string
	Headers map[string]string
	Auth    Auth
	Body    json.RawMessage
}

// ProxyResult is what the remote server answered, whatever its status code.
type ProxyResult struct {
	StatusCode int
	StatusText string
	Headers    map[string]string
	// ContentType is the declared media type, or a sniffed one when the header is absent.
	ContentType string
	// Data holds the decoded body as JSON, a JSON string, or a base64 JSON string.
	Data         json.RawMessage
	DataEncoding string
	Size         int64
	Truncated    bool
	Duration     time.Duration
	Timestamp    time.Time
	ExecutionID  string
}
