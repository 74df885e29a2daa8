package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

// --- Request → Service input ---

func toCreateRequestInput(b createRequestBody) ports.CreateRequestInput {
	return ports.CreateRequestInput{
		Name:    b.Name,
		URL:     b.URL,
		Method:  b.Method,
		Headers: b.Headers,
		Auth:    b.Authentication,
		Body:    b.Body,
	}
}

// toUpdateRequestInput decodes a merge-patch body. A key that is absent leaves the
// field untouched; a key set to null is reported as an explicit null.
func toUpdateRequestInput(raw []byte) (ports.UpdateRequestInput, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return ports.UpdateRequestInput{}, domain.Invalid("Invalid request body")
	}

	var (
		in  ports.UpdateRequestInput
		err error
	)
	if in.Name, err = patchOf[string](fields, "name"); err != nil {
		return in, err
	}
	if in.URL, err = patchOf[string](fields, "url"); err != nil {
		return in, err
	}
	if in.Method, err = patchOf[string](fields, "method"); err != nil {
		return in, err
	}
	if in.Headers, err = patchOf[map[string]string](fields, "headers"); err != nil {
		return in, err
	}
	if in.Auth, err = patchOf[domain.AuthSpec](fields, "authentication"); err != nil {
		return in, err
	}
	if raw, ok := fields["body"]; ok {
		in.Body.Set = true
		if domain.HasBody(raw) {
			body := json.RawMessage(bytes.Clone(raw))
			in.Body.Value = &body
		}
	}
	return in, nil
}

func patchOf[T any](fields map[string]json.RawMessage, key string) (ports.Patch[T], error) {
	raw, ok := fields[key]
	if !ok {
		return ports.Patch[T]{}, nil
	}
	p := ports.Patch[T]{Set: true}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return p, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return p, domain.Invalid("Invalid value for %s", key)
	}
	p.Value = &v
	return p, nil
}

func toExecuteInput(req executeRequest) ports.ExecuteInput {
	return ports.ExecuteInput{
		URL:     req.URL,
		Method:  req.Method,
		Headers: req.Headers,
		Auth:    req.Auth,
		Body:    req.Body,
	}
}

// --- Domain → Response ---

func toCollectionDetail(c *domain.Collection) collectionDetail {
	requests := c.Requests
	if requests == nil {
		requests = []domain.APIRequest{}
	}
	return collectionDetail{Collection: *c, Requests: requests}
}

func toExecuteResponse(r *domain.ProxyResult) executeResponse {
	headers := r.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return executeResponse{
		Success:      true,
		StatusCode:   r.StatusCode,
		StatusText:   r.StatusText,
		Headers:      headers,
		Data:         r.Data,
		DataEncoding: r.DataEncoding,
		Metadata: executeMetadata{
			Duration:    fmt.Sprintf("%dms", r.Duration.Milliseconds()),
			DurationMs:  r.Duration.Milliseconds(),
			Size:        r.Size,
			SizeHuman:   humanize.Bytes(uint64(r.Size)),
			Truncated:   r.Truncated,
			ContentType: r.ContentType,
			Timestamp:   r.Timestamp.UTC().Format(time.RFC3339),
			ExecutionID: r.ExecutionID,
		},
	}
}
