package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpguts"

	"github.com/apiforge/apiforge-server/internal/api/metrics"
	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

const (
	DefaultProxyTimeout     = 30 * time.Second
	DefaultMaxResponseBytes = 10 << 20
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProxyOptions tunes the executor. Zero values fall back to defaults.
type ProxyOptions struct {
	Timeout          time.Duration
	MaxResponseBytes int64
}

// ProxyService dispatches user-described HTTP calls and normalizes the outcome.
type ProxyService struct {
	client   Doer
	timeout  time.Duration
	maxBytes int64
	log      zerolog.Logger
	now      func() time.Time
}

func NewProxyService(client Doer, opts ProxyOptions, log zerolog.Logger) *ProxyService {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProxyTimeout
	}
	if opts.MaxResponseBytes <= 0 {
		opts.MaxResponseBytes = DefaultMaxResponseBytes
	}
	return &ProxyService{
		client:   client,
		timeout:  opts.Timeout,
		maxBytes: opts.MaxResponseBytes,
		log:      log,
		now:      time.Now,
	}
}

// Execute validates in, performs the call and returns the remote answer verbatim.
func (s *ProxyService) Execute(ctx context.Context, in ports.ExecuteInput) (*domain.ProxyResult, error) {
	call, err := Prepare(in)
	if err != nil {
		metrics.ProxyExecutionsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	start := s.now()
	res, err := s.dispatch(ctx, call)
	outcome := "responded"
	switch {
	case err == nil:
		metrics.ProxyResponseBytes.Observe(float64(res.Size))
	case errors.As(err, new(*domain.NetworkError)):
		outcome = "unreachable"
	default:
		outcome = "error"
	}
	metrics.ProxyExecutionsTotal.WithLabelValues(outcome).Inc()
	metrics.ProxyDuration.WithLabelValues(outcome).Observe(s.now().Sub(start).Seconds())
	return res, err
}

// Prepare runs the ordered validation of an execute request. No I/O happens here.
func Prepare(in ports.ExecuteInput) (*domain.ProxyCall, error) {
	rawURL := strings.TrimSpace(in.URL)
	if rawURL == "" {
		return nil, domain.Invalid("URL is required")
	}
	if !validTargetURL(rawURL) {
		return nil, domain.Invalid("Invalid URL format")
	}

	if strings.TrimSpace(in.Method) == "" {
		return nil, domain.Invalid("Method is required")
	}
	method, ok := domain.NormalizeMethod(in.Method)
	if !ok {
		return nil, domain.Invalid("Invalid HTTP method. Must be one of: %s", strings.Join(domain.AllowedMethods, ", "))
	}

	for name, value := range in.Headers {
		if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
			return nil, domain.Invalid("Invalid header: %q", name)
		}
	}

	call := &domain.ProxyCall{URL: rawURL, Method: method, Headers: in.Headers}

	if in.Auth != nil {
		auth, err := in.Auth.Resolve()
		if err != nil {
			return nil, err
		}
		if key, ok := auth.(domain.APIKeyAuth); ok && !httpguts.ValidHeaderFieldName(key.Key) {
			return nil, domain.Invalid("Invalid API key header name: %q", key.Key)
		}
		call.Auth = auth
	}

	if domain.MethodAllowsBody(method) && domain.HasBody(in.Body) {
		call.Body = in.Body
	}
	return call, nil
}

func validTargetURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func (s *ProxyService) dispatch(ctx context.Context, call *domain.ProxyCall) (*domain.ProxyResult, error) {
	// A client hanging up does not abort a dispatched call; only the timeout does.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	req, err := s.buildRequest(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("build outbound request: %w", err)
	}

	executionID := ulid.Make().String()
	start := s.now()
	resp, err := s.client.Do(req)
	if err != nil {
		netErr := &domain.NetworkError{Code: classifyNetworkError(err), Err: err}
		s.log.Warn().Err(err).
			Str("execution_id", executionID).
			Str("method", call.Method).
			Str("host", req.URL.Host).
			Str("code", netErr.Code).
			Msg("proxy target unreachable")
		return nil, netErr
	}
	defer resp.Body.Close()

	body, truncated, decoded, err := readBody(resp, s.maxBytes)
	duration := s.now().Sub(start)
	if err != nil {
		return nil, &domain.NetworkError{Code: classifyNetworkError(err), Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	data, encoding := encodeData(contentType, body)

	headers := flattenHeaders(resp.Header)
	if decoded {
		// The body is reported decoded, so the wire framing no longer applies.
		delete(headers, "content-encoding")
		delete(headers, "content-length")
	}

	s.log.Debug().
		Str("execution_id", executionID).
		Str("method", call.Method).
		Str("host", req.URL.Host).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("proxy call completed")

	return &domain.ProxyResult{
		StatusCode:   resp.StatusCode,
		StatusText:   statusText(resp),
		Headers:      headers,
		ContentType:  detectContentType(contentType, body),
		Data:         data,
		DataEncoding: encoding,
		Size:         int64(len(body)),
		Truncated:    truncated,
		Duration:     duration,
		Timestamp:    s.now().UTC(),
		ExecutionID:  executionID,
	}, nil
}

func (s *ProxyService) buildRequest(ctx context.Context, call *domain.ProxyCall) (*http.Request, error) {
	var body io.Reader
	if call.Body != nil {
		body = bytes.NewReader(outboundBody(call.Body))
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, call.URL, body)
	if err != nil {
		return nil, err
	}

	for name, value := range call.Headers {
		if strings.EqualFold(name, "Host") {
			req.Host = value
			continue
		}
		req.Header.Set(name, value)
	}
	if call.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", outboundContentType(call.Body))
	}

	// Injected credentials win over caller-supplied headers of the same name.
	switch a := call.Auth.(type) {
	case nil:
	case domain.BearerAuth:
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(a.Token))
	case domain.APIKeyAuth:
		req.Header.Set(a.Key, a.Value)
	case domain.BasicAuth:
		req.SetBasicAuth(a.Username, a.Password)
	default:
		return nil, fmt.Errorf("unsupported auth variant %T", a)
	}
	return req, nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	if text = strings.TrimSpace(text); text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// flattenHeaders lower-cases names and joins repeated values.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		out[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return out
}
