package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apiforge/apiforge-server/internal/api/metrics"
	"github.com/apiforge/apiforge-server/internal/core/domain"
	"github.com/apiforge/apiforge-server/internal/core/ports"
)

// rawTransport keeps Content-Encoding handling in the service under test.
func rawClient() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableCompression: true}}
}

func newProxy(opts ProxyOptions) *ProxyService {
	return NewProxyService(rawClient(), opts, zerolog.Nop())
}

type captured struct {
	method  string
	headers http.Header
	body    []byte
	host    string
}

func echoServer(t *testing.T, got *captured, status int, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.headers = r.Header.Clone()
		got.host = r.Host
		got.body, _ = io.ReadAll(r.Body)
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPrepare_ValidationOrder(t *testing.T) {
	cases := []struct {
		name string
		in   ports.ExecuteInput
		msg  string
	}{
		{"blank url wins", ports.ExecuteInput{URL: " ", Method: "FETCH"}, "URL is required"},
		{"bad url before method", ports.ExecuteInput{URL: "not a url", Method: ""}, "Invalid URL format"},
		{"relative url", ports.ExecuteInput{URL: "/users", Method: "GET"}, "Invalid URL format"},
		{"ftp scheme", ports.ExecuteInput{URL: "ftp://example.com", Method: "GET"}, "Invalid URL format"},
		{"blank method", ports.ExecuteInput{URL: "https://example.com", Method: " "}, "Method is required"},
		{"unknown method", ports.ExecuteInput{URL: "https://example.com", Method: "FETCH"}, "Invalid HTTP method. Must be one of: GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS"},
		{"bad header", ports.ExecuteInput{URL: "https://example.com", Method: "GET", Headers: map[string]string{"Bad Header": "x"}}, `Invalid header: "Bad Header"`},
		{"unknown auth", ports.ExecuteInput{URL: "https://example.com", Method: "GET", Auth: &domain.AuthSpec{Type: "digest"}}, "Invalid auth type. Must be: bearer, api_key, or basic"},
		{"empty bearer", ports.ExecuteInput{URL: "https://example.com", Method: "GET", Auth: &domain.AuthSpec{Type: domain.AuthBearer}}, "Bearer token is required for bearer auth"},
		{"partial api key", ports.ExecuteInput{URL: "https://example.com", Method: "GET", Auth: &domain.AuthSpec{Type: domain.AuthAPIKey, Key: "X-Key"}}, "API key name and value are required for API key auth"},
		{"partial basic", ports.ExecuteInput{URL: "https://example.com", Method: "GET", Auth: &domain.AuthSpec{Type: domain.AuthBasic, Password: "p"}}, "Username and password are required for basic auth"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Prepare(tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestPrepare_NormalizesMethodAndDropsBody(t *testing.T) {
	call, err := Prepare(ports.ExecuteInput{URL: "https://example.com", Method: "get", Body: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)
	assert.Equal(t, "GET", call.Method)
	assert.Nil(t, call.Body)

	call, err = Prepare(ports.ExecuteInput{URL: "https://example.com", Method: "patch", Body: json.RawMessage(`{"a":1}`)})
	require.NoError(t, err)
	assert.Equal(t, "PATCH", call.Method)
	assert.JSONEq(t, `{"a":1}`, string(call.Body))
}

func TestExecute_GetDropsBody(t *testing.T) {
	var got captured
	srv := echoServer(t, &got, http.StatusOK, "application/json", `{"ok":true}`)

	res, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{
		URL:    srv.URL + "/items",
		Method: "GET",
		Body:   json.RawMessage(`{"ignored":true}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Empty(t, got.body)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "OK", res.StatusText)
	assert.JSONEq(t, `{"ok":true}`, string(res.Data))
	assert.Equal(t, "application/json", res.ContentType)
	assert.Equal(t, int64(len(`{"ok":true}`)), res.Size)
	assert.NotEmpty(t, res.ExecutionID)
	assert.False(t, res.Timestamp.IsZero())
}

func TestExecute_PostForwardsJSONBody(t *testing.T) {
	var got captured
	srv := echoServer(t, &got, http.StatusCreated, "application/json", `{"id":7}`)

	res, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{
		URL:     srv.URL,
		Method:  "post",
		Headers: map[string]string{"X-Trace": "abc"},
		Body:    json.RawMessage(`{"name":"widget"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, got.method)
	assert.JSONEq(t, `{"name":"widget"}`, string(got.body))
	assert.Equal(t, "application/json", got.headers.Get("Content-Type"))
	assert.Equal(t, "abc", got.headers.Get("X-Trace"))
	assert.Equal(t, 201, res.StatusCode)
}

func TestExecute_StringBodySentVerbatim(t *testing.T) {
	var got captured
	srv := echoServer(t, &got, http.StatusOK, "", "")

	_, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{
		URL:    srv.URL,
		Method: "PUT",
		Body:   json.RawMessage(`"plain text"`),
	})
	require.NoError(t, err)
	assert.Equal(t, "plain text", string(got.body))
	assert.Equal(t, "text/plain; charset=utf-8", got.headers.Get("Content-Type"))
}

func TestExecute_AuthInjection(t *testing.T) {
	cases := []struct {
		name   string
		auth   domain.AuthSpec
		header string
		want   string
	}{
		{"bearer", domain.AuthSpec{Type: domain.AuthBearer, Token: "tok"}, "Authorization", "Bearer tok"},
		{"basic", domain.AuthSpec{Type: domain.AuthBasic, Username: "u", Password: "p"}, "Authorization", "Basic " + base64.StdEncoding.EncodeToString([]byte("u:p"))},
		{"api key overrides caller header", domain.AuthSpec{Type: domain.AuthAPIKey, Key: "X-Api-Key", Value: "secret"}, "X-Api-Key", "secret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got captured
			srv := echoServer(t, &got, http.StatusOK, "", "")
			auth := tc.auth

			_, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{
				URL:     srv.URL,
				Method:  "GET",
				Headers: map[string]string{"X-Api-Key": "from-caller", "Authorization": "from-caller"},
				Auth:    &auth,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.headers.Get(tc.header))
			assert.Len(t, got.headers.Values(tc.header), 1)
		})
	}
}

func TestExecute_HostHeaderOverridesHost(t *testing.T) {
	var got captured
	srv := echoServer(t, &got, http.StatusOK, "", "")

	_, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{
		URL:     srv.URL,
		Method:  "GET",
		Headers: map[string]string{"Host": "virtual.example"},
	})
	require.NoError(t, err)
	assert.Equal(t, "virtual.example", got.host)
}

func TestExecute_RemoteErrorStatusIsSuccess(t *testing.T) {
	var got captured
	srv := echoServer(t, &got, http.StatusNotFound, "text/plain", "no such thing")

	res, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{URL: srv.URL, Method: "DELETE"})
	require.NoError(t, err)
	assert.Equal(t, 404, res.StatusCode)
	assert.Equal(t, "Not Found", res.StatusText)
	assert.Equal(t, `"no such thing"`, string(res.Data))
	assert.Empty(t, res.DataEncoding)
}

func TestExecute_HeadersFlattened(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	res, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{URL: srv.URL, Method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, "a, b", res.Headers["x-multi"])
	assert.Equal(t, `""`, string(res.Data))
	assert.Equal(t, int64(0), res.Size)
}

func TestExecute_BinaryBodyIsBase64(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0xff, 0xfe}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	res, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{URL: srv.URL, Method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, "base64", res.DataEncoding)

	var encoded string
	require.NoError(t, json.Unmarshal(res.Data, &encoded))
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestExecute_DecodesCompressedBodies(t *testing.T) {
	const body = `{"compressed":true}`

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write([]byte(body))
	require.NoError(t, gw.Close())

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, _ = bw.Write([]byte(body))
	require.NoError(t, bw.Close())

	for encoding, payload := range map[string][]byte{"gzip": gz.Bytes(), "br": br.Bytes()} {
		t.Run(encoding, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Content-Encoding", encoding)
				_, _ = w.Write(payload)
			}))
			defer srv.Close()

			res, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{URL: srv.URL, Method: "GET"})
			require.NoError(t, err)
			assert.JSONEq(t, body, string(res.Data))
			assert.Equal(t, int64(len(body)), res.Size)
			assert.NotContains(t, res.Headers, "content-encoding")
			assert.NotContains(t, res.Headers, "content-length")
			assert.Equal(t, "application/json", res.Headers["content-type"])
		})
	}
}

func TestExecute_TruncatesLargeBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, strings.Repeat("x", 100))
	}))
	defer srv.Close()

	res, err := newProxy(ProxyOptions{MaxResponseBytes: 10}).Execute(context.Background(), ports.ExecuteInput{URL: srv.URL, Method: "GET"})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, int64(10), res.Size)
	assert.Equal(t, `"xxxxxxxxxx"`, string(res.Data))
}

func TestExecute_ConnectionRefused(t *testing.T) {
	before := durationSamples(t, "unreachable")

	_, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{URL: "http://127.0.0.1:1", Method: "GET"})
	require.Error(t, err)

	var netErr *domain.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, CodeConnRefused, netErr.Code)
	assert.Equal(t, before+1, durationSamples(t, "unreachable"))
}

func TestExecute_UncompressedHeadersKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "plain")
	}))
	defer srv.Close()

	res, err := newProxy(ProxyOptions{}).Execute(context.Background(), ports.ExecuteInput{URL: srv.URL, Method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, "5", res.Headers["content-length"])
}

func durationSamples(t *testing.T, outcome string) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.ProxyDuration.WithLabelValues(outcome).(prometheus.Metric).Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestExecute_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newProxy(ProxyOptions{Timeout: 50 * time.Millisecond}).Execute(context.Background(), ports.ExecuteInput{URL: srv.URL, Method: "GET"})
	var netErr *domain.NetworkError
	require.True(t, errors.As(err, &netErr), "expected network error, got %v", err)
	assert.Equal(t, CodeTimeout, netErr.Code)
}

func TestExecute_CallerCancellationDoesNotAbort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = io.WriteString(w, "done")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newProxy(ProxyOptions{}).Execute(ctx, ports.ExecuteInput{URL: srv.URL, Method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, `"done"`, string(res.Data))
}

func TestClassifyNetworkError(t *testing.T) {
	assert.Equal(t, CodeTimeout, classifyNetworkError(context.DeadlineExceeded))
	assert.Equal(t, CodeConnReset, classifyNetworkError(io.ErrUnexpectedEOF))
	assert.Equal(t, CodeNetwork, classifyNetworkError(errors.New("boom")))
}
