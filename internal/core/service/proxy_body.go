package service

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"github.com/gabriel-vasile/mimetype"
)

// readBody reads at most limit decoded bytes and reports whether more were available.
// Bodies the transport did not decompress itself are decoded per Content-Encoding;
// decoded reports whether that happened.
func readBody(resp *http.Response, limit int64) (body []byte, truncated, decoded bool, err error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, false, false, err
	}
	truncated = int64(len(raw)) > limit

	if !resp.Uncompressed {
		if plain, ok := decompress(resp.Header.Get("Content-Encoding"), raw, limit); ok {
			raw = plain
			decoded = true
			truncated = truncated || int64(len(raw)) > limit
		}
	}
	if int64(len(raw)) > limit {
		raw = raw[:limit]
	}
	return raw, truncated, decoded, nil
}

// decompress returns the decoded body, or false when the encoding is unknown or the
// payload is not actually encoded that way.
func decompress(encoding string, raw []byte, limit int64) ([]byte, bool) {
	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, false
		}
		defer gz.Close()
		r = gz
	case "br":
		r = brotli.NewReader(bytes.NewReader(raw))
	case "deflate":
		// Servers disagree on whether deflate means zlib-wrapped or raw.
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer zr.Close()
			r = zr
		} else {
			fr := flate.NewReader(bytes.NewReader(raw))
			defer fr.Close()
			r = fr
		}
	default:
		return nil, false
	}

	decoded, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil && len(decoded) == 0 {
		return nil, false
	}
	return decoded, true
}

// encodeData renders body for the JSON envelope: JSON as-is, text as a string,
// anything else base64 encoded.
func encodeData(contentType string, body []byte) (json.RawMessage, string) {
	if len(body) == 0 {
		return json.RawMessage(`""`), ""
	}
	if trimmed := bytes.TrimSpace(body); json.Valid(trimmed) {
		return json.RawMessage(trimmed), ""
	}
	if isTextual(contentType, body) {
		s, _ := json.Marshal(string(body))
		return s, ""
	}
	s, _ := json.Marshal(base64.StdEncoding.EncodeToString(body))
	return s, "base64"
}

func isTextual(contentType string, body []byte) bool {
	if !utf8.Valid(body) {
		return false
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if strings.HasPrefix(mediaType, "text/") {
			return true
		}
		for _, marker := range []string{"json", "xml", "javascript", "x-www-form-urlencoded"} {
			if strings.Contains(mediaType, marker) {
				return true
			}
		}
	}
	for m := mimetype.Detect(body); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func detectContentType(declared string, body []byte) string {
	if declared != "" {
		return declared
	}
	if len(body) == 0 {
		return ""
	}
	return mimetype.Detect(body).String()
}

// outboundBody unwraps a JSON string so text payloads are sent verbatim.
func outboundBody(raw json.RawMessage) []byte {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []byte(s)
	}
	return raw
}

func outboundContentType(raw json.RawMessage) string {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '"' {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}
