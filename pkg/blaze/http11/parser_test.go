package http11

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

// fakeRequestPool is a trivial RequestPool that always allocates, for tests
// that do not care about pooling semantics (those live in pkg/blaze/pool).
type fakeRequestPool struct {
	acquired int
	released int
}

func (p *fakeRequestPool) Acquire() *Request {
	p.acquired++
	return NewRequest()
}

func (p *fakeRequestPool) Release(*Request) {
	p.released++
}

func defaultOpts() ParseOptions {
	return ParseOptions{
		RemoteAddr:         "203.0.113.1",
		RemotePort:         54321,
		LocalPort:          8080,
		MaxHeaderCount:     100,
		MaxRequestBodySize: 10 << 20,
	}
}

func TestParseSimpleGET(t *testing.T) {
	data := []byte("GET /hello HTTP/1.1\r\nHost: example.com\r\n\r\n")
	p := NewParser()
	pool := &fakeRequestPool{}

	req, keepAlive, consumed, result := p.Parse(data, 0, pool, defaultOpts())
	if result != Success {
		t.Fatalf("result = %v, want Success", result)
	}
	if req.Method != MethodGET {
		t.Errorf("Method = %v, want GET", req.Method)
	}
	if req.Path != "/hello" {
		t.Errorf("Path = %q, want %q", req.Path, "/hello")
	}
	if !keepAlive {
		t.Error("keepAlive = false, want true (default)")
	}
	if consumed != len(data) {
		t.Errorf("consumed = %d, want %d", consumed, len(data))
	}
	if req.Header.Get("Host") != "example.com" {
		t.Errorf("Host header = %q, want %q", req.Header.Get("Host"), "example.com")
	}
}

func TestParseQueryString(t *testing.T) {
	data := []byte("GET /search?q=foo&limit=10 HTTP/1.1\r\n\r\n")
	p := NewParser()
	req, _, _, result := p.Parse(data, 0, &fakeRequestPool{}, defaultOpts())
	if result != Success {
		t.Fatalf("result = %v, want Success", result)
	}
	if req.Path != "/search" {
		t.Errorf("Path = %q, want %q", req.Path, "/search")
	}
	if req.Query != "q=foo&limit=10" {
		t.Errorf("Query = %q, want %q", req.Query, "q=foo&limit=10")
	}
}

func TestParseAllMethods(t *testing.T) {
	methods := []Method{MethodGET, MethodPOST, MethodPUT, MethodDELETE, MethodHEAD, MethodPATCH, MethodOPTIONS}
	for _, m := range methods {
		t.Run(m.String(), func(t *testing.T) {
			data := []byte(m.String() + " / HTTP/1.1\r\n\r\n")
			req, _, _, result := NewParser().Parse(data, 0, &fakeRequestPool{}, defaultOpts())
			if result != Success {
				t.Fatalf("result = %v, want Success", result)
			}
			if req.Method != m {
				t.Errorf("Method = %v, want %v", req.Method, m)
			}
		})
	}
}

func TestParseWithBody(t *testing.T) {
	body := "field=value"
	data := []byte("POST /submit HTTP/1.1\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body)
	req, _, consumed, result := NewParser().Parse(data, 0, &fakeRequestPool{}, defaultOpts())
	if result != Success {
		t.Fatalf("result = %v, want Success", result)
	}
	if string(req.Body) != body {
		t.Errorf("Body = %q, want %q", req.Body, body)
	}
	if req.ContentLength != int64(len(body)) {
		t.Errorf("ContentLength = %d, want %d", req.ContentLength, len(body))
	}
	if consumed != len(data) {
		t.Errorf("consumed = %d, want %d", consumed, len(data))
	}
}

func TestParseIncompleteThenSuccess(t *testing.T) {
	full := []byte("GET /a HTTP/1.1\r\nHost: x\r\n\r\n")
	pool := &fakeRequestPool{}

	for split := 1; split < len(full); split++ {
		_, _, _, result := NewParser().Parse(full[:split], 0, pool, defaultOpts())
		if result != Incomplete {
			t.Errorf("split at %d/%d: result = %v, want Incomplete", split, len(full), result)
		}
	}

	req, keepAlive, consumed, result := NewParser().Parse(full, 0, pool, defaultOpts())
	if result != Success {
		t.Fatalf("whole-input parse result = %v, want Success", result)
	}
	if consumed != len(full) {
		t.Errorf("consumed = %d, want %d", consumed, len(full))
	}
	if !keepAlive {
		t.Error("keepAlive = false, want true")
	}
	if req.Path != "/a" {
		t.Errorf("Path = %q, want %q", req.Path, "/a")
	}
}

func TestParseConnectionClose(t *testing.T) {
	data := []byte("GET / HTTP/1.1\r\nConnection: close\r\n\r\n")
	_, keepAlive, _, result := NewParser().Parse(data, 0, &fakeRequestPool{}, defaultOpts())
	if result != Success {
		t.Fatalf("result = %v, want Success", result)
	}
	if keepAlive {
		t.Error("keepAlive = true, want false after Connection: close")
	}
}

func TestParseUnsupportedVersion(t *testing.T) {
	data := []byte("GET / HTTP/1.0\r\n\r\n")
	_, _, _, result := NewParser().Parse(data, 0, &fakeRequestPool{}, defaultOpts())
	if result != UnsupportedHttpVersion {
		t.Errorf("result = %v, want UnsupportedHttpVersion", result)
	}
}

func TestParseInvalidRequestLine(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing version", "GET /\r\n\r\n"},
		{"extra space in version", "GET / HTTP/1.1 extra\r\n\r\n"},
		{"no method", " / HTTP/1.1\r\n\r\n"},
		{"empty path", "GET  HTTP/1.1\r\n\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, result := NewParser().Parse([]byte(tt.line), 0, &fakeRequestPool{}, defaultOpts())
			if result != InvalidRequest && result != UnsupportedHttpVersion {
				t.Errorf("result = %v, want InvalidRequest or UnsupportedHttpVersion", result)
			}
		})
	}
}

func TestParseMalformedContentLength(t *testing.T) {
	tests := []string{
		"GET / HTTP/1.1\r\nContent-Length: abc\r\n\r\n",
		"GET / HTTP/1.1\r\nContent-Length: -5\r\n\r\n",
	}
	for _, data := range tests {
		_, _, _, result := NewParser().Parse([]byte(data), 0, &fakeRequestPool{}, defaultOpts())
		if result != InvalidRequest {
			t.Errorf("Parse(%q) result = %v, want InvalidRequest", data, result)
		}
	}
}

func TestParseTooManyHeaders(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("GET / HTTP/1.1\r\n")
	for i := 0; i < 5; i++ {
		b.WriteString("X-Header: v\r\n")
	}
	b.WriteString("\r\n")

	opts := defaultOpts()
	opts.MaxHeaderCount = 3
	_, _, _, result := NewParser().Parse(b.Bytes(), 0, &fakeRequestPool{}, opts)
	if result != TooManyHeaders {
		t.Errorf("result = %v, want TooManyHeaders", result)
	}
}

func TestParseRequestBodyTooLarge(t *testing.T) {
	data := []byte("POST / HTTP/1.1\r\nContent-Length: 1000\r\n\r\n" + strings.Repeat("x", 1000))
	opts := defaultOpts()
	opts.MaxRequestBodySize = 10
	_, _, _, result := NewParser().Parse(data, 0, &fakeRequestPool{}, opts)
	if result != RequestBodyTooLarge {
		t.Errorf("result = %v, want RequestBodyTooLarge", result)
	}
}

func TestParseRequestLineTooLong(t *testing.T) {
	data := []byte("GET /" + strings.Repeat("a", MaxLineSize+10) + " HTTP/1.1\r\n\r\n")
	_, _, _, result := NewParser().Parse(data, 0, &fakeRequestPool{}, defaultOpts())
	if result != RequestLineTooLong {
		t.Errorf("result = %v, want RequestLineTooLong", result)
	}
}

func TestParseSkipsHeaderLineWithoutColon(t *testing.T) {
	data := []byte("GET / HTTP/1.1\r\nNotAHeaderLine\r\nHost: example.com\r\n\r\n")
	req, _, _, result := NewParser().Parse(data, 0, &fakeRequestPool{}, defaultOpts())
	if result != Success {
		t.Fatalf("result = %v, want Success", result)
	}
	if req.Header.Len() != 1 {
		t.Errorf("Header.Len() = %d, want 1 (malformed line skipped)", req.Header.Len())
	}
}

func TestParseAcquiresPoolOnlyOnSuccess(t *testing.T) {
	pool := &fakeRequestPool{}
	NewParser().Parse([]byte("GET / HTTP/1.0\r\n\r\n"), 0, pool, defaultOpts())
	if pool.acquired != 0 {
		t.Errorf("acquired = %d on a fatal result, want 0", pool.acquired)
	}

	NewParser().Parse([]byte("GET / HTTP/1.1\r\n\r\n"), 0, pool, defaultOpts())
	if pool.acquired != 1 {
		t.Errorf("acquired = %d after a Success parse, want 1", pool.acquired)
	}
}
