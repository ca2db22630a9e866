package http11

import (
	"bytes"
	"strconv"
)

// RequestPool is the subset of the bounded pool contract (§5) the parser
// works with: Parse acquires a Request only on Success and never calls
// Release itself. Acquire must always succeed.
type RequestPool interface {
	Acquire() *Request
	Release(*Request)
}

// ParseOptions carries the per-connection facts the parser cannot infer from
// the byte stream itself (§4.1 contract).
type ParseOptions struct {
	Secure             bool
	RemoteAddr         string
	RemotePort         int
	LocalPort          int
	MaxHeaderCount     int
	MaxRequestBodySize int64
}

// Parser decodes one HTTP/1.1 request per call from a byte sequence view.
// It holds no per-connection state; a single Parser value is safe to reuse
// across requests and across connections serially. Grounded on
// shockwave/pkg/shockwave/http11/parser.go's line/header/body phases,
// adapted: (a) the result is a closed ParseResult enum instead of (*Request,
// error), per §9's tagged-variant note; (b) there is no chunked-body phase,
// since request trailers and chunked request bodies are explicit non-goals;
// (c) the pool handle is acquired from only after every fatal/incomplete
// check has passed, so a non-Success return never leaks a pooled value.
type Parser struct{}

// NewParser returns a ready-to-use Parser. It exists chiefly for symmetry
// with the pooled Request/Response/Context constructors and to leave room
// for future per-parser scratch state without an API break.
func NewParser() *Parser { return &Parser{} }

// Parse attempts to decode one request from data[pos:]. On Success it
// returns the populated request (acquired from pool), the effective
// keep-alive flag, and the offset in data just past the consumed bytes. On
// any other result, data and pos are conceptually unchanged: the caller
// should retain data[pos:] and retry once more bytes are appended (for
// Incomplete) or close the connection (for any fatal code).
func (p *Parser) Parse(data []byte, pos int, pool RequestPool, opts ParseOptions) (req *Request, keepAlive bool, consumed int, result ParseResult) {
	cursor := pos

	line, next, lr := readLine(data, cursor, MaxLineSize)
	switch lr {
	case lineIncomplete:
		return nil, false, pos, Incomplete
	case lineTooLong:
		return nil, false, pos, RequestLineTooLong
	}
	cursor = next

	method, path, query, major, _, ok := parseRequestLine(line)
	if !ok {
		return nil, false, pos, InvalidRequest
	}
	if major == httpUnsupported {
		return nil, false, pos, UnsupportedHttpVersion
	}

	type pendingHeader struct{ name, value string }
	var headers []pendingHeader
	var contentLength int64 = -1
	var contentType string
	keepAliveRequested := true
	headerCount := 0

	for {
		hline, hnext, hlr := readLine(data, cursor, MaxLineSize)
		switch hlr {
		case lineIncomplete:
			return nil, false, pos, Incomplete
		case lineTooLong:
			return nil, false, pos, HeaderLineTooLong
		}
		if len(hline) == 0 {
			cursor = hnext
			break
		}
		cursor = hnext

		colon := bytes.IndexByte(hline, ':')
		if colon <= 0 {
			// No colon, or colon at position 0: silently skipped (§4.1).
			continue
		}
		name := trimASCIISpace(string(hline[:colon]))
		value := trimASCIISpace(string(hline[colon+1:]))

		headerCount++
		if headerCount > opts.MaxHeaderCount {
			return nil, false, pos, TooManyHeaders
		}
		headers = append(headers, pendingHeader{name, value})

		switch {
		case equalFold(name, "Content-Length"):
			if contentLength == -1 {
				v, err := strconv.ParseInt(value, 10, 64)
				if err != nil || v < 0 {
					return nil, false, pos, InvalidRequest
				}
				contentLength = v
			}
		case equalFold(name, "Content-Type"):
			if contentType == "" {
				contentType = value
			}
		case equalFold(name, "Connection"):
			if equalFold(value, "close") {
				keepAliveRequested = false
			}
		}
	}

	if contentLength < 0 {
		contentLength = 0
	}
	if contentLength > opts.MaxRequestBodySize {
		return nil, false, pos, RequestBodyTooLarge
	}

	var body []byte
	if contentLength > 0 {
		if int64(len(data)-cursor) < contentLength {
			return nil, false, pos, Incomplete
		}
		body = make([]byte, contentLength)
		copy(body, data[cursor:cursor+int(contentLength)])
		cursor += int(contentLength)
	}

	req = pool.Acquire()
	req.Method = method
	req.Path = path
	req.Query = query
	req.ProtoMajor = 1
	req.ProtoMinor = 1
	req.LocalPort = opts.LocalPort
	req.Secure = opts.Secure
	req.RemoteAddr = opts.RemoteAddr
	req.RemotePort = opts.RemotePort
	req.ContentLength = contentLength
	req.ContentType = contentType
	req.KeepAlive = keepAliveRequested
	req.Body = body
	for _, h := range headers {
		req.Header.Add(h.name, h.value)
	}

	return req, keepAliveRequested, cursor, Success
}

type lineResult uint8

const (
	lineOK lineResult = iota
	lineIncomplete
	lineTooLong
)

// readLine scans data[pos:] for LF, stripping a trailing CR. It enforces
// limit against the line length even when no LF has arrived yet, so a
// client cannot stall the parser indefinitely by trickling an oversized
// line one byte at a time (§4.1).
func readLine(data []byte, pos int, limit int) (line []byte, next int, result lineResult) {
	available := data[pos:]
	idx := bytes.IndexByte(available, '\n')
	if idx == -1 {
		if len(available) > limit {
			return nil, pos, lineTooLong
		}
		return nil, pos, lineIncomplete
	}
	if idx > limit {
		return nil, pos, lineTooLong
	}
	line = available[:idx]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line, pos + idx + 1, lineOK
}

const httpUnsupported = -1

// parseRequestLine splits "METHOD SP path SP HTTP/1.1" into its three
// tokens. It requires exactly two single-space separators: a third space
// anywhere in the version token, or any space in the method, makes the line
// invalid. The path is split at the first '?' into path and query.
func parseRequestLine(line []byte) (method Method, path, query string, major, minor int, ok bool) {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return MethodUnknown, "", "", 0, 0, false
	}
	rest := line[sp1+1:]
	sp2 := bytes.IndexByte(rest, ' ')
	if sp2 <= 0 {
		return MethodUnknown, "", "", 0, 0, false
	}
	pathBytes := rest[:sp2]
	versionBytes := rest[sp2+1:]
	if bytes.IndexByte(versionBytes, ' ') != -1 {
		return MethodUnknown, "", "", 0, 0, false
	}

	m := ParseMethod(line[:sp1])
	if !m.IsValid() {
		return MethodUnknown, "", "", 0, 0, false
	}

	if !bytes.Equal(versionBytes, []byte("HTTP/1.1")) {
		return m, "", "", httpUnsupported, 0, true
	}

	if qmark := bytes.IndexByte(pathBytes, '?'); qmark != -1 {
		path = string(pathBytes[:qmark])
		query = string(pathBytes[qmark+1:])
	} else {
		path = string(pathBytes)
	}
	if path == "" {
		return MethodUnknown, "", "", 0, 0, false
	}

	return m, path, query, 1, 1, true
}
