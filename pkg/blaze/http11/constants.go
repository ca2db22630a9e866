package http11

// Size limits enforced by the parser (§4.1).
const (
	// MaxLineSize bounds both the request line and any single header line.
	MaxLineSize = 8192

	// MinReadSegment is the minimum size of a pipe-owned memory segment the
	// ingress filler allocates per read (§4.2).
	MinReadSegment = 4096
)

var crlf = []byte("\r\n")

// statusText returns the canonical reason phrase for well-known codes per
// §4.5, and the literal string "Unknown" for anything else (§6, §9).
func statusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 202:
		return "Accepted"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 413:
		return "Payload Too Large"
	case 500:
		return "Internal Server Error"
	case 502:
		return "Bad Gateway"
	case 503:
		return "Service Unavailable"
	default:
		return "Unknown"
	}
}
