package http11

// Request is the pooled, reusable value a Parser populates exactly once per
// parse and that the engine resets to parser-default values when it is
// returned to its pool. Grounded on
// shockwave/pkg/shockwave/http11/request.go's field set, adapted to store
// decoded strings (per §3) rather than zero-copy byte-slice views into a
// parser buffer, since this engine copies the consumed prefix into an owned
// buffer before returning Success anyway (§4.1, "the body is copied into a
// fresh owned buffer").
type Request struct {
	Method      Method
	LocalPort   int
	Path        string
	Query       string
	ProtoMajor  int
	ProtoMinor  int
	Header      Header
	ContentLength int64
	ContentType string
	Secure      bool
	RemoteAddr  string
	RemotePort  int
	KeepAlive   bool
	Body        []byte
}

// Reset returns r to parser-default values: GET, "/", empty query,
// keep-alive=true, zero content length, empty content type, non-secure, no
// remote address, HTTP/1.1, no headers, no body. Header and body storage are
// cleared (not merely length-truncated to zero silently dropped) so that
// sensitive header values or body bytes from a prior occupant of the pool
// slot cannot leak to the next request through a missed Reset call.
func (r *Request) Reset() {
	r.Method = MethodGET
	r.LocalPort = 0
	r.Path = "/"
	r.Query = ""
	r.ProtoMajor = 1
	r.ProtoMinor = 1
	r.Header.Reset()
	r.ContentLength = 0
	r.ContentType = ""
	r.Secure = false
	r.RemoteAddr = ""
	r.RemotePort = 0
	r.KeepAlive = true
	r.Body = nil
}

// NewRequest allocates a Request already in its default state; used when a
// pool must allocate on empty (§5, "Acquire must always succeed").
func NewRequest() *Request {
	r := &Request{}
	r.Reset()
	return r
}
