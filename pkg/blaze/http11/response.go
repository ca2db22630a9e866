package http11

import "io"

// BodyStream is a lazy, finite source of response bytes (§3). A stream that
// additionally implements io.Seeker is treated as seekable: the writer
// derives its remaining length from Seek(0, io.SeekEnd) and
// Seek(0, io.SeekCurrent) without reading it. A stream that does not
// implement io.Seeker is non-seekable: its length is unknowable in advance,
// so the writer omits Content-Length and forces the connection to close
// (§4.5). This two-case split has no direct analogue in the teacher, whose
// ResponseWriter has no stream-body concept at all (see DESIGN.md).
type BodyStream interface {
	io.Reader
}

// Response is the pooled, reusable value a handler mutates before the
// response writer serialises it. Default status is 404 (not 200, unlike the
// teacher's live shockwave ResponseWriter) because this Response starts life
// as a pool-issued value before any handler or router has touched it: if
// nothing sets it, the router's own miss path (§4.4) already wants 404, so
// the uninitialised default simply agrees with the common case instead of
// requiring the router to set a field it would usually rely on remaining at
// the default.
type Response struct {
	Status int
	Reason string
	Header Header
	Body   []byte
	Stream BodyStream
}

// Reset returns resp to its pool-return defaults: status 404, reason empty,
// headers cleared, body cleared, stream cleared.
func (resp *Response) Reset() {
	resp.Status = 404
	resp.Reason = ""
	resp.Header.Reset()
	resp.Body = nil
	resp.Stream = nil
}

// NewResponse allocates a Response already in its default state.
func NewResponse() *Response {
	r := &Response{}
	r.Reset()
	return r
}

// seekableLength returns the remaining byte count of a seekable stream
// without consuming it, or ok=false if s does not implement io.Seeker.
func seekableLength(s BodyStream) (length int64, ok bool) {
	seeker, isSeeker := s.(io.Seeker)
	if !isSeeker {
		return 0, false
	}
	pos, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, false
	}
	if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
		return 0, false
	}
	return end - pos, true
}
