package http11

import (
	"bufio"
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"
)

// flushThreshold bounds how much unflushed egress the writer may buffer
// before issuing an intermediate Flush, per §4.5.
const flushThreshold = 64 * 1024

// streamCopyPool supplies the writer's scratch buffer for copying a body
// stream in chunks. Grounded on shockwave/go.mod's direct dependency on
// bytebufferpool (DS-3): the teacher's own http11 package hand-rolls a
// sync.Pool of []byte for this exact purpose
// (shockwave/pkg/shockwave/http11/pool.go's tmpBufPool); this engine instead
// exercises the dependency the teacher already declared but never imported
// from this package.
var streamCopyPool bytebufferpool.Pool

// WriteResponse serialises resp to w exactly once, per §4.5's framing
// rules, and returns the effective keep-alive (which the writer may force
// to false when the body source cannot be framed with a known
// Content-Length) along with the number of body bytes written, for the
// metrics sink (§4.6). The handler has already returned by the time this is
// called, so there is nothing here that can block on application code.
func WriteResponse(w *bufio.Writer, resp *Response, keepAlive bool) (effectiveKeepAlive bool, bodyBytesWritten int64, err error) {
	effectiveKeepAlive = keepAlive

	if resp.Status < 100 || resp.Status > 599 {
		return effectiveKeepAlive, 0, ErrInvalidStatusCode
	}

	var contentLength int64
	haveContentLength := true
	var stream BodyStream
	if resp.Stream != nil {
		stream = resp.Stream
		if length, seekable := seekableLength(stream); seekable {
			contentLength = length
		} else {
			haveContentLength = false
			effectiveKeepAlive = false
		}
	} else {
		contentLength = int64(len(resp.Body))
	}

	reason := resp.Reason
	if reason == "" {
		reason = statusText(resp.Status)
	}
	if _, err = fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", resp.Status, reason); err != nil {
		return effectiveKeepAlive, 0, err
	}

	if haveContentLength {
		if _, err = fmt.Fprintf(w, "Content-Length: %d\r\n", contentLength); err != nil {
			return effectiveKeepAlive, 0, err
		}
	}
	connValue := "close"
	if effectiveKeepAlive {
		connValue = "keep-alive"
	}
	if _, err = fmt.Fprintf(w, "Connection: %s\r\n", connValue); err != nil {
		return effectiveKeepAlive, 0, err
	}

	var writeErr error
	resp.Header.VisitAll(func(name, value string) {
		if writeErr != nil {
			return
		}
		if equalFold(name, "Content-Length") || equalFold(name, "Connection") {
			return
		}
		if _, writeErr = fmt.Fprintf(w, "%s: %s\r\n", name, value); writeErr != nil {
			return
		}
	})
	if writeErr != nil {
		return effectiveKeepAlive, 0, writeErr
	}

	if _, err = w.Write(crlf); err != nil {
		return effectiveKeepAlive, 0, err
	}

	if stream != nil {
		bodyBytesWritten, err = copyStream(w, stream)
		if err != nil {
			return effectiveKeepAlive, bodyBytesWritten, err
		}
	} else if len(resp.Body) > 0 {
		n, werr := w.Write(resp.Body)
		bodyBytesWritten = int64(n)
		if werr != nil {
			return effectiveKeepAlive, bodyBytesWritten, werr
		}
	}

	if err = w.Flush(); err != nil {
		return effectiveKeepAlive, bodyBytesWritten, err
	}
	return effectiveKeepAlive, bodyBytesWritten, nil
}

// copyStream copies src into w using a pooled ~8KiB buffer, flushing w
// whenever unflushed egress reaches flushThreshold so a large stream body
// cannot buffer unboundedly in memory before hitting the wire (§4.5).
func copyStream(w *bufio.Writer, src io.Reader) (written int64, err error) {
	buf := streamCopyPool.Get()
	defer streamCopyPool.Put(buf)
	buf.B = growBuffer(buf.B, 8192)

	var unflushed int
	for {
		n, rerr := src.Read(buf.B)
		if n > 0 {
			wn, werr := w.Write(buf.B[:n])
			written += int64(wn)
			unflushed += wn
			if werr != nil {
				return written, werr
			}
			if unflushed >= flushThreshold {
				if ferr := w.Flush(); ferr != nil {
					return written, ferr
				}
				unflushed = 0
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

func growBuffer(b []byte, n int) []byte {
	if cap(b) >= n {
		return b[:n]
	}
	return make([]byte, n)
}
