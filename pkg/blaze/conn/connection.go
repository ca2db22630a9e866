package conn

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/yourusername/blaze/pkg/blaze/core"
	"github.com/yourusername/blaze/pkg/blaze/http11"
	"github.com/yourusername/blaze/pkg/blaze/logging"
	"github.com/yourusername/blaze/pkg/blaze/metrics"
	"github.com/yourusername/blaze/pkg/blaze/pool"
)

// App is the composed middleware-pipeline-plus-router callable built once
// at server startup (§3, "the built pipeline is a single callable").
type App = core.Handler

// Pools bundles the three bounded pools a Connection draws from (§5).
type Pools struct {
	Requests  *pool.Pool[http11.Request]
	Responses *pool.Pool[http11.Response]
	Contexts  *pool.Pool[core.Context]
}

// Connection binds one accepted duplex stream to the parser, the composed
// app, the pools, and the metrics sink, and runs it to completion (§4.2).
// One Connection instance serves exactly one net.Conn for its lifetime.
type Connection struct {
	Stream     net.Conn
	Secure     bool
	LocalPort  int
	RemoteAddr string
	RemotePort int

	App    App
	Pools  Pools
	Parser *http11.Parser

	Provider core.Provider

	MaxHeaderCount     int
	MaxRequestBodySize int64

	Metrics metrics.Sink
	Logger  logging.Logger
}

// Serve processes zero or more pipelined requests until a protocol fault,
// an effective keep-alive of false, stream EOF, or ctx cancellation, then
// closes cleanly (§4.2). The caller is responsible for closing conn.Stream
// after Serve returns, per §4.2's shutdown contract.
func (c *Connection) Serve(ctx context.Context) error {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipe := NewPipe()

	fillerDone := make(chan struct{})
	go func() {
		defer close(fillerDone)
		_ = runFiller(connCtx, c.Stream, pipe)
	}()

	c.Metrics.ConnectionOpened()
	defer c.Metrics.ConnectionClosed()

	writer := bufio.NewWriterSize(c.Stream, 4096)

	var pending []byte
	var handlerErr error

runloop:
	for {
		select {
		case <-connCtx.Done():
			break runloop
		default:
		}

		req, keepAliveRequested, result, readErr := c.readOneRequest(pipe, &pending)
		if readErr != nil {
			// Clean EOF between requests, or the stream was cancelled: not
			// a fault, just the normal end of this connection (§7).
			break runloop
		}
		if result != http11.Success {
			// Protocol fault: close without writing a response (§7). The
			// implementation does not upgrade InvalidRequest to a written
			// 400 before closing; see DESIGN.md for that open question.
			c.Logger.Printf("protocol fault on %s: %s", c.RemoteAddr, result)
			break runloop
		}

		effectiveKeepAlive, err := c.dispatch(req, keepAliveRequested, writer, connCtx.Done())
		if err != nil {
			handlerErr = err
			break runloop
		}
		if !effectiveKeepAlive {
			break runloop
		}
	}

	pipe.Complete(nil)
	cancel()
	<-fillerDone
	return handlerErr
}

// readOneRequest feeds the parser from pipe until it returns something
// other than Incomplete, accumulating bytes in *pending across calls so a
// partial request at the end of one read is resumed on the next, and so any
// bytes left over after a Success (the start of the next pipelined request)
// are carried forward (§4.1, §8 "splitting the input at every byte
// boundary").
func (c *Connection) readOneRequest(pipe *Pipe, pending *[]byte) (*http11.Request, bool, http11.ParseResult, error) {
	opts := http11.ParseOptions{
		Secure:             c.Secure,
		RemoteAddr:         c.RemoteAddr,
		RemotePort:         c.RemotePort,
		LocalPort:          c.LocalPort,
		MaxHeaderCount:     c.MaxHeaderCount,
		MaxRequestBodySize: c.MaxRequestBodySize,
	}
	for {
		req, keepAlive, consumed, result := c.Parser.Parse(*pending, 0, c.Pools.Requests, opts)
		if result != http11.Incomplete {
			if result == http11.Success {
				remainder := make([]byte, len(*pending)-consumed)
				copy(remainder, (*pending)[consumed:])
				*pending = remainder
			}
			return req, keepAlive, result, nil
		}

		segment, ok := pipe.Read()
		if !ok {
			err := pipe.Err()
			if err != nil && err != io.EOF && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				c.Logger.Printf("ingress read fault on %s: %v", c.RemoteAddr, err)
			}
			return nil, false, http11.Incomplete, io.EOF
		}
		*pending = append(*pending, segment.B...)
		segmentPool.Put(segment)
	}
}

// dispatch runs §4.3's per-request sequence: acquire response+context,
// acquire/attach scope, invoke the composed app, write the response, record
// metrics, and return pooled values exactly once each.
func (c *Connection) dispatch(req *http11.Request, keepAliveRequested bool, writer *bufio.Writer, cancel <-chan struct{}) (effectiveKeepAlive bool, err error) {
	start := time.Now()
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}

	resp := c.Pools.Responses.Acquire()
	ctx := c.Pools.Contexts.Acquire()
	ctx.Request = req
	ctx.Response = resp
	ctx.Scope = core.AcquireScope(c.Provider)

	requestReturned := false
	returnRequest := func() {
		if !requestReturned {
			c.Pools.Requests.Release(req)
			requestReturned = true
		}
	}

	defer func() {
		ctx.Scope.Close()
		returnRequest()
		c.Pools.Responses.Release(resp)
		c.Pools.Contexts.Release(ctx)
	}()

	c.Metrics.BodyBytesReceived(int64(len(req.Body)))

	appErr := c.App(ctx, cancel)
	if appErr != nil {
		c.Metrics.RequestErrored(req.Method.String(), scheme)
		return false, appErr
	}

	returnRequest()

	effectiveKeepAlive, bodyBytes, werr := http11.WriteResponse(writer, resp, keepAliveRequested)
	if werr != nil {
		// An I/O fault writing the response is normal connection
		// termination, not a handler fault: log it and close, but do not
		// propagate it as a Serve() error (§7).
		c.Metrics.RequestErrored(req.Method.String(), scheme)
		c.Logger.Printf("egress write fault on %s: %v", c.RemoteAddr, werr)
		return false, nil
	}
	c.Metrics.BodyBytesSent(bodyBytes)
	c.Metrics.RequestCompleted(req.Method.String(), scheme, resp.Status, effectiveKeepAlive, time.Since(start))

	return effectiveKeepAlive, nil
}

// runFiller reads from stream into ≥4KiB pipe-owned segments until EOF, a read
// error, or ctx cancellation, completing pipe in every case (§4.2). On
// cancellation it also nudges a blocked Read to return promptly by setting
// a past deadline, since ctx cancellation alone does not interrupt an
// in-flight net.Conn.Read.
func runFiller(ctx context.Context, stream net.Conn, pipe *Pipe) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = stream.SetReadDeadline(time.Unix(0, 1))
		case <-stop:
		}
	}()

	for {
		buf := segmentPool.Get()
		buf.B = growSegment(buf.B, http11.MinReadSegment)
		n, err := stream.Read(buf.B)
		if n > 0 {
			buf.B = buf.B[:n]
			if !pipe.Write(buf) {
				segmentPool.Put(buf)
				return nil
			}
		} else {
			segmentPool.Put(buf)
		}
		if err != nil {
			if ctx.Err() != nil {
				pipe.Complete(ctx.Err())
				return ctx.Err()
			}
			pipe.Complete(err)
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// growSegment returns b resized to exactly n bytes, reusing its backing
// array when it is already large enough (mirrors http11/writer.go's
// growBuffer for the same pooled-scratch-buffer pattern).
func growSegment(b []byte, n int) []byte {
	if cap(b) >= n {
		return b[:n]
	}
	return make([]byte, n)
}
