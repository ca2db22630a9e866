// Package server owns the global pipeline, route table, pools, and
// listener, and spawns one conn.Connection per accepted connection (§2,
// §6). Grounded on shockwave/pkg/shockwave/server.BaseServer's
// config/stats/shutdown shape, generalised to this engine's pipeline and
// pooling model.
package server

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/blaze/pkg/blaze/conn"
	"github.com/yourusername/blaze/pkg/blaze/core"
	"github.com/yourusername/blaze/pkg/blaze/http11"
	"github.com/yourusername/blaze/pkg/blaze/logging"
	"github.com/yourusername/blaze/pkg/blaze/metrics"
	"github.com/yourusername/blaze/pkg/blaze/pool"
)

// Server owns a single listener, the composed application pipeline, and
// the three pools every connection draws from (§2 "Server core").
type Server struct {
	opts ServerOptions

	mu       sync.Mutex
	pipeline *core.Pipeline
	router   *core.Router
	built    core.Handler

	pools   conn.Pools
	parser  *http11.Parser
	metrics metrics.Sink

	listener     net.Listener
	cancelAccept context.CancelFunc
	wg           sync.WaitGroup
}

// New returns a Server ready for Use/WithHandler registration. opts is
// resolved against its documented defaults lazily, at Start.
func New(opts ServerOptions) *Server {
	return &Server{
		opts:     opts,
		pipeline: core.NewPipeline(),
		router:   core.NewRouter(),
		parser:   http11.NewParser(),
	}
}

// Use appends a middleware to the global pipeline (§6). Returns a
// registration-time error for a nil middleware (§7).
func (s *Server) Use(mw core.Middleware) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline.Use(mw)
}

// WithHandler registers a route; last registration for a given (method,
// path) wins (§6, §9). Returns a registration-time error for a nil
// handler, empty path, or unsupported method (§7).
func (s *Server) WithHandler(method http11.Method, path string, handler core.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.router.Add(method, path, handler)
}

// Start resolves options, binds the listener (dual-stack if the bind
// address is the any-IPv4 sentinel, optionally TLS-wrapped), builds the
// pipeline once, and runs the accept loop until ctx is cancelled or Stop
// is called. It returns nil after a clean shutdown, or the first fatal
// listener error.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.opts = s.opts.resolve()
	opts := s.opts

	built, err := s.pipeline.Build(s.router.Terminal())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.built = built

	s.metrics = metrics.New(!opts.DisableMetrics)
	s.pools = conn.Pools{
		Requests:  pool.New(opts.PoolRetention, http11.NewRequest, func(r *http11.Request) { r.Reset() }),
		Responses: pool.New(opts.PoolRetention, http11.NewResponse, func(r *http11.Response) { r.Reset() }),
		Contexts:  pool.New(opts.PoolRetention, core.NewContext, func(c *core.Context) { c.Reset() }),
	}
	s.pools.Requests.Warmup(opts.PoolRetention)
	s.pools.Responses.Warmup(opts.PoolRetention)
	s.pools.Contexts.Warmup(opts.PoolRetention)
	s.mu.Unlock()

	ln, err := bind(opts.BindAddress, opts.Port)
	if err != nil {
		return err
	}
	ln = wrapTLS(ln, opts.TLSConfig)

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	acceptCtx, cancelAccept := context.WithCancel(ctx)
	defer cancelAccept()

	s.mu.Lock()
	s.cancelAccept = cancelAccept
	s.mu.Unlock()

	go func() {
		<-acceptCtx.Done()
		ln.Close()
	}()

	for {
		rawConn, err := ln.Accept()
		if err != nil {
			select {
			case <-acceptCtx.Done():
				s.wg.Wait()
				return nil
			default:
				opts.Logger.Printf("accept fault: %v", err)
				return err
			}
		}

		s.wg.Add(1)
		go s.serveOne(acceptCtx, rawConn)
	}
}

// serveOne runs one accepted connection to completion, logging any fault
// the connection loop propagates (handler faults per §7) and always
// closing the stream and releasing the waitgroup slot.
func (s *Server) serveOne(ctx context.Context, stream net.Conn) {
	defer s.wg.Done()
	defer stream.Close()

	s.mu.Lock()
	opts := s.opts
	built := s.built
	pools := s.pools
	parser := s.parser
	sink := s.metrics
	s.mu.Unlock()

	localAddr, localPort := splitPort(stream.LocalAddr())
	remoteAddr, remotePort := splitPort(stream.RemoteAddr())
	_ = localAddr

	secure := opts.TLSConfig != nil
	connID := uuid.NewString()
	log := connLogger{base: opts.Logger, connID: connID}

	if opts.VerboseLogging {
		log.Printf("accepted connection from %s", stream.RemoteAddr())
		defer log.Printf("closed connection from %s", stream.RemoteAddr())
	}

	c := &conn.Connection{
		Stream:             stream,
		Secure:             secure,
		LocalPort:          localPort,
		RemoteAddr:         remoteAddr,
		RemotePort:         remotePort,
		App:                built,
		Pools:              pools,
		Parser:             parser,
		Provider:           opts.Provider,
		MaxHeaderCount:     opts.MaxHeaderCount,
		MaxRequestBodySize: opts.MaxRequestBodySize,
		Metrics:            sink,
		Logger:             log,
	}

	if err := c.Serve(ctx); err != nil {
		opts.Logger.Printf("connection %s closed with handler fault: %v", connID, err)
	}
}

// Addr returns the bound listener's address, or nil before Start has bound
// one. A Port of 0 resolves to the default 80, not to an ephemeral port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop cancels the accept loop's own shutdown signal (the same one a
// cancelled Start context drives) and closes the listener, so Start's
// Accept error is recognised as a clean shutdown rather than a fatal fault
// (§6: "Server.stop() — stop the listener; in-flight connections drain via
// cancellation"). The same signal cancels every in-flight connection. Stop
// itself returns without waiting; Start waits for those connections to
// finish and then returns nil. It is safe to call before Start has bound a
// listener, in which case it is a no-op. Matches
// shockwave/pkg/shockwave/server.BaseServer.Shutdown's wait-for-drain shape.
func (s *Server) Stop() {
	s.mu.Lock()
	cancel := s.cancelAccept
	ln := s.listener
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if ln != nil {
		ln.Close()
	}
}

// connLogger prefixes every log line with the connection's correlation id
// (DS-2), so interleaved connections' diagnostics stay attributable in a
// shared log stream.
type connLogger struct {
	base   logging.Logger
	connID string
}

func (l connLogger) Printf(format string, args ...any) {
	l.base.Printf("[conn "+l.connID+"] "+format, args...)
}

// splitPort extracts host/port from a net.Addr, tolerating non-TCP
// addresses (e.g. in tests using net.Pipe, whose Addr is not *net.TCPAddr)
// by returning the zero values rather than panicking.
func splitPort(addr net.Addr) (host string, port int) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return "", 0
	}
	return tcpAddr.IP.String(), tcpAddr.Port
}
