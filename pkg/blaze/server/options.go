package server

import (
	"crypto/tls"

	"github.com/yourusername/blaze/pkg/blaze/core"
	"github.com/yourusername/blaze/pkg/blaze/logging"
)

// anyIPv4 is the sentinel bind address naming §6's "any IPv4" default. It is
// never actually handed to net.Listen verbatim: start() recognises it and
// binds dual-stack instead (see listen.go).
const anyIPv4 = "0.0.0.0"

const (
	defaultPort                = 80
	defaultPoolRetention        = 1024
	defaultMaxHeaderCount       = 100
	defaultMaxRequestBodySize   = 10 * 1024 * 1024
	defaultListenBacklog        = 1024
)

// ServerOptions is the engine's single configuration surface (§6, §10).
// Grounded on shockwave/pkg/shockwave/server.Config / DefaultConfig and
// bolt/core.Config / DefaultConfig: a plain struct plus a Default*
// constructor, with zero-valued fields resolved to their documented default
// at start() rather than at construction, so a caller assembling the struct
// by hand (e.g. in a test) can still tell "unset" from "explicitly zero".
type ServerOptions struct {
	// BindAddress is the address to listen on. The zero value and the
	// literal "0.0.0.0" both mean "any IPv4", which start() resolves to a
	// dual-stack IPv6 bind with IPv4 fallback per §6.
	BindAddress string

	// Port to listen on. Zero means the default, 80.
	Port int

	// TLSConfig optionally wraps the listener in TLS. Nil means plain TCP.
	// TLS negotiation itself is an opaque collaborator per §1 — the engine
	// only owns passing this through to tls.NewListener.
	TLSConfig *tls.Config

	// PoolRetention is the bounded-retention cap applied to the request,
	// response, and context pools (§5). Zero means the default, 1024.
	PoolRetention int

	// DisableMetrics turns off the Prometheus-backed sink (§4.6, DS-1),
	// falling back to a no-op Sink. Named as a negative so its zero value
	// (false) matches §6's documented default of metrics enabled.
	DisableMetrics bool

	// MaxHeaderCount bounds the header lines the parser accepts per
	// request (§4.1). Zero means the default, 100.
	MaxHeaderCount int

	// MaxRequestBodySize bounds the declared Content-Length the parser
	// accepts (§4.1). Zero means the default, 10 MiB.
	MaxRequestBodySize int64

	// Provider is the process-wide service lookup root exposed to
	// handlers via the per-request Scope (§4.3). Nil means no services
	// are registered; every Get misses.
	Provider core.Provider

	// Logger receives protocol faults, I/O faults, and lifecycle events
	// (§7, §10). Nil means logging.Default().
	Logger logging.Logger

	// VerboseLogging enables the connection accept/close INFO lifecycle log
	// lines (§4.7). Its zero value (false) matches the teacher's
	// default-silent EnableLogging: false — protocol faults, I/O faults, and
	// handler faults are always logged regardless of this flag.
	VerboseLogging bool

	defaultsResolved bool
}

// DefaultServerOptions returns the documented defaults (§6): any-IPv4bind,
// port 80, pool retention 1024, metrics enabled, maxHeaderCount 100,
// maxRequestBodySize 10 MiB, no TLS, no provider, stderr logging.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		BindAddress:        anyIPv4,
		Port:               defaultPort,
		PoolRetention:      defaultPoolRetention,
		MaxHeaderCount:     defaultMaxHeaderCount,
		MaxRequestBodySize: defaultMaxRequestBodySize,
		Logger:             logging.Default(),
		defaultsResolved:   true,
	}
}

// resolve applies defaults for every zero-valued field, matching the
// resolution timing SPEC_FULL.md §4.8 calls for ("defaults applied... at
// Server.start, never at construction time"). Calling resolve twice is
// harmless: a ServerOptions built by DefaultServerOptions is already fully
// resolved and resolve is a no-op on it.
func (o ServerOptions) resolve() ServerOptions {
	if o.defaultsResolved {
		return o
	}
	if o.BindAddress == "" {
		o.BindAddress = anyIPv4
	}
	if o.Port == 0 {
		o.Port = defaultPort
	}
	if o.PoolRetention == 0 {
		o.PoolRetention = defaultPoolRetention
	}
	if o.MaxHeaderCount == 0 {
		o.MaxHeaderCount = defaultMaxHeaderCount
	}
	if o.MaxRequestBodySize == 0 {
		o.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
	o.defaultsResolved = true
	return o
}
