package server

import (
	"crypto/tls"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listenBacklog is §6's mandated accept queue depth.
const listenBacklog = 1024

// bind implements §6's listener contract: backlog 1024, and — when address
// is the any-IPv4 sentinel — a dual-stack bind so IPv6 clients connect on
// the same socket, falling back to IPv4-only on platforms that reject
// dual-mode.
//
// net.Listen does not expose a backlog parameter (its internal default
// tracks /proc/sys/net/core/somaxconn on Linux, not a value this package
// controls), so the socket is built at the syscall level instead, the way
// shockwave/pkg/shockwave/socket/tuning.go reaches for raw file descriptors
// via TCPListener.File() to apply options net.Listener has no setter for.
// DS-4 wires golang.org/x/sys/unix for exactly this: clearing IPV6_V6ONLY
// and calling unix.Listen with an explicit backlog.
func bind(address string, port int) (net.Listener, error) {
	dualStack := address == anyIPv4 || address == ""
	if dualStack {
		ln, err := listenRaw(unix.AF_INET6, net.IP(unix.In6addrAny[:]), port, true)
		if err == nil {
			return ln, nil
		}
		// Platform cannot bind an IPv6-wildcard dual-stack socket (e.g.
		// IPv6 disabled entirely): fall back to IPv4-only, per §6.
		return listenRaw(unix.AF_INET, net.IPv4zero, port, false)
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return nil, fmt.Errorf("server: invalid bind address %q", address)
	}
	if ip4 := ip.To4(); ip4 != nil {
		return listenRaw(unix.AF_INET, ip4, port, false)
	}
	return listenRaw(unix.AF_INET6, ip, port, false)
}

// listenRaw creates, tunes, binds, and listens on a single socket of the
// given family, then hands it back as a net.Listener via net.FileListener.
func listenRaw(family int, ip net.IP, port int, v6Dual bool) (net.Listener, error) {
	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("server: socket: %w", err)
	}
	// Close fd on any error path before os.NewFile takes ownership of it;
	// after that point file.Close releases it instead.
	closeFD := true
	defer func() {
		if closeFD {
			unix.Close(fd)
		}
	}()

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, fmt.Errorf("server: SO_REUSEADDR: %w", err)
	}
	if v6Dual {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0); err != nil {
			return nil, fmt.Errorf("server: IPV6_V6ONLY: %w", err)
		}
	}

	if family == unix.AF_INET {
		var addr unix.SockaddrInet4
		addr.Port = port
		copy(addr.Addr[:], ip.To4())
		if err := unix.Bind(fd, &addr); err != nil {
			return nil, fmt.Errorf("server: bind: %w", err)
		}
	} else {
		var addr unix.SockaddrInet6
		addr.Port = port
		copy(addr.Addr[:], ip.To16())
		if err := unix.Bind(fd, &addr); err != nil {
			return nil, fmt.Errorf("server: bind: %w", err)
		}
	}

	if err := unix.Listen(fd, listenBacklog); err != nil {
		return nil, fmt.Errorf("server: listen: %w", err)
	}

	// os.NewFile takes ownership of fd; net.FileListener dup()s it
	// internally, so closing file afterwards (via the deferred Close
	// below) is what releases our original descriptor, not a second
	// explicit unix.Close.
	file := os.NewFile(uintptr(fd), "blaze-listener")
	closeFD = false
	defer file.Close()

	ln, err := net.FileListener(file)
	if err != nil {
		return nil, fmt.Errorf("server: FileListener: %w", err)
	}
	return ln, nil
}

// wrapTLS wraps ln in a TLS listener if cfg is non-nil, matching §1's
// treatment of TLS negotiation as an opaque collaborator the server core
// only owns the listening side of.
func wrapTLS(ln net.Listener, cfg *tls.Config) net.Listener {
	if cfg == nil {
		return ln
	}
	return tls.NewListener(ln, cfg)
}
