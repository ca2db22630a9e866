package core

import (
	"sync"

	"github.com/yourusername/blaze/pkg/blaze/http11"
)

// routedMethods lists the seven independent method tables §3 requires.
var routedMethods = [...]http11.Method{
	http11.MethodGET,
	http11.MethodPOST,
	http11.MethodPUT,
	http11.MethodDELETE,
	http11.MethodHEAD,
	http11.MethodPATCH,
	http11.MethodOPTIONS,
}

// Router holds seven independent exact-match method→path tables (§3, §4.4).
// Grounded on bolt/core/router.go's static map + RWMutex guard, stripped of
// its radix-tree/param-routing half: routing beyond exact method+path match
// is an explicit non-goal (§1), so only the static-map portion of the
// teacher's router has a home here.
type Router struct {
	mu     sync.RWMutex
	tables map[http11.Method]map[string]Handler
}

// NewRouter returns a Router with all seven method tables initialised empty.
func NewRouter() *Router {
	r := &Router{tables: make(map[http11.Method]map[string]Handler, len(routedMethods))}
	for _, m := range routedMethods {
		r.tables[m] = make(map[string]Handler)
	}
	return r
}

// Add registers handler for method and the exact path. Re-registering the
// same (method, path) overwrites the previous handler: last registration
// wins, preserving the source's WithHandler behaviour (§9).
func (r *Router) Add(method http11.Method, path string, handler Handler) error {
	if handler == nil {
		return http11.ErrNilHandler
	}
	if path == "" {
		return http11.ErrEmptyPath
	}
	table, ok := r.tables[method]
	if !ok {
		return http11.ErrUnsupportedMethod
	}
	r.mu.Lock()
	table[path] = handler
	r.mu.Unlock()
	return nil
}

// Terminal returns the router's dispatch function for use as a Pipeline's
// terminal handler. On an exact (method, path) match it invokes the
// registered handler; otherwise it mutates the response to 404 Not Found
// with a UTF-8 "Not Found" body and completes successfully — a routing miss
// is a normal response, not an error (§4.4, §7).
func (r *Router) Terminal() Handler {
	return func(ctx *Context, cancel <-chan struct{}) error {
		r.mu.RLock()
		table, ok := r.tables[ctx.Request.Method]
		var handler Handler
		if ok {
			handler, ok = table[ctx.Request.Path]
		}
		r.mu.RUnlock()

		if !ok {
			ctx.Response.Status = 404
			ctx.Response.Reason = "Not Found"
			ctx.Response.Body = []byte("Not Found")
			return nil
		}
		return handler(ctx, cancel)
	}
}
