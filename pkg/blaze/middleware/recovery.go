// Package middleware collects optional core.Middleware values that are not
// part of the engine's required pipeline (§4.4) but are common enough to
// ship alongside it: panic recovery, request logging, timeouts, rate
// limiting, and CORS. Grounded on bolt/middleware/*.go, adapted from bolt's
// (next core.Handler) core.Handler wrapping shape to this engine's
// (ctx, next, cancel) error shape (core.Middleware, §4.4) and from bolt's
// c.JSON convenience helper to direct http11.Response field mutation, since
// this engine has no JSON-response helper (§1 Non-goals: "application-level
// convenience helpers").
package middleware

import (
	"runtime/debug"

	"github.com/yourusername/blaze/pkg/blaze/core"
	"github.com/yourusername/blaze/pkg/blaze/logging"
)

// Recovery returns a middleware that recovers from a panic anywhere inside
// the inner chain, logs it with a stack trace, and turns it into a 500
// response instead of tearing down the connection. Grounded on
// bolt/middleware/recovery.go's Recovery; log is the engine's own injectable
// logger (§4.7) in place of bolt's direct log.Printf.
func Recovery(log logging.Logger) core.Middleware {
	return func(ctx *core.Context, next core.Handler, cancel <-chan struct{}) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered panic: %v\n%s", r, debug.Stack())
				ctx.Response.Status = 500
				ctx.Response.Reason = "Internal Server Error"
				ctx.Response.Body = []byte("internal server error")
				ctx.Response.Stream = nil
				err = nil
			}
		}()
		return next(ctx, cancel)
	}
}
