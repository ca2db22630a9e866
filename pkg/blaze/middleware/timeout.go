package middleware

import (
	"time"

	"github.com/yourusername/blaze/pkg/blaze/core"
)

// Timeout returns a middleware that races the inner chain against a
// duration: if the inner chain has not finished by then, the response is
// set to 408 and the middleware returns immediately without waiting for the
// (now-abandoned) inner chain. Grounded on bolt/middleware/timeout.go's
// Timeout, adapted to this engine's cancel-channel cancellation model (§5)
// instead of bolt's context.Context propagation: the inner chain still runs
// to completion in its own goroutine since cancel here is a read-only signal
// the handler has to choose to honour, not a hard abort.
func Timeout(d time.Duration) core.Middleware {
	return func(ctx *core.Context, next core.Handler, cancel <-chan struct{}) error {
		done := make(chan error, 1)
		go func() {
			done <- next(ctx, cancel)
		}()

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case err := <-done:
			return err
		case <-timer.C:
			ctx.Response.Status = 408
			ctx.Response.Reason = "Request Timeout"
			ctx.Response.Body = []byte("request timeout")
			ctx.Response.Stream = nil
			return nil
		case <-cancel:
			return nil
		}
	}
}
