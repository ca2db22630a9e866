package middleware

import (
	"time"

	"github.com/yourusername/blaze/pkg/blaze/core"
	"github.com/yourusername/blaze/pkg/blaze/logging"
)

// RequestLog returns a middleware that logs one line per completed request:
// method, path, status, and duration. Grounded on bolt/middleware/logger.go's
// Logger, stripped of its JSON/io.Writer configuration surface (this engine
// logs through the injectable Logger interface of §4.7, not a dedicated
// structured-logging library, per §4.7's choice of the stdlib log package).
func RequestLog(log logging.Logger) core.Middleware {
	return func(ctx *core.Context, next core.Handler, cancel <-chan struct{}) error {
		start := time.Now()
		err := next(ctx, cancel)
		log.Printf("%s %s -> %d (%s)", ctx.Request.Method, ctx.Request.Path, ctx.Response.Status, time.Since(start))
		return err
	}
}
