package core

import "github.com/yourusername/blaze/pkg/blaze/http11"

// Pipeline is a mutable, append-only list of middleware, built once into a
// single composed Handler (§3, §4.4). Grounded on the wrapping technique in
// bolt/core/app.go's addRoute (middleware applied in reverse registration
// order so the first registered ends up outermost), adapted to the spec's
// explicit (context, next, cancel) middleware shape rather than bolt's
// closure-returning Middleware func(Handler) Handler — the visible ordering
// is identical, only the calling convention differs.
type Pipeline struct {
	middleware []Middleware
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Use appends a middleware. Registration order is preserved: the first
// Use call is the outermost layer once Build runs.
func (p *Pipeline) Use(mw Middleware) error {
	if mw == nil {
		return http11.ErrNilMiddleware
	}
	p.middleware = append(p.middleware, mw)
	return nil
}

// Build composes the registered middleware around terminal into a single
// callable. An empty pipeline reduces to terminal itself. The innermost
// layer is terminal; each middleware wraps the composition of all layers
// registered after it, so the trace for M1,M2,...,Mn around a terminal T is
// M1-enter, M2-enter, ..., Mn-enter, T, Mn-exit, ..., M2-exit, M1-exit.
func (p *Pipeline) Build(terminal Handler) (Handler, error) {
	if terminal == nil {
		return nil, http11.ErrNilTerminal
	}
	composed := terminal
	for i := len(p.middleware) - 1; i >= 0; i-- {
		mw := p.middleware[i]
		next := composed
		composed = func(ctx *Context, cancel <-chan struct{}) error {
			return mw(ctx, next, cancel)
		}
	}
	return composed, nil
}
