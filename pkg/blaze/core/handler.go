// Package core implements the middleware pipeline, router, and per-request
// context (§3, §4.3, §4.4). It plays the role bolt/core plays for shockwave:
// a thin framework layer sitting on top of the wire-level http11 package.
package core

import "github.com/yourusername/blaze/pkg/blaze/http11"

// Handler is the terminal callable shape named in §6: given a populated
// context, do work and report completion. cancel is closed when the
// connection's token is cancelled (server shutdown, parser fatal fault,
// etc.) and should be honoured at any blocking point inside the handler.
type Handler func(ctx *Context, cancel <-chan struct{}) error

// Middleware wraps a Handler to run code before and/or after it, per §4.4.
// Calling next passes control to the next inner layer; a middleware that
// returns without calling next short-circuits the chain and suppresses
// everything inside it, including the terminal.
type Middleware func(ctx *Context, next Handler, cancel <-chan struct{}) error

// Context is the per-request triple of (request, response, scope) described
// in §3. A Context is acquired from a pool before the middleware chain runs
// and returned exactly once regardless of outcome (§4.3).
type Context struct {
	Request  *http11.Request
	Response *http11.Response
	Scope    Scope
}

// Reset clears all three fields so a pooled Context cannot leak state
// across requests (§3, "On pool return all three fields are cleared").
func (c *Context) Reset() {
	c.Request = nil
	c.Response = nil
	c.Scope = nil
}

// NewContext allocates a Context in its cleared state.
func NewContext() *Context {
	return &Context{}
}
