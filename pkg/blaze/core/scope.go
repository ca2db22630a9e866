package core

// Provider is the process-wide service lookup surface a Scope (or the root
// provider, when no scope factory is configured) exposes to handlers. It has
// no teacher analogue — neither shockwave nor bolt has a dependency-injection
// layer — so this is designed fresh, grounded only loosely on the
// Acquire/Release lifecycle discipline bolt/core/context_pool.go applies to
// *Context itself, applied here to the narrower job of service lookup.
type Provider interface {
	// Get looks up a registered service by key, returning ok=false if none
	// is registered.
	Get(key any) (value any, ok bool)
}

// Scope is a per-request capability set obtained from the root Provider's
// ScopeFactory, if one is configured. It embeds Provider so handlers use the
// same Get call whether or not scoping is in effect, and adds Close for the
// deterministic, exactly-once release §4.3 requires.
type Scope interface {
	Provider
	Close()
}

// ScopeFactory is implemented by a root Provider that wants per-request
// scoping (e.g. a request-scoped database connection or transaction). If the
// configured root Provider does not implement ScopeFactory, the root
// Provider itself is exposed on the Context and there is nothing to release.
type ScopeFactory interface {
	NewScope() Scope
}

// rootScope adapts a plain Provider that is not a ScopeFactory so the
// Context always holds a Scope value: Close is a no-op, since nothing was
// allocated on its behalf.
type rootScope struct {
	Provider
}

func (rootScope) Close() {}

// AcquireScope implements §4.3 step 2: create a per-request scope if the
// root provider supports it, otherwise wrap the root provider so its
// lifetime-free Close is a no-op.
func AcquireScope(root Provider) Scope {
	if root == nil {
		return rootScope{Provider: emptyProvider{}}
	}
	if factory, ok := root.(ScopeFactory); ok {
		return factory.NewScope()
	}
	return rootScope{Provider: root}
}

// emptyProvider is the default root Provider when a server is not given one:
// every lookup misses.
type emptyProvider struct{}

func (emptyProvider) Get(key any) (any, bool) { return nil, false }
