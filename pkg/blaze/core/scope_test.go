package core

import "testing"

type staticProvider map[any]any

func (p staticProvider) Get(key any) (any, bool) {
	v, ok := p[key]
	return v, ok
}

type scopingProvider struct {
	staticProvider
	closed int
}

type trackedScope struct {
	Provider
	p *scopingProvider
}

func (s trackedScope) Close() { s.p.closed++ }

func (p *scopingProvider) NewScope() Scope {
	return trackedScope{Provider: p.staticProvider, p: p}
}

func TestAcquireScopeWrapsPlainProvider(t *testing.T) {
	root := staticProvider{"k": "v"}
	scope := AcquireScope(root)

	v, ok := scope.Get("k")
	if !ok || v != "v" {
		t.Errorf("Get(\"k\") = (%v, %v), want (\"v\", true)", v, ok)
	}
	scope.Close() // must not panic on the no-op wrapper
}

func TestAcquireScopeUsesScopeFactory(t *testing.T) {
	root := &scopingProvider{staticProvider: staticProvider{"k": "v"}}
	scope := AcquireScope(root)

	if v, ok := scope.Get("k"); !ok || v != "v" {
		t.Errorf("Get(\"k\") = (%v, %v), want (\"v\", true)", v, ok)
	}
	scope.Close()
	if root.closed != 1 {
		t.Errorf("closed = %d, want 1", root.closed)
	}
}

func TestAcquireScopeNilRoot(t *testing.T) {
	scope := AcquireScope(nil)
	if _, ok := scope.Get("anything"); ok {
		t.Error("Get on a nil-root scope returned ok=true, want false")
	}
	scope.Close()
}
