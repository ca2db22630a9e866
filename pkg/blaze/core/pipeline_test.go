package core

import (
	"testing"

	"github.com/yourusername/blaze/pkg/blaze/http11"
)

func TestPipelineBuildEmptyReducesToTerminal(t *testing.T) {
	p := NewPipeline()
	called := false
	terminal := Handler(func(ctx *Context, cancel <-chan struct{}) error {
		called = true
		return nil
	})

	built, err := p.Build(terminal)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := built(NewContext(), nil); err != nil {
		t.Fatalf("built handler returned error: %v", err)
	}
	if !called {
		t.Error("terminal was not invoked")
	}
}

func TestPipelineOrdering(t *testing.T) {
	p := NewPipeline()
	var trace []string

	mw := func(name string) Middleware {
		return func(ctx *Context, next Handler, cancel <-chan struct{}) error {
			trace = append(trace, name+"-enter")
			err := next(ctx, cancel)
			trace = append(trace, name+"-exit")
			return err
		}
	}

	p.Use(mw("M1"))
	p.Use(mw("M2"))

	built, err := p.Build(func(ctx *Context, cancel <-chan struct{}) error {
		trace = append(trace, "terminal")
		return nil
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	built(NewContext(), nil)

	want := []string{"M1-enter", "M2-enter", "terminal", "M2-exit", "M1-exit"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("trace[%d] = %q, want %q (full trace %v)", i, trace[i], want[i], trace)
		}
	}
}

func TestPipelineMiddlewareShortCircuits(t *testing.T) {
	p := NewPipeline()
	terminalCalled := false

	p.Use(func(ctx *Context, next Handler, cancel <-chan struct{}) error {
		return nil // never calls next
	})

	built, _ := p.Build(func(ctx *Context, cancel <-chan struct{}) error {
		terminalCalled = true
		return nil
	})
	built(NewContext(), nil)

	if terminalCalled {
		t.Error("terminal was invoked despite a short-circuiting middleware")
	}
}

func TestPipelineBuildNilTerminal(t *testing.T) {
	p := NewPipeline()
	if _, err := p.Build(nil); err != http11.ErrNilTerminal {
		t.Errorf("Build(nil) err = %v, want ErrNilTerminal", err)
	}
}

func TestPipelineUseNilMiddleware(t *testing.T) {
	p := NewPipeline()
	if err := p.Use(nil); err != http11.ErrNilMiddleware {
		t.Errorf("Use(nil) err = %v, want ErrNilMiddleware", err)
	}
}
