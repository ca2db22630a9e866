package middleware

import (
	"testing"
	"time"

	"github.com/yourusername/blaze/pkg/blaze/core"
)

func TestTimeoutPassesThroughFastHandler(t *testing.T) {
	mw := Timeout(50 * time.Millisecond)
	ctx := newTestContext()

	err := mw(ctx, func(*core.Context, <-chan struct{}) error {
		ctx.Response.Status = 200
		return nil
	}, nil)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Response.Status != 200 {
		t.Errorf("Status = %d, want 200", ctx.Response.Status)
	}
}

func TestTimeoutFiresOn408(t *testing.T) {
	mw := Timeout(20 * time.Millisecond)
	ctx := newTestContext()

	started := make(chan struct{})
	err := mw(ctx, func(*core.Context, <-chan struct{}) error {
		close(started)
		time.Sleep(200 * time.Millisecond)
		return nil
	}, nil)

	<-started
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Response.Status != 408 {
		t.Errorf("Status = %d, want 408", ctx.Response.Status)
	}
}
