package middleware

import (
	"strings"
	"sync"
	"testing"

	"github.com/yourusername/blaze/pkg/blaze/core"
)

type capturingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (c *capturingLogger) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, format)
	_ = args
}

func TestRequestLogRecordsOneLinePerRequest(t *testing.T) {
	log := &capturingLogger{}
	mw := RequestLog(log)
	ctx := newTestContext()
	ctx.Request.Path = "/widgets"

	err := mw(ctx, func(*core.Context, <-chan struct{}) error {
		ctx.Response.Status = 201
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(log.lines) != 1 {
		t.Fatalf("logged %d lines, want 1", len(log.lines))
	}
	if !strings.Contains(log.lines[0], "%d") {
		t.Errorf("log line format %q does not carry a status placeholder", log.lines[0])
	}
}
