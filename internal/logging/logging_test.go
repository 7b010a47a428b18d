package logging

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	logger, err := New("debug")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("   "); got != "<empty>" {
		t.Fatalf("unexpected snippet %q", got)
	}
	long := strings.Repeat("가", maxSnippetRunes+5)
	got := Snippet(long)
	if !strings.HasSuffix(got, "…(truncated)") {
		t.Fatalf("expected truncation marker, got suffix %q", got[len(got)-20:])
	}
}

func TestMiddlewareLogsRequestWithID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	r := gin.New()
	r.Use(RequestID(), Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Header().Get(RequestIDHeader) != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", rr.Header().Get(RequestIDHeader))
	}

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/ping" || fields["request_id"] != "req-123" {
		t.Fatalf("unexpected fields: %#v", fields)
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Fatalf("unexpected status field: %#v", fields["status"])
	}
}
