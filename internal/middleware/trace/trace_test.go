package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "pocketledger/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.NewText(&buf, slog.LevelDebug, applog.ComponentTrace)
	m := NewMiddleware(logger, func(*http.Request) string { return "10.0.0.9" })

	var seen string
	var ctxLogger *applog.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		ctxLogger = applog.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/history?q=rent", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("request id = %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("response header = %q, want %q", rec.Header().Get(RequestIDHeader), seen)
	}
	if ctxLogger == nil || ctxLogger.Component() != applog.ComponentTrace {
		t.Fatalf("context logger not installed")
	}

	out := buf.String()
	for _, want := range []string{"HTTP request completed", "status_code=418", "client_ip=10.0.0.9", "request_id=" + seen, "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if got := m.GetMetrics().TotalRequests; got != 1 {
		t.Fatalf("total requests = %d", got)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(r.Context()); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
