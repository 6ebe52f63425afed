package bodyfilter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/replacefilter/replacefilter/internal/config"
)

func newFilter(t *testing.T, pattern, replacement, flags string, types []string) *Filter {
	t.Helper()
	f, err := New(config.ReplaceFilter{Pattern: pattern, Replacement: replacement, Flags: flags}, types)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestWrapRewritesMatchingType(t *testing.T) {
	f := newFilter(t, "world", "there", "g", []string{"text/html"})

	handler := f.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", "11")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello "))
		w.Write([]byte("world"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Body.String(); got != "hello there" {
		t.Fatalf("body = %q, want %q", got, "hello there")
	}
	if rec.Header().Get("Content-Length") != "" {
		t.Fatalf("Content-Length should have been cleared, got %q", rec.Header().Get("Content-Length"))
	}
	if rec.Header().Get("X-Replace-Filter-Request-Id") == "" {
		t.Fatal("expected a request id header to be set")
	}
}

func TestWrapPassesThroughNonMatchingType(t *testing.T) {
	f := newFilter(t, "world", "there", "g", []string{"text/html"})

	handler := f.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"hello":"world"}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Body.String(); got != `{"hello":"world"}` {
		t.Fatalf("body = %q, want unmodified JSON", got)
	}
	if rec.Header().Get("X-Replace-Filter-Request-Id") != "" {
		t.Fatal("non-matching response should not be tagged with a request id")
	}
}

func TestWrapSkipsNonIdentityEncoding(t *testing.T) {
	f := newFilter(t, "world", "there", "g", []string{"text/html"})

	handler := f.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("world"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Body.String(); got != "world" {
		t.Fatalf("body = %q, want unmodified (gzip body must not be rewritten)", got)
	}
}

func TestWrapHandlesMatchSplitAcrossWrites(t *testing.T) {
	f := newFilter(t, "foobar", "X", "", []string{"text/plain"})

	handler := f.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pre foo"))
		w.Write([]byte("bar post"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Body.String(); got != "pre X post" {
		t.Fatalf("body = %q, want %q", got, "pre X post")
	}
}
