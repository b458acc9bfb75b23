package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"gemini-desktop/pkg/logger"
)

func newTestServer(t *testing.T, upstream string) *Server {
	t.Helper()
	log, err := logger.NewLogger(logger.WithWriter(os.Stderr))
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	s, err := NewServer(upstream, log)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestStripsFrameBlockingHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, "<html>app</html>")
	}))
	defer upstream.Close()

	proxy := httptest.NewServer(newTestServer(t, upstream.URL).Handler())
	defer proxy.Close()

	resp, err := http.Get(proxy.URL + "/app")
	if err != nil {
		t.Fatalf("GET through proxy: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	for _, h := range strippedHeaders {
		if got := resp.Header.Get(h); got != "" {
			t.Errorf("%s = %q, want stripped", h, got)
		}
	}
	if got := resp.Header.Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q, want preserved", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "<html>app</html>" {
		t.Errorf("body = %q, want upstream body unchanged", body)
	}
}

func TestForwardsPathAndStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/app/settings" {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	proxy := httptest.NewServer(newTestServer(t, upstream.URL).Handler())
	defer proxy.Close()

	resp, err := http.Get(proxy.URL + "/app/settings")
	if err != nil {
		t.Fatalf("GET through proxy: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want %d passed through", resp.StatusCode, http.StatusTeapot)
	}
}

func TestUpstreamFailureReturnsBadGateway(t *testing.T) {
	// Closed immediately so the dial fails.
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	proxy := httptest.NewServer(newTestServer(t, deadURL).Handler())
	defer proxy.Close()

	resp, err := http.Get(proxy.URL + "/")
	if err != nil {
		t.Fatalf("GET through proxy: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestRejectsRelativeUpstream(t *testing.T) {
	log, _ := logger.NewLogger(logger.WithWriter(os.Stderr))
	if _, err := NewServer("gemini.google.com", log); err == nil {
		t.Fatal("NewServer accepted an upstream without a scheme")
	}
}

func TestDefaultUpstream(t *testing.T) {
	s := newTestServer(t, "")
	if got := s.upstream.String(); got != DefaultUpstream {
		t.Errorf("upstream = %q, want %q", got, DefaultUpstream)
	}
}
