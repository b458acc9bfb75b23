// Package proxy serves the upstream web app from a local address with the
// frame-blocking response headers removed, so the shell's windows can load it.
package proxy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gemini-desktop/pkg/logger"
)

// DefaultUpstream is the production app origin.
const DefaultUpstream = "https://gemini.google.com"

// strippedHeaders are removed from every upstream response. They instruct
// the browser to refuse framing or restrict content, which breaks embedding.
var strippedHeaders = []string{
	"X-Frame-Options",
	"Content-Security-Policy",
	"X-Content-Type-Options",
}

// Server is the local embed proxy.
type Server struct {
	upstream *url.URL
	log      *logger.Logger
	srv      *http.Server
	addr     string
}

// NewServer builds a proxy for upstream. An empty upstream selects
// DefaultUpstream.
func NewServer(upstream string, log *logger.Logger) (*Server, error) {
	if upstream == "" {
		upstream = DefaultUpstream
	}
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream %q: %w", upstream, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream %q must be an absolute URL", upstream)
	}
	return &Server{upstream: u, log: log}, nil
}

// Handler returns the proxy's HTTP handler.
func (s *Server) Handler() http.Handler {
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(s.upstream)
			pr.Out.Host = s.upstream.Host
		},
		ModifyResponse: func(resp *http.Response) error {
			for _, h := range strippedHeaders {
				resp.Header.Del(h)
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.log.Warn("Upstream request failed", "path", r.URL.Path, "error", err)
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Handle("/*", rp)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("Proxied request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// Start binds addr and serves in the background. Pass "127.0.0.1:0" to pick
// a free port; URL reports the bound address afterwards.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind proxy to %s: %w", addr, err)
	}
	s.addr = ln.Addr().String()
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("Embed proxy listening", "addr", s.addr, "upstream", s.upstream.String())
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("Proxy server stopped", err)
		}
	}()
	return nil
}

// URL returns the local origin the windows should load.
func (s *Server) URL() string {
	return "http://" + s.addr
}

// Stop shuts the proxy down, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
