package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Server wraps an *http.Server to provide start/shutdown lifecycle.
type Server struct {
	mu         sync.Mutex
	httpServer *http.Server
}

const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second

	defaultPort = "8080"
)

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// NormalizeAddr accepts "8080", ":8080", "0.0.0.0:8080" or "[::1]:8080"
// and returns a listen address. Empty means all interfaces on 8080.
func NormalizeAddr(bindTo string) string {
	bindTo = strings.TrimSpace(bindTo)
	switch {
	case bindTo == "":
		return ":" + defaultPort
	case strings.HasPrefix(bindTo, ":"):
		return bindTo
	}
	if _, _, err := net.SplitHostPort(bindTo); err == nil {
		return bindTo
	}
	if strings.Trim(bindTo, "0123456789") == "" {
		return ":" + bindTo
	}
	return net.JoinHostPort(bindTo, defaultPort)
}

// Run listens on bindTo and blocks until the server stops. A graceful
// Shutdown makes Run return nil.
func (s *Server) Run(bindTo string, handler http.Handler) error {
	srv := newHTTPServer(NormalizeAddr(bindTo), handler)
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
