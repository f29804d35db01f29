package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// Server exposes the push feed on a WebSocket endpoint. It exists so
// external followers can consume job and terminal frames without polling
// the bindings.
type Server struct {
	mu         sync.Mutex
	hub        *Hub
	httpServer *http.Server
	listener   net.Listener
	running    bool
}

// NewServer wraps a hub in an HTTP listener.
func NewServer(hub *Hub) *Server {
	return &Server{hub: hub}
}

// Hub returns the wrapped hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start binds addr and begins serving the feed. An empty addr leaves the
// feed disabled and is not an error.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || addr == "" {
		return nil
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", s.hub.ServeWS)
	mux.HandleFunc("GET /health", handleHealth)

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.running = true

	go s.hub.Run()
	go func() {
		// Serve returns ErrServerClosed on shutdown.
		_ = s.httpServer.Serve(listener)
	}()

	return nil
}

// Addr returns the bound address, or an empty string when the feed is
// disabled.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop disconnects subscribers and shuts the listener down.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
