package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/oggyb/smshub/internal/middleware"
	routes "github.com/oggyb/smshub/internal/router"
)

// Server owns the underlying http.Server.
type Server struct {
	http *http.Server
}

// New registers the routes on a fresh mux and wraps it with request logging.
func New(addr string, deps routes.AppDeps, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	routes.Register(mux, deps)

	root := Chain(
		mux,
		middleware.RequestLogger(log),
	)

	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           root,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start blocks until ListenAndServe returns.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
