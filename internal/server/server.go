// Package server exposes the task store over a small JSON API on the loopback interface.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todo/internal/api"
	"todo/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server is the local HTTP adapter
type Server struct {
	api    api.TodoAPI
	router *gin.Engine
}

// Option configures the server
type Option func(*options)

type options struct {
	requestLog bool
}

// WithRequestLog enables gin's access log
func WithRequestLog(enabled bool) Option {
	return func(o *options) {
		o.requestLog = enabled
	}
}

// New creates a new server
func New(todoAPI api.TodoAPI, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if o.requestLog {
		router.Use(gin.Logger())
	}

	s := &Server{
		api:    todoAPI,
		router: router,
	}

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/state", s.handleState)
		apiGroup.PUT("/profile", s.handleSetProfile)
		apiGroup.GET("/todos", s.handleListTodos)
		apiGroup.POST("/todos", s.handleAddTodo)
		apiGroup.PUT("/todos/:id", s.handleUpdateTodo)
		apiGroup.POST("/todos/:id/toggle", s.handleToggleTodo)
		apiGroup.DELETE("/todos/:id", s.handleDeleteTodo)
		apiGroup.GET("/events", s.handleEvents)
	}

	return s
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// addr must name a loopback host.
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := checkLoopback(addr); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. Request contexts
// derive from ctx, so open event streams end when shutdown begins.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logging.Debugf("listening on http://%s\n", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("refusing to listen on %q: only loopback addresses are allowed", addr)
}
