package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/metrics"
	"github.com/zjrosen/bloom/internal/tracing"
	"github.com/zjrosen/bloom/internal/zen"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Deps are the collaborators of the router. Only Service is required.
type Deps struct {
	Service *zen.Service
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
	// Guide serves the WebSocket breathing guide when set.
	Guide http.Handler
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(ErrorHandler(), RequestLogger(), d.Metrics.GinMiddleware(), tracing.GinMiddleware(d.Tracer))

	router.GET("/healthz", Health)
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	h := NewHandlers(d.Service)
	api := router.Group("/api")
	{
		api.POST("/users", h.CreateUser)
		api.GET("/users/:id", h.GetUser)

		api.POST("/breathing-sessions", h.RecordSession)

		api.GET("/zen-coins/:id/balance", h.Balance)
		api.GET("/zen-coins/:id/transactions", h.Transactions)

		api.POST("/mood-diary", h.SubmitMood)

		api.GET("/achievements", h.Achievements)
		api.GET("/achievements/:id", h.UserAchievements)

		api.GET("/courses", h.Courses)
		api.GET("/courses/:id/available", h.AvailableCourses)
		api.POST("/courses/:id/complete", h.CompleteCourse)

		api.GET("/leaderboard", h.Leaderboard)

		if d.Guide != nil {
			api.GET("/guide/ws", gin.WrapH(d.Guide))
		}
	}
	return router
}

// Server runs the router on an http.Server.
type Server struct {
	srv *http.Server
}

// NewServer creates a server listening on addr.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info(log.CatAPI, "listening", "addr", ln.Addr().String())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info(log.CatAPI, "server stopped")
	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}
