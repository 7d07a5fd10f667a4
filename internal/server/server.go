// package server contains the HTTP surface of riff: login through the identity provider,
// session-backed principals and the user and favorites API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/riff/internal/identity"
	"github.com/desertthunder/riff/internal/metrics"
	"github.com/desertthunder/riff/internal/services"
	"github.com/desertthunder/riff/internal/session"
	"github.com/desertthunder/riff/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own several routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the method-qualified patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Deps are the collaborators of a [Server]. Auth and Metrics may be nil.
type Deps struct {
	Config    *shared.Config
	Logger    *log.Logger
	Users     *services.UserService
	Favorites *services.FavoriteService
	Sessions  session.Store
	Auth      identity.Authenticator
	Metrics   *metrics.Metrics
}

// Server serves the riff HTTP API.
type Server struct {
	Deps
	router  *BasicRouter
	limiter *rate.Limiter
	cookies session.CookieOptions
}

// New wires the routes and middleware of a [Server].
func New(deps Deps) *Server {
	rl := deps.Config.RateLimit
	limit := rate.Limit(rl.RequestsPerSecond)
	if rl.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := rl.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		Deps:    deps,
		router:  NewBasicRouter(),
		limiter: rate.NewLimiter(limit, burst),
		cookies: session.CookieOptions{Secure: deps.Config.Server.CookieSecure},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(RequestLogger(s.Logger, s.Metrics), LoadPrincipal(s.Sessions, s.Logger))

	limited := RateLimit(s.limiter)

	r.Handle(http.MethodGet, "/health", http.HandlerFunc(s.health))
	r.Handle(http.MethodGet, "/login", limited(http.HandlerFunc(s.login)))
	r.Handle(http.MethodGet, "/callback", limited(http.HandlerFunc(s.callback)))
	r.Handle(http.MethodPost, "/logout", http.HandlerFunc(s.logout))

	r.Handle(http.MethodGet, "/api/session", http.HandlerFunc(s.currentSession))
	r.Handle(http.MethodGet, "/api/me", RequireUser(s.Users)(http.HandlerFunc(s.me)))
	r.Handle(http.MethodGet, "/api/users", RequireUser(s.Users)(http.HandlerFunc(s.userByEmail)))
	r.Handle(http.MethodGet, "/api/favorites", RequireUser(s.Users)(http.HandlerFunc(s.listFavorites)))
	r.Handle(http.MethodPut, "/api/favorites/{songID}", RequireUser(s.Users)(http.HandlerFunc(s.addFavorite)))
	r.Handle(http.MethodDelete, "/api/favorites/{songID}", RequireUser(s.Users)(http.HandlerFunc(s.removeFavorite)))

	if s.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", s.Metrics.Handler())
	}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.Server.Addr(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.Logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
