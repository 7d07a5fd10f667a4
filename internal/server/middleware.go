package server

import (
	"errors"
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

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs every request and records it in m when m is non-nil.
func RequestLogger(logger *log.Logger, m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", elapsed)
			if m != nil {
				m.RecordRequest(r.Method, rec.status, elapsed)
			}
		})
	}
}

// RateLimit rejects requests beyond the limiter's budget with 429.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoadPrincipal resolves the session cookie to a principal and stores it in the
// request context. Requests without a live session get the anonymous principal.
func LoadPrincipal(store session.Store, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := identity.Anonymous()

			if id := session.IDFromRequest(r); id != "" {
				sess, err := store.Get(r.Context(), id)
				switch {
				case err == nil:
					p = identity.NewPrincipal(sess.Claims)
				case errors.Is(err, shared.ErrNotFound):
				default:
					logger.Warn("session lookup failed", "error", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireUser rejects requests whose principal is not authenticated with 401.
func RequireUser(users *services.UserService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !users.IsAuthenticated(identity.PrincipalFrom(r.Context())) {
				writeError(w, http.StatusUnauthorized, shared.ErrNotAuthenticated.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
