package server

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/riff/internal/session"
	"github.com/desertthunder/riff/internal/shared"
)

const (
	stateCookieName = "riff_oauth_state"
	pkceCookieName  = "riff_oauth_pkce"
	flowCookieTTL   = 5 * time.Minute
)

func (s *Server) setFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(flowCookieTTL.Seconds()),
	})
}

func (s *Server) clearFlowCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func flowCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// login starts the authorization code flow with state and PKCE cookies.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if s.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "identity provider not configured")
		return
	}

	state, err := session.GenerateID()
	if err != nil {
		s.Logger.Error("failed to generate state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	verifier := oauth2.GenerateVerifier()

	s.setFlowCookie(w, stateCookieName, state)
	s.setFlowCookie(w, pkceCookieName, verifier)

	http.Redirect(w, r, s.Auth.AuthCodeURL(state, verifier), http.StatusFound)
}

// callback completes the flow: it checks state, redeems the code, reconciles the
// user and opens a session.
func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	if s.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "identity provider not configured")
		return
	}

	q := r.URL.Query()
	state := q.Get("state")
	if state == "" || state != flowCookie(r, stateCookieName) {
		writeError(w, http.StatusBadRequest, shared.ErrInvalidState.Error())
		return
	}

	verifier := flowCookie(r, pkceCookieName)
	s.clearFlowCookie(w, stateCookieName)
	s.clearFlowCookie(w, pkceCookieName)

	code := q.Get("code")
	if code == "" {
		s.Logger.Warn("authorization failed", "error", q.Get("error"), "description", q.Get("error_description"))
		writeError(w, http.StatusBadRequest, "authorization failed")
		return
	}

	if verifier == "" {
		writeError(w, http.StatusBadRequest, "missing pkce verifier")
		return
	}

	c, err := s.Auth.Exchange(r.Context(), code, verifier)
	if err != nil {
		s.Logger.Warn("code exchange failed", "error", err)
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	outcome, err := s.Users.Sync(r.Context(), c)
	if err != nil {
		s.Logger.Error("user sync failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess, err := session.New(c, s.Config.SessionTTL())
	if err != nil {
		s.Logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := s.Sessions.Create(r.Context(), sess); err != nil {
		s.Logger.Error("failed to store session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.Logger.Info("login", "subject", sess.Subject, "sync", outcome)
	session.SetCookie(w, sess.ID, sess.ExpiresAt, s.cookies)

	target := s.Config.Server.BaseURL
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// logout drops the session and its cookie.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if id := session.IDFromRequest(r); id != "" {
		if err := s.Sessions.Delete(r.Context(), id); err != nil && !errors.Is(err, shared.ErrNotFound) {
			s.Logger.Warn("failed to delete session", "error", err)
		}
	}

	session.ClearCookie(w, s.cookies)
	w.WriteHeader(http.StatusNoContent)
}
