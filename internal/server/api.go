package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/desertthunder/riff/internal/identity"
	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/services"
	"github.com/desertthunder/riff/internal/shared"
)

type errorResponse struct {
	Error string `json:"error"`
}

type sessionResponse struct {
	Authenticated bool               `json:"authenticated"`
	User          *services.ReadUser `json:"user"`
}

type favoriteResponse struct {
	SongPublicID uuid.UUID `json:"songPublicId"`
	UserEmail    string    `json:"userEmail"`
	CreatedAt    string    `json:"createdAt"`
}

func newFavoriteResponse(f *models.Favorite) favoriteResponse {
	return favoriteResponse{
		SongPublicID: f.SongPublicID(),
		UserEmail:    f.UserEmail(),
		CreatedAt:    f.CreatedAt().UTC().Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// currentSession reports whether the caller is logged in and who they are.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) {
	p := identity.PrincipalFrom(r.Context())

	resp := sessionResponse{Authenticated: s.Users.IsAuthenticated(p)}
	if user, ok := s.Users.AuthenticatedUser(p); ok {
		resp.User = user
	}
	writeJSON(w, http.StatusOK, resp)
}

// caller returns the projected user behind the request, writing 401 when there is none.
func (s *Server) caller(w http.ResponseWriter, r *http.Request) (*services.ReadUser, bool) {
	user, ok := s.Users.AuthenticatedUser(identity.PrincipalFrom(r.Context()))
	if !ok || user.Email == "" {
		writeError(w, http.StatusUnauthorized, shared.ErrNoPrincipal.Error())
		return nil, false
	}
	return user, true
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) userByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	user, err := s.Users.ByEmail(r.Context(), email)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	favorites, err := s.Favorites.ListForUser(r.Context(), user.Email)
	if err != nil {
		s.fail(w, err)
		return
	}

	out := make([]favoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, newFavoriteResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func songID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("songID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid song id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := songID(w, r)
	if !ok {
		return
	}

	favorite, err := s.Favorites.Add(r.Context(), id, user.Email)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newFavoriteResponse(favorite))
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := songID(w, r)
	if !ok {
		return
	}

	if err := s.Favorites.Remove(r.Context(), id, user.Email); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
