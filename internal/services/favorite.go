package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/desertthunder/riff/internal/models"
)

// FavoriteService records the songs users have favorited.
type FavoriteService struct {
	favorites FavoriteStore
	logger    *log.Logger
}

// NewFavoriteService creates a [FavoriteService].
func NewFavoriteService(favorites FavoriteStore, logger *log.Logger) *FavoriteService {
	return &FavoriteService{favorites: favorites, logger: logger}
}

// Add favorites songID for email. Adding the same pair twice fails with [shared.ErrDuplicate].
func (s *FavoriteService) Add(ctx context.Context, songID uuid.UUID, email string) (*models.Favorite, error) {
	favorite := models.NewFavorite(songID, strings.TrimSpace(email))

	if err := s.favorites.Create(ctx, favorite); err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}

	s.logger.Debug("favorite added", "song", songID, "email", favorite.UserEmail())
	return favorite, nil
}

// Remove deletes the favorite for songID and email. A missing favorite fails with
// [shared.ErrNotFound].
func (s *FavoriteService) Remove(ctx context.Context, songID uuid.UUID, email string) error {
	key := models.FavoriteID{SongPublicID: songID, UserEmail: strings.TrimSpace(email)}

	if err := s.favorites.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	s.logger.Debug("favorite removed", "key", key)
	return nil
}

// IsFavorite reports whether email has favorited songID.
func (s *FavoriteService) IsFavorite(ctx context.Context, songID uuid.UUID, email string) (bool, error) {
	return s.favorites.Exists(ctx, models.FavoriteID{SongPublicID: songID, UserEmail: strings.TrimSpace(email)})
}

// ListForUser returns the favorites of email, newest first.
func (s *FavoriteService) ListForUser(ctx context.Context, email string) ([]*models.Favorite, error) {
	return s.favorites.ListByUser(ctx, strings.TrimSpace(email))
}

// ListForSong returns every favorite of songID, newest first.
func (s *FavoriteService) ListForSong(ctx context.Context, songID uuid.UUID) ([]*models.Favorite, error) {
	return s.favorites.ListBySong(ctx, songID)
}
