package services

import (
	"context"
	"time"

	"github.com/desertthunder/riff/internal/models"
	"github.com/google/uuid"
)

// UserStore is the persistence needed by [UserService]. It is implemented by
// [repositories.UserRepository].
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CreateIfAbsent(ctx context.Context, user *models.User) (bool, error)
	UpdateIfNewer(ctx context.Context, user *models.User, modified time.Time) (bool, error)
	List(ctx context.Context, criteria map[string]any) ([]*models.User, error)
}

// FavoriteStore is the persistence needed by [FavoriteService]. It is implemented by
// [repositories.FavoriteRepository].
type FavoriteStore interface {
	Create(ctx context.Context, favorite *models.Favorite) error
	Delete(ctx context.Context, key models.FavoriteID) error
	Exists(ctx context.Context, key models.FavoriteID) (bool, error)
	ListByUser(ctx context.Context, email string) ([]*models.Favorite, error)
	ListBySong(ctx context.Context, songPublicID uuid.UUID) ([]*models.Favorite, error)
}

// Recorder observes reconciliation outcomes.
type Recorder interface {
	RecordSync(outcome Outcome)
}

// ReadUser is the read-only projection of a user returned to clients.
type ReadUser struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// NewReadUser projects u.
func NewReadUser(u *models.User) *ReadUser {
	return &ReadUser{
		Email:     u.Email(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		ImageURL:  u.ImageURL(),
	}
}
