package ui

import (
	"github.com/google/uuid"

	"github.com/desertthunder/riff/internal/models"
)

// favoritesFetchedMsg carries the result of loading the user's favorites.
type favoritesFetchedMsg struct {
	favorites []*models.Favorite
	err       error
}

// favoriteRemovedMsg carries the result of removing one favorite.
type favoriteRemovedMsg struct {
	songID uuid.UUID
	err    error
}
