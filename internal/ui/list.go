package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/riff/internal/models"
)

var _ list.Item = favoriteItem{}

// favoriteItem wraps [models.Favorite] to implement [list.Item].
type favoriteItem struct {
	favorite *models.Favorite
}

func (i favoriteItem) FilterValue() string { return i.favorite.SongPublicID().String() }
func (i favoriteItem) Title() string       { return i.favorite.SongPublicID().String() }
func (i favoriteItem) Description() string {
	return fmt.Sprintf("added %s", i.favorite.CreatedAt().Local().Format("2006-01-02 15:04"))
}
