package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/riff/internal/formatter"
	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/ui"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

type favoriteRow struct {
	SongPublicID string    `json:"songPublicId"`
	UserEmail    string    `json:"userEmail"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newFavoriteRows(favorites []*models.Favorite) []favoriteRow {
	rows := make([]favoriteRow, 0, len(favorites))
	for _, f := range favorites {
		rows = append(rows, favoriteRow{
			SongPublicID: f.SongPublicID().String(),
			UserEmail:    f.UserEmail(),
			CreatedAt:    f.CreatedAt(),
		})
	}
	return rows
}

func parseSong(cmd *cli.Command) (uuid.UUID, error) {
	id, err := uuid.Parse(cmd.String("song"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: --song must be a UUID: %v", shared.ErrInvalidArgument, err)
	}
	return id, nil
}

// FavoriteAdd marks a song as a favorite of a user.
func (r *Runner) FavoriteAdd(ctx context.Context, cmd *cli.Command) error {
	song, err := parseSong(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	favorite, err := r.favorites.Add(ctx, song, cmd.String("email"))
	if err != nil {
		return err
	}
	r.writePlain("%s %s\n", ui.Success("✓ added"), favorite.ID())
	return nil
}

// FavoriteRemove removes a song from a user's favorites.
func (r *Runner) FavoriteRemove(ctx context.Context, cmd *cli.Command) error {
	song, err := parseSong(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.favorites.Remove(ctx, song, cmd.String("email")); err != nil {
		return err
	}
	r.writePlain("%s %s\n", ui.Success("✓ removed"), song)
	return nil
}

// FavoriteList prints the favorites of a user, newest first.
func (r *Runner) FavoriteList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	email := cmd.String("email")
	favorites, err := r.favorites.ListForUser(ctx, email)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(newFavoriteRows(favorites), cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Favorites of %s (%d)", email, len(favorites)))
	for _, f := range favorites {
		r.writePlain("  %s  %s\n", f.SongPublicID(), ui.Muted(f.CreatedAt().Local().Format(time.DateTime)))
	}
	return nil
}

// FavoriteExport writes the favorites of a user to a file.
func (r *Runner) FavoriteExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	email := cmd.String("email")
	favorites, err := r.favorites.ListForUser(ctx, email)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(&formatter.FavoriteExport{
		Email:      email,
		ExportedAt: time.Now(),
		Favorites:  favorites,
	}, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("favorites exported", "email", email, "count", len(favorites), "path", path)
	r.writePlain("%s %d favorites to %s\n", ui.Success("✓ exported"), len(favorites), path)
	return nil
}

// FavoriteFans prints the users who favorited a song.
func (r *Runner) FavoriteFans(ctx context.Context, cmd *cli.Command) error {
	song, err := parseSong(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	favorites, err := r.favorites.ListForSong(ctx, song)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(newFavoriteRows(favorites), cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Fans of %s (%d)", song, len(favorites)))
	for _, f := range favorites {
		r.writePlain("  %-32s %s\n", f.UserEmail(), ui.Muted(f.CreatedAt().Local().Format(time.DateTime)))
	}
	return nil
}
