package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/google/uuid"
)

const favoriteColumns = `song_public_id, user_email, created_at`

// FavoriteRepository persists [models.Favorite] rows in the favorite_song table.
//
// Rows are written from the favorite's shadow columns and read back through its
// composite key, so both views agree for every favorite it returns.
type FavoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new [FavoriteRepository] with the given database connection
func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Create inserts a favorite. A second favorite with an equal key fails with [shared.ErrDuplicate].
func (r *FavoriteRepository) Create(ctx context.Context, favorite *models.Favorite) error {
	if err := favorite.Validate(); err != nil {
		return err
	}

	if favorite.CreatedAt().IsZero() {
		favorite.SetCreatedAt(time.Now().UTC())
	}

	query := `INSERT INTO favorite_song (` + favoriteColumns + `) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		favorite.SongPublicIDColumn().String(),
		favorite.UserEmailColumn(),
		favorite.CreatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", mapError(err))
	}

	return nil
}

// Get retrieves a favorite by its composite key
func (r *FavoriteRepository) Get(ctx context.Context, key models.FavoriteID) (*models.Favorite, error) {
	query := `SELECT ` + favoriteColumns + ` FROM favorite_song WHERE song_public_id = ? AND user_email = ?`

	favorite, err := scanFavorite(r.db.QueryRowContext(ctx, query, key.SongPublicID.String(), key.UserEmail))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: favorite %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite: %w", err)
	}

	return favorite, nil
}

// Exists reports whether a favorite with the given key is stored.
func (r *FavoriteRepository) Exists(ctx context.Context, key models.FavoriteID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM favorite_song WHERE song_public_id = ? AND user_email = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, key.SongPublicID.String(), key.UserEmail).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query favorite: %w", err)
	}

	return exists, nil
}

// Delete removes the favorite with the given key
func (r *FavoriteRepository) Delete(ctx context.Context, key models.FavoriteID) error {
	query := `DELETE FROM favorite_song WHERE song_public_id = ? AND user_email = ?`

	result, err := r.db.ExecContext(ctx, query, key.SongPublicID.String(), key.UserEmail)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: favorite %s", shared.ErrNotFound, key)
	}

	return nil
}

// ListByUser returns the favorites of a user, newest first.
func (r *FavoriteRepository) ListByUser(ctx context.Context, email string) ([]*models.Favorite, error) {
	query := `SELECT ` + favoriteColumns + ` FROM favorite_song WHERE user_email = ? ORDER BY created_at DESC, song_public_id ASC`
	return r.list(ctx, query, email)
}

// ListBySong returns every favorite of a song, newest first.
func (r *FavoriteRepository) ListBySong(ctx context.Context, songPublicID uuid.UUID) ([]*models.Favorite, error) {
	query := `SELECT ` + favoriteColumns + ` FROM favorite_song WHERE song_public_id = ? ORDER BY created_at DESC, user_email ASC`
	return r.list(ctx, query, songPublicID.String())
}

func (r *FavoriteRepository) list(ctx context.Context, query string, args ...any) ([]*models.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*models.Favorite
	for rows.Next() {
		favorite, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, favorite)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return favorites, nil
}

func scanFavorite(row rowScanner) (*models.Favorite, error) {
	var (
		songPublicID string
		userEmail    string
		createdAt    time.Time
	)

	if err := row.Scan(&songPublicID, &userEmail, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(songPublicID)
	if err != nil {
		return nil, fmt.Errorf("invalid song public id %q: %w", songPublicID, err)
	}

	favorite := models.NewFavorite(id, userEmail)
	favorite.SetCreatedAt(createdAt)
	return favorite, nil
}
