package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/riff/internal/shared"
	"github.com/google/uuid"
)

// FavoriteID is the composite key of a [Favorite].
//
// It is a comparable value: two keys are equal iff both components match exactly.
type FavoriteID struct {
	SongPublicID uuid.UUID
	UserEmail    string
}

// String renders the key as "<song>/<email>" for logs and errors.
func (k FavoriteID) String() string {
	return fmt.Sprintf("%s/%s", k.SongPublicID, k.UserEmail)
}

// Favorite links a user to a song they marked as favorite.
//
// songPublicIDShadow and userEmailShadow back the song_public_id and user_email
// columns and are re-derived from the key whenever either half of it is set.
type Favorite struct {
	id                 FavoriteID
	songPublicIDShadow uuid.UUID
	userEmailShadow    string
	createdAt          time.Time
}

// NewFavorite creates the association between songPublicID and userEmail.
func NewFavorite(songPublicID uuid.UUID, userEmail string) *Favorite {
	f := &Favorite{createdAt: time.Now().UTC()}
	f.SetID(FavoriteID{SongPublicID: songPublicID, UserEmail: userEmail})
	return f
}

func (f *Favorite) ID() FavoriteID           { return f.id }
func (f *Favorite) SongPublicID() uuid.UUID  { return f.id.SongPublicID }
func (f *Favorite) UserEmail() string        { return f.id.UserEmail }
func (f *Favorite) CreatedAt() time.Time     { return f.createdAt }
func (f *Favorite) SetCreatedAt(t time.Time) { f.createdAt = t }

// SongPublicIDColumn is the read-only projection written to song_public_id.
func (f *Favorite) SongPublicIDColumn() uuid.UUID { return f.songPublicIDShadow }

// UserEmailColumn is the read-only projection written to user_email.
func (f *Favorite) UserEmailColumn() string { return f.userEmailShadow }

// SetID replaces the whole key.
func (f *Favorite) SetID(id FavoriteID) {
	f.id = id
	f.syncShadows()
}

// SetSongPublicID replaces the song half of the key.
func (f *Favorite) SetSongPublicID(songPublicID uuid.UUID) {
	f.id.SongPublicID = songPublicID
	f.syncShadows()
}

// SetUserEmail replaces the user half of the key.
func (f *Favorite) SetUserEmail(userEmail string) {
	f.id.UserEmail = userEmail
	f.syncShadows()
}

func (f *Favorite) syncShadows() {
	f.songPublicIDShadow = f.id.SongPublicID
	f.userEmailShadow = f.id.UserEmail
}

// Validate checks that both halves of the key are present.
func (f *Favorite) Validate() error {
	if f.id.SongPublicID == uuid.Nil {
		return fmt.Errorf("%w: song public id is required", shared.ErrValidation)
	}
	email := strings.TrimSpace(f.id.UserEmail)
	if email == "" {
		return fmt.Errorf("%w: user email is required", shared.ErrValidation)
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("%w: user email exceeds %d characters", shared.ErrValidation, MaxEmailLength)
	}
	return nil
}
