package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/riff/internal/shared"
)

// MaxEmailLength bounds the email column shared by users and favorites.
const MaxEmailLength = 255

// User is a locally stored user record. Email is the identity key; the
// remaining profile fields are owned by the identity provider.
type User struct {
	id           string
	sequence     int
	email        string
	firstName    string
	lastName     string
	imageURL     string
	createdAt    time.Time
	lastModified *time.Time
}

// NewUser creates a [User] with the given email and a creation time of now.
func NewUser(email string) *User {
	return &User{email: email, createdAt: time.Now().UTC()}
}

func (u *User) ID() string                   { return u.id }
func (u *User) Sequence() int                { return u.sequence }
func (u *User) Email() string                { return u.email }
func (u *User) FirstName() string            { return u.firstName }
func (u *User) LastName() string             { return u.lastName }
func (u *User) ImageURL() string             { return u.imageURL }
func (u *User) CreatedAt() time.Time         { return u.createdAt }
func (u *User) LastModified() *time.Time     { return u.lastModified }
func (u *User) SetID(id string)              { u.id = id }
func (u *User) SetSequence(sequence int)     { u.sequence = sequence }
func (u *User) SetEmail(email string)        { u.email = email }
func (u *User) SetFirstName(name string)     { u.firstName = name }
func (u *User) SetLastName(name string)      { u.lastName = name }
func (u *User) SetImageURL(url string)       { u.imageURL = url }
func (u *User) SetCreatedAt(t time.Time)     { u.createdAt = t }
func (u *User) SetLastModified(t *time.Time) { u.lastModified = t }

// ApplyProfile overwrites the identity-provider owned fields with those of other.
func (u *User) ApplyProfile(other *User) {
	u.email = other.email
	u.imageURL = other.imageURL
	u.firstName = other.firstName
	u.lastName = other.lastName
}

// ModifiedBefore reports whether t is strictly after the stored last-modified
// time. An absent stored time is treated as infinitely old.
func (u *User) ModifiedBefore(t time.Time) bool {
	return u.lastModified == nil || t.After(*u.lastModified)
}

// Validate checks that the user has a usable email.
func (u *User) Validate() error {
	email := strings.TrimSpace(u.email)
	if email == "" {
		return fmt.Errorf("%w: email is required", shared.ErrValidation)
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("%w: email exceeds %d characters", shared.ErrValidation, MaxEmailLength)
	}
	return nil
}
