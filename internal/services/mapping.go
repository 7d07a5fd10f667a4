package services

import (
	"strings"

	"github.com/desertthunder/riff/internal/claims"
	"github.com/desertthunder/riff/internal/models"
)

// MapClaims derives a candidate user from an identity provider claim set.
//
// Absent claims leave the matching field unset. The email is the email claim when present and not blank.
// Otherwise a subject of the form "provider|id" paired with a username that looks like an
// address yields the lower-cased username, and any other subject is used verbatim.
func MapClaims(c claims.Claims) *models.User {
	username, _ := c.String(claims.PreferredUsername)
	username = strings.ToLower(username)

	user := models.NewUser(deriveEmail(c, username))

	if first, ok := c.String(claims.GivenName); ok {
		user.SetFirstName(first)
	} else if name, ok := c.String(claims.Name); ok {
		user.SetFirstName(name)
	}

	if last, ok := c.String(claims.FamilyName); ok {
		user.SetLastName(last)
	}

	if picture, ok := c.String(claims.Picture); ok {
		user.SetImageURL(picture)
	}

	return user
}

func deriveEmail(c claims.Claims, username string) string {
	if email, ok := c.String(claims.Email); ok && strings.TrimSpace(email) != "" {
		return email
	}

	sub, _ := c.String(claims.Subject)
	if strings.Contains(sub, "|") && strings.Contains(username, "@") {
		return username
	}
	return sub
}
