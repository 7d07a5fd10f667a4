// Package models defines domain entities and persistence interfaces for the riff backend.
//
// The package contains two persistent entities:
//   - [User] : Local user record keyed by email, reconciled against identity provider claims
//   - [Favorite] : Association between a user (by email) and a song (by public id), keyed by [FavoriteID]
//
// [User] implements the [Model] interface providing ID generation, timestamps and validation.
// [Favorite] is a plain join record; its key is a comparable value type so two keys are equal
// exactly when both components are equal, and keys can be used directly as map keys.
package models
