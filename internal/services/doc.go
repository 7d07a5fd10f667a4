// Package services implements the account and library operations of riff on top of the
// repositories package.
//
// # User Reconciliation
//
// [UserService.Sync] keeps the local user record in step with the identity provider. Each
// login presents a claim set; the service derives a candidate user from it with [MapClaims]
// and then:
//   - inserts it when no user with the derived email exists ([OutcomeCreated])
//   - overwrites the stored profile when the provider's updated_at is strictly newer than
//     the stored last-modified time, or no time is stored ([OutcomeUpdated])
//   - leaves the record alone otherwise ([OutcomeUnchanged])
//
// The insert tolerates a concurrent insert of the same email and the overwrite is a single
// conditional statement, so two logins racing for one user settle on the newest profile.
//
// # Principals
//
// Services never read an ambient security context. Callers pass the [identity.Principal]
// they resolved for the request to [UserService.AuthenticatedUser] and
// [UserService.IsAuthenticated].
//
// # Favorites
//
// [FavoriteService] records which songs a user has favorited. A favorite is keyed by the
// song's public ID and the user's email.
//
// # Error Handling
//
// Services return typed errors from the shared package:
//   - [shared.ErrNotFound] : no such user or favorite
//   - [shared.ErrDuplicate] : favorite already recorded
//   - [shared.ErrValidation] : record failed validation
//
// Unparseable provider timestamps are logged and never returned as errors.
package services
