// Package repositories implements SQLite persistence for all domain entities.
//
// Key Implementations:
//   - [UserRepository] : User persistence with email-based lookups, a conflict-tolerant insert
//     ([UserRepository.CreateIfAbsent]) and a timestamp-guarded update ([UserRepository.UpdateIfNewer])
//   - [FavoriteRepository] : favorite_song join records keyed by song public id and user email
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// Constraint violations reported by the sqlite driver are translated to [shared.ErrDuplicate];
// missing rows are reported as [shared.ErrNotFound].
package repositories
