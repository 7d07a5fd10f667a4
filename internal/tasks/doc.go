// Package tasks reconciles users in bulk with real-time progress reporting.
//
// # Core Operations
//
// [ImportEngine.BulkImport] reconciles many identity provider claim sets against the local user store:
//   - Claim sets are read with [ReadClaimSets] from a JSON array or JSON lines
//   - A bounded worker pool hands each set to the user service
//   - An optional rate limit throttles how fast sets are dispatched
//   - Per-set outcomes are tallied into a [BulkImportResult]
//
// # Progress Reporting
//
// Operations report through a send-only channel of [ProgressUpdate].
// Updates use select with default to prevent blocking, so a slow or absent reader never stalls an import.
package tasks
