// Package store provides SQLite-backed durable storage for learner progress,
// certificates and badges.
//
// The store holds:
//   - Module progress: one row per (user, module), created lazily
//   - Certificates: append-only, one per (user, track)
//   - Badges: reference definitions seeded from the catalog
//   - User badges: append-only, one per (user, badge)
//
// # Idempotency
//
// Every mutation is safe to repeat or race:
//   - Progress get-or-create is INSERT ... ON CONFLICT DO NOTHING + re-select
//   - Progress update is read-merge-write in one transaction; the merge
//     (model.Apply) is monotonic
//   - Certificate and user-badge inserts rely on UNIQUE constraints and
//     report model.ErrConflict so callers can re-read the winning row
//
// # Time
//
// Timestamps are stored as fixed-width UTC TEXT (nanosecond precision) so
// lexical ORDER BY matches chronological order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
