// Package history keeps a SQLite ledger of builds.
//
// Three tables:
//   - builds: one row per build run, with its outcome
//   - build_outputs: size and SHA-256 of every file a build wrote
//   - allocations: every codepoint ever assigned, with the icon it was
//     assigned to
//
// Allocations are insert-only (ON CONFLICT DO NOTHING), so a codepoint
// stays reserved after its icon leaves the manifest and the reconciler
// never hands it out again.
//
// # Database Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//   - schema version tracked in PRAGMA user_version
package history
