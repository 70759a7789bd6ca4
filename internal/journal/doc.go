// Package journal provides an optional SQLite-backed log of mutating Notes
// operations.
//
// One row is appended per create, update, delete, attach or export command,
// inside the process-wide lock, so the seq column reflects the order in which
// mutations reached the Notes application. Rows hold identifiers and outcomes
// only, never note content.
//
// # Database Configuration
//
//   - WAL mode: concurrent readers while a sidecar writes
//   - busy_timeout=5000: wait for other sidecar processes
//
// Entries are read back newest first with ORDER BY seq DESC, id ASC.
package journal
