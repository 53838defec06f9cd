// Package trace provides a SQLite-backed journal of every emulated call made
// during a local run.
//
// The journal is append-only:
//   - Runs: one row per harness invocation (run id, audit type, site id)
//   - Calls: one row per emulated operation, stamped with a logical seq
//
// # Ordering
//
// Calls are ordered by seq (a per-run logical clock), never by wall time, so
// two runs over the same sample data produce identical call sequences. All
// reads use ORDER BY seq ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The default location is ":memory:", which keeps the journal for the
// lifetime of the process only. Passing a file path keeps it for inspection
// with `auditlocal trace`.
package trace
