// Package store provides SQLite-backed history of generation runs and a
// cache of fetched IDL documents.
//
// # Tables
//
//   - runs: one row per program per generation, append-only
//   - idl_cache: the latest raw document fetched for each source
//
// # Ordering
//
// Runs carry a seq INTEGER from a per-store counter. Every listing orders
// by seq DESC, id ASC COLLATE BINARY so results are identical across
// reads regardless of wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks
//   - foreign_keys=ON
package store
