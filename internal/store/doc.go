// Package store provides SQLite-backed storage for optimization results.
//
// Two tables are kept:
//   - optimizations: a content-addressed cache from source program to
//     optimized program, keyed by SourceHash
//   - runs: one record per optimizer invocation, with its per-pass report
//     stored as canonical JSON
//
// # Logical Time
//
// Records are ordered by seq, an integer logical clock assigned on insert
// (MAX(seq)+1 within the table). Wall time is never stored, so a database
// built from the same inputs in the same order is byte-for-byte comparable.
//
// # Identity
//
// Source hashes are SHA-256 with domain separation:
//
//	SHA256("basm/source/v1" + 0x00 + source)
//
// Run IDs are UUIDv7 by default; tests inject a fixed generator.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Runs must reference a cached optimization
package store
