// Package storage defines the persistence contracts for generation sessions
// and the operational telemetry journal.
//
// Implementations live in subpackages (see storage/sqlite).
//
// # Error Types
//
// Implementations report a missing session with ErrNotFound.
package storage
