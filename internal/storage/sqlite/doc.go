// Package sqlite stores generation sessions and telemetry events in SQLite.
//
// Empires are stored as JSON so the schema does not follow every field of
// engine.Empire. Timestamps are UTC Unix milliseconds.
package sqlite
