package migrations

import "embed"

// FS contains embedded SQLite migrations for session and telemetry storage.
//
//go:embed *.sql
var FS embed.FS
