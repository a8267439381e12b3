// Package timeouts defines shared timeout constants.
// Centralizing these values keeps the command and its stores in agreement
// and makes the durations discoverable.
package timeouts

import "time"

// Shutdown limits how long telemetry providers may spend flushing when a
// command exits.
const Shutdown = 5 * time.Second

// StoreBusy is how long a SQLite connection waits on a locked database
// before failing, for example when two commands reroll at once.
const StoreBusy = 5 * time.Second
