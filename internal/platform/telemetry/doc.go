// Package telemetry groups operational observability helpers.
//
// Operational telemetry is kept apart from the session journal: the journal
// records what was generated, while telemetry/metrics counts how often
// generation and reroll succeed or fail.
package telemetry
