// Package telemetry records operational events for generations and rerolls.
package telemetry

import (
	"context"
	"time"

	"github.com/louisbranch/empiregen/internal/storage"
	"go.opentelemetry.io/otel/trace"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event names written to the journal.
const (
	EventEmpireGenerated  = "empire.generated"
	EventEmpireRerolled   = "empire.rerolled"
	EventRerollFailed     = "reroll.failed"
	EventGenerationFailed = "generation.failed"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
// Trace and span ids are filled from the span in ctx when unset.
func (e *Emitter) Emit(ctx context.Context, evt storage.TelemetryEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	if evt.Severity == "" {
		evt.Severity = string(SeverityInfo)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		if evt.TraceID == "" {
			evt.TraceID = sc.TraceID().String()
		}
		if evt.SpanID == "" {
			evt.SpanID = sc.SpanID().String()
		}
	}
	return e.store.AppendTelemetryEvent(ctx, evt)
}
