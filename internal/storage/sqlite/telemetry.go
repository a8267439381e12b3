package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/louisbranch/empiregen/internal/storage"
)

// AppendTelemetryEvent records one telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	name := strings.TrimSpace(evt.EventName)
	if name == "" {
		return fmt.Errorf("event name is required")
	}
	if evt.Timestamp.IsZero() {
		return fmt.Errorf("event timestamp is required")
	}
	attrs := evt.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("encode telemetry attributes: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO telemetry_events (
		   timestamp, event_name, severity, session_id, trace_id, span_id, attributes_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		toMillis(evt.Timestamp),
		name,
		evt.Severity,
		evt.SessionID,
		evt.TraceID,
		evt.SpanID,
		string(attrsJSON),
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

// ListTelemetryEvents returns up to limit events, newest first, optionally
// for one session.
func (s *Store) ListTelemetryEvents(ctx context.Context, sessionID string, limit int) ([]storage.TelemetryEvent, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT timestamp, event_name, severity, session_id, trace_id, span_id, attributes_json
		   FROM telemetry_events
		  WHERE ? = '' OR session_id = ?
		  ORDER BY id DESC
		  LIMIT ?`,
		sessionID, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list telemetry events: %w", err)
	}
	defer rows.Close()

	var out []storage.TelemetryEvent
	for rows.Next() {
		var (
			evt       storage.TelemetryEvent
			timestamp int64
			attrsJSON string
		)
		if err := rows.Scan(&timestamp, &evt.EventName, &evt.Severity, &evt.SessionID, &evt.TraceID, &evt.SpanID, &attrsJSON); err != nil {
			return nil, fmt.Errorf("list telemetry events: %w", err)
		}
		evt.Timestamp = fromMillis(timestamp)
		if err := json.Unmarshal([]byte(attrsJSON), &evt.Attributes); err != nil {
			return nil, fmt.Errorf("decode telemetry attributes: %w", err)
		}
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list telemetry events: %w", err)
	}
	return out, nil
}
