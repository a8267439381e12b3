package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/empiregen/internal/catalog"
	"github.com/louisbranch/empiregen/internal/engine"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// SessionRecord is one stored generation session.
type SessionRecord struct {
	ID         string
	Empire     engine.Empire
	RerollUsed bool
	// CatalogFingerprint names the catalog snapshot the empire was drawn
	// from. Sessions stored before snapshots existed leave it empty.
	CatalogFingerprint string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Session restores the engine session held by r.
func (r SessionRecord) Session() *engine.Session {
	return engine.RestoreSession(r.ID, r.Empire, r.RerollUsed)
}

// SessionStore persists generation sessions.
type SessionStore interface {
	// PutSession inserts r or replaces the stored session with the same id.
	PutSession(ctx context.Context, r SessionRecord) error
	GetSession(ctx context.Context, id string) (SessionRecord, error)
	// LatestSession returns the most recently created session.
	LatestSession(ctx context.Context) (SessionRecord, error)
	ListSessions(ctx context.Context, limit int) ([]SessionRecord, error)
}

// CatalogSnapshot is a stored catalog keyed by its fingerprint.
type CatalogSnapshot struct {
	Fingerprint string
	Catalog     *catalog.Catalog
	CreatedAt   time.Time
}

// CatalogStore persists the catalogs sessions were generated from, so a
// later reroll sees the same entities.
type CatalogStore interface {
	// PutCatalogSnapshot stores c under its fingerprint. Storing the same
	// fingerprint again is a no-op.
	PutCatalogSnapshot(ctx context.Context, c *catalog.Catalog) error
	GetCatalogSnapshot(ctx context.Context, fingerprint string) (CatalogSnapshot, error)
}

// TelemetryEvent is one operational event: a generation, a reroll, or a
// failure of either.
type TelemetryEvent struct {
	Timestamp  time.Time
	EventName  string
	Severity   string
	SessionID  string
	TraceID    string
	SpanID     string
	Attributes map[string]any
}

// TelemetryStore persists operational telemetry records.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
	// ListTelemetryEvents returns up to limit events, newest first. An empty
	// sessionID lists every session's events.
	ListTelemetryEvents(ctx context.Context, sessionID string, limit int) ([]TelemetryEvent, error)
}
