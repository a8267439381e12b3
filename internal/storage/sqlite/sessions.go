package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/empiregen/internal/storage"
)

const sessionColumns = `id, empire_json, reroll_used, catalog_fingerprint, created_at, updated_at`

// PutSession inserts a session or replaces the empire and reroll flag of an
// existing one, keeping its creation time and catalog fingerprint.
func (s *Store) PutSession(ctx context.Context, r storage.SessionRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	empireJSON, err := json.Marshal(r.Empire)
	if err != nil {
		return fmt.Errorf("encode empire: %w", err)
	}
	createdAt := r.CreatedAt.UTC()
	updatedAt := r.UpdatedAt.UTC()
	if createdAt.IsZero() && updatedAt.IsZero() {
		createdAt = time.Now().UTC()
		updatedAt = createdAt
	} else {
		if createdAt.IsZero() {
			createdAt = updatedAt
		}
		if updatedAt.IsZero() {
			updatedAt = createdAt
		}
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   empire_json = excluded.empire_json,
		   reroll_used = excluded.reroll_used,
		   updated_at = excluded.updated_at`,
		id,
		string(empireJSON),
		r.RerollUsed,
		strings.TrimSpace(r.CatalogFingerprint),
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession returns one session by id.
func (s *Store) GetSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SessionRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.SessionRecord{}, fmt.Errorf("session id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	r, err := scanSession(row)
	if err != nil {
		return storage.SessionRecord{}, fmt.Errorf("get session: %w", err)
	}
	return r, nil
}

// LatestSession returns the most recently created session.
func (s *Store) LatestSession(ctx context.Context) (storage.SessionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SessionRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	r, err := scanSession(row)
	if err != nil {
		return storage.SessionRecord{}, fmt.Errorf("latest session: %w", err)
	}
	return r, nil
}

// ListSessions returns up to limit sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]storage.SessionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []storage.SessionRecord
	for rows.Next() {
		r, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (storage.SessionRecord, error) {
	var (
		r          storage.SessionRecord
		empireJSON string
		createdAt  int64
		updatedAt  int64
	)
	if err := row.Scan(&r.ID, &empireJSON, &r.RerollUsed, &r.CatalogFingerprint, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SessionRecord{}, storage.ErrNotFound
		}
		return storage.SessionRecord{}, err
	}
	if err := json.Unmarshal([]byte(empireJSON), &r.Empire); err != nil {
		return storage.SessionRecord{}, fmt.Errorf("decode empire of %s: %w", r.ID, err)
	}
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updatedAt)
	return r, nil
}
