package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/empiregen/internal/catalog"
	"github.com/louisbranch/empiregen/internal/storage"
)

// PutCatalogSnapshot stores c under its fingerprint unless that
// fingerprint is already present.
func (s *Store) PutCatalogSnapshot(ctx context.Context, c *catalog.Catalog) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("catalog is required")
	}
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO catalog_snapshots (fingerprint, catalog_json, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (fingerprint) DO NOTHING`,
		c.Fingerprint(),
		string(data),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put catalog snapshot: %w", err)
	}
	return nil
}

// GetCatalogSnapshot returns the catalog stored under fingerprint.
func (s *Store) GetCatalogSnapshot(ctx context.Context, fingerprint string) (storage.CatalogSnapshot, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CatalogSnapshot{}, err
	}
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return storage.CatalogSnapshot{}, fmt.Errorf("catalog fingerprint is required")
	}

	var (
		data      string
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT catalog_json, created_at FROM catalog_snapshots WHERE fingerprint = ?`, fingerprint,
	).Scan(&data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CatalogSnapshot{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CatalogSnapshot{}, fmt.Errorf("get catalog snapshot: %w", err)
	}

	cat, err := catalog.Decode([]byte(data))
	if err != nil {
		return storage.CatalogSnapshot{}, fmt.Errorf("catalog snapshot %s: %w", fingerprint, err)
	}
	if got := cat.Fingerprint(); got != fingerprint {
		return storage.CatalogSnapshot{}, fmt.Errorf("catalog snapshot %s decodes to %s", fingerprint, got)
	}
	return storage.CatalogSnapshot{Fingerprint: fingerprint, Catalog: cat, CreatedAt: fromMillis(createdAt)}, nil
}
