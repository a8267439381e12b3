package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyMigrationsInOrder(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"002_index.sql":  {Data: []byte("-- +migrate Up\nCREATE INDEX items_name ON items(name);\n-- +migrate Down\nDROP INDEX items_name;")},
		"001_create.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY, name TEXT);")},
		"README.md":      {Data: []byte("not a migration")},
	}

	applied, err := ApplyMigrations(context.Background(), db, migrations, "")
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if want := []string{"001_create.sql", "002_index.sql"}; !slices.Equal(applied, want) {
		t.Fatalf("applied = %v, want %v", applied, want)
	}
	if got := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 2 {
		t.Fatalf("recorded migrations = %d, want 2", got)
	}
	if !tableExists(t, db, "items") {
		t.Fatal("expected items table")
	}
}

func TestApplyMigrationsSkipsApplied(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"001_create.sql": {Data: []byte("CREATE TABLE items(id TEXT PRIMARY KEY);")},
	}
	ctx := context.Background()
	if _, err := ApplyMigrations(ctx, db, migrations, ""); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	applied, err := ApplyMigrations(ctx, db, migrations, "")
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("second apply ran %v", applied)
	}
}

func TestApplyMigrationsDoesNotRecordFailure(t *testing.T) {
	db := openInMemoryDB(t)
	ctx := context.Background()
	bad := fstest.MapFS{
		"001_things.sql": {Data: []byte("-- +migrate Up\nCREAT table things(id INT);")},
	}
	if _, err := ApplyMigrations(ctx, db, bad, ""); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if got := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 0 {
		t.Fatalf("failed migration recorded %d rows", got)
	}

	good := fstest.MapFS{
		"001_things.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE things(id INTEGER PRIMARY KEY);")},
	}
	if _, err := ApplyMigrations(ctx, db, good, ""); err != nil {
		t.Fatalf("apply fixed migration: %v", err)
	}
	if !tableExists(t, db, "things") {
		t.Fatal("expected things table")
	}
}

func TestApplyMigrationsUnderRoot(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"sessions/001_sessions.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE rows(id TEXT PRIMARY KEY);")},
	}
	applied, err := ApplyMigrations(context.Background(), db, migrations, "sessions")
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if !slices.Equal(applied, []string{"sessions/001_sessions.sql"}) {
		t.Fatalf("applied = %v", applied)
	}
	if got := queryString(t, db, "SELECT name FROM schema_migrations LIMIT 1"); got != "sessions/001_sessions.sql" {
		t.Fatalf("migration key = %q", got)
	}
}

func TestApplyMigrationsRequiresDB(t *testing.T) {
	if _, err := ApplyMigrations(context.Background(), nil, fstest.MapFS{}, ""); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "CREATE TABLE a(id INT);", want: "CREATE TABLE a(id INT);"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a(id INT);", want: "\nCREATE TABLE a(id INT);"},
		{name: "up and down", content: "-- +migrate Up\nA;\n-- +migrate Down\nB;", want: "\nA;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractUpMigration(tt.content); got != tt.want {
				t.Fatalf("ExtractUpMigration = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	if !IsAlreadyExistsError(errors.New("table items already exists")) {
		t.Fatal("expected already exists")
	}
	if !IsAlreadyExistsError(errors.New("duplicate column name: name")) {
		t.Fatal("expected duplicate column")
	}
	if IsAlreadyExistsError(errors.New("syntax error")) {
		t.Fatal("syntax error is not idempotent DDL")
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func queryInt64(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var value int64
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return value
}

func queryString(t *testing.T, db *sql.DB, query string) string {
	t.Helper()
	var value string
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return value
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		t.Fatalf("check table %s: %v", name, err)
	}
	return found == name
}
