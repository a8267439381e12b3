// Package catalogtest ships a small game directory for tests that need a
// loaded catalog.
//
// The directory covers every entity kind the generator reads: all four
// ethic axes plus the gestalt ethic, regular and gestalt authorities,
// civics with enforced traits and a secondary species, origins with a
// fixed homeworld and an extended leader, biological, lithoid and machine
// archetypes, and trait opposites, planet limits and negative costs.
package catalogtest

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/louisbranch/empiregen/internal/catalog"
)

//go:embed all:game
var files embed.FS

// FS returns the game directory.
func FS() fs.FS {
	sub, err := fs.Sub(files, "game")
	if err != nil {
		panic(err)
	}
	return sub
}

// Load returns the catalog of FS and fails t on error.
func Load(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.LoadFS(FS(), "catalogtest", catalog.Options{Strict: true})
	if err != nil {
		t.Fatalf("load test catalog: %v", err)
	}
	return cat
}

// Dir writes the game directory under a temporary directory and returns
// its path, for code that loads from disk.
func Dir(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	err := fs.WalkDir(FS(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(root, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(FS(), path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		t.Fatalf("write test game directory: %v", err)
	}
	return root
}
