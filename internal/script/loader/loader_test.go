package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/louisbranch/empiregen/internal/script/ast"
)

func quietLoader(fsys fstest.MapFS) *Loader {
	l := New(fsys)
	l.Logf = func(string, ...any) {}
	return l
}

func TestLoadDirectoryConcatenatesInSortedOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"common/ethics/b.txt":    {Data: []byte("second = 2")},
		"common/ethics/a.txt":    {Data: []byte("first = 1")},
		"common/ethics/skip.yml": {Data: []byte("ignored = 1")},
	}
	res, err := quietLoader(fsys).LoadDirectory("common/ethics", nil)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	keys := res.Root.Keys()
	if len(keys) != 2 || keys[0] != "first" || keys[1] != "second" {
		t.Fatalf("keys = %v", keys)
	}
	if len(res.Files) != 2 || res.Files[0] != "common/ethics/a.txt" {
		t.Fatalf("files = %v", res.Files)
	}
}

func TestLoadDirectoryMissingDirIsEmpty(t *testing.T) {
	res, err := quietLoader(fstest.MapFS{}).LoadDirectory("common/nowhere", nil)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if res.Root == nil || len(res.Root.Children) != 0 {
		t.Fatalf("expected empty root, got %#v", res.Root)
	}
}

func TestLoadDirectoryIsolatesFileVariables(t *testing.T) {
	fsys := fstest.MapFS{
		"d/a.txt": {Data: []byte("@local = 5\na = @local\nb = @global")},
		"d/b.txt": {Data: []byte("c = @local")},
		"d/c.txt": {Data: []byte("d = @global")},
	}
	globals := ast.Scope{"global": "9"}
	res, err := quietLoader(fsys).LoadDirectory("d", globals)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if res.Root.Get("a") != "5" || res.Root.Get("b") != "9" || res.Root.Get("d") != "9" {
		t.Fatalf("unexpected values: a=%q b=%q d=%q", res.Root.Get("a"), res.Root.Get("b"), res.Root.Get("d"))
	}
	if len(res.Skipped) != 1 || res.Skipped[0].File != "d/b.txt" {
		t.Fatalf("expected sibling file to fail on @local, skipped = %v", res.Skipped)
	}
	if _, ok := globals["local"]; ok {
		t.Fatal("file definitions leaked into globals")
	}
}

func TestLoadDirectoryStrict(t *testing.T) {
	fsys := fstest.MapFS{
		"d/a.txt": {Data: []byte("a = {")},
	}
	l := quietLoader(fsys)
	l.Strict = true
	_, err := l.LoadDirectory("d", nil)
	var fileErr *FileError
	if !errors.As(err, &fileErr) || fileErr.File != "d/a.txt" {
		t.Fatalf("error = %v, want *FileError for d/a.txt", err)
	}
	var parseErr *ast.Error
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected parse error in chain, got %v", err)
	}
}

func TestLoadDirectoryStripsBOM(t *testing.T) {
	fsys := fstest.MapFS{
		"d/a.txt": {Data: append([]byte{0xEF, 0xBB, 0xBF}, []byte("key = value")...)},
	}
	res, err := quietLoader(fsys).LoadDirectory("d", nil)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if len(res.Skipped) != 0 || res.Root.Get("key") != "value" {
		t.Fatalf("BOM not stripped: skipped=%v key=%q", res.Skipped, res.Root.Get("key"))
	}
}

func TestLoadDirectoryRecursivePattern(t *testing.T) {
	fsys := fstest.MapFS{
		"d/top.txt":        {Data: []byte("top = 1")},
		"d/nested/low.txt": {Data: []byte("low = 1")},
	}
	l := quietLoader(fsys)
	l.Pattern = "**/*.txt"
	res, err := l.LoadDirectory("d", nil)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("files = %v", res.Files)
	}

	l.Pattern = "[bad"
	if _, err := l.LoadDirectory("d", nil); err == nil {
		t.Fatal("expected invalid pattern error")
	}
}

func TestLoadVariables(t *testing.T) {
	fsys := fstest.MapFS{
		"vars/00_base.txt":  {Data: []byte("@base = 5\n@name = \"quoted\"")},
		"vars/01_alias.txt": {Data: []byte("@alias = @base\n@unknown = @missing\n@neg = -1.5")},
	}
	scope, err := quietLoader(fsys).LoadVariables("vars")
	if err != nil {
		t.Fatalf("LoadVariables() error = %v", err)
	}
	want := map[string]string{"base": "5", "name": "quoted", "alias": "5", "neg": "-1.5"}
	for k, v := range want {
		if scope[k] != v {
			t.Errorf("scope[%q] = %q, want %q", k, scope[k], v)
		}
	}
	if _, ok := scope["unknown"]; ok {
		t.Error("unresolvable reference should be skipped")
	}
}

func TestLoaderReadsOSDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "common", "traits"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "common", "traits", "t.txt"), []byte("trait_a = { cost = 1 }"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := New(os.DirFS(dir)).LoadDirectory("common/traits", nil)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if res.Root.Child("trait_a").Int("cost", 0) != 1 {
		t.Fatal("expected trait_a cost 1")
	}
}

func TestStripBOMWithoutMark(t *testing.T) {
	out, err := StripBOM([]byte("plain"))
	if err != nil || string(out) != "plain" {
		t.Fatalf("StripBOM() = %q, %v", out, err)
	}
}
