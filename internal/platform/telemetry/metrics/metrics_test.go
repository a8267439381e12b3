package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRecorderWritesTextfile(t *testing.T) {
	r, err := NewRecorder()
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	r.Generated()
	r.Generated()
	r.GenerationFailed("civics")
	r.GenerationFailed("")
	r.Rerolled("origin", OutcomeSuccess)
	r.Rerolled("origin", OutcomeUsed)
	r.CatalogLoaded(0.2)

	path := filepath.Join(t.TempDir(), "empiregen.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"empiregen_generations_total 2",
		`empiregen_generation_failures_total{step="civics"} 1`,
		`empiregen_generation_failures_total{step="unknown"} 1`,
		`empiregen_rerolls_total{category="origin",outcome="success"} 1`,
		`empiregen_rerolls_total{category="origin",outcome="used"} 1`,
		"empiregen_catalog_load_seconds_count 1",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}
}

func TestRecorderGatherer(t *testing.T) {
	r, err := NewRecorder()
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	r.Generated()
	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "empiregen_generations_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("generations counter not gathered")
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Generated()
	r.GenerationFailed("ethics")
	r.Rerolled("traits", OutcomeFailed)
	r.CatalogLoaded(1)
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("nil recorder write: %v", err)
	}
}

func TestWriteTextfileSkipsEmptyPath(t *testing.T) {
	r, err := NewRecorder()
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if err := r.WriteTextfile(" "); err != nil {
		t.Fatalf("empty path: %v", err)
	}
}
