package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/empiregen/internal/catalog"
	"github.com/louisbranch/empiregen/internal/catalog/catalogtest"
	"github.com/louisbranch/empiregen/internal/engine"
	"github.com/louisbranch/empiregen/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "empiregen.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func sampleEmpire() engine.Empire {
	return engine.Empire{
		Ethics:            []string{"ethic_fanatic_militarist", "ethic_xenophobe"},
		Authority:         "auth_dictatorial",
		Civics:            []string{"civic_technocracy", "civic_anglers"},
		Origin:            "origin_syncretic_evolution",
		Archetype:         "BIOLOGICAL",
		SpeciesClass:      "REP",
		Traits:            []engine.TraitPick{{ID: "trait_aquatic", Cost: 1, Enforced: true}, {ID: "trait_strong", Cost: 1}},
		TraitPointsUsed:   1,
		TraitPointsBudget: 2,
		MaxTraits:         5,
		Homeworld:         "pc_ocean",
		Shipset:           "reptilian_01",
		LeaderClass:       "commander",
		LeaderTraits:      []string{"leader_trait_eager"},
		SecondarySpecies: &engine.SecondarySpecies{
			Title:            "origin_syncretic_evolution_secondary",
			SpeciesClass:     "MAM",
			EnforcedTraits:   []engine.TraitPick{{ID: "trait_syncretic_proles", Cost: 1, Enforced: true}},
			AdditionalTraits: []engine.TraitPick{{ID: "trait_weak", Cost: -1}},
			PointsUsed:       0,
			PointsBudget:     2,
			MaxPicks:         5,
		},
		HabitabilityPreference: "pc_ocean",
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empiregen.db")
	ctx := context.Background()
	first, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.PutSession(ctx, storage.SessionRecord{ID: "s1", Empire: sampleEmpire()}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if _, err := second.GetSession(ctx, "s1"); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	created := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	in := storage.SessionRecord{ID: "s1", Empire: sampleEmpire(), CatalogFingerprint: "abc123", CreatedAt: created}
	if err := store.PutSession(ctx, in); err != nil {
		t.Fatalf("put session: %v", err)
	}

	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !reflect.DeepEqual(got.Empire, in.Empire) {
		t.Fatalf("empire = %+v\nwant %+v", got.Empire, in.Empire)
	}
	if got.RerollUsed {
		t.Fatal("reroll used should be false")
	}
	if got.CatalogFingerprint != "abc123" {
		t.Fatalf("catalog fingerprint = %q", got.CatalogFingerprint)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(created) {
		t.Fatalf("times = %v, %v; want %v", got.CreatedAt, got.UpdatedAt, created)
	}
}

func TestPutSessionUpdatesKeepingCreatedAt(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	created := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	if err := store.PutSession(ctx, storage.SessionRecord{ID: "s1", Empire: sampleEmpire(), CatalogFingerprint: "first", CreatedAt: created}); err != nil {
		t.Fatalf("put session: %v", err)
	}

	rerolled := sampleEmpire()
	rerolled.Shipset = "avian_01"
	updated := created.Add(time.Minute)
	if err := store.PutSession(ctx, storage.SessionRecord{
		ID:         "s1",
		Empire:     rerolled,
		RerollUsed: true,
		CreatedAt:  updated,
		UpdatedAt:  updated,
	}); err != nil {
		t.Fatalf("update session: %v", err)
	}

	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Empire.Shipset != "avian_01" || !got.RerollUsed {
		t.Fatalf("session not updated: %+v", got)
	}
	if got.CatalogFingerprint != "first" {
		t.Fatalf("catalog fingerprint = %q, want first", got.CatalogFingerprint)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(updated) {
		t.Fatalf("times = %v, %v", got.CreatedAt, got.UpdatedAt)
	}
	sess := got.Session()
	if sess.ID != "s1" || !sess.RerollUsed() || sess.Empire().Shipset != "avian_01" {
		t.Fatalf("restored session = %+v", sess)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get err = %v, want ErrNotFound", err)
	}
	if _, err := store.LatestSession(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("latest err = %v, want ErrNotFound", err)
	}
}

func TestLatestAndListSessions(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * time.Minute)
		if err := store.PutSession(ctx, storage.SessionRecord{ID: id, Empire: sampleEmpire(), CreatedAt: at}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	latest, err := store.LatestSession(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != "c" {
		t.Fatalf("latest = %s, want c", latest.ID)
	}

	list, err := store.ListSessions(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Fatalf("list = %+v", list)
	}
	if _, err := store.ListSessions(ctx, 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}

func TestCatalogSnapshots(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	cat := catalogtest.Load(t)

	if _, err := store.GetCatalogSnapshot(ctx, cat.Fingerprint()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get err = %v, want ErrNotFound", err)
	}
	for range 2 {
		if err := store.PutCatalogSnapshot(ctx, cat); err != nil {
			t.Fatalf("put snapshot: %v", err)
		}
	}

	snap, err := store.GetCatalogSnapshot(ctx, cat.Fingerprint())
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if snap.Fingerprint != cat.Fingerprint() || snap.Catalog.Fingerprint() != cat.Fingerprint() {
		t.Fatalf("snapshot fingerprint = %s / %s, want %s", snap.Fingerprint, snap.Catalog.Fingerprint(), cat.Fingerprint())
	}
	want, _ := cat.Origin("origin_legendary_leader")
	if got, ok := snap.Catalog.Origin(want.ID); !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("origin = %+v, want %+v", got, want)
	}
	if snap.CreatedAt.IsZero() {
		t.Fatal("snapshot has no creation time")
	}

	d := cat.Snapshot()
	d.Origins = d.Origins[1:]
	other := catalog.New(d)
	if err := store.PutCatalogSnapshot(ctx, other); err != nil {
		t.Fatalf("put second snapshot: %v", err)
	}
	snap2, err := store.GetCatalogSnapshot(ctx, other.Fingerprint())
	if err != nil {
		t.Fatalf("get second snapshot: %v", err)
	}
	if len(snap2.Catalog.Origins()) != len(cat.Origins())-1 {
		t.Fatalf("second snapshot origins = %d", len(snap2.Catalog.Origins()))
	}

	if err := store.PutCatalogSnapshot(ctx, nil); err == nil {
		t.Fatal("expected error for nil catalog")
	}
	if _, err := store.GetCatalogSnapshot(ctx, " "); err == nil {
		t.Fatal("expected error for empty fingerprint")
	}
}

func TestTelemetryEvents(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	events := []storage.TelemetryEvent{
		{Timestamp: at, EventName: "empire.generated", Severity: "INFO", SessionID: "s1", Attributes: map[string]any{"origin": "origin_default"}},
		{Timestamp: at.Add(time.Second), EventName: "empire.generated", Severity: "INFO", SessionID: "s2"},
		{Timestamp: at.Add(2 * time.Second), EventName: "reroll.failed", Severity: "WARN", SessionID: "s1", TraceID: "trace", SpanID: "span"},
	}
	for _, evt := range events {
		if err := store.AppendTelemetryEvent(ctx, evt); err != nil {
			t.Fatalf("append %s: %v", evt.EventName, err)
		}
	}

	got, err := store.ListTelemetryEvents(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].EventName != "reroll.failed" || got[1].EventName != "empire.generated" {
		t.Fatalf("s1 events = %+v", got)
	}
	if got[0].TraceID != "trace" || got[0].SpanID != "span" || !got[0].Timestamp.Equal(at.Add(2*time.Second)) {
		t.Fatalf("event = %+v", got[0])
	}
	if got[1].Attributes["origin"] != "origin_default" {
		t.Fatalf("attributes = %v", got[1].Attributes)
	}

	all, err := store.ListTelemetryEvents(ctx, "", 10)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all events = %d, want 3", len(all))
	}
}

func TestAppendTelemetryEventValidates(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	if err := store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{Timestamp: time.Now()}); err == nil {
		t.Fatal("expected error for missing name")
	}
	if err := store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{EventName: "x"}); err == nil {
		t.Fatal("expected error for missing timestamp")
	}
}

func TestNilStore(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if _, err := store.GetSession(context.Background(), "s1"); err == nil {
		t.Fatal("expected error from nil store")
	}
}
