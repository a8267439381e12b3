package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/empiregen/internal/catalog"
	"github.com/louisbranch/empiregen/internal/engine"
	apperrors "github.com/louisbranch/empiregen/internal/platform/errors"
	"github.com/louisbranch/empiregen/internal/platform/otel"
	"github.com/louisbranch/empiregen/internal/platform/telemetry/metrics"
	"github.com/louisbranch/empiregen/internal/random"
	"github.com/louisbranch/empiregen/internal/storage"
	"github.com/louisbranch/empiregen/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Deps are the collaborators of a Service. Sessions is required; the rest
// are optional.
type Deps struct {
	Sessions storage.SessionStore
	// Catalogs keeps the catalog of each session. Without it a session
	// generated from other game files cannot be rerolled.
	Catalogs storage.CatalogStore
	Events   *telemetry.Emitter
	Metrics  *metrics.Recorder
	// Rand defaults to a crypto-seeded source.
	Rand *rand.Rand
}

// Service generates empires and applies the one reroll of a stored session.
type Service struct {
	cat      *catalog.Catalog
	gen      *engine.Generator
	reroller *engine.Reroller
	rng      *rand.Rand
	sessions storage.SessionStore
	catalogs storage.CatalogStore
	saved    bool
	events   *telemetry.Emitter
	metrics  *metrics.Recorder
	tracer   trace.Tracer
	newID    func() string
	clock    func() time.Time
}

// New builds a Service over cat.
func New(cat *catalog.Catalog, rules engine.Rules, deps Deps) (*Service, error) {
	if deps.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	rng := deps.Rand
	if rng == nil {
		var err error
		rng, err = random.NewRand()
		if err != nil {
			return nil, err
		}
	}
	gen, err := engine.NewGenerator(cat, rules, rng)
	if err != nil {
		return nil, err
	}
	return &Service{
		cat:      cat,
		gen:      gen,
		reroller: engine.NewReroller(gen),
		rng:      rng,
		sessions: deps.Sessions,
		catalogs: deps.Catalogs,
		events:   deps.Events,
		metrics:  deps.Metrics,
		tracer:   otel.Tracer(),
		newID:    uuid.NewString,
		clock:    time.Now,
	}, nil
}

// Catalog returns the snapshot the service draws from.
func (s *Service) Catalog() *catalog.Catalog { return s.cat }

// LoadCatalog reads the game directory at gamePath inside a traced span and
// records the load time.
func LoadCatalog(ctx context.Context, gamePath string, opts catalog.Options, rec *metrics.Recorder) (*catalog.Catalog, error) {
	_, span := otel.Tracer().Start(ctx, "catalog.load", trace.WithAttributes(attribute.String("game.path", gamePath)))
	defer span.End()

	start := time.Now()
	cat, err := catalog.Load(gamePath, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog load failed")
		return nil, err
	}
	elapsed := time.Since(start)
	rec.CatalogLoaded(elapsed.Seconds())
	log.Printf("generator: loaded catalog from %s in %s", gamePath, elapsed.Round(time.Millisecond))
	return cat, nil
}

// Generate builds a new empire and stores it as a fresh session with its
// reroll available.
func (s *Service) Generate(ctx context.Context) (storage.SessionRecord, error) {
	ctx, span := s.tracer.Start(ctx, "empire.generate")
	defer span.End()

	e, err := s.gen.Generate()
	if err != nil {
		s.generationFailed(ctx, span, err)
		return storage.SessionRecord{}, err
	}

	if err := s.saveCatalog(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store catalog")
		return storage.SessionRecord{}, err
	}

	now := s.clock().UTC()
	rec := storage.SessionRecord{
		ID:                 s.newID(),
		Empire:             e,
		CatalogFingerprint: s.cat.Fingerprint(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	span.SetAttributes(attribute.String("session.id", rec.ID), attribute.String("empire.origin", e.Origin))
	if err := s.sessions.PutSession(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store session")
		return storage.SessionRecord{}, fmt.Errorf("store session: %w", err)
	}

	s.metrics.Generated()
	s.emit(ctx, storage.TelemetryEvent{
		EventName: telemetry.EventEmpireGenerated,
		SessionID: rec.ID,
		Attributes: map[string]any{
			"authority": e.Authority,
			"origin":    e.Origin,
			"archetype": e.Archetype,
		},
	})
	log.Printf("generator: session %s generated %s %s empire", rec.ID, e.Authority, e.Origin)
	return rec, nil
}

// saveCatalog stores the service catalog once, before the first session
// that refers to it.
func (s *Service) saveCatalog(ctx context.Context) error {
	if s.saved || s.catalogs == nil {
		return nil
	}
	if err := s.catalogs.PutCatalogSnapshot(ctx, s.cat); err != nil {
		return fmt.Errorf("store catalog snapshot: %w", err)
	}
	s.saved = true
	log.Printf("generator: stored catalog snapshot %s", shortFingerprint(s.cat.Fingerprint()))
	return nil
}

// rerollerFor returns a reroller over the catalog rec was generated from.
// Sessions from other game files are rerolled against their stored
// snapshot; without one the reroll is refused.
func (s *Service) rerollerFor(ctx context.Context, rec storage.SessionRecord) (*engine.Reroller, error) {
	fp := rec.CatalogFingerprint
	if fp == "" || fp == s.cat.Fingerprint() {
		return s.reroller, nil
	}
	meta := map[string]string{"Session": rec.ID, "Fingerprint": fp}
	if s.catalogs == nil {
		return nil, apperrors.WithMetadata(apperrors.CodeCatalogChanged, "catalog changed since generation", meta)
	}
	snap, err := s.catalogs.GetCatalogSnapshot(ctx, fp)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeCatalogChanged, "catalog changed since generation", meta, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	gen, err := engine.NewGenerator(snap.Catalog, s.gen.Rules(), s.rng)
	if err != nil {
		return nil, err
	}
	log.Printf("generator: session %s uses stored catalog %s", rec.ID, shortFingerprint(fp))
	return engine.NewReroller(gen), nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func (s *Service) generationFailed(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "generation failed")

	step := ""
	var failure *engine.GenerationFailure
	if errors.As(err, &failure) {
		step = failure.Step
	}
	s.metrics.GenerationFailed(step)
	s.emit(ctx, storage.TelemetryEvent{
		EventName:  telemetry.EventGenerationFailed,
		Severity:   string(telemetry.SeverityError),
		Attributes: map[string]any{"step": step, "error": err.Error()},
	})
	log.Printf("generator: generation failed: %v", err)
}

// Session returns the stored session with id, or the most recently created
// one when id is empty.
func (s *Service) Session(ctx context.Context, id string) (storage.SessionRecord, error) {
	return FindSession(ctx, s.sessions, id)
}

// FindSession looks up a session in store the way Session does. A missing
// session is reported with the NOT_FOUND code.
func FindSession(ctx context.Context, store storage.SessionStore, id string) (storage.SessionRecord, error) {
	id = strings.TrimSpace(id)
	var (
		rec storage.SessionRecord
		err error
	)
	if id == "" {
		rec, err = store.LatestSession(ctx)
	} else {
		rec, err = store.GetSession(ctx, id)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return storage.SessionRecord{}, apperrors.WrapWithMetadata(apperrors.CodeNotFound, "session not found", map[string]string{"Session": id}, err)
	}
	if err != nil {
		return storage.SessionRecord{}, err
	}
	return rec, nil
}

// Reroll applies req to the session with sessionID (the latest when empty)
// and stores the result with the reroll spent. The reroll draws from the
// catalog the session was generated from. A failed reroll leaves the
// stored session untouched.
func (s *Service) Reroll(ctx context.Context, sessionID string, req engine.Request) (storage.SessionRecord, error) {
	ctx, span := s.tracer.Start(ctx, "empire.reroll", trace.WithAttributes(attribute.String("reroll.category", string(req.Category))))
	defer span.End()

	rec, err := s.Session(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load session")
		return storage.SessionRecord{}, err
	}
	span.SetAttributes(attribute.String("session.id", rec.ID))

	reroller, err := s.rerollerFor(ctx, rec)
	if err != nil {
		s.rerollFailed(ctx, span, rec.ID, req, err)
		return storage.SessionRecord{}, err
	}
	sess := rec.Session()
	next, err := reroller.Reroll(sess, req)
	if err != nil {
		s.rerollFailed(ctx, span, rec.ID, req, err)
		return storage.SessionRecord{}, err
	}

	rec.Empire = next
	rec.RerollUsed = sess.RerollUsed()
	rec.UpdatedAt = s.clock().UTC()
	if err := s.sessions.PutSession(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store session")
		return storage.SessionRecord{}, fmt.Errorf("store session: %w", err)
	}

	s.metrics.Rerolled(string(req.Category), metrics.OutcomeSuccess)
	attrs := map[string]any{"category": string(req.Category)}
	if req.TraitID != "" {
		attrs["trait"] = req.TraitID
	}
	s.emit(ctx, storage.TelemetryEvent{
		EventName:  telemetry.EventEmpireRerolled,
		SessionID:  rec.ID,
		Attributes: attrs,
	})
	log.Printf("generator: session %s rerolled %s", rec.ID, req.Category)
	return rec, nil
}

func (s *Service) rerollFailed(ctx context.Context, span trace.Span, sessionID string, req engine.Request, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "reroll failed")

	outcome := metrics.OutcomeFailed
	if apperrors.IsCode(err, apperrors.CodeRerollUsed) {
		outcome = metrics.OutcomeUsed
	}
	s.metrics.Rerolled(string(req.Category), outcome)
	s.emit(ctx, storage.TelemetryEvent{
		EventName: telemetry.EventRerollFailed,
		Severity:  string(telemetry.SeverityWarn),
		SessionID: sessionID,
		Attributes: map[string]any{
			"category": string(req.Category),
			"code":     string(apperrors.CodeOf(err)),
		},
	})
	log.Printf("generator: session %s reroll %s failed: %v", sessionID, req.Category, err)
}

func (s *Service) emit(ctx context.Context, evt storage.TelemetryEvent) {
	if err := s.events.Emit(ctx, evt); err != nil {
		log.Printf("generator: record %s: %v", evt.EventName, err)
	}
}
