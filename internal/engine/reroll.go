package engine

import (
	"errors"
	"log"
	"slices"

	"github.com/louisbranch/empiregen/internal/catalog"
	"github.com/louisbranch/empiregen/internal/requirement"
)

// Request selects what to reroll. TraitID is required for RerollTrait.
type Request struct {
	Category RerollCategory
	TraitID  string
}

// Reroller changes one category of a session's empire and repairs what
// depends on it.
type Reroller struct {
	gen *Generator
}

// NewReroller returns a Reroller sharing gen's catalog, rules and random
// source.
func NewReroller(gen *Generator) *Reroller {
	return &Reroller{gen: gen}
}

// Reroll applies req to sess. On success the session holds the new empire
// and its reroll is spent. On failure the session is unchanged.
func (r *Reroller) Reroll(sess *Session, req Request) (Empire, error) {
	if sess == nil {
		return Empire{}, errors.New("session is required")
	}
	if sess.RerollUsed() {
		return Empire{}, ErrRerollUsed
	}
	cur := sess.Empire()

	var (
		next Empire
		err  error
	)
	switch req.Category {
	case RerollEthics:
		next, err = r.ethics(cur)
	case RerollAuthority:
		next, err = r.authority(cur)
	case RerollCivic1:
		next, err = r.civic(cur, 0, req.Category)
	case RerollCivic2:
		next, err = r.civic(cur, 1, req.Category)
	case RerollOrigin:
		next, err = r.origin(cur)
	case RerollTraits:
		next, err = r.traits(cur)
	case RerollTrait:
		next, err = r.trait(cur, req.TraitID)
	case RerollHomeworld:
		next, err = r.homeworld(cur)
	case RerollShipset:
		next, err = r.shipset(cur)
	case RerollLeader:
		next, err = r.leader(cur)
	case RerollSecondarySpecies:
		next, err = r.secondarySpecies(cur)
	default:
		return Empire{}, unknownCategory(string(req.Category))
	}
	if err != nil {
		return Empire{}, err
	}

	sess.commit(next)
	return next.Clone(), nil
}

func (r *Reroller) rules() Rules { return r.gen.rules }

// consistent reports whether every locked choice of e still accepts the
// rest of e.
func (r *Reroller) consistent(e Empire) bool {
	g := r.gen
	s := e.State()
	rules := r.rules()
	if rules.IsGestaltAuthority(e.Authority) != e.IsGestalt(rules) {
		return false
	}
	if !g.locked(s) || !g.civicsHold(e.Civics, s) {
		return false
	}
	for _, t := range e.Traits {
		if !t.Enforced && !g.filter.TraitAllowed(t.ID, s) {
			return false
		}
	}
	for _, id := range e.LeaderTraits {
		if !g.filter.LeaderTraitAllowed(id, e.LeaderClass, s) {
			return false
		}
	}
	return true
}

// ethics draws ethics from fresh generations until one fits the locked
// authority, civics and origin. A gestalt empire has no alternative
// ethics in place and falls back to a regime change.
func (r *Reroller) ethics(e Empire) (Empire, error) {
	rules := r.rules()
	for range rules.AttemptCap {
		cand, err := r.gen.Generate()
		if err != nil {
			continue
		}
		if sameSet(cand.Ethics, e.Ethics) {
			continue
		}
		if next := e.withEthics(cand.Ethics); r.consistent(next) {
			return next, nil
		}
	}
	if e.IsGestalt(rules) {
		for range rules.AttemptCap {
			cand, err := r.gen.Generate()
			if err != nil || cand.IsGestalt(rules) {
				continue
			}
			log.Printf("engine: regime change from %s to %s", e.Authority, cand.Authority)
			return cand, nil
		}
	}
	return Empire{}, rerollFailed(RerollEthics, "no compatible ethics in %d attempts", rules.AttemptCap)
}

// archetypeFits reports whether the archetype's robotic-ness matches the
// gestalt mode of e.
func (r *Reroller) archetypeFits(e Empire) bool {
	a, ok := r.gen.cat.Archetype(e.Archetype)
	if !ok {
		return true
	}
	rules := r.rules()
	return a.Robotic == (e.IsGestalt(rules) && e.Authority == rules.MachineAuthority)
}

// authority swaps the authority in place, or switches to the other gestalt
// authority wholesale when a gestalt empire has no alternative.
func (r *Reroller) authority(e Empire) (Empire, error) {
	g := r.gen
	rules := r.rules()
	pool := filter(g.filter.Authorities(e.State().Without(requirement.Authority)), func(a catalog.Authority) bool {
		if a.ID == e.Authority {
			return false
		}
		next := e.withAuthority(a.ID)
		return r.archetypeFits(next) && r.consistent(next)
	})
	if a, ok := PickWeighted(g.rng, pool, func(a catalog.Authority) int { return a.Weight }); ok {
		return e.withAuthority(a.ID), nil
	}

	if rules.IsGestaltAuthority(e.Authority) {
		other := rules.MachineAuthority
		if e.Authority == rules.MachineAuthority {
			other = rules.HiveMindAuthority
		}
		for range rules.AttemptCap {
			cand, err := g.Generate()
			if err == nil && cand.Authority == other {
				log.Printf("engine: gestalt switch from %s to %s", e.Authority, other)
				return cand, nil
			}
		}
		return Empire{}, rerollFailed(RerollAuthority, "no %s empire in %d attempts", other, rules.AttemptCap)
	}
	return Empire{}, rerollFailed(RerollAuthority, "no alternative authority")
}

// civic replaces one civic slot, keeping the other civic and every other
// locked choice valid.
func (r *Reroller) civic(e Empire, slot int, c RerollCategory) (Empire, error) {
	if slot >= len(e.Civics) {
		return Empire{}, targetNotFound(c, string(c))
	}
	g := r.gen
	others := slices.Delete(slices.Clone(e.Civics), slot, slot+1)
	base := e.State().With(requirement.Civics, others...)
	pool := filter(g.filter.Civics(base), func(civic catalog.Civic) bool {
		if civic.ID == e.Civics[slot] {
			return false
		}
		next := e.withCivic(slot, civic.ID)
		s := next.State()
		return g.locked(s) && g.civicsHold(next.Civics, s)
	})
	for len(pool) > 0 {
		civic, _ := PickWeighted(g.rng, pool, func(c catalog.Civic) int { return c.Weight })
		next, err := r.refresh(e, e.withCivic(slot, civic.ID), false)
		if err == nil {
			return next, nil
		}
		log.Printf("engine: civic %s rejected: %v", civic.ID, err)
		pool = filter(pool, func(c catalog.Civic) bool { return c.ID != civic.ID })
	}
	return Empire{}, rerollFailed(c, "no alternative civic")
}

// origin replaces the origin, then rebuilds everything the origin shapes.
func (r *Reroller) origin(e Empire) (Empire, error) {
	g := r.gen
	base := e.State().Without(requirement.Origin).Without(requirement.Traits)
	pool := filter(g.filter.Origins(base), func(o catalog.Origin) bool {
		return o.ID != e.Origin && g.civicsHold(e.Civics, base.With(requirement.Origin, o.ID))
	})
	for len(pool) > 0 {
		o, _ := PickUniform(g.rng, pool)
		next, err := r.refresh(e, e.withOrigin(o.ID), true)
		if err == nil {
			return next, nil
		}
		log.Printf("engine: origin %s rejected: %v", o.ID, err)
		pool = filter(pool, func(c catalog.Origin) bool { return c.ID != o.ID })
	}
	return Empire{}, rerollFailed(RerollOrigin, "no alternative origin")
}

// refresh repairs what depends on civics and origin after one of them
// changed from prev to next. A changed origin rebuilds all of it. The
// secondary species is always drawn again.
func (r *Reroller) refresh(prev, next Empire, originChanged bool) (Empire, error) {
	g := r.gen
	origin, ok := g.cat.Origin(next.Origin)
	if !ok {
		return Empire{}, errors.New("unknown origin " + next.Origin)
	}
	archetype, ok := g.cat.Archetype(next.Archetype)
	if !ok {
		return Empire{}, errors.New("unknown archetype " + next.Archetype)
	}

	enforced := g.enforcedTraits(next.Origin, next.Civics)
	s := next.State().Without(requirement.Traits)
	rebuild := originChanged || !slices.Equal(enforced, prev.EnforcedTraitIDs())
	if !rebuild {
		for _, t := range next.Traits {
			if !t.Enforced && !g.filter.TraitAllowed(t.ID, s) {
				rebuild = true
				break
			}
		}
	}
	if rebuild {
		traits, used := g.buildTraits(archetype, s, enforced)
		next = next.withTraits(traits, used)
	}

	s = next.State()
	if originChanged {
		homeworld, habitability, err := g.pickHomeworld(origin, next.SpeciesClass, next.TraitIDs(), s)
		if err != nil {
			return Empire{}, err
		}
		next = next.withHomeworld(homeworld, habitability)
	} else {
		var err error
		if next, err = r.rehome(prev, next); err != nil {
			return Empire{}, err
		}
	}

	leaderValid := true
	for _, id := range next.LeaderTraits {
		if !g.filter.LeaderTraitAllowed(id, next.LeaderClass, s) {
			leaderValid = false
		}
	}
	if originChanged || !leaderValid {
		next = next.withLeader(next.LeaderClass, g.pickLeaderTraits(next.LeaderClass, s))
	}

	ss, err := g.secondarySpecies(origin, next.Civics, next.SpeciesClass, s)
	if err != nil {
		return Empire{}, err
	}
	return next.withSecondarySpecies(ss), nil
}

func (r *Reroller) restrictionChanged(before, after []string) bool {
	a, ra := r.gen.filter.PlanetRestriction(before)
	b, rb := r.gen.filter.PlanetRestriction(after)
	if ra != rb {
		return true
	}
	if len(a) != len(b) {
		return true
	}
	for k := range a {
		if !b[k] {
			return true
		}
	}
	return false
}

// rehome re-picks the homeworld of next when its trait restriction differs
// from prev. Origins with a fixed homeworld keep it.
func (r *Reroller) rehome(prev, next Empire) (Empire, error) {
	if !r.restrictionChanged(prev.TraitIDs(), next.TraitIDs()) {
		return next, nil
	}
	if _, fixed := r.rules().FixedHomeworlds[next.Origin]; fixed {
		return next, nil
	}
	origin, _ := r.gen.cat.Origin(next.Origin)
	homeworld, habitability, err := r.gen.pickHomeworld(origin, next.SpeciesClass, next.TraitIDs(), next.State())
	if err != nil {
		return Empire{}, err
	}
	return next.withHomeworld(homeworld, habitability), nil
}

// traits keeps enforced traits and re-runs the budgeted fill.
func (r *Reroller) traits(e Empire) (Empire, error) {
	g := r.gen
	archetype, ok := g.cat.Archetype(e.Archetype)
	if !ok {
		return Empire{}, rerollFailed(RerollTraits, "unknown archetype %s", e.Archetype)
	}
	s := e.State().Without(requirement.Traits)
	for range r.rules().AttemptCap {
		traits, used := g.buildTraits(archetype, s, e.EnforcedTraitIDs())
		if slices.Equal(traits, e.Traits) {
			continue
		}
		next, err := r.rehome(e, e.withTraits(traits, used))
		if err != nil {
			continue
		}
		return next, nil
	}
	return Empire{}, rerollFailed(RerollTraits, "no alternative trait set in %d attempts", r.rules().AttemptCap)
}

// trait replaces one non-enforced trait in place within the remaining
// budget.
func (r *Reroller) trait(e Empire, id string) (Empire, error) {
	g := r.gen
	idx := slices.IndexFunc(e.Traits, func(t TraitPick) bool { return t.ID == id })
	if id == "" || idx < 0 {
		return Empire{}, targetNotFound(RerollTrait, id)
	}
	if e.Traits[idx].Enforced {
		return Empire{}, rerollFailed(RerollTrait, "trait %s is enforced", id)
	}

	kept := pointsUsed(e.Traits) - e.Traits[idx].Cost
	present := map[string]bool{}
	blocked := map[string]bool{id: true}
	for i, t := range e.Traits {
		if i == idx {
			continue
		}
		present[t.ID] = true
		blocked[t.ID] = true
		for _, op := range g.opposites(t.ID) {
			blocked[op] = true
		}
	}

	s := e.State().Without(requirement.Traits)
	pool := filter(g.filter.Traits(e.Archetype, s), func(t catalog.Trait) bool {
		if blocked[t.ID] {
			return false
		}
		for _, op := range t.Opposites {
			if present[op] {
				return false
			}
		}
		total := kept + t.Cost
		return total >= 0 && total <= e.TraitPointsBudget
	})
	for len(pool) > 0 {
		t, _ := PickUniform(g.rng, pool)
		traits := slices.Clone(e.Traits)
		traits[idx] = TraitPick{ID: t.ID, Cost: t.Cost}
		next, err := r.rehome(e, e.withTraits(traits, kept+t.Cost))
		if err == nil {
			return next, nil
		}
		pool = filter(pool, func(c catalog.Trait) bool { return c.ID != t.ID })
	}
	return Empire{}, rerollFailed(RerollTrait, "no replacement for %s", id)
}

// homeworld picks another homeworld. Origins with a fixed homeworld have
// none.
func (r *Reroller) homeworld(e Empire) (Empire, error) {
	g := r.gen
	if _, fixed := r.rules().FixedHomeworlds[e.Origin]; fixed {
		return Empire{}, rerollFailed(RerollHomeworld, "origin %s fixes the homeworld", e.Origin)
	}
	pool := filter(g.filter.Homeworlds(e.SpeciesClass, e.TraitIDs()), func(id string) bool { return id != e.Homeworld })
	homeworld, ok := PickUniform(g.rng, pool)
	if !ok {
		return Empire{}, rerollFailed(RerollHomeworld, "no alternative homeworld")
	}
	origin, _ := g.cat.Origin(e.Origin)
	return e.withHomeworld(homeworld, g.habitability(origin, homeworld)), nil
}

// shipset picks another shipset the origin accepts.
func (r *Reroller) shipset(e Empire) (Empire, error) {
	g := r.gen
	s := e.State()
	pool := filter(g.filter.Shipsets(), func(id string) bool {
		return id != e.Shipset && g.locked(s.With(requirement.GraphicalCulture, id))
	})
	shipset, ok := PickUniform(g.rng, pool)
	if !ok {
		return Empire{}, rerollFailed(RerollShipset, "no alternative shipset")
	}
	return e.withShipset(shipset), nil
}

// leader draws a new leader class and traits until they differ.
func (r *Reroller) leader(e Empire) (Empire, error) {
	s := e.State()
	for range r.rules().AttemptCap {
		class, traits, err := r.gen.pickLeader(s)
		if err != nil {
			return Empire{}, rerollFailed(RerollLeader, "%v", err)
		}
		if class != e.LeaderClass || !slices.Equal(traits, e.LeaderTraits) {
			return e.withLeader(class, traits), nil
		}
	}
	return Empire{}, rerollFailed(RerollLeader, "no alternative leader in %d attempts", r.rules().AttemptCap)
}

// secondarySpecies regenerates the secondary species until it differs.
func (r *Reroller) secondarySpecies(e Empire) (Empire, error) {
	if e.SecondarySpecies == nil {
		return Empire{}, targetNotFound(RerollSecondarySpecies, string(RerollSecondarySpecies))
	}
	g := r.gen
	origin, _ := g.cat.Origin(e.Origin)
	s := e.State()
	for range r.rules().AttemptCap {
		ss, err := g.secondarySpecies(origin, e.Civics, e.SpeciesClass, s)
		if err != nil {
			return Empire{}, rerollFailed(RerollSecondarySpecies, "%v", err)
		}
		if ss == nil {
			break
		}
		if ss.SpeciesClass != e.SecondarySpecies.SpeciesClass ||
			!slices.Equal(ss.TraitIDs(), e.SecondarySpecies.TraitIDs()) {
			return e.withSecondarySpecies(ss), nil
		}
	}
	return Empire{}, rerollFailed(RerollSecondarySpecies, "no alternative secondary species in %d attempts", r.rules().AttemptCap)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
