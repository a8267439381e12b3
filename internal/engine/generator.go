package engine

import (
	"errors"
	"log"
	"math/rand"
	"slices"

	"github.com/louisbranch/empiregen/internal/catalog"
	"github.com/louisbranch/empiregen/internal/requirement"
)

// Generator builds random empires from a catalog snapshot. It reuses one
// random source across calls and is not safe for concurrent use.
type Generator struct {
	cat    *catalog.Catalog
	rules  Rules
	rng    *rand.Rand
	filter *Filter
}

// NewGenerator returns a Generator drawing from rng.
func NewGenerator(cat *catalog.Catalog, rules Rules, rng *rand.Rand) (*Generator, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	return &Generator{cat: cat, rules: rules, rng: rng, filter: NewFilter(cat, rules)}, nil
}

// Catalog returns the snapshot g draws from.
func (g *Generator) Catalog() *catalog.Catalog { return g.cat }

// Rules returns the rules g applies.
func (g *Generator) Rules() Rules { return g.rules }

// Generate runs the full pipeline. Each step narrows the selection the next
// step sees; an empty candidate set aborts with a *GenerationFailure.
func (g *Generator) Generate() (Empire, error) {
	s := NewState()

	ethics, err := g.pickEthics(s)
	if err != nil {
		return Empire{}, err
	}
	s = s.With(requirement.Ethics, ethics...)

	authority, ok := PickWeighted(g.rng, g.filter.Authorities(s), func(a catalog.Authority) int { return a.Weight })
	if !ok {
		return Empire{}, failAt(StepAuthority, s, "no compatible authority")
	}
	s = s.With(requirement.Authority, authority.ID)

	civics, err := g.pickCivics(s, nil)
	if err != nil {
		return Empire{}, err
	}
	s = s.With(requirement.Civics, civics...)

	origin, ok := PickUniform(g.rng, g.filter.Origins(s))
	if !ok {
		return Empire{}, failAt(StepOrigin, s, "no compatible origin")
	}
	s = s.With(requirement.Origin, origin.ID)

	archetype, class, err := g.pickSpecies(s)
	if err != nil {
		return Empire{}, err
	}
	s = s.With(requirement.SpeciesArchetype, archetype.ID).With(requirement.SpeciesClass, class)

	if !g.civicsHold(civics, s) {
		log.Printf("engine: civics %v no longer fit %s/%s, picking again", civics, archetype.ID, class)
		civics, err = g.pickCivics(s.Without(requirement.Civics), nil)
		if err != nil {
			return Empire{}, err
		}
		s = s.With(requirement.Civics, civics...)
		if !g.civicsHold(civics, s) {
			return Empire{}, failAt(StepCivics, s, "civics still invalid after one redo")
		}
	}

	traits, used := g.buildTraits(archetype, s, g.enforcedTraits(origin.ID, civics))
	e := Empire{
		Ethics:            ethics,
		Authority:         authority.ID,
		Civics:            civics,
		Origin:            origin.ID,
		Archetype:         archetype.ID,
		SpeciesClass:      class,
		Traits:            traits,
		TraitPointsUsed:   used,
		TraitPointsBudget: archetype.TraitPoints,
		MaxTraits:         archetype.MaxTraits,
	}
	s = e.State()

	e.Homeworld, e.HabitabilityPreference, err = g.pickHomeworld(origin, class, e.TraitIDs(), s)
	if err != nil {
		return Empire{}, err
	}

	shipset, ok := PickUniform(g.rng, g.filter.Shipsets())
	if !ok {
		return Empire{}, failAt(StepShipset, s, "no selectable shipset")
	}
	e.Shipset = shipset
	s = s.With(requirement.GraphicalCulture, shipset)

	e.LeaderClass, e.LeaderTraits, err = g.pickLeader(s)
	if err != nil {
		return Empire{}, err
	}

	e.SecondarySpecies, err = g.secondarySpecies(origin, civics, class, s)
	if err != nil {
		return Empire{}, err
	}

	return e, nil
}

// pickEthics spends the ethics budget: the gestalt ethic alone, a fanatic
// plus regulars, or regulars only, never two on the same axis.
func (g *Generator) pickEthics(s State) ([]string, error) {
	if g.rng.Float64() < g.rules.GestaltChance {
		if gestalt, ok := g.cat.Ethic(g.rules.GestaltEthic); ok {
			return []string{gestalt.ID}, nil
		}
	}

	var fanatics, regulars []catalog.Ethic
	for _, e := range g.cat.Ethics() {
		switch {
		case e.Gestalt || e.ID == g.rules.GestaltEthic:
		case e.Fanatic:
			fanatics = append(fanatics, e)
		default:
			regulars = append(regulars, e)
		}
	}

	if len(fanatics) > 0 && g.rng.Intn(2) == 0 {
		fanatic, _ := PickWeighted(g.rng, fanatics, ethicWeight)
		pool := filter(regulars, func(e catalog.Ethic) bool { return !sameAxis(e, fanatic) })
		if picked, ok := g.fillEthics([]catalog.Ethic{fanatic}, pool); ok {
			return picked, nil
		}
	}

	picked, ok := g.fillEthics(nil, regulars)
	if !ok {
		return nil, failAt(StepEthics, s, "could not pick %d points of ethics on distinct axes", g.rules.EthicsBudget)
	}
	return picked, nil
}

// fillEthics adds weighted picks from pool, removing each pick's axis,
// until the budget is spent exactly.
func (g *Generator) fillEthics(picked []catalog.Ethic, pool []catalog.Ethic) ([]string, bool) {
	spent := 0
	for _, e := range picked {
		spent += e.Cost
	}
	for spent < g.rules.EthicsBudget {
		remaining := g.rules.EthicsBudget - spent
		pool = filter(pool, func(e catalog.Ethic) bool { return e.Cost <= remaining })
		choice, ok := PickWeighted(g.rng, pool, ethicWeight)
		if !ok {
			return nil, false
		}
		picked = append(picked, choice)
		spent += choice.Cost
		pool = filter(pool, func(e catalog.Ethic) bool { return !sameAxis(e, choice) })
	}
	if spent != g.rules.EthicsBudget {
		return nil, false
	}
	ids := make([]string, len(picked))
	for i, e := range picked {
		ids[i] = e.ID
	}
	return ids, true
}

func ethicWeight(e catalog.Ethic) int { return e.Weight }

// sameAxis reports whether a and b exclude each other: the same ethic, a
// regular and fanatic pair, or a shared category.
func sameAxis(a, b catalog.Ethic) bool {
	if a.ID == b.ID {
		return true
	}
	if a.ID == b.RegularVariant || a.ID == b.FanaticVariant ||
		b.ID == a.RegularVariant || b.ID == a.FanaticVariant {
		return true
	}
	return a.Category != "" && a.Category == b.Category
}

// pickCivics fills the civic slots one weighted pick at a time. Every pick
// must keep the authority and origin of s valid; keep adds a further check.
func (g *Generator) pickCivics(s State, keep func(State) bool) ([]string, error) {
	picked := s.Values(requirement.Civics)
	for len(picked) < g.rules.CivicCount {
		pool := filter(g.filter.Civics(s), func(c catalog.Civic) bool {
			next := s.With(requirement.Civics, append(slices.Clone(picked), c.ID)...)
			return g.locked(next) && (keep == nil || keep(next))
		})
		civic, ok := PickWeighted(g.rng, pool, func(c catalog.Civic) int { return c.Weight })
		if !ok {
			return nil, failAt(StepCivics, s, "no compatible civic for slot %d", len(picked)+1)
		}
		picked = append(picked, civic.ID)
		s = s.With(requirement.Civics, picked...)
	}
	return picked, nil
}

// locked reports whether the decided authority and origin still hold.
func (g *Generator) locked(s State) bool {
	if id := s.One(requirement.Authority); id != "" {
		a, ok := g.cat.Authority(id)
		if ok && !requirement.EvaluateBoth(a.Potential, a.Possible, s) {
			return false
		}
	}
	if id := s.One(requirement.Origin); id != "" {
		o, ok := g.cat.Origin(id)
		if ok && !requirement.EvaluateBoth(o.Potential, o.Possible, s) {
			return false
		}
	}
	return true
}

func (g *Generator) civicsHold(civics []string, s State) bool {
	for _, id := range civics {
		c, ok := g.cat.Civic(id)
		if !ok || !requirement.EvaluateBoth(c.Potential, c.Possible, s) {
			return false
		}
	}
	return true
}

// pickSpecies picks an archetype and one of its classes that the decided
// origin accepts.
func (g *Generator) pickSpecies(s State) (catalog.Archetype, string, error) {
	type option struct {
		archetype catalog.Archetype
		classes   []string
	}
	var options []option
	for _, a := range g.filter.Archetypes(s) {
		withArchetype := s.With(requirement.SpeciesArchetype, a.ID)
		classes := filter(g.filter.SpeciesClasses(a.ID), func(class string) bool {
			return g.locked(withArchetype.With(requirement.SpeciesClass, class))
		})
		if len(classes) > 0 {
			options = append(options, option{archetype: a, classes: classes})
		}
	}
	opt, ok := PickUniform(g.rng, options)
	if !ok {
		return catalog.Archetype{}, "", failAt(StepArchetype, s, "no compatible species archetype")
	}
	if len(g.rules.ClassWeights) == 0 {
		class, _ := PickUniform(g.rng, opt.classes)
		return opt.archetype, class, nil
	}
	class, _ := PickWeighted(g.rng, opt.classes, func(class string) int {
		if w, ok := g.rules.ClassWeights[class]; ok {
			return w
		}
		return 1
	})
	return opt.archetype, class, nil
}

// enforcedTraits lists the origin's enforced traits, then each civic's, in
// order and without duplicates.
func (g *Generator) enforcedTraits(origin string, civics []string) []string {
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	if o, ok := g.cat.Origin(origin); ok {
		add(o.EnforcedTraits)
	}
	for _, id := range civics {
		if c, ok := g.cat.Civic(id); ok {
			add(c.EnforcedTraits)
		}
	}
	return out
}

// enforcedPicks resolves enforced ids to picks, keeping the real cost for
// display when the trait is known and no rule overrides it.
func (g *Generator) enforcedPicks(ids []string) []TraitPick {
	out := make([]TraitPick, len(ids))
	for i, id := range ids {
		cost := 0
		if t, ok := g.cat.Trait(id); ok {
			cost = t.Cost
		}
		if c, ok := g.rules.EnforcedCosts[id]; ok {
			cost = c
		}
		out[i] = TraitPick{ID: id, Cost: cost, Enforced: true}
	}
	return out
}

func (g *Generator) opposites(id string) []string {
	if t, ok := g.cat.Trait(id); ok {
		return t.Opposites
	}
	return nil
}

// buildTraits returns enforced traits followed by a random budgeted fill,
// and the points spent by the fill.
func (g *Generator) buildTraits(a catalog.Archetype, s State, enforced []string) ([]TraitPick, int) {
	fill := newBudgetFill(a.TraitPoints, a.MaxTraits, 0)
	for _, id := range enforced {
		fill.take(id, g.opposites(id))
	}
	pool := shuffled(g.rng, g.filter.Traits(a.ID, s))
	idx := fill.fill(len(pool),
		func(i int) string { return pool[i].ID },
		func(i int) int { return pool[i].Cost },
		func(i int) []string { return pool[i].Opposites })

	out := g.enforcedPicks(enforced)
	for _, i := range idx {
		out = append(out, TraitPick{ID: pool[i].ID, Cost: pool[i].Cost})
	}
	return out, fill.spent
}

// pickHomeworld returns the homeworld and the habitability preference.
func (g *Generator) pickHomeworld(origin catalog.Origin, class string, traits []string, s State) (string, string, error) {
	if fixed, ok := g.rules.FixedHomeworlds[origin.ID]; ok {
		return fixed, g.habitability(origin, fixed), nil
	}
	homeworld, ok := PickUniform(g.rng, g.filter.Homeworlds(class, traits))
	if !ok {
		return "", "", failAt(StepHomeworld, s, "no planet class fits %s with traits %v", class, traits)
	}
	return homeworld, g.habitability(origin, homeworld), nil
}

// habitability follows the origin's preference, then a random standard
// class for fixed-homeworld origins, then the homeworld itself.
func (g *Generator) habitability(origin catalog.Origin, homeworld string) string {
	if origin.HabitabilityPreference != "" {
		return origin.HabitabilityPreference
	}
	if _, fixed := g.rules.FixedHomeworlds[origin.ID]; fixed {
		if pc, ok := PickUniform(g.rng, g.filter.StandardPlanets()); ok {
			return pc
		}
	}
	return homeworld
}

// pickLeader picks a leader class and its starting traits.
func (g *Generator) pickLeader(s State) (string, []string, error) {
	class, ok := PickUniform(g.rng, g.rules.LeaderClasses)
	if !ok {
		return "", nil, failAt(StepLeader, s, "no leader classes configured")
	}
	return class, g.pickLeaderTraits(class, s), nil
}

func (g *Generator) pickLeaderTraits(class string, s State) []string {
	pool := g.filter.LeaderTraits(class, s)
	if len(pool) == 0 {
		return nil
	}
	if s.One(requirement.Origin) != g.rules.ExtendedLeaderOrigin {
		t, _ := PickUniform(g.rng, pool)
		return []string{t.ID}
	}

	positive := shuffled(g.rng, filter(pool, func(t catalog.LeaderTrait) bool { return t.Cost > 0 }))
	negative := shuffled(g.rng, filter(pool, func(t catalog.LeaderTrait) bool { return t.Cost < 0 }))
	ordered := append(positive, negative...)
	fill := newBudgetFill(g.rules.ExtendedLeaderBudget, g.rules.ExtendedLeaderPicks, 0)
	idx := fill.fill(len(ordered),
		func(i int) string { return ordered[i].ID },
		func(i int) int { return ordered[i].Cost },
		func(i int) []string { return ordered[i].Opposites })
	out := make([]string, len(idx))
	for n, i := range idx {
		out[n] = ordered[i].ID
	}
	return out
}

// secondaryConfig returns the origin's secondary species request, else the
// first civic's.
func (g *Generator) secondaryConfig(origin catalog.Origin, civics []string) *catalog.SecondarySpeciesConfig {
	if origin.SecondarySpecies != nil {
		return origin.SecondarySpecies
	}
	for _, id := range civics {
		if c, ok := g.cat.Civic(id); ok && c.SecondarySpecies != nil {
			return c.SecondarySpecies
		}
	}
	return nil
}

// secondarySpecies builds the second species when the origin or a civic
// asks for one, and returns nil otherwise.
func (g *Generator) secondarySpecies(origin catalog.Origin, civics []string, primaryClass string, s State) (*SecondarySpecies, error) {
	cfg := g.secondaryConfig(origin, civics)
	if cfg == nil {
		return nil, nil
	}
	archetype := g.rules.SecondaryArchetype
	var all []string
	for _, c := range g.cat.ClassesOf(archetype) {
		all = append(all, c.ID)
	}
	candidates := filter(all, func(id string) bool { return id != primaryClass })
	if len(candidates) == 0 {
		candidates = all
	}
	class, ok := PickUniform(g.rng, candidates)
	if !ok {
		return nil, failAt(StepSecondarySpecies, s, "no %s species class", archetype)
	}

	enforced := make([]TraitPick, len(cfg.EnforcedTraits))
	enforcedCost := 0
	for i, id := range cfg.EnforcedTraits {
		cost := g.rules.SecondaryEnforcedCosts[id]
		enforced[i] = TraitPick{ID: id, Cost: cost, Enforced: true}
		enforcedCost += cost
	}

	fill := newBudgetFill(g.rules.SecondaryBudget, g.rules.SecondaryMaxPicks-len(enforced), enforcedCost)
	for _, id := range cfg.EnforcedTraits {
		fill.take(id, g.opposites(id))
	}
	secondary := NewState().
		With(requirement.SpeciesArchetype, archetype).
		With(requirement.SpeciesClass, class)
	pool := shuffled(g.rng, g.filter.Traits(archetype, secondary))
	idx := fill.fill(len(pool),
		func(i int) string { return pool[i].ID },
		func(i int) int { return pool[i].Cost },
		func(i int) []string { return pool[i].Opposites })

	var additional []TraitPick
	for _, i := range idx {
		additional = append(additional, TraitPick{ID: pool[i].ID, Cost: pool[i].Cost})
	}
	return &SecondarySpecies{
		Title:            cfg.Title,
		SpeciesClass:     class,
		EnforcedTraits:   enforced,
		AdditionalTraits: additional,
		PointsUsed:       fill.spent,
		PointsBudget:     g.rules.SecondaryBudget,
		MaxPicks:         g.rules.SecondaryMaxPicks,
	}, nil
}
