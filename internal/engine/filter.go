package engine

import (
	"slices"

	"github.com/louisbranch/empiregen/internal/catalog"
	"github.com/louisbranch/empiregen/internal/requirement"
)

// Filter narrows catalog entities to the ones compatible with a State.
type Filter struct {
	cat   *catalog.Catalog
	rules Rules
}

// NewFilter returns a Filter over cat.
func NewFilter(cat *catalog.Catalog, rules Rules) *Filter {
	return &Filter{cat: cat, rules: rules}
}

// Authorities returns the authorities whose rules hold for s. Once ethics
// are decided, gestalt authorities pair only with the gestalt ethic.
func (f *Filter) Authorities(s State) []catalog.Authority {
	return filter(f.cat.Authorities(), func(a catalog.Authority) bool {
		if s.Decided(requirement.Ethics) &&
			f.rules.IsGestaltAuthority(a.ID) != s.Has(requirement.Ethics, f.rules.GestaltEthic) {
			return false
		}
		return requirement.EvaluateBoth(a.Potential, a.Possible, s)
	})
}

// Civics returns the civics pickable at start, not already in s, whose
// rules hold for s.
func (f *Filter) Civics(s State) []catalog.Civic {
	return filter(f.cat.Civics(), func(c catalog.Civic) bool {
		return c.PickableAtStart &&
			!s.Has(requirement.Civics, c.ID) &&
			requirement.EvaluateBoth(c.Potential, c.Possible, s)
	})
}

// Origins returns the origins whose rules hold for s.
func (f *Filter) Origins(s State) []catalog.Origin {
	return filter(f.cat.Origins(), func(o catalog.Origin) bool {
		return requirement.EvaluateBoth(o.Potential, o.Possible, s)
	})
}

// Archetypes returns the selectable archetypes for the gestalt mode of s:
// machine intelligences need robotic archetypes, every other empire a
// non-robotic one.
func (f *Filter) Archetypes(s State) []catalog.Archetype {
	robotic := s.Has(requirement.Ethics, f.rules.GestaltEthic) &&
		s.Has(requirement.Authority, f.rules.MachineAuthority)
	return filter(f.cat.Archetypes(), func(a catalog.Archetype) bool {
		return !slices.Contains(f.rules.HiddenArchetypes, a.ID) && a.Robotic == robotic
	})
}

// SpeciesClasses returns the class ids of archetype. An archetype without
// classes stands in as its own class.
func (f *Filter) SpeciesClasses(archetype string) []string {
	classes := f.cat.ClassesOf(archetype)
	if len(classes) == 0 {
		return []string{archetype}
	}
	ids := make([]string, len(classes))
	for i, c := range classes {
		ids[i] = c.ID
	}
	return ids
}

// Traits returns the species traits allowed for archetype under s.
func (f *Filter) Traits(archetype string, s State) []catalog.Trait {
	return filter(f.cat.Traits(), func(t catalog.Trait) bool {
		return slices.Contains(t.AllowedArchetypes, archetype) &&
			allowList(t.AllowedSpeciesClasses, s.One(requirement.SpeciesClass)) &&
			restrictionsHold(t.Restrictions, s)
	})
}

// LeaderTraits returns the starting ruler traits for class under s.
func (f *Filter) LeaderTraits(class string, s State) []catalog.LeaderTrait {
	return filter(f.cat.LeaderTraits(), func(t catalog.LeaderTrait) bool {
		return slices.Contains(t.LeaderClasses, class) && restrictionsHold(t.Restrictions, s)
	})
}

// TraitAllowed reports whether a trait already on a species still fits s.
// Unknown ids are stubs and always fit.
func (f *Filter) TraitAllowed(id string, s State) bool {
	t, ok := f.cat.Trait(id)
	if !ok {
		return true
	}
	return allowList(t.AllowedSpeciesClasses, s.One(requirement.SpeciesClass)) &&
		restrictionsHold(t.Restrictions, s)
}

// LeaderTraitAllowed reports whether a leader trait still fits class and s.
func (f *Filter) LeaderTraitAllowed(id, class string, s State) bool {
	t, ok := f.cat.LeaderTrait(id)
	if !ok {
		return false
	}
	return slices.Contains(t.LeaderClasses, class) && restrictionsHold(t.Restrictions, s)
}

// Homeworlds returns the candidate homeworld classes for a species class
// carrying traits. Traits that restrict planet classes intersect.
func (f *Filter) Homeworlds(speciesClass string, traits []string) []string {
	var planets []string
	for _, p := range f.cat.PlanetClasses() {
		planets = append(planets, p.ID)
	}
	if adj, ok := f.rules.ClassAdjustments[speciesClass]; ok {
		planets = filter(planets, func(id string) bool { return !slices.Contains(adj.Remove, id) })
		for _, id := range adj.Ensure {
			if !slices.Contains(planets, id) {
				planets = append(planets, id)
			}
		}
	}
	if allowed, restricted := f.PlanetRestriction(traits); restricted {
		planets = filter(planets, func(id string) bool { return allowed[id] })
	}
	return planets
}

// PlanetRestriction intersects the allowed planet classes of traits.
// restricted is false when no trait limits planet classes.
func (f *Filter) PlanetRestriction(traits []string) (allowed map[string]bool, restricted bool) {
	for _, id := range traits {
		t, ok := f.cat.Trait(id)
		if !ok || len(t.AllowedPlanetClasses) == 0 {
			continue
		}
		next := map[string]bool{}
		for _, pc := range t.AllowedPlanetClasses {
			if !restricted || allowed[pc] {
				next[pc] = true
			}
		}
		allowed, restricted = next, true
	}
	return allowed, restricted
}

// StandardPlanets returns every habitable starting planet class.
func (f *Filter) StandardPlanets() []string {
	out := make([]string, 0, len(f.cat.PlanetClasses()))
	for _, p := range f.cat.PlanetClasses() {
		out = append(out, p.ID)
	}
	return out
}

// Shipsets returns every selectable graphical culture id.
func (f *Filter) Shipsets() []string {
	out := make([]string, 0, len(f.cat.GraphicalCultures()))
	for _, g := range f.cat.GraphicalCultures() {
		out = append(out, g.ID)
	}
	return out
}

func allowList(allowed []string, value string) bool {
	return len(allowed) == 0 || (value != "" && slices.Contains(allowed, value))
}

func forbidList(forbidden []string, value string) bool {
	return len(forbidden) == 0 || value == "" || !slices.Contains(forbidden, value)
}

func allowSet(allowed []string, s State, c requirement.Category) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, id := range allowed {
		if s.Has(c, id) {
			return true
		}
	}
	return false
}

func forbidSet(forbidden []string, s State, c requirement.Category) bool {
	for _, id := range forbidden {
		if s.Has(c, id) {
			return false
		}
	}
	return true
}

func restrictionsHold(r catalog.Restrictions, s State) bool {
	origin := s.One(requirement.Origin)
	return allowList(r.AllowedOrigins, origin) &&
		forbidList(r.ForbiddenOrigins, origin) &&
		allowSet(r.AllowedCivics, s, requirement.Civics) &&
		forbidSet(r.ForbiddenCivics, s, requirement.Civics) &&
		allowSet(r.AllowedEthics, s, requirement.Ethics) &&
		forbidSet(r.ForbiddenEthics, s, requirement.Ethics)
}
