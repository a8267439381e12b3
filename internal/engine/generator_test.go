package engine

import (
	"errors"
	"math/rand"
	"reflect"
	"slices"
	"testing"

	"github.com/louisbranch/empiregen/internal/catalog"
	"github.com/louisbranch/empiregen/internal/catalog/catalogtest"
	apperrors "github.com/louisbranch/empiregen/internal/platform/errors"
	"github.com/louisbranch/empiregen/internal/requirement"
)

func newTestGenerator(t *testing.T, cat *catalog.Catalog, seed int64) *Generator {
	t.Helper()
	g, err := NewGenerator(cat, DefaultRules(), rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return g
}

func mustGenerate(t *testing.T, g *Generator) Empire {
	t.Helper()
	e, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return e
}

// checkEmpire asserts every rule a generated or rerolled empire must obey.
func checkEmpire(t *testing.T, g *Generator, e Empire) {
	t.Helper()
	cat, rules := g.cat, g.rules
	s := e.State()

	cost := 0
	for i, id := range e.Ethics {
		ethic, ok := cat.Ethic(id)
		if !ok {
			t.Errorf("unknown ethic %s", id)
			continue
		}
		cost += ethic.Cost
		for _, other := range e.Ethics[i+1:] {
			if o, _ := cat.Ethic(other); sameAxis(ethic, o) {
				t.Errorf("ethics %s and %s share an axis", id, other)
			}
		}
	}
	if cost != rules.EthicsBudget {
		t.Errorf("ethics %v cost %d, want %d", e.Ethics, cost, rules.EthicsBudget)
	}

	if e.IsGestalt(rules) {
		if len(e.Ethics) != 1 {
			t.Errorf("gestalt empire has ethics %v", e.Ethics)
		}
		if !rules.IsGestaltAuthority(e.Authority) {
			t.Errorf("gestalt empire has authority %s", e.Authority)
		}
	} else if rules.IsGestaltAuthority(e.Authority) {
		t.Errorf("non-gestalt empire has authority %s", e.Authority)
	}

	archetype, ok := cat.Archetype(e.Archetype)
	if !ok {
		t.Fatalf("unknown archetype %s", e.Archetype)
	}
	if want := e.Authority == rules.MachineAuthority; archetype.Robotic != want {
		t.Errorf("archetype %s robotic=%v under %s", e.Archetype, archetype.Robotic, e.Authority)
	}
	if slices.Contains(rules.HiddenArchetypes, e.Archetype) {
		t.Errorf("hidden archetype %s", e.Archetype)
	}
	if class, ok := cat.SpeciesClass(e.SpeciesClass); !ok || class.Archetype != e.Archetype {
		t.Errorf("species class %s does not belong to %s", e.SpeciesClass, e.Archetype)
	}

	if len(e.Civics) != rules.CivicCount {
		t.Errorf("civics = %v, want %d", e.Civics, rules.CivicCount)
	}
	if len(e.Civics) == 2 && e.Civics[0] == e.Civics[1] {
		t.Errorf("duplicate civic %s", e.Civics[0])
	}
	authority, _ := cat.Authority(e.Authority)
	if !requirement.EvaluateBoth(authority.Potential, authority.Possible, s) {
		t.Errorf("authority %s rejects %s", e.Authority, s)
	}
	for _, id := range e.Civics {
		c, ok := cat.Civic(id)
		if !ok || !c.PickableAtStart || !requirement.EvaluateBoth(c.Potential, c.Possible, s) {
			t.Errorf("civic %s rejects %s", id, s)
		}
	}
	origin, ok := cat.Origin(e.Origin)
	if !ok || !requirement.EvaluateBoth(origin.Potential, origin.Possible, s) {
		t.Errorf("origin %s rejects %s", e.Origin, s)
	}

	enforced := g.enforcedTraits(e.Origin, e.Civics)
	if got := e.EnforcedTraitIDs(); !slices.Equal(got, enforced) {
		t.Errorf("enforced traits = %v, want %v", got, enforced)
	}
	if used := pointsUsed(e.Traits); used != e.TraitPointsUsed {
		t.Errorf("trait points used = %d, traits sum to %d", e.TraitPointsUsed, used)
	}
	if e.TraitPointsUsed < 0 || e.TraitPointsUsed > e.TraitPointsBudget {
		t.Errorf("trait points %d outside [0, %d]", e.TraitPointsUsed, e.TraitPointsBudget)
	}
	if picked := len(e.Traits) - len(enforced); picked > e.MaxTraits {
		t.Errorf("%d picked traits, max %d", picked, e.MaxTraits)
	}
	ids := e.TraitIDs()
	for i, id := range ids {
		for _, other := range ids[i+1:] {
			if id == other {
				t.Errorf("duplicate trait %s", id)
			}
			if slices.Contains(g.opposites(id), other) || slices.Contains(g.opposites(other), id) {
				t.Errorf("opposite traits %s and %s", id, other)
			}
		}
		if tr, known := cat.Trait(id); known && !slices.Contains(enforced, id) {
			if !slices.Contains(tr.AllowedArchetypes, e.Archetype) || !g.filter.TraitAllowed(id, s) {
				t.Errorf("trait %s not allowed for %s", id, s)
			}
		}
	}

	if fixed, ok := rules.FixedHomeworlds[e.Origin]; ok {
		if e.Homeworld != fixed {
			t.Errorf("homeworld = %s, origin %s fixes %s", e.Homeworld, e.Origin, fixed)
		}
	} else if !slices.Contains(g.filter.Homeworlds(e.SpeciesClass, ids), e.Homeworld) {
		t.Errorf("homeworld %s not a candidate for %s %v", e.Homeworld, e.SpeciesClass, ids)
	}
	switch _, fixed := rules.FixedHomeworlds[e.Origin]; {
	case origin.HabitabilityPreference != "":
		if e.HabitabilityPreference != origin.HabitabilityPreference {
			t.Errorf("habitability = %s, origin prefers %s", e.HabitabilityPreference, origin.HabitabilityPreference)
		}
	case fixed:
		if !slices.Contains(g.filter.StandardPlanets(), e.HabitabilityPreference) {
			t.Errorf("habitability %s is not a standard planet", e.HabitabilityPreference)
		}
	default:
		if e.HabitabilityPreference != e.Homeworld {
			t.Errorf("habitability = %s, homeworld %s", e.HabitabilityPreference, e.Homeworld)
		}
	}

	if !slices.Contains(g.filter.Shipsets(), e.Shipset) {
		t.Errorf("shipset %s not selectable", e.Shipset)
	}

	if !slices.Contains(rules.LeaderClasses, e.LeaderClass) {
		t.Errorf("leader class %s", e.LeaderClass)
	}
	leaderCost := 0
	for _, id := range e.LeaderTraits {
		if !g.filter.LeaderTraitAllowed(id, e.LeaderClass, s) {
			t.Errorf("leader trait %s not allowed for %s", id, e.LeaderClass)
		}
		lt, _ := cat.LeaderTrait(id)
		leaderCost += lt.Cost
	}
	if e.Origin == rules.ExtendedLeaderOrigin {
		if len(e.LeaderTraits) > rules.ExtendedLeaderPicks || leaderCost < 0 || leaderCost > rules.ExtendedLeaderBudget {
			t.Errorf("extended leader traits %v cost %d", e.LeaderTraits, leaderCost)
		}
	} else if len(e.LeaderTraits) != 1 {
		t.Errorf("leader traits = %v, want one", e.LeaderTraits)
	}

	cfg := g.secondaryConfig(origin, e.Civics)
	switch ss := e.SecondarySpecies; {
	case cfg == nil && ss != nil:
		t.Errorf("unexpected secondary species %+v", ss)
	case cfg != nil && ss == nil:
		t.Errorf("missing secondary species for %s", cfg.Title)
	case ss != nil:
		if ss.SpeciesClass == e.SpeciesClass {
			t.Errorf("secondary species repeats class %s", ss.SpeciesClass)
		}
		if class, ok := cat.SpeciesClass(ss.SpeciesClass); !ok || class.Archetype != rules.SecondaryArchetype {
			t.Errorf("secondary species class %s", ss.SpeciesClass)
		}
		if ss.PointsUsed < 0 || ss.PointsUsed > ss.PointsBudget {
			t.Errorf("secondary points %d outside [0, %d]", ss.PointsUsed, ss.PointsBudget)
		}
		if n := len(ss.EnforcedTraits) + len(ss.AdditionalTraits); n > ss.MaxPicks {
			t.Errorf("secondary species has %d traits, max %d", n, ss.MaxPicks)
		}
	}
}

func TestGenerateInvariants(t *testing.T) {
	cat := catalogtest.Load(t)
	for seed := int64(1); seed <= 300; seed++ {
		g := newTestGenerator(t, cat, seed)
		e, err := g.Generate()
		if err != nil {
			t.Fatalf("seed %d: generate: %v", seed, err)
		}
		checkEmpire(t, g, e)
		if t.Failed() {
			t.Fatalf("seed %d: empire %+v", seed, e)
		}
	}
}

func TestGenerateCoversModes(t *testing.T) {
	cat := catalogtest.Load(t)
	g := newTestGenerator(t, cat, 7)
	seen := map[string]bool{}
	for range 300 {
		e := mustGenerate(t, g)
		seen[e.Authority] = true
		if e.SecondarySpecies != nil {
			seen["secondary"] = true
		}
		if len(e.EnforcedTraitIDs()) > 0 {
			seen["enforced"] = true
		}
		if e.Origin == g.rules.ExtendedLeaderOrigin {
			seen["extended"] = true
		}
	}
	for _, want := range []string{
		catalog.HiveMindAuthorityID, catalog.MachineAuthorityID, "auth_oligarchic",
		"secondary", "enforced", "extended",
	} {
		if !seen[want] {
			t.Errorf("300 generations never produced %s", want)
		}
	}
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	cat := catalogtest.Load(t)
	a := mustGenerate(t, newTestGenerator(t, cat, 42))
	b := mustGenerate(t, newTestGenerator(t, cat, 42))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed, different empires:\n%+v\n%+v", a, b)
	}
}

func TestGenerateFailsWithoutAuthorities(t *testing.T) {
	full := catalogtest.Load(t)
	cat := catalog.New(catalog.Data{Ethics: full.Ethics()})
	rules := DefaultRules()
	rules.GestaltChance = 0
	g, err := NewGenerator(cat, rules, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	_, err = g.Generate()
	var failure *GenerationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("err = %v, want *GenerationFailure", err)
	}
	if failure.Step != StepAuthority {
		t.Fatalf("step = %s, want %s", failure.Step, StepAuthority)
	}
	if !failure.State.Decided(requirement.Ethics) || failure.State.Decided(requirement.Authority) {
		t.Fatalf("state = %s", failure.State)
	}
	if got := apperrors.CodeOf(err); got != apperrors.CodeGenerationFailed {
		t.Fatalf("code = %s", got)
	}
	if got := apperrors.MetadataOf(err)["Step"]; got != StepAuthority {
		t.Fatalf("metadata step = %q", got)
	}
}

func TestNewGeneratorRequiresInputs(t *testing.T) {
	cat := catalogtest.Load(t)
	if _, err := NewGenerator(nil, DefaultRules(), rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected error for nil catalog")
	}
	if _, err := NewGenerator(cat, DefaultRules(), nil); err == nil {
		t.Fatal("expected error for nil random source")
	}
}

func TestPickEthicsSpendsBudget(t *testing.T) {
	cat := catalogtest.Load(t)
	tests := []struct {
		name    string
		chance  float64
		gestalt bool
	}{
		{name: "always gestalt", chance: 1, gestalt: true},
		{name: "never gestalt", chance: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			rules.GestaltChance = tt.chance
			g, err := NewGenerator(cat, rules, rand.New(rand.NewSource(3)))
			if err != nil {
				t.Fatalf("new generator: %v", err)
			}
			for range 50 {
				ethics, err := g.pickEthics(NewState())
				if err != nil {
					t.Fatalf("pick ethics: %v", err)
				}
				if got := slices.Contains(ethics, rules.GestaltEthic); got != tt.gestalt {
					t.Fatalf("ethics %v gestalt=%v", ethics, got)
				}
				cost := 0
				for _, id := range ethics {
					e, _ := cat.Ethic(id)
					cost += e.Cost
				}
				if cost != rules.EthicsBudget {
					t.Fatalf("ethics %v cost %d", ethics, cost)
				}
			}
		})
	}
}

func TestCivicsRedoAfterSpeciesChoice(t *testing.T) {
	cat := catalogtest.Load(t)
	g := newTestGenerator(t, cat, 11)
	s := NewState().
		With(requirement.Ethics, "ethic_militarist", "ethic_xenophile", "ethic_materialist").
		With(requirement.Authority, "auth_oligarchic").
		With(requirement.Origin, "origin_default").
		With(requirement.SpeciesArchetype, "BIOLOGICAL").
		With(requirement.SpeciesClass, "MAM")
	if g.civicsHold([]string{"civic_lithoid_miners", "civic_technocracy"}, s) {
		t.Fatal("lithoid civic should not hold for a biological species")
	}
	for range 50 {
		civics, err := g.pickCivics(s, nil)
		if err != nil {
			t.Fatalf("pick civics: %v", err)
		}
		if slices.Contains(civics, "civic_lithoid_miners") {
			t.Fatalf("picked lithoid civic for %s", s)
		}
	}
}

func TestPickCivicsKeepsOriginValid(t *testing.T) {
	cat := catalogtest.Load(t)
	g := newTestGenerator(t, cat, 5)
	s := NewState().
		With(requirement.Ethics, "ethic_egalitarian", "ethic_xenophile", "ethic_pacifist").
		With(requirement.Authority, "auth_democratic")
	for range 50 {
		civics, err := g.pickCivics(s, nil)
		if err != nil {
			t.Fatalf("pick civics: %v", err)
		}
		if !g.locked(s.With(requirement.Civics, civics...)) {
			t.Fatalf("civics %v unlock %s", civics, s)
		}
	}
}

func TestPickLeaderTraitsExtended(t *testing.T) {
	cat := catalogtest.Load(t)
	g := newTestGenerator(t, cat, 9)
	s := NewState().
		With(requirement.Ethics, "ethic_fanatic_militarist", "ethic_xenophobe").
		With(requirement.Authority, "auth_dictatorial").
		With(requirement.Origin, g.rules.ExtendedLeaderOrigin)
	for range 50 {
		traits := g.pickLeaderTraits("commander", s)
		if len(traits) == 0 || len(traits) > g.rules.ExtendedLeaderPicks {
			t.Fatalf("traits = %v", traits)
		}
		cost := 0
		for _, id := range traits {
			lt, _ := cat.LeaderTrait(id)
			cost += lt.Cost
		}
		if cost < 0 || cost > g.rules.ExtendedLeaderBudget {
			t.Fatalf("traits %v cost %d", traits, cost)
		}
		if slices.Contains(traits, "leader_trait_principled") && slices.Contains(traits, "leader_trait_corrupt") {
			t.Fatalf("opposite leader traits %v", traits)
		}
	}
}

func TestEnforcedPicksCostOverrides(t *testing.T) {
	cat := catalogtest.Load(t)
	tests := []struct {
		name      string
		overrides map[string]int
		want      []TraitPick
	}{
		{
			name: "catalog cost",
			want: []TraitPick{{ID: "trait_aquatic", Cost: 1, Enforced: true}, {ID: "trait_necrophage", Enforced: true}},
		},
		{
			name:      "civic table",
			overrides: CivicEnforcedCosts(),
			want:      []TraitPick{{ID: "trait_aquatic", Enforced: true}, {ID: "trait_necrophage", Enforced: true}},
		},
		{
			name:      "custom cost",
			overrides: map[string]int{"trait_necrophage": 2},
			want:      []TraitPick{{ID: "trait_aquatic", Cost: 1, Enforced: true}, {ID: "trait_necrophage", Cost: 2, Enforced: true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			rules.EnforcedCosts = tt.overrides
			g, err := NewGenerator(cat, rules, rand.New(rand.NewSource(1)))
			if err != nil {
				t.Fatalf("new generator: %v", err)
			}
			got := g.enforcedPicks([]string{"trait_aquatic", "trait_necrophage"})
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("picks = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEnforcedCostOverridesSpendNoBudget(t *testing.T) {
	cat := catalogtest.Load(t)
	rules := DefaultRules()
	rules.EnforcedCosts = OriginEnforcedCosts()
	for k, v := range CivicEnforcedCosts() {
		rules.EnforcedCosts[k] = v
	}
	g, err := NewGenerator(cat, rules, rand.New(rand.NewSource(8)))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	for range 100 {
		e := mustGenerate(t, g)
		checkEmpire(t, g, e)
		for _, tr := range e.Traits {
			if tr.ID == "trait_aquatic" && tr.Enforced && tr.Cost != 0 {
				t.Fatalf("enforced aquatic shows cost %d", tr.Cost)
			}
		}
	}
}

func TestPickSpeciesClassWeights(t *testing.T) {
	cat := catalogtest.Load(t)
	rules := DefaultRules()
	rules.ClassWeights = map[string]int{"MAM": 0, "REP": 0}
	g, err := NewGenerator(cat, rules, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	s := NewState().
		With(requirement.Ethics, "ethic_militarist", "ethic_xenophile", "ethic_materialist").
		With(requirement.Authority, "auth_oligarchic")
	biological := 0
	for range 100 {
		a, class, err := g.pickSpecies(s)
		if err != nil {
			t.Fatalf("pick species: %v", err)
		}
		if a.ID != "BIOLOGICAL" {
			continue
		}
		biological++
		if class != "INF" {
			t.Fatalf("class = %s, want INF", class)
		}
	}
	if biological == 0 {
		t.Fatal("never picked a biological archetype")
	}
}

func TestRareClassWeightsFavourGatingClasses(t *testing.T) {
	weights := RareClassWeights()
	for _, class := range []string{"INF", "MINDWARDEN", "FUN", "PLANT", "BIOGENESIS_01"} {
		if weights[class] <= 1 {
			t.Errorf("weight[%s] = %d, want > 1", class, weights[class])
		}
	}
	if len(DefaultRules().ClassWeights) != 0 {
		t.Error("default rules should pick classes uniformly")
	}
}
