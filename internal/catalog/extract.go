package catalog

import (
	"log"
	"strconv"

	"github.com/louisbranch/empiregen/internal/requirement"
	"github.com/louisbranch/empiregen/internal/script/ast"
)

// entries yields the keyed top-level blocks of root.
func entries(root *ast.Node) []*ast.Node {
	if root == nil {
		return nil
	}
	var out []*ast.Node
	for _, n := range root.Children {
		if n.Kind == ast.Block && n.Key != "" {
			out = append(out, n)
		}
	}
	return out
}

func randomWeight(n *ast.Node) int {
	rw := n.Child("random_weight")
	if rw == nil {
		return 1
	}
	return max(0, rw.Int("base", 1))
}

func compile(n *ast.Node, key string) *requirement.Block {
	return requirement.Compile(n.Child(key))
}

// alwaysNo reports whether n carries `always = no`.
func alwaysNo(n *ast.Node) bool {
	v, ok := n.Lookup("always")
	return ok && v == "no"
}

func bare(n *ast.Node, key string) []string {
	return n.Child(key).BareValues()
}

// leaves returns the values of every `key = value` leaf under n.
func leaves(n *ast.Node, key string) []string {
	var out []string
	for _, c := range n.All(key) {
		if c.Kind == ast.Leaf {
			out = append(out, c.Value)
		}
	}
	return out
}

func restrictions(n *ast.Node) Restrictions {
	return Restrictions{
		AllowedOrigins:   bare(n, "allowed_origins"),
		ForbiddenOrigins: bare(n, "forbidden_origins"),
		AllowedCivics:    bare(n, "allowed_civics"),
		ForbiddenCivics:  bare(n, "forbidden_civics"),
		AllowedEthics:    bare(n, "allowed_ethics"),
		ForbiddenEthics:  bare(n, "forbidden_ethics"),
	}
}

// ExtractEthics reads common/ethics.
func ExtractEthics(root *ast.Node) []Ethic {
	var out []Ethic
	for _, n := range entries(root) {
		cost := n.Int("cost", 0)
		out = append(out, Ethic{
			ID:             n.Key,
			Cost:           cost,
			Category:       n.Get("category"),
			Fanatic:        cost == FanaticEthicCost,
			Gestalt:        n.Key == GestaltEthicID,
			RegularVariant: n.Get("regular_variant"),
			FanaticVariant: n.Get("fanatic_variant"),
			Tags:           bare(n, "tags"),
			Weight:         randomWeight(n),
		})
	}
	return out
}

// ExtractAuthorities reads common/governments/authorities, skipping
// authorities restricted to AI countries.
func ExtractAuthorities(root *ast.Node) []Authority {
	var out []Authority
	for _, n := range entries(root) {
		potential := compile(n, "potential")
		if nonPlayer(potential) {
			log.Printf("catalog: skip non-player authority %s", n.Key)
			continue
		}
		election := n.Get("election_type")
		if election == "" {
			election = DefaultElectionType
		}
		out = append(out, Authority{
			ID:           n.Key,
			ElectionType: election,
			HasHeir:      n.Bool("has_heir", false),
			Potential:    potential,
			Possible:     compile(n, "possible"),
			Weight:       randomWeight(n),
			Gestalt:      n.Key == HiveMindAuthorityID || n.Key == MachineAuthorityID,
		})
	}
	return out
}

func nonPlayer(potential *requirement.Block) bool {
	if potential.Empty() {
		return false
	}
	for _, p := range potential.Categories[requirement.CountryType] {
		if v, ok := p.(requirement.Value); ok && v.ID == NonPlayerCountryType {
			return true
		}
	}
	return false
}

func secondarySpecies(n *ast.Node) *SecondarySpeciesConfig {
	ss := n.Child("has_secondary_species")
	if ss == nil {
		return nil
	}
	return &SecondarySpeciesConfig{
		Title:          ss.Get("title"),
		EnforcedTraits: leaves(ss.Child("traits"), "trait"),
	}
}

// ExtractCivics reads the civics half of common/governments/civics.
func ExtractCivics(root *ast.Node) []Civic {
	var out []Civic
	for _, n := range entries(root) {
		if n.Bool("is_origin", false) {
			continue
		}
		out = append(out, Civic{
			ID:               n.Key,
			Potential:        compile(n, "potential"),
			Possible:         compile(n, "possible"),
			PickableAtStart:  n.Bool("pickable_at_start", true),
			Weight:           randomWeight(n),
			SecondarySpecies: secondarySpecies(n),
			EnforcedTraits:   leaves(n.Child("traits"), "trait"),
		})
	}
	return out
}

// ExtractOrigins reads the origins half of common/governments/civics,
// skipping origins marked `playable = { always = no }`.
func ExtractOrigins(root *ast.Node) []Origin {
	var out []Origin
	for _, n := range entries(root) {
		if !n.Bool("is_origin", false) {
			continue
		}
		playable := n.Child("playable")
		if playable.IsBlock() && alwaysNo(playable) {
			log.Printf("catalog: skip non-playable origin %s", n.Key)
			continue
		}
		out = append(out, Origin{
			ID:                     n.Key,
			Potential:              compile(n, "potential"),
			Possible:               compile(n, "possible"),
			DLC:                    playable.Get("host_has_dlc"),
			Weight:                 randomWeight(n),
			SecondarySpecies:       secondarySpecies(n),
			EnforcedTraits:         leaves(n.Child("traits"), "trait"),
			HabitabilityPreference: n.Get("habitability_preference"),
		})
	}
	return out
}

// ExtractArchetypes reads common/species_archetypes and resolves
// `inherit_trait_points_from` one level deep.
func ExtractArchetypes(root *ast.Node) []Archetype {
	type raw struct {
		Archetype
		inherit string
	}
	var list []raw
	byID := map[string]raw{}
	for _, n := range entries(root) {
		r := raw{
			Archetype: Archetype{
				ID:          n.Key,
				TraitPoints: n.Int("species_trait_points", -1),
				MaxTraits:   n.Int("species_max_traits", -1),
				Robotic:     n.Bool("robotic", false),
			},
			inherit: n.Get("inherit_trait_points_from"),
		}
		list = append(list, r)
		byID[r.ID] = r
	}

	out := make([]Archetype, 0, len(list))
	for _, r := range list {
		a := r.Archetype
		if r.inherit != "" {
			parent, ok := byID[r.inherit]
			if !ok {
				log.Printf("catalog: archetype %s inherits from unknown %s", a.ID, r.inherit)
			} else {
				if a.TraitPoints < 0 {
					a.TraitPoints = parent.TraitPoints
				}
				if a.MaxTraits < 0 {
					a.MaxTraits = parent.MaxTraits
				}
			}
		}
		a.TraitPoints = max(0, a.TraitPoints)
		a.MaxTraits = max(0, a.MaxTraits)
		out = append(out, a)
	}
	return out
}

// ExtractSpeciesClasses reads common/species_classes, keeping classes that
// can be picked in the empire designer.
func ExtractSpeciesClasses(root *ast.Node) []SpeciesClass {
	var out []SpeciesClass
	for _, n := range entries(root) {
		archetype := n.Get("archetype")
		if archetype == "" || archetype == PresapientArchetypeID {
			continue
		}
		if playable := n.Child("playable"); playable.IsBlock() {
			if alwaysNo(playable) || playable.Get("has_global_flag") == "game_started" {
				continue
			}
		}
		out = append(out, SpeciesClass{ID: n.Key, Archetype: archetype})
	}
	return out
}

// ExtractTraits reads the species traits of common/traits that are
// available at creation.
func ExtractTraits(root *ast.Node) []Trait {
	var out []Trait
	for _, n := range entries(root) {
		archetypes := n.Child("allowed_archetypes")
		cost := n.Child("cost")
		if archetypes == nil || cost == nil {
			continue
		}
		if !n.Bool("initial", true) || n.Bool("auto_mod", false) {
			continue
		}
		out = append(out, Trait{
			ID:                    n.Key,
			Cost:                  traitCost(cost),
			AllowedArchetypes:     archetypes.BareValues(),
			AllowedSpeciesClasses: bare(n, "species_class"),
			AllowedPlanetClasses:  bare(n, "allowed_planet_classes"),
			Opposites:             bare(n, "opposites"),
			Randomized:            n.Bool("randomized", true),
			DLC:                   n.Child("playable").Get("host_has_dlc"),
			Tags:                  bare(n, "tags"),
			Restrictions:          restrictions(n),
		})
	}
	return out
}

// traitCost reads `cost = 2` or `cost = { base = 2 ... }`.
func traitCost(n *ast.Node) int {
	if n.IsBlock() {
		return n.Int("base", 0)
	}
	f, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// ExtractLeaderTraits reads the starting ruler traits of common/traits,
// skipping upgraded tiers.
func ExtractLeaderTraits(root *ast.Node) []LeaderTrait {
	var out []LeaderTrait
	for _, n := range entries(root) {
		if !n.Bool("starting_ruler_trait", false) {
			continue
		}
		if len(bare(n, "replace_traits")) > 0 {
			continue
		}
		out = append(out, LeaderTrait{
			ID:            n.Key,
			LeaderClasses: bare(n, "leader_class"),
			Cost:          n.Int("cost", 0),
			Opposites:     bare(n, "opposites"),
			Icon:          n.Child("inline_script").Get("ICON"),
			Restrictions:  restrictions(n),
		})
	}
	return out
}

// ExtractPlanetClasses reads common/planet_classes, keeping colonizable
// initial classes that may be a starting planet.
func ExtractPlanetClasses(root *ast.Node) []PlanetClass {
	var out []PlanetClass
	for _, n := range entries(root) {
		if !n.Bool("colonizable", false) || !n.Bool("initial", false) {
			continue
		}
		if !n.Bool("starting_planet", true) {
			continue
		}
		climate := n.Get("climate")
		if climate == "" {
			climate = UnknownClimate
		}
		out = append(out, PlanetClass{ID: n.Key, Climate: climate})
	}
	return out
}

// ExtractGraphicalCultures reads common/graphical_culture, skipping
// NPC-only cultures.
func ExtractGraphicalCultures(root *ast.Node) []GraphicalCulture {
	var out []GraphicalCulture
	for _, n := range entries(root) {
		if sel := n.Child("selectable"); sel.IsBlock() && alwaysNo(sel) {
			continue
		}
		out = append(out, GraphicalCulture{ID: n.Key})
	}
	return out
}
