package engine

import (
	"slices"

	"github.com/louisbranch/empiregen/internal/requirement"
)

// TraitPick is one trait of a generated species. Enforced traits come from
// the origin or a civic and do not count against the point budget.
type TraitPick struct {
	ID       string `json:"id" yaml:"id"`
	Cost     int    `json:"cost" yaml:"cost"`
	Enforced bool   `json:"enforced,omitempty" yaml:"enforced,omitempty"`
}

// SecondarySpecies is the optional second founding species.
type SecondarySpecies struct {
	Title            string      `json:"title,omitempty" yaml:"title,omitempty"`
	SpeciesClass     string      `json:"species_class" yaml:"species_class"`
	EnforcedTraits   []TraitPick `json:"enforced_traits,omitempty" yaml:"enforced_traits,omitempty"`
	AdditionalTraits []TraitPick `json:"additional_traits,omitempty" yaml:"additional_traits,omitempty"`
	PointsUsed       int         `json:"points_used" yaml:"points_used"`
	PointsBudget     int         `json:"points_budget" yaml:"points_budget"`
	MaxPicks         int         `json:"max_picks" yaml:"max_picks"`
}

func (s *SecondarySpecies) clone() *SecondarySpecies {
	if s == nil {
		return nil
	}
	out := *s
	out.EnforcedTraits = slices.Clone(s.EnforcedTraits)
	out.AdditionalTraits = slices.Clone(s.AdditionalTraits)
	return &out
}

// TraitIDs returns the ids of every secondary species trait in order.
func (s *SecondarySpecies) TraitIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.EnforcedTraits)+len(s.AdditionalTraits))
	for _, t := range s.EnforcedTraits {
		ids = append(ids, t.ID)
	}
	for _, t := range s.AdditionalTraits {
		ids = append(ids, t.ID)
	}
	return ids
}

// Empire is a generated empire. Values are never modified in place: the
// with helpers return changed copies, so a prior Empire stays valid.
type Empire struct {
	Ethics                 []string          `json:"ethics" yaml:"ethics"`
	Authority              string            `json:"authority" yaml:"authority"`
	Civics                 []string          `json:"civics" yaml:"civics"`
	Origin                 string            `json:"origin" yaml:"origin"`
	Archetype              string            `json:"archetype" yaml:"archetype"`
	SpeciesClass           string            `json:"species_class" yaml:"species_class"`
	Traits                 []TraitPick       `json:"traits" yaml:"traits"`
	TraitPointsUsed        int               `json:"trait_points_used" yaml:"trait_points_used"`
	TraitPointsBudget      int               `json:"trait_points_budget" yaml:"trait_points_budget"`
	MaxTraits              int               `json:"max_traits" yaml:"max_traits"`
	Homeworld              string            `json:"homeworld" yaml:"homeworld"`
	HabitabilityPreference string            `json:"habitability_preference" yaml:"habitability_preference"`
	Shipset                string            `json:"shipset" yaml:"shipset"`
	LeaderClass            string            `json:"leader_class" yaml:"leader_class"`
	LeaderTraits           []string          `json:"leader_traits" yaml:"leader_traits"`
	SecondarySpecies       *SecondarySpecies `json:"secondary_species,omitempty" yaml:"secondary_species,omitempty"`
}

// Clone returns a deep copy of e.
func (e Empire) Clone() Empire {
	out := e
	out.Ethics = slices.Clone(e.Ethics)
	out.Civics = slices.Clone(e.Civics)
	out.Traits = slices.Clone(e.Traits)
	out.LeaderTraits = slices.Clone(e.LeaderTraits)
	out.SecondarySpecies = e.SecondarySpecies.clone()
	return out
}

// TraitIDs returns the ids of the primary species traits in order.
func (e Empire) TraitIDs() []string {
	ids := make([]string, len(e.Traits))
	for i, t := range e.Traits {
		ids[i] = t.ID
	}
	return ids
}

// EnforcedTraitIDs returns the ids of the enforced primary traits.
func (e Empire) EnforcedTraitIDs() []string {
	var ids []string
	for _, t := range e.Traits {
		if t.Enforced {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// IsGestalt reports whether e runs on the gestalt ethic.
func (e Empire) IsGestalt(r Rules) bool {
	return slices.Contains(e.Ethics, r.GestaltEthic)
}

// State returns the selection e represents.
func (e Empire) State() State {
	return NewState().
		With(requirement.Ethics, e.Ethics...).
		With(requirement.Authority, nonEmpty(e.Authority)...).
		With(requirement.Civics, e.Civics...).
		With(requirement.Origin, nonEmpty(e.Origin)...).
		With(requirement.SpeciesArchetype, nonEmpty(e.Archetype)...).
		With(requirement.SpeciesClass, nonEmpty(e.SpeciesClass)...).
		With(requirement.Traits, e.TraitIDs()...).
		With(requirement.GraphicalCulture, nonEmpty(e.Shipset)...)
}

func nonEmpty(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}

func (e Empire) withEthics(ids []string) Empire {
	out := e.Clone()
	out.Ethics = slices.Clone(ids)
	return out
}

func (e Empire) withAuthority(id string) Empire {
	out := e.Clone()
	out.Authority = id
	return out
}

func (e Empire) withCivic(slot int, id string) Empire {
	out := e.Clone()
	out.Civics[slot] = id
	return out
}

func (e Empire) withOrigin(id string) Empire {
	out := e.Clone()
	out.Origin = id
	return out
}

func (e Empire) withTraits(traits []TraitPick, used int) Empire {
	out := e.Clone()
	out.Traits = slices.Clone(traits)
	out.TraitPointsUsed = used
	return out
}

func (e Empire) withHomeworld(homeworld, habitability string) Empire {
	out := e.Clone()
	out.Homeworld = homeworld
	out.HabitabilityPreference = habitability
	return out
}

func (e Empire) withShipset(id string) Empire {
	out := e.Clone()
	out.Shipset = id
	return out
}

func (e Empire) withLeader(class string, traits []string) Empire {
	out := e.Clone()
	out.LeaderClass = class
	out.LeaderTraits = slices.Clone(traits)
	return out
}

func (e Empire) withSecondarySpecies(s *SecondarySpecies) Empire {
	out := e.Clone()
	out.SecondarySpecies = s.clone()
	return out
}

// pointsUsed sums the cost of the non-enforced traits.
func pointsUsed(traits []TraitPick) int {
	total := 0
	for _, t := range traits {
		if !t.Enforced {
			total += t.Cost
		}
	}
	return total
}
