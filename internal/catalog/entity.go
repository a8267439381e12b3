package catalog

import "github.com/louisbranch/empiregen/internal/requirement"

// Well-known ids the generator depends on.
const (
	GestaltEthicID        = "ethic_gestalt_consciousness"
	HiveMindAuthorityID   = "auth_hive_mind"
	MachineAuthorityID    = "auth_machine_intelligence"
	PresapientArchetypeID = "PRESAPIENT"
	NonPlayerCountryType  = "ai_empire"
	DefaultElectionType   = "none"
	UnknownClimate        = "unknown"
	FanaticEthicCost      = 2
)

// Ethic is a political ethic. Fanatic variants cost 2 points.
type Ethic struct {
	ID             string   `json:"id"`
	Cost           int      `json:"cost"`
	Category       string   `json:"category,omitempty"`
	Fanatic        bool     `json:"fanatic"`
	Gestalt        bool     `json:"gestalt"`
	RegularVariant string   `json:"regular_variant,omitempty"`
	FanaticVariant string   `json:"fanatic_variant,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Weight         int      `json:"weight"`
}

// Authority is a form of government.
type Authority struct {
	ID           string             `json:"id"`
	ElectionType string             `json:"election_type"`
	HasHeir      bool               `json:"has_heir"`
	Potential    *requirement.Block `json:"potential,omitempty"`
	Possible     *requirement.Block `json:"possible,omitempty"`
	Weight       int                `json:"weight"`
	Gestalt      bool               `json:"gestalt"`
}

// SecondarySpeciesConfig asks for a second founding species.
type SecondarySpeciesConfig struct {
	Title          string   `json:"title,omitempty"`
	EnforcedTraits []string `json:"enforced_traits,omitempty"`
}

// Civic is a civic policy.
type Civic struct {
	ID               string                  `json:"id"`
	Potential        *requirement.Block      `json:"potential,omitempty"`
	Possible         *requirement.Block      `json:"possible,omitempty"`
	PickableAtStart  bool                    `json:"pickable_at_start"`
	Weight           int                     `json:"weight"`
	SecondarySpecies *SecondarySpeciesConfig `json:"secondary_species,omitempty"`
	EnforcedTraits   []string                `json:"enforced_traits,omitempty"`
}

// Origin is a starting condition. Origins share the civics directory and
// are told apart by `is_origin = yes`.
type Origin struct {
	ID                     string                  `json:"id"`
	Potential              *requirement.Block      `json:"potential,omitempty"`
	Possible               *requirement.Block      `json:"possible,omitempty"`
	DLC                    string                  `json:"dlc,omitempty"`
	Weight                 int                     `json:"weight"`
	SecondarySpecies       *SecondarySpeciesConfig `json:"secondary_species,omitempty"`
	EnforcedTraits         []string                `json:"enforced_traits,omitempty"`
	HabitabilityPreference string                  `json:"habitability_preference,omitempty"`
}

// Archetype is a species archetype such as BIOLOGICAL or ROBOT.
type Archetype struct {
	ID          string `json:"id"`
	TraitPoints int    `json:"trait_points"`
	MaxTraits   int    `json:"max_traits"`
	Robotic     bool   `json:"robotic"`
}

// SpeciesClass is a playable species class of one archetype.
type SpeciesClass struct {
	ID        string `json:"id"`
	Archetype string `json:"archetype"`
}

// Restrictions are the allow and forbid lists shared by species and ruler
// traits. Empty allow lists do not restrict.
type Restrictions struct {
	AllowedOrigins   []string `json:"allowed_origins,omitempty"`
	ForbiddenOrigins []string `json:"forbidden_origins,omitempty"`
	AllowedCivics    []string `json:"allowed_civics,omitempty"`
	ForbiddenCivics  []string `json:"forbidden_civics,omitempty"`
	AllowedEthics    []string `json:"allowed_ethics,omitempty"`
	ForbiddenEthics  []string `json:"forbidden_ethics,omitempty"`
}

// Trait is a species trait available at empire creation.
type Trait struct {
	ID                    string   `json:"id"`
	Cost                  int      `json:"cost"`
	AllowedArchetypes     []string `json:"allowed_archetypes"`
	AllowedSpeciesClasses []string `json:"allowed_species_classes,omitempty"`
	AllowedPlanetClasses  []string `json:"allowed_planet_classes,omitempty"`
	Opposites             []string `json:"opposites,omitempty"`
	Randomized            bool     `json:"randomized"`
	DLC                   string   `json:"dlc,omitempty"`
	Tags                  []string `json:"tags,omitempty"`
	Restrictions
}

// PlanetClass is a habitable starting planet class.
type PlanetClass struct {
	ID      string `json:"id"`
	Climate string `json:"climate"`
}

// GraphicalCulture is a selectable shipset.
type GraphicalCulture struct {
	ID string `json:"id"`
}

// LeaderTrait is a starting ruler trait.
type LeaderTrait struct {
	ID            string   `json:"id"`
	LeaderClasses []string `json:"leader_classes,omitempty"`
	Cost          int      `json:"cost"`
	Opposites     []string `json:"opposites,omitempty"`
	Icon          string   `json:"icon,omitempty"`
	Restrictions
}
