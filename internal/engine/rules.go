package engine

import "github.com/louisbranch/empiregen/internal/catalog"

// PlanetAdjustment reshapes the homeworld candidates of a species class.
type PlanetAdjustment struct {
	Remove []string
	Ensure []string
}

// Rules are the tunable constants of generation and reroll.
type Rules struct {
	EthicsBudget  int
	CivicCount    int
	GestaltChance float64
	// AttemptCap bounds every retry loop: ethics reroll, regime change,
	// gestalt switch and the leader, secondary species and trait rerolls.
	AttemptCap int

	GestaltEthic       string
	HiveMindAuthority  string
	MachineAuthority   string
	HiddenArchetypes   []string
	SecondaryArchetype string

	LeaderClasses        []string
	ExtendedLeaderOrigin string
	ExtendedLeaderBudget int
	ExtendedLeaderPicks  int

	SecondaryBudget        int
	SecondaryMaxPicks      int
	SecondaryEnforcedCosts map[string]int

	// EnforcedCosts overrides the displayed cost of primary species traits
	// enforced by an origin or civic. Unlisted traits show their catalog
	// cost. Enforced traits never spend budget either way.
	EnforcedCosts map[string]int
	// ClassWeights biases the species class pick. Nil keeps it uniform;
	// classes missing from a non-empty map weigh 1.
	ClassWeights map[string]int

	// FixedHomeworlds maps origins to the planet class they always start on.
	FixedHomeworlds  map[string]string
	ClassAdjustments map[string]PlanetAdjustment
}

// DefaultRules returns the rules of the base game.
func DefaultRules() Rules {
	return Rules{
		EthicsBudget:  3,
		CivicCount:    2,
		GestaltChance: 0.30,
		AttemptCap:    50,

		GestaltEthic:       catalog.GestaltEthicID,
		HiveMindAuthority:  catalog.HiveMindAuthorityID,
		MachineAuthority:   catalog.MachineAuthorityID,
		HiddenArchetypes:   []string{catalog.PresapientArchetypeID, "OTHER", "ROBOT"},
		SecondaryArchetype: "BIOLOGICAL",

		LeaderClasses:        []string{"official", "commander", "scientist"},
		ExtendedLeaderOrigin: "origin_legendary_leader",
		ExtendedLeaderBudget: 1,
		ExtendedLeaderPicks:  3,

		SecondaryBudget:   2,
		SecondaryMaxPicks: 5,
		SecondaryEnforcedCosts: map[string]int{
			"trait_syncretic_proles": 1,
			"trait_cybernetic":       0,
			"trait_hive_mind":        0,
		},

		FixedHomeworlds: map[string]string{
			"origin_life_seeded":      "pc_gaia",
			"origin_void_dwellers":    "pc_habitat",
			"origin_post_apocalyptic": "pc_nuked",
			"origin_machine":          "pc_machine",
			"origin_remnants":         "pc_relic",
			"origin_shattered_ring":   "pc_ringworld_habitable",
			"origin_ocean_paradise":   "pc_ocean",
			"origin_red_giant":        "pc_volcanic",
			"origin_cosmic_dawn":      "pc_volcanic",
			"origin_void_machines":    "pc_habitat",
		},
		ClassAdjustments: map[string]PlanetAdjustment{
			"INF": {Remove: []string{"pc_arctic", "pc_alpine", "pc_tundra"}, Ensure: []string{"pc_volcanic"}},
		},
	}
}

// OriginEnforcedCosts are the free origin-enforced traits of the base game.
func OriginEnforcedCosts() map[string]int {
	return map[string]int{
		"trait_perfected_genes": 0,
		"trait_necrophage":      0,
		"trait_malleable_genes": 0,
	}
}

// CivicEnforcedCosts are the free civic-enforced traits of the base game.
func CivicEnforcedCosts() map[string]int {
	return map[string]int{
		"trait_aquatic":       0,
		"trait_robot_aquatic": 0,
		"trait_storm_touched": 0,
		"trait_tankbound":     0,
		"trait_stargazer":     0,
	}
}

// RareClassWeights favour the species classes that alone unlock an origin.
func RareClassWeights() map[string]int {
	return map[string]int{
		"INF":           8,
		"MINDWARDEN":    8,
		"FUN":           7,
		"PLANT":         7,
		"BIOGENESIS_01": 4,
	}
}

// IsGestaltAuthority reports whether id is one of the gestalt authorities.
func (r Rules) IsGestaltAuthority(id string) bool {
	return id != "" && (id == r.HiveMindAuthority || id == r.MachineAuthority)
}
