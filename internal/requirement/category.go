// Package requirement models the eligibility rules attached to catalog
// entities and evaluates them against a partial empire selection.
package requirement

import "fmt"

// Category is one axis of an empire that rules can constrain.
type Category int

const (
	Ethics Category = iota
	Authority
	Civics
	Origin
	Traits
	SpeciesClass
	SpeciesArchetype
	GraphicalCulture
	CountryType
)

var categoryKeys = [...]string{
	Ethics:           "ethics",
	Authority:        "authority",
	Civics:           "civics",
	Origin:           "origin",
	Traits:           "traits",
	SpeciesClass:     "species_class",
	SpeciesArchetype: "species_archetype",
	GraphicalCulture: "graphical_culture",
	CountryType:      "country_type",
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryKeys))
	for i := range categoryKeys {
		out[i] = Category(i)
	}
	return out
}

// Key returns the script key for c.
func (c Category) Key() string {
	if c < 0 || int(c) >= len(categoryKeys) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryKeys[c]
}

func (c Category) String() string {
	return c.Key()
}

// CategoryFromKey maps a script key to its category.
func CategoryFromKey(key string) (Category, bool) {
	for i, k := range categoryKeys {
		if k == key {
			return Category(i), true
		}
	}
	return 0, false
}

// MarshalText encodes c as its script key.
func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(categoryKeys) {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(c.Key()), nil
}

// UnmarshalText decodes a script key.
func (c *Category) UnmarshalText(text []byte) error {
	cat, ok := CategoryFromKey(string(text))
	if !ok {
		return fmt.Errorf("unknown category %q", text)
	}
	*c = cat
	return nil
}
