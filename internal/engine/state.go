// Package engine generates random, rule-consistent empires from a catalog
// and applies the single reroll a generation allows.
package engine

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/louisbranch/empiregen/internal/requirement"
)

// DefaultCountryType is the country type of every generated empire.
const DefaultCountryType = "default"

// State is an immutable partial empire. A category with no ids is
// undecided; the country type is always decided.
type State struct {
	values map[requirement.Category][]string
}

// NewState returns a State with only the country type decided.
func NewState() State {
	return State{values: map[requirement.Category][]string{
		requirement.CountryType: {DefaultCountryType},
	}}
}

// With returns a copy of s with category c set to ids. Passing no ids
// makes c undecided again.
func (s State) With(c requirement.Category, ids ...string) State {
	out := make(map[requirement.Category][]string, len(s.values)+1)
	for k, v := range s.values {
		out[k] = v
	}
	if len(ids) == 0 {
		delete(out, c)
	} else {
		out[c] = slices.Clone(ids)
	}
	return State{values: out}
}

// Without returns a copy of s with category c undecided.
func (s State) Without(c requirement.Category) State {
	return s.With(c)
}

// Decided reports whether c has a value.
func (s State) Decided(c requirement.Category) bool {
	return len(s.values[c]) > 0
}

// Has reports whether id is selected in c.
func (s State) Has(c requirement.Category, id string) bool {
	return slices.Contains(s.values[c], id)
}

// Values returns a copy of the ids selected in c.
func (s State) Values(c requirement.Category) []string {
	return slices.Clone(s.values[c])
}

// One returns the first id selected in c, or "".
func (s State) One(c requirement.Category) string {
	if v := s.values[c]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (s State) String() string {
	var parts []string
	for _, c := range requirement.Categories() {
		if v := s.values[c]; len(v) > 0 {
			sorted := slices.Clone(v)
			sort.Strings(sorted)
			parts = append(parts, fmt.Sprintf("%s=[%s]", c, strings.Join(sorted, " ")))
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

var _ requirement.Selection = State{}
