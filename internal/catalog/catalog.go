// Package catalog extracts the empire-designer entities from game script
// files into an immutable snapshot.
package catalog

import (
	"slices"
	"sort"
	"sync"
)

// Data holds the extracted entity lists used to build a Catalog.
type Data struct {
	Ethics            []Ethic            `json:"ethics"`
	Authorities       []Authority        `json:"authorities"`
	Civics            []Civic            `json:"civics"`
	Origins           []Origin           `json:"origins"`
	Archetypes        []Archetype        `json:"archetypes"`
	SpeciesClasses    []SpeciesClass     `json:"species_classes"`
	Traits            []Trait            `json:"traits"`
	LeaderTraits      []LeaderTrait      `json:"leader_traits"`
	PlanetClasses     []PlanetClass      `json:"planet_classes"`
	GraphicalCultures []GraphicalCulture `json:"graphical_cultures"`
}

// Catalog is a read-only snapshot of game entities with id lookups. Slices
// returned by its accessors are shared and must not be modified. A Catalog
// is safe for concurrent use.
type Catalog struct {
	data Data

	ethics       map[string]Ethic
	authorities  map[string]Authority
	civics       map[string]Civic
	origins      map[string]Origin
	archetypes   map[string]Archetype
	classes      map[string]SpeciesClass
	traits       map[string]Trait
	leaderTraits map[string]LeaderTrait
	planets      map[string]PlanetClass
	byArchetype  map[string][]SpeciesClass

	encodeOnce  sync.Once
	encoded     []byte
	fingerprint string
	encodeErr   error
}

// New builds a Catalog from a copy of d. Later duplicates of an id replace
// earlier ones in lookups, the way later game files override earlier ones.
func New(d Data) *Catalog {
	c := &Catalog{data: Data{
		Ethics:            slices.Clone(d.Ethics),
		Authorities:       slices.Clone(d.Authorities),
		Civics:            slices.Clone(d.Civics),
		Origins:           slices.Clone(d.Origins),
		Archetypes:        slices.Clone(d.Archetypes),
		SpeciesClasses:    slices.Clone(d.SpeciesClasses),
		Traits:            slices.Clone(d.Traits),
		LeaderTraits:      slices.Clone(d.LeaderTraits),
		PlanetClasses:     slices.Clone(d.PlanetClasses),
		GraphicalCultures: slices.Clone(d.GraphicalCultures),
	}}
	c.ethics = index(c.data.Ethics, func(e Ethic) string { return e.ID })
	c.authorities = index(c.data.Authorities, func(a Authority) string { return a.ID })
	c.civics = index(c.data.Civics, func(v Civic) string { return v.ID })
	c.origins = index(c.data.Origins, func(o Origin) string { return o.ID })
	c.archetypes = index(c.data.Archetypes, func(a Archetype) string { return a.ID })
	c.classes = index(c.data.SpeciesClasses, func(s SpeciesClass) string { return s.ID })
	c.traits = index(c.data.Traits, func(t Trait) string { return t.ID })
	c.leaderTraits = index(c.data.LeaderTraits, func(t LeaderTrait) string { return t.ID })
	c.planets = index(c.data.PlanetClasses, func(p PlanetClass) string { return p.ID })
	c.byArchetype = map[string][]SpeciesClass{}
	for _, sc := range c.data.SpeciesClasses {
		c.byArchetype[sc.Archetype] = append(c.byArchetype[sc.Archetype], sc)
	}
	return c
}

func index[T any](items []T, id func(T) string) map[string]T {
	out := make(map[string]T, len(items))
	for _, item := range items {
		out[id(item)] = item
	}
	return out
}

func (c *Catalog) Ethics() []Ethic                       { return c.data.Ethics }
func (c *Catalog) Authorities() []Authority              { return c.data.Authorities }
func (c *Catalog) Civics() []Civic                       { return c.data.Civics }
func (c *Catalog) Origins() []Origin                     { return c.data.Origins }
func (c *Catalog) Archetypes() []Archetype               { return c.data.Archetypes }
func (c *Catalog) SpeciesClasses() []SpeciesClass        { return c.data.SpeciesClasses }
func (c *Catalog) Traits() []Trait                       { return c.data.Traits }
func (c *Catalog) LeaderTraits() []LeaderTrait           { return c.data.LeaderTraits }
func (c *Catalog) PlanetClasses() []PlanetClass          { return c.data.PlanetClasses }
func (c *Catalog) GraphicalCultures() []GraphicalCulture { return c.data.GraphicalCultures }

func (c *Catalog) Ethic(id string) (Ethic, bool) {
	v, ok := c.ethics[id]
	return v, ok
}

func (c *Catalog) Authority(id string) (Authority, bool) {
	v, ok := c.authorities[id]
	return v, ok
}

func (c *Catalog) Civic(id string) (Civic, bool) {
	v, ok := c.civics[id]
	return v, ok
}

func (c *Catalog) Origin(id string) (Origin, bool) {
	v, ok := c.origins[id]
	return v, ok
}

func (c *Catalog) Archetype(id string) (Archetype, bool) {
	v, ok := c.archetypes[id]
	return v, ok
}

func (c *Catalog) SpeciesClass(id string) (SpeciesClass, bool) {
	v, ok := c.classes[id]
	return v, ok
}

func (c *Catalog) Trait(id string) (Trait, bool) {
	v, ok := c.traits[id]
	return v, ok
}

func (c *Catalog) LeaderTrait(id string) (LeaderTrait, bool) {
	v, ok := c.leaderTraits[id]
	return v, ok
}

func (c *Catalog) PlanetClass(id string) (PlanetClass, bool) {
	v, ok := c.planets[id]
	return v, ok
}

// ClassesOf returns the species classes of archetype in catalog order.
func (c *Catalog) ClassesOf(archetype string) []SpeciesClass {
	return c.byArchetype[archetype]
}

// Counts returns the number of entities per kind, keyed by kind name.
func (c *Catalog) Counts() map[string]int {
	return map[string]int{
		"ethics":             len(c.data.Ethics),
		"authorities":        len(c.data.Authorities),
		"civics":             len(c.data.Civics),
		"origins":            len(c.data.Origins),
		"archetypes":         len(c.data.Archetypes),
		"species_classes":    len(c.data.SpeciesClasses),
		"traits":             len(c.data.Traits),
		"leader_traits":      len(c.data.LeaderTraits),
		"planet_classes":     len(c.data.PlanetClasses),
		"graphical_cultures": len(c.data.GraphicalCultures),
	}
}

// Kinds returns the keys of Counts in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, 10)
	for k := range (&Catalog{}).Counts() {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
