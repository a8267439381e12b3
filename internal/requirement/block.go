package requirement

import (
	"sort"
	"strings"
)

// Branch is one category's predicate list inside an OR group.
type Branch struct {
	Category   Category
	Predicates []Predicate
}

// Group is a cross-category OR: it holds when any branch holds.
type Group []Branch

// Block is a compiled `potential` or `possible` clause. Categories are
// ANDed, predicates within a category are ANDed, and each group in AnyOf
// must have at least one passing branch. A nil *Block always holds.
type Block struct {
	Categories map[Category][]Predicate
	AnyOf      []Group
}

// Empty reports whether b has no rules.
func (b *Block) Empty() bool {
	return b == nil || (len(b.Categories) == 0 && len(b.AnyOf) == 0)
}

// Mentions reports whether b constrains c anywhere, including OR groups.
func (b *Block) Mentions(c Category) bool {
	if b.Empty() {
		return false
	}
	if _, ok := b.Categories[c]; ok {
		return true
	}
	for _, g := range b.AnyOf {
		for _, br := range g {
			if br.Category == c {
				return true
			}
		}
	}
	return false
}

// Requires reports whether b has a positive rule (Value or Or) on c
// outside of OR groups.
func (b *Block) Requires(c Category) bool {
	if b.Empty() {
		return false
	}
	for _, p := range b.Categories[c] {
		if Positive(p) {
			return true
		}
	}
	return false
}

func (b *Block) String() string {
	if b.Empty() {
		return "{}"
	}
	cats := make([]Category, 0, len(b.Categories))
	for c := range b.Categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	var parts []string
	for _, c := range cats {
		parts = append(parts, c.Key()+"="+describeAll(b.Categories[c]))
	}
	for _, g := range b.AnyOf {
		var branches []string
		for _, br := range g {
			branches = append(branches, br.Category.Key()+"="+describeAll(br.Predicates))
		}
		parts = append(parts, "OR{"+strings.Join(branches, " | ")+"}")
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func describeAll(preds []Predicate) string {
	out := make([]string, len(preds))
	for i, p := range preds {
		out[i] = Describe(p)
	}
	return "[" + strings.Join(out, ", ") + "]"
}
