package engine

import (
	"math/rand"
	"slices"
)

// PickWeighted draws one item with probability proportional to weight.
// Negative weights count as zero. When every weight is zero the draw is
// uniform. ok is false only for an empty slice.
func PickWeighted[T any](rng *rand.Rand, items []T, weight func(T) int) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	total := 0
	for _, it := range items {
		total += max(0, weight(it))
	}
	if total == 0 {
		return items[rng.Intn(len(items))], true
	}
	roll := rng.Intn(total)
	for _, it := range items {
		w := max(0, weight(it))
		if roll < w {
			return it, true
		}
		roll -= w
	}
	return items[len(items)-1], true
}

// PickUniform draws one item uniformly. ok is false for an empty slice.
func PickUniform[T any](rng *rand.Rand, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[rng.Intn(len(items))], true
}

// shuffled returns a shuffled copy of items.
func shuffled[T any](rng *rand.Rand, items []T) []T {
	out := slices.Clone(items)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// filter returns the items for which keep is true.
func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// budgetFill greedily accepts candidates in order. A candidate is accepted
// while fewer than maxPicks were taken, its id is neither blocked nor
// opposed to a taken id, and the running total stays within [0, budget].
type budgetFill struct {
	budget   int
	maxPicks int
	spent    int
	taken    map[string]bool
	blocked  map[string]bool
}

func newBudgetFill(budget, maxPicks, spent int) *budgetFill {
	return &budgetFill{
		budget:   budget,
		maxPicks: maxPicks,
		spent:    spent,
		taken:    map[string]bool{},
		blocked:  map[string]bool{},
	}
}

// block excludes ids from the fill.
func (f *budgetFill) block(ids ...string) {
	for _, id := range ids {
		f.blocked[id] = true
	}
}

// take records an id already in the selection along with its opposites.
func (f *budgetFill) take(id string, opposites []string) {
	f.taken[id] = true
	f.blocked[id] = true
	f.block(opposites...)
}

func (f *budgetFill) opposed(opposites []string) bool {
	for _, op := range opposites {
		if f.taken[op] {
			return true
		}
	}
	return false
}

// fill runs the greedy pass and returns the indexes of accepted candidates.
func (f *budgetFill) fill(n int, id func(int) string, cost func(int) int, opposites func(int) []string) []int {
	var picked []int
	for i := 0; i < n; i++ {
		if len(picked) >= f.maxPicks {
			break
		}
		if f.blocked[id(i)] || f.opposed(opposites(i)) {
			continue
		}
		total := f.spent + cost(i)
		if total < 0 || total > f.budget {
			continue
		}
		picked = append(picked, i)
		f.spent = total
		f.take(id(i), opposites(i))
	}
	return picked
}
