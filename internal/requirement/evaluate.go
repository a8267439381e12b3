package requirement

// Selection is the read side of a partial empire used by the evaluator.
// An undecided category has no value yet and is never treated as empty.
type Selection interface {
	Decided(c Category) bool
	Has(c Category, id string) bool
}

// Evaluate reports whether s satisfies b. Rules on undecided categories are
// deferred and count as satisfied; in an OR group an undecided branch makes
// the whole group pass.
func Evaluate(b *Block, s Selection) bool {
	if b.Empty() {
		return true
	}
	for cat, preds := range b.Categories {
		if !s.Decided(cat) {
			continue
		}
		if !all(cat, preds, s) {
			return false
		}
	}
	for _, group := range b.AnyOf {
		if !anyBranch(group, s) {
			return false
		}
	}
	return true
}

// EvaluateBoth is the compatibility check used for every entity: both its
// potential and possible blocks must hold.
func EvaluateBoth(potential, possible *Block, s Selection) bool {
	return Evaluate(potential, s) && Evaluate(possible, s)
}

func all(cat Category, preds []Predicate, s Selection) bool {
	has := func(id string) bool { return s.Has(cat, id) }
	for _, p := range preds {
		if !Holds(p, has) {
			return false
		}
	}
	return true
}

func anyBranch(group Group, s Selection) bool {
	for _, br := range group {
		if !s.Decided(br.Category) {
			return true
		}
		if all(br.Category, br.Predicates, s) {
			return true
		}
	}
	return false
}
