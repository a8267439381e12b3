package requirement

import (
	"encoding/json"
	"fmt"
)

type wirePredicate struct {
	Kind   string   `json:"kind"`
	Values []string `json:"values"`
}

type wireBranch struct {
	Category   Category        `json:"category"`
	Predicates []wirePredicate `json:"predicates"`
}

type wireBlock struct {
	Categories map[string][]wirePredicate `json:"categories,omitempty"`
	AnyOf      [][]wireBranch             `json:"any_of,omitempty"`
}

type encoder struct{ out wirePredicate }

func (e *encoder) VisitValue(p Value) { e.out = wirePredicate{Kind: "value", Values: []string{p.ID}} }
func (e *encoder) VisitNot(p Not)     { e.out = wirePredicate{Kind: "not", Values: []string{p.ID}} }
func (e *encoder) VisitNor(p Nor)     { e.out = wirePredicate{Kind: "nor", Values: p.IDs} }
func (e *encoder) VisitOr(p Or)       { e.out = wirePredicate{Kind: "or", Values: p.IDs} }

func encodeAll(preds []Predicate) []wirePredicate {
	out := make([]wirePredicate, len(preds))
	for i, p := range preds {
		var e encoder
		p.Accept(&e)
		out[i] = e.out
	}
	return out
}

func decodeAll(in []wirePredicate) ([]Predicate, error) {
	out := make([]Predicate, 0, len(in))
	for _, w := range in {
		switch w.Kind {
		case "value", "not":
			if len(w.Values) != 1 {
				return nil, fmt.Errorf("predicate %q takes one value, got %d", w.Kind, len(w.Values))
			}
			if w.Kind == "value" {
				out = append(out, Value{ID: w.Values[0]})
			} else {
				out = append(out, Not{ID: w.Values[0]})
			}
		case "nor":
			out = append(out, Nor{IDs: w.Values})
		case "or":
			out = append(out, Or{IDs: w.Values})
		default:
			return nil, fmt.Errorf("unknown predicate kind %q", w.Kind)
		}
	}
	return out, nil
}

// MarshalJSON encodes b with predicates as {"kind","values"} objects.
func (b Block) MarshalJSON() ([]byte, error) {
	var w wireBlock
	if len(b.Categories) > 0 {
		w.Categories = make(map[string][]wirePredicate, len(b.Categories))
		for c, preds := range b.Categories {
			w.Categories[c.Key()] = encodeAll(preds)
		}
	}
	for _, g := range b.AnyOf {
		branches := make([]wireBranch, len(g))
		for i, br := range g {
			branches[i] = wireBranch{Category: br.Category, Predicates: encodeAll(br.Predicates)}
		}
		w.AnyOf = append(w.AnyOf, branches)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (b *Block) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Block{}
	if len(w.Categories) > 0 {
		out.Categories = make(map[Category][]Predicate, len(w.Categories))
		for key, preds := range w.Categories {
			c, ok := CategoryFromKey(key)
			if !ok {
				return fmt.Errorf("unknown category %q", key)
			}
			decoded, err := decodeAll(preds)
			if err != nil {
				return fmt.Errorf("category %s: %w", key, err)
			}
			out.Categories[c] = decoded
		}
	}
	for _, g := range w.AnyOf {
		group := make(Group, len(g))
		for i, br := range g {
			decoded, err := decodeAll(br.Predicates)
			if err != nil {
				return fmt.Errorf("group branch %s: %w", br.Category, err)
			}
			group[i] = Branch{Category: br.Category, Predicates: decoded}
		}
		out.AnyOf = append(out.AnyOf, group)
	}
	*b = out
	return nil
}
