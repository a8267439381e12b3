package requirement

import "github.com/louisbranch/empiregen/internal/script/ast"

// Compile converts a `potential` or `possible` node into a Block. It
// returns nil when the node carries no recognised rules.
//
// Recognised shapes inside a category block:
//
//	value = X                   Value(X)
//	NOT = { value = X }         Not(X)
//	NOR = { value = A ... }     Nor(A, ...)
//	OR  = { value = A ... }     Or(A, ...)
//
// A top-level `OR = { <category> = {...} ... }` becomes one group whose
// branches are its category blocks. Unknown keys are dropped.
func Compile(node *ast.Node) *Block {
	if node == nil || len(node.Children) == 0 {
		return nil
	}
	block := &Block{Categories: map[Category][]Predicate{}}
	for _, child := range node.Children {
		if child.Kind == ast.Bare {
			continue
		}
		switch child.Key {
		case "text", "always":
			continue
		case "OR":
			if child.IsBlock() {
				if group := compileGroup(child); len(group) > 0 {
					block.AnyOf = append(block.AnyOf, group)
				}
			}
			continue
		}
		cat, ok := CategoryFromKey(child.Key)
		if !ok || !child.IsBlock() {
			continue
		}
		if preds := compileCategory(child); len(preds) > 0 {
			block.Categories[cat] = append(block.Categories[cat], preds...)
		}
	}
	if block.Empty() {
		return nil
	}
	if len(block.Categories) == 0 {
		block.Categories = nil
	}
	return block
}

func compileGroup(node *ast.Node) Group {
	var group Group
	index := map[Category]int{}
	for _, child := range node.Children {
		if child.Kind == ast.Bare || !child.IsBlock() {
			continue
		}
		cat, ok := CategoryFromKey(child.Key)
		if !ok {
			continue
		}
		preds := compileCategory(child)
		if len(preds) == 0 {
			continue
		}
		if i, seen := index[cat]; seen {
			group[i].Predicates = append(group[i].Predicates, preds...)
			continue
		}
		index[cat] = len(group)
		group = append(group, Branch{Category: cat, Predicates: preds})
	}
	return group
}

func compileCategory(node *ast.Node) []Predicate {
	var preds []Predicate
	for _, child := range node.Children {
		switch child.Key {
		case "value":
			if child.Kind == ast.Leaf {
				preds = append(preds, Value{ID: child.Value})
			}
		case "NOT":
			if id, ok := child.Lookup("value"); ok && child.IsBlock() {
				preds = append(preds, Not{ID: id})
			}
		case "NOR":
			if ids := values(child); len(ids) > 0 {
				preds = append(preds, Nor{IDs: ids})
			}
		case "OR":
			if ids := values(child); len(ids) > 0 {
				preds = append(preds, Or{IDs: ids})
			}
		}
	}
	return preds
}

func values(node *ast.Node) []string {
	if !node.IsBlock() {
		return nil
	}
	var ids []string
	for _, child := range node.All("value") {
		if child.Kind == ast.Leaf {
			ids = append(ids, child.Value)
		}
	}
	return ids
}
