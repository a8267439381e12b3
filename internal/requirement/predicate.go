package requirement

import (
	"fmt"
	"strings"
)

// Predicate is one membership rule over a category's selected ids.
//
// The set of predicate kinds is closed: Value, Not, Nor and Or. Every
// consumer dispatches through Visitor, so adding a kind adds a Visitor
// method and breaks every implementation until it handles the new kind.
type Predicate interface {
	Accept(v Visitor)
}

// Visitor handles each predicate kind.
type Visitor interface {
	VisitValue(p Value)
	VisitNot(p Not)
	VisitNor(p Nor)
	VisitOr(p Or)
}

// Value requires the selection to contain ID.
type Value struct{ ID string }

// Not requires the selection not to contain ID.
type Not struct{ ID string }

// Nor requires the selection to contain none of IDs.
type Nor struct{ IDs []string }

// Or requires the selection to contain at least one of IDs.
type Or struct{ IDs []string }

func (p Value) Accept(v Visitor) { v.VisitValue(p) }
func (p Not) Accept(v Visitor)   { v.VisitNot(p) }
func (p Nor) Accept(v Visitor)   { v.VisitNor(p) }
func (p Or) Accept(v Visitor)    { v.VisitOr(p) }

// Describe renders p in script-like notation.
func Describe(p Predicate) string {
	var d describer
	p.Accept(&d)
	return d.out
}

type describer struct{ out string }

func (d *describer) VisitValue(p Value) { d.out = p.ID }
func (d *describer) VisitNot(p Not)     { d.out = "NOT " + p.ID }
func (d *describer) VisitNor(p Nor)     { d.out = fmt.Sprintf("NOR(%s)", strings.Join(p.IDs, ", ")) }
func (d *describer) VisitOr(p Or)       { d.out = fmt.Sprintf("OR(%s)", strings.Join(p.IDs, ", ")) }

// Holds reports whether p is satisfied by a selection for which has
// reports membership.
func Holds(p Predicate, has func(id string) bool) bool {
	m := matcher{has: has}
	p.Accept(&m)
	return m.ok
}

type matcher struct {
	has func(string) bool
	ok  bool
}

func (m *matcher) VisitValue(p Value) { m.ok = m.has(p.ID) }

func (m *matcher) VisitNot(p Not) { m.ok = !m.has(p.ID) }

func (m *matcher) VisitNor(p Nor) {
	for _, id := range p.IDs {
		if m.has(id) {
			m.ok = false
			return
		}
	}
	m.ok = true
}

func (m *matcher) VisitOr(p Or) {
	for _, id := range p.IDs {
		if m.has(id) {
			m.ok = true
			return
		}
	}
	m.ok = false
}

// Positive reports whether p demands membership (Value or Or) rather than
// excluding ids.
func Positive(p Predicate) bool {
	var k positive
	p.Accept(&k)
	return bool(k)
}

type positive bool

func (k *positive) VisitValue(Value) { *k = true }
func (k *positive) VisitNot(Not)     { *k = false }
func (k *positive) VisitNor(Nor)     { *k = false }
func (k *positive) VisitOr(Or)       { *k = true }
