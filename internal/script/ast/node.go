// Package ast parses game script tokens into a generic tree.
package ast

import (
	"strconv"
	"strings"
)

// Kind is the shape of a node.
type Kind int

const (
	// Root holds the top-level entries of one or more files.
	Root Kind = iota
	// Leaf is `key = value` or `key <op> value`.
	Leaf
	// Block is `key = { ... }`.
	Block
	// Bare is a value without a key, as in `{ A B C }`.
	Bare
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case Leaf:
		return "leaf"
	case Block:
		return "block"
	case Bare:
		return "bare"
	default:
		return "unknown"
	}
}

// Node is one entry of a parsed script. Children keep source order and may
// repeat keys.
type Node struct {
	Kind     Kind
	Key      string
	Value    string
	Children []*Node
}

// NewRoot returns an empty root node.
func NewRoot() *Node {
	return &Node{Kind: Root}
}

// IsBlock reports whether n has children.
func (n *Node) IsBlock() bool {
	return n != nil && (n.Kind == Block || n.Kind == Root)
}

// Child returns the first child with key, or nil.
func (n *Node) Child(key string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Kind != Bare && child.Key == key {
			return child
		}
	}
	return nil
}

// All returns every child with key in source order.
func (n *Node) All(key string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, child := range n.Children {
		if child.Kind != Bare && child.Key == key {
			out = append(out, child)
		}
	}
	return out
}

// Lookup returns the scalar value of the first leaf child with key.
func (n *Node) Lookup(key string) (string, bool) {
	child := n.Child(key)
	if child == nil || child.Kind != Leaf {
		return "", false
	}
	return child.Value, true
}

// Get returns the scalar value of the first leaf child with key, or "".
func (n *Node) Get(key string) string {
	v, _ := n.Lookup(key)
	return v
}

// Float returns the numeric value of key, or def when absent or not numeric.
func (n *Node) Float(key string, def float64) float64 {
	v, ok := n.Lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Int returns the numeric value of key truncated toward zero, or def.
func (n *Node) Int(key string, def int) int {
	v, ok := n.Lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return int(f)
}

// Bool reports whether key is `yes`. Absent keys return def.
func (n *Node) Bool(key string, def bool) bool {
	v, ok := n.Lookup(key)
	if !ok {
		return def
	}
	return strings.EqualFold(v, "yes")
}

// BareValues returns the values of bare children in source order.
func (n *Node) BareValues() []string {
	if n == nil {
		return nil
	}
	var out []string
	for _, child := range n.Children {
		if child.Kind == Bare {
			out = append(out, child.Value)
		}
	}
	return out
}

// Keys returns the keys of keyed children in source order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	var out []string
	for _, child := range n.Children {
		if child.Kind != Bare {
			out = append(out, child.Key)
		}
	}
	return out
}
