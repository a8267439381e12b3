// Package token splits game script text into tokens.
//
// The script dialect is line oriented: `key = value`, `key = { ... }`,
// bare values inside blocks, `key > value` comparisons, `#` comments and
// `@name` scripted variables.
package token

import (
	"fmt"
	"strconv"
)

// Kind identifies the lexical class of a token.
type Kind int

const (
	// Identifier is a bare word such as `yes`, `ethic_militarist` or `pc_arid`.
	Identifier Kind = iota
	// String is a double-quoted value with escapes removed.
	String
	// Number is an integer or decimal literal.
	Number
	// Equals is `=`.
	Equals
	// OpenBrace is `{`.
	OpenBrace
	// CloseBrace is `}`.
	CloseBrace
	// Comparison is one of `<`, `>`, `<=`, `>=`.
	Comparison
	// VariableDef is `@name` followed by `=` on the same line.
	VariableDef
	// VariableRef is `@name` used as a value.
	VariableRef
	// EOF terminates every token stream.
	EOF
)

func (k Kind) String() string {
	switch k {
	case Identifier:
		return "IDENTIFIER"
	case String:
		return "STRING"
	case Number:
		return "NUMBER"
	case Equals:
		return "EQUALS"
	case OpenBrace:
		return "OPEN_BRACE"
	case CloseBrace:
		return "CLOSE_BRACE"
	case Comparison:
		return "COMPARISON"
	case VariableDef:
		return "VARIABLE_DEF"
	case VariableRef:
		return "VARIABLE_REF"
	case EOF:
		return "EOF"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is one lexical unit. Value holds the raw text, minus quotes for
// strings and minus the sigil for variables.
type Token struct {
	Kind   Kind
	Value  string
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Kind, t.Value, t.Line, t.Column)
}

// IsScalar reports whether the token can stand as a key or a value.
func (t Token) IsScalar() bool {
	return t.Kind == Identifier || t.Kind == String || t.Kind == Number
}

// Float returns the numeric value of a Number token.
func (t Token) Float() (float64, error) {
	if t.Kind != Number {
		return 0, fmt.Errorf("token %s is not a number", t)
	}
	return strconv.ParseFloat(t.Value, 64)
}

// Int returns the numeric value of a Number token truncated toward zero.
func (t Token) Int() (int, error) {
	f, err := t.Float()
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
