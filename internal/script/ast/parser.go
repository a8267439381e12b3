package ast

import (
	"fmt"

	"github.com/louisbranch/empiregen/internal/script/token"
)

// Scope maps scripted variable names, without the `@`, to their values.
type Scope map[string]string

// Clone returns an independent copy of s.
func (s Scope) Clone() Scope {
	out := make(Scope, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Error reports a grammar violation or an undefined variable.
type Error struct {
	Line     int
	Column   int
	Msg      string
	Variable string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse %d:%d: %s", e.Line, e.Column, e.Msg)
}

// Parse builds a Root node from tokens. Variable definitions found while
// parsing are stored in scope; pass a clone to keep them local.
func Parse(tokens []token.Token, scope Scope) (*Node, error) {
	if scope == nil {
		scope = Scope{}
	}
	p := &parser{tokens: tokens, scope: scope}
	root := NewRoot()
	children, err := p.entries(false)
	if err != nil {
		return nil, err
	}
	root.Children = children
	return root, nil
}

type parser struct {
	tokens []token.Token
	pos    int
	scope  Scope
}

func (p *parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) peekNext() token.Token {
	if p.pos+1 >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind token.Kind) (token.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, unexpected(kind.String(), tok)
	}
	return p.advance(), nil
}

func unexpected(want string, got token.Token) *Error {
	return &Error{
		Line:   got.Line,
		Column: got.Column,
		Msg:    fmt.Sprintf("expected %s but got %s", want, got.Kind),
	}
}

// entries parses until EOF at the top level, or until a closing brace
// inside a block. The closing brace is left for the caller.
func (p *parser) entries(inBlock bool) ([]*Node, error) {
	var out []*Node
	for {
		tok := p.peek()
		switch {
		case tok.Kind == token.EOF:
			if inBlock {
				return nil, unexpected(token.CloseBrace.String(), tok)
			}
			return out, nil
		case tok.Kind == token.CloseBrace:
			if !inBlock {
				return nil, unexpected("entry", tok)
			}
			return out, nil
		}

		node, err := p.entry()
		if err != nil {
			return nil, err
		}
		if node != nil {
			out = append(out, node)
		}
	}
}

// entry returns nil for a variable definition.
func (p *parser) entry() (*Node, error) {
	tok := p.peek()
	switch {
	case tok.Kind == token.VariableDef:
		p.advance()
		value, err := p.scalar()
		if err != nil {
			return nil, err
		}
		p.scope[tok.Value] = value
		return nil, nil

	case tok.Kind == token.VariableRef:
		p.advance()
		value, err := p.resolve(tok)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: Bare, Value: value}, nil

	case tok.Kind == token.OpenBrace:
		p.advance()
		return p.block("")

	case tok.IsScalar():
		next := p.peekNext()
		switch next.Kind {
		case token.Equals:
			p.advance()
			p.advance()
			if p.peek().Kind == token.OpenBrace {
				p.advance()
				return p.block(tok.Value)
			}
			value, err := p.scalar()
			if err != nil {
				return nil, err
			}
			return &Node{Kind: Leaf, Key: tok.Value, Value: value}, nil
		case token.Comparison:
			p.advance()
			op := p.advance()
			value, err := p.scalar()
			if err != nil {
				return nil, err
			}
			return &Node{Kind: Leaf, Key: tok.Value, Value: op.Value + " " + value}, nil
		default:
			p.advance()
			return &Node{Kind: Bare, Value: tok.Value}, nil
		}

	default:
		return nil, unexpected("entry", tok)
	}
}

func (p *parser) block(key string) (*Node, error) {
	children, err := p.entries(true)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.CloseBrace); err != nil {
		return nil, err
	}
	return &Node{Kind: Block, Key: key, Children: children}, nil
}

// scalar consumes a value token, resolving variable references.
func (p *parser) scalar() (string, error) {
	tok := p.peek()
	switch {
	case tok.Kind == token.VariableRef:
		p.advance()
		return p.resolve(tok)
	case tok.IsScalar():
		p.advance()
		return tok.Value, nil
	default:
		return "", unexpected("value", tok)
	}
}

func (p *parser) resolve(tok token.Token) (string, error) {
	value, ok := p.scope[tok.Value]
	if !ok {
		return "", &Error{
			Line:     tok.Line,
			Column:   tok.Column,
			Msg:      fmt.Sprintf("undefined variable @%s", tok.Value),
			Variable: tok.Value,
		}
	}
	return value, nil
}

// ParseString tokenizes and parses input in one step.
func ParseString(input string, scope Scope) (*Node, error) {
	tokens, err := token.Tokenize(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, scope)
}
