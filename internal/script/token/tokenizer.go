package token

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Error reports an unrecognised character or an unterminated string.
type Error struct {
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("tokenize %d:%d: %s", e.Line, e.Column, e.Msg)
}

// Tokenize converts input into tokens terminated by a single EOF token.
func Tokenize(input string) ([]Token, error) {
	s := &scanner{src: input, line: 1, col: 1}
	var tokens []Token
	for {
		s.skipBlank()
		if s.done() {
			tokens = append(tokens, Token{Kind: EOF, Line: s.line, Column: s.col})
			return tokens, nil
		}
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

type scanner struct {
	src  string
	pos  int
	line int
	col  int
}

func (s *scanner) done() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() rune {
	if s.done() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

func (s *scanner) peekAt(offset int) rune {
	pos := s.pos
	for i := 0; i < offset && pos < len(s.src); i++ {
		_, size := utf8.DecodeRuneInString(s.src[pos:])
		pos += size
	}
	if pos >= len(s.src) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s.src[pos:])
	return r
}

func (s *scanner) advance() rune {
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

// skipBlank skips whitespace and `#` comments.
func (s *scanner) skipBlank() {
	for !s.done() {
		r := s.peek()
		switch {
		case r == '#':
			for !s.done() && s.peek() != '\n' {
				s.advance()
			}
		case unicode.IsSpace(r):
			s.advance()
		default:
			return
		}
	}
}

func (s *scanner) next() (Token, error) {
	line, col := s.line, s.col
	r := s.peek()
	switch {
	case r == '{':
		s.advance()
		return Token{Kind: OpenBrace, Value: "{", Line: line, Column: col}, nil
	case r == '}':
		s.advance()
		return Token{Kind: CloseBrace, Value: "}", Line: line, Column: col}, nil
	case r == '=':
		s.advance()
		return Token{Kind: Equals, Value: "=", Line: line, Column: col}, nil
	case r == '<' || r == '>':
		s.advance()
		op := string(r)
		if s.peek() == '=' {
			s.advance()
			op += "="
		}
		return Token{Kind: Comparison, Value: op, Line: line, Column: col}, nil
	case r == '"':
		return s.quoted(line, col)
	case r == '@':
		return s.variable(line, col)
	case isDigit(r) || (r == '-' && isDigit(s.peekAt(1))):
		return s.number(line, col), nil
	case isIdentStart(r):
		return s.identifier(line, col), nil
	default:
		return Token{}, &Error{Line: line, Column: col, Msg: fmt.Sprintf("unexpected character %q", r)}
	}
}

func (s *scanner) quoted(line, col int) (Token, error) {
	s.advance()
	var buf []rune
	for {
		if s.done() {
			return Token{}, &Error{Line: line, Column: col, Msg: "unterminated string"}
		}
		r := s.advance()
		switch r {
		case '"':
			return Token{Kind: String, Value: string(buf), Line: line, Column: col}, nil
		case '\\':
			if s.done() {
				return Token{}, &Error{Line: line, Column: col, Msg: "unterminated string"}
			}
			buf = append(buf, s.advance())
		default:
			buf = append(buf, r)
		}
	}
}

// variable distinguishes `@name =` definitions from `@name` references.
// Only spaces and tabs may separate the name from `=`; on any other
// character the scanner rewinds to just after the name.
func (s *scanner) variable(line, col int) (Token, error) {
	s.advance()
	start := s.pos
	for !s.done() && isIdentPart(s.peek()) {
		s.advance()
	}
	name := s.src[start:s.pos]
	if name == "" {
		return Token{}, &Error{Line: line, Column: col, Msg: "empty variable name after '@'"}
	}

	savedPos, savedLine, savedCol := s.pos, s.line, s.col
	for !s.done() && (s.peek() == ' ' || s.peek() == '\t' || s.peek() == '\r') {
		s.advance()
	}
	if s.peek() == '=' {
		s.advance()
		return Token{Kind: VariableDef, Value: name, Line: line, Column: col}, nil
	}
	s.pos, s.line, s.col = savedPos, savedLine, savedCol
	return Token{Kind: VariableRef, Value: name, Line: line, Column: col}, nil
}

func (s *scanner) number(line, col int) Token {
	start := s.pos
	if s.peek() == '-' {
		s.advance()
	}
	for !s.done() && isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' {
		s.advance()
		for !s.done() && isDigit(s.peek()) {
			s.advance()
		}
	}
	return Token{Kind: Number, Value: s.src[start:s.pos], Line: line, Column: col}
}

func (s *scanner) identifier(line, col int) Token {
	start := s.pos
	for !s.done() && isIdentPart(s.peek()) {
		s.advance()
	}
	return Token{Kind: Identifier, Value: s.src[start:s.pos], Line: line, Column: col}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '_', '-', '.', ':', '|', '\'', '/':
		return true
	}
	return false
}
