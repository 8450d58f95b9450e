// Package scanner implements the lexical analyzer for tinybc.
//
// The scanner produces tokens lazily, one per call to Next, and holds no
// allocations of its own: every Token's lexeme is a slice of the original
// source string. Whitespace and "//" line comments are skipped before each
// token.
package scanner

import (
	"github.com/kristofer/tinybc/pkg/token"
)

// Scanner scans a source string into a stream of tokens.
type Scanner struct {
	src     string
	start   int // start of the lexeme currently being scanned
	current int // character under examination
	line    int
}

// New creates a Scanner over src.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// Next returns the next token in the stream. Once EOF is reached, Next
// keeps returning EOF tokens.
func (s *Scanner) Next() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()

	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LeftParen)
	case ')':
		return s.make(token.RightParen)
	case '{':
		return s.make(token.LeftBrace)
	case '}':
		return s.make(token.RightBrace)
	case ',':
		return s.make(token.Comma)
	case '.':
		return s.make(token.Dot)
	case '-':
		return s.make(token.Minus)
	case '+':
		return s.make(token.Plus)
	case ';':
		return s.make(token.Semicolon)
	case '*':
		return s.make(token.Star)
	case '/':
		return s.make(token.Slash)
	case '!':
		return s.make(s.choose('=', token.BangEqual, token.Bang))
	case '=':
		return s.make(s.choose('=', token.EqualEqual, token.Equal))
	case '<':
		return s.make(s.choose('=', token.LessEqual, token.Less))
	case '>':
		return s.make(s.choose('=', token.GreaterEqual, token.Greater))
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

// choose picks "matched" if the next character is expected, else "other",
// consuming the next character only in the matched case.
func (s *Scanner) choose(expected byte, matched, other token.Kind) token.Kind {
	if s.match(expected) {
		return matched
	}
	return other
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote
	return s.make(token.String)
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume the '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.Number)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.make(token.Lookup(s.src[s.start:s.current]))
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{Kind: kind, Lexeme: s.src[s.start:s.current], Line: s.line}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{Kind: token.Error, Lexeme: msg, Line: s.line}
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
