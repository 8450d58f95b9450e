package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kristofer/tinybc/pkg/token"
)

func TestNext(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "empty",
			src:  "",
			want: []token.Kind{token.EOF},
		},
		{
			name: "punctuation",
			src:  "(){},.-+;*/",
			want: []token.Kind{
				token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
				token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
				token.Star, token.Slash, token.EOF,
			},
		},
		{
			name: "two-char operators",
			src:  "! != = == < <= > >=",
			want: []token.Kind{
				token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
				token.Less, token.LessEqual, token.Greater, token.GreaterEqual, token.EOF,
			},
		},
		{
			name: "keywords and identifiers",
			src:  "var x = foo and bar or baz",
			want: []token.Kind{
				token.Var, token.Identifier, token.Equal, token.Identifier,
				token.And, token.Identifier, token.Or, token.Identifier, token.EOF,
			},
		},
		{
			name: "number forms",
			src:  "42 3.14",
			want: []token.Kind{token.Number, token.Number, token.EOF},
		},
		{
			name: "string literal",
			src:  `"hello world"`,
			want: []token.Kind{token.String, token.EOF},
		},
		{
			name: "comment is skipped",
			src:  "1 // a comment\n2",
			want: []token.Kind{token.Number, token.Number, token.EOF},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.src)
			var got []token.Kind
			for {
				tok := s.Next()
				got = append(got, tok.Kind)
				if tok.Kind == token.EOF {
					break
				}
			}
			require.Equal(t, tc.want, got)
		})
	}
}

func TestUnterminatedString(t *testing.T) {
	s := New(`"unterminated`)
	tok := s.Next()
	require.Equal(t, token.Error, tok.Kind)
	require.Equal(t, "Unterminated string.", tok.Lexeme)
}

func TestLineTracking(t *testing.T) {
	s := New("1\n2\n\n3")
	var lines []int
	for {
		tok := s.Next()
		if tok.Kind == token.EOF {
			break
		}
		lines = append(lines, tok.Line)
	}
	require.Equal(t, []int{1, 2, 4}, lines)
}

func TestLexemesAreSlicesOfSource(t *testing.T) {
	s := New("foobar")
	tok := s.Next()
	require.Equal(t, "foobar", tok.Lexeme)
	require.Equal(t, token.Identifier, tok.Kind)
}
