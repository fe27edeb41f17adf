package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wisplang/wisp/pkg/scanner"
	"github.com/wisplang/wisp/pkg/token"
)

func scanAll(src string) []token.Token {
	s := scanner.New(src)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll("(){},.-+;*/% ! != = == < <= > >=")
	want := []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.COMMA,
		token.DOT, token.MINUS, token.PLUS, token.SEMICOLON, token.STAR,
		token.SLASH, token.PERCENT, token.BANG, token.BANGEQ, token.EQ,
		token.EQEQ, token.LT, token.LTEQ, token.GT, token.GTEQ, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		require.Equalf(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll("and class x fun23 orchid")
	require.Equal(t, token.AND, toks[0].Kind)
	require.Equal(t, token.CLASS, toks[1].Kind)
	require.Equal(t, token.IDENT, toks[2].Kind)
	require.Equal(t, "x", toks[2].Lexeme)
	require.Equal(t, token.IDENT, toks[3].Kind, "fun23 is not the fun keyword")
	require.Equal(t, token.IDENT, toks[4].Kind, "orchid is not the or keyword")
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll("123 1.5 .5")
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "1.5", toks[1].Lexeme)
	// a leading dot with no preceding digit is not part of a number: DOT then NUMBER
	require.Equal(t, token.DOT, toks[2].Kind)
	require.Equal(t, token.NUMBER, toks[3].Kind)
	require.Equal(t, "5", toks[3].Lexeme)
}

func TestScanStrings(t *testing.T) {
	toks := scanAll(`"hello" "unterminated`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, `"hello"`, toks[0].Lexeme)
	require.Equal(t, token.ERROR, toks[1].Kind)
	require.Equal(t, "Unterminated string.", toks[1].Lexeme)
}

func TestScanLineComment(t *testing.T) {
	toks := scanAll("var a = 1; // comment\nvar b = 2;")
	// find the second `var`
	var varCount int
	for _, tok := range toks {
		if tok.Kind == token.VAR {
			varCount++
		}
	}
	require.Equal(t, 2, varCount)
}

func TestScanUnexpectedCharacter(t *testing.T) {
	toks := scanAll("@")
	require.Equal(t, token.ERROR, toks[0].Kind)
	require.Equal(t, "Unexpected character.", toks[0].Lexeme)
}

func TestScanLineTracking(t *testing.T) {
	toks := scanAll("var a = 1;\nvar b = 2;\nprint b;")
	var printTok token.Token
	for _, tok := range toks {
		if tok.Kind == token.PRINT {
			printTok = tok
		}
	}
	require.Equal(t, 3, printTok.Line)
}

func TestLexemeMatchesSourceSlice(t *testing.T) {
	src := "print \"hi\";"
	toks := scanAll(src)
	for _, tok := range toks {
		if tok.Kind == token.EOF || tok.Kind == token.ERROR {
			continue
		}
		require.Contains(t, src, tok.Lexeme)
	}
}
