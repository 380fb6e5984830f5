package scanner

import (
	"testing"

	"github.com/nickolasddiaz/16bitcomputer/lang/token"
	"github.com/stretchr/testify/require"
)

func tokens(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := Scan([]byte(src))
	require.NoError(t, err)
	out := make([]token.Token, len(toks))
	for i, tv := range toks {
		out[i] = tv.Token
	}
	return out
}

func TestScanPunctAndKeywords(t *testing.T) {
	got := tokens(t, "def main(a, b) { if (a == 1 && b != 2) { a += 1; } }")
	require.Equal(t, []token.Token{
		token.DEF, token.IDENT, token.LPAREN, token.IDENT, token.COMMA, token.IDENT, token.RPAREN, token.LBRACE,
		token.IF, token.LPAREN, token.IDENT, token.EQL, token.INT, token.AND, token.IDENT, token.NEQ, token.INT, token.RPAREN, token.LBRACE,
		token.IDENT, token.PLUS_EQ, token.INT, token.SEMI,
		token.RBRACE, token.RBRACE, token.EOF,
	}, got)
}

func TestScanNumbers(t *testing.T) {
	toks, err := Scan([]byte("10 0x1F 0xab"))
	require.NoError(t, err)
	require.Equal(t, int64(10), toks[0].Value)
	require.Equal(t, int64(31), toks[1].Value)
	require.Equal(t, int64(171), toks[2].Value)
}

func TestScanIncDec(t *testing.T) {
	got := tokens(t, "i++ i--")
	require.Equal(t, []token.Token{token.IDENT, token.INC, token.IDENT, token.DEC, token.EOF}, got)
}

func TestScanLineComment(t *testing.T) {
	got := tokens(t, "a = 1 // trailing comment\nb = 2")
	require.Equal(t, []token.Token{
		token.IDENT, token.EQ, token.INT,
		token.IDENT, token.EQ, token.INT, token.EOF,
	}, got)
}

func TestScanIllegalChar(t *testing.T) {
	_, err := Scan([]byte("a = @"))
	require.Error(t, err)
}
