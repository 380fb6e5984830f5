// Package scanner tokenizes source files written in the compiler's
// C-like input language, described by the grammar in the language
// specification.
package scanner

import (
	"fmt"
	"strings"

	"github.com/nickolasddiaz/16bitcomputer/lang/token"
)

// TokenAndValue combines a scanned token with its literal value (for
// identifiers, keywords and integers) and its starting position.
type TokenAndValue struct {
	Token token.Token
	Lit   string
	Value int64
	Pos   token.Pos
}

// Error is a single scanning error, with the position at which it was
// detected.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// ErrorList aggregates every Error produced while scanning a file, in the
// order they were detected.
type ErrorList []*Error

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (and %d more errors)", el[0], len(el)-1)
	return sb.String()
}

// Err returns el as an error, or nil if el is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// Scan tokenizes the entirety of src and returns the resulting tokens. A
// non-nil error (an ErrorList) is returned if any illegal token was found;
// the token stream up to (and including a best-effort recovery past) the
// error is still returned so callers that only want to report the error
// can do so.
func Scan(src []byte) ([]TokenAndValue, error) {
	var s scanner
	s.init(src)

	var toks []TokenAndValue
	for {
		tv := s.scan()
		toks = append(toks, tv)
		if tv.Token == token.EOF {
			break
		}
	}
	return toks, s.errs.Err()
}

type scanner struct {
	src       []byte
	off       int // byte offset of cur
	roff      int // byte offset just past cur
	cur       byte
	line, col int
	errs      ErrorList
}

func (s *scanner) init(src []byte) {
	s.src = src
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0
	s.cur = 0
	s.advance()
}

func (s *scanner) advance() {
	if s.cur == '\n' {
		s.line++
		s.col = 0
	}
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = 0
		return
	}
	s.off = s.roff
	s.cur = s.src[s.roff]
	s.roff++
	s.col++
}

func (s *scanner) pos() token.Pos { return token.MakePos(s.line, s.col) }

func (s *scanner) error(pos token.Pos, format string, args ...interface{}) {
	s.errs = append(s.errs, &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isLetter(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
func isAlnum(b byte) bool { return isLetter(b) || isDigit(b) }

func (s *scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case s.cur == ' ' || s.cur == '\t' || s.cur == '\r' || s.cur == '\n':
			s.advance()
		case s.cur == '/' && s.roff < len(s.src) && s.src[s.roff] == '/':
			for s.cur != '\n' && s.cur != 0 {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *scanner) scan() TokenAndValue {
	s.skipWhitespaceAndComments()
	pos := s.pos()

	if s.cur == 0 {
		return TokenAndValue{Token: token.EOF, Pos: pos}
	}

	switch {
	case isDigit(s.cur):
		return s.scanNumber(pos)
	case isLetter(s.cur):
		return s.scanIdentOrKeyword(pos)
	}

	return s.scanPunct(pos)
}

func (s *scanner) scanIdentOrKeyword(pos token.Pos) TokenAndValue {
	start := s.off
	for isAlnum(s.cur) {
		s.advance()
	}
	lit := string(s.src[start:s.off])
	tok := token.LookupKw(lit)
	return TokenAndValue{Token: tok, Lit: lit, Pos: pos}
}

func (s *scanner) scanNumber(pos token.Pos) TokenAndValue {
	start := s.off
	base := 10
	if s.cur == '0' && s.roff < len(s.src) && (s.src[s.roff] == 'x' || s.src[s.roff] == 'X') {
		s.advance()
		s.advance()
		start = s.off
		base = 16
		for isHexDigit(s.cur) {
			s.advance()
		}
	} else {
		for isDigit(s.cur) {
			s.advance()
		}
	}
	lit := string(s.src[start:s.off])
	var v int64
	for i := 0; i < len(lit); i++ {
		v *= int64(base)
		v += int64(hexVal(lit[i]))
	}
	if base == 16 {
		lit = "0x" + lit
	}
	return TokenAndValue{Token: token.INT, Lit: lit, Value: v, Pos: pos}
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return 0
}

func (s *scanner) scanPunct(pos token.Pos) TokenAndValue {
	c := s.cur
	s.advance()

	two := func(next byte, tok token.Token, orElse token.Token) TokenAndValue {
		if s.cur == next {
			s.advance()
			return TokenAndValue{Token: tok, Pos: pos}
		}
		return TokenAndValue{Token: orElse, Pos: pos}
	}

	switch c {
	case '+':
		if s.cur == '+' {
			s.advance()
			return TokenAndValue{Token: token.INC, Pos: pos}
		}
		return two('=', token.PLUS_EQ, token.PLUS)
	case '-':
		if s.cur == '-' {
			s.advance()
			return TokenAndValue{Token: token.DEC, Pos: pos}
		}
		return two('=', token.MINUS_EQ, token.MINUS)
	case '*':
		return two('=', token.STAR_EQ, token.STAR)
	case '/':
		return two('=', token.SLASH_EQ, token.SLASH)
	case '%':
		return TokenAndValue{Token: token.PERCENT, Pos: pos}
	case '&':
		return two('&', token.AND, token.AMPERSAND)
	case '|':
		return two('|', token.OR, token.PIPE)
	case '^':
		return TokenAndValue{Token: token.CIRCUMFLEX, Pos: pos}
	case '~':
		return TokenAndValue{Token: token.TILDE, Pos: pos}
	case '<':
		if s.cur == '<' {
			s.advance()
			return TokenAndValue{Token: token.LTLT, Pos: pos}
		}
		return two('=', token.LE, token.LT)
	case '>':
		if s.cur == '>' {
			s.advance()
			return TokenAndValue{Token: token.GTGT, Pos: pos}
		}
		return two('=', token.GE, token.GT)
	case '=':
		return two('=', token.EQL, token.EQ)
	case '!':
		if s.cur == '=' {
			s.advance()
			return TokenAndValue{Token: token.NEQ, Pos: pos}
		}
	case ',':
		return TokenAndValue{Token: token.COMMA, Pos: pos}
	case ';':
		return TokenAndValue{Token: token.SEMI, Pos: pos}
	case '(':
		return TokenAndValue{Token: token.LPAREN, Pos: pos}
	case ')':
		return TokenAndValue{Token: token.RPAREN, Pos: pos}
	case '{':
		return TokenAndValue{Token: token.LBRACE, Pos: pos}
	case '}':
		return TokenAndValue{Token: token.RBRACE, Pos: pos}
	}

	s.error(pos, "illegal character %q", c)
	return TokenAndValue{Token: token.ILLEGAL, Pos: pos}
}
