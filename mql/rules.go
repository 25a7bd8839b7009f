// Package mql tokenizes a small mongo-style query language with the rulex
// engine and compiles the token stream into bson filter documents.
package mql

import (
	"github.com/hummerd/rulex"
)

// Token kinds produced by the query rule set. Engine values 0 and 1 are
// reserved for EOF and error tokens.
const (
	KindKey rulex.Kind = iota + 2
	KindNumber
	KindString
	KindOp
	KindParen
	KindRegex
	KindSpace
)

// NewLexer creates a lexer over src with the query-language rules
// registered. Whitespace is matched as an ignorable token, so NextToken
// yields only significant tokens.
func NewLexer(src []byte, filename string) (*rulex.Lexer, error) {
	l, err := rulex.New(src, filename, 0)
	if err != nil {
		return nil, err
	}

	l.AddRule(matchSpace, nil)
	l.AddRule(matchRegex, nil)
	l.AddRule(matchString, nil)
	l.AddRule(matchNumber, nil)
	l.AddRule(matchKey, nil)
	l.AddRule(matchOp, nil)
	l.AddRule(matchParen, nil)

	return l, nil
}

func isKey(c byte) bool {
	return rulex.IsAlpha(c) ||
		c == '.' ||
		c == '-' ||
		c == '$'
}

func isOp(c byte) bool {
	return c == '<' || c == '>' || c == '=' || c == '!'
}

func matchSpace(l *rulex.Lexer, t *rulex.Token) bool {
	start := l.Pos()

	for !l.IsEOF() && rulex.IsSpace(l.Current()) {
		l.Advance()
	}

	if l.Pos() == start {
		return false
	}

	t.Kind = KindSpace
	t.Lexeme = l.Lexeme(start, l.Pos()-start)
	t.Flags |= rulex.Ignore
	return true
}

// matchRegex matches /pattern/flags literals. The pattern may contain
// escaped slashes.
func matchRegex(l *rulex.Lexer, t *rulex.Token) bool {
	if l.Current() != '/' {
		return false
	}

	start := l.Pos()
	l.Advance()

	for {
		if l.IsEOF() {
			return false
		}

		c := l.Current()
		l.Advance()

		if c == '\\' && !l.IsEOF() {
			l.Advance()
			continue
		}

		if c == '/' {
			break
		}
	}

	for !l.IsEOF() && rulex.IsAlpha(l.Current()) {
		l.Advance()
	}

	t.Kind = KindRegex
	t.Lexeme = l.Lexeme(start, l.Pos()-start)
	return true
}

// matchString matches double or single quoted strings with backslash
// escapes. The quotes are part of the lexeme.
func matchString(l *rulex.Lexer, t *rulex.Token) bool {
	quote := l.Current()
	if quote != '"' && quote != '\'' {
		return false
	}

	start := l.Pos()
	l.Advance()

	for {
		if l.IsEOF() {
			l.SetError("unterminated string", t.Line, t.Column)
			return false
		}

		c := l.Current()
		l.Advance()

		if c == '\\' && !l.IsEOF() {
			l.Advance()
			continue
		}

		if c == quote {
			break
		}
	}

	t.Kind = KindString
	t.Lexeme = l.Lexeme(start, l.Pos()-start)
	return true
}

func matchNumber(l *rulex.Lexer, t *rulex.Token) bool {
	start := l.Pos()

	for !l.IsEOF() && rulex.IsDigit(l.Current()) {
		l.Advance()
	}

	if l.Pos() == start {
		return false
	}

	t.Kind = KindNumber
	t.Lexeme = l.Lexeme(start, l.Pos()-start)
	return true
}

func matchKey(l *rulex.Lexer, t *rulex.Token) bool {
	start := l.Pos()

	for !l.IsEOF() && isKey(l.Current()) {
		l.Advance()
	}

	if l.Pos() == start {
		return false
	}

	t.Kind = KindKey
	t.Lexeme = l.Lexeme(start, l.Pos()-start)
	return true
}

func matchOp(l *rulex.Lexer, t *rulex.Token) bool {
	start := l.Pos()

	for !l.IsEOF() && isOp(l.Current()) {
		l.Advance()
	}

	if l.Pos() == start {
		return false
	}

	t.Kind = KindOp
	t.Lexeme = l.Lexeme(start, l.Pos()-start)
	return true
}

func matchParen(l *rulex.Lexer, t *rulex.Token) bool {
	c := l.Current()
	if c != '(' && c != ')' {
		return false
	}

	start := l.Pos()
	l.Advance()

	t.Kind = KindParen
	t.Lexeme = l.Lexeme(start, 1)
	return true
}
