// Package rulex is an embeddable rule-based tokenization engine. A Lexer
// holds a borrowed source buffer and an ordered table of (Matcher, Action)
// rules; NextToken tries the rules in registration order at the current
// position and returns the first match, backtracking over failed attempts
// and skipping tokens flagged Ignore.
package rulex

import "errors"

var ErrNoSource = errors.New("rulex: source is nil")

type pos struct {
	off int
	l   int
	c   int
}

// Lexer is the engine state. It borrows the source buffer and never
// mutates it; it owns only the rule table. A Lexer is not safe for
// concurrent use.
type Lexer struct {
	src      []byte
	filename string
	pos      pos
	rules    []rule
	flags    Flag
	scanErr  *ScanError

	// Context is an opaque caller-owned payload available to matchers and
	// actions for stateful lexing. The engine never inspects or replaces
	// it; it survives Reset.
	Context any
}

// New creates a lexer over source. The filename only labels produced
// tokens; source may be empty but not nil.
func New(source []byte, filename string, flags Flag) (*Lexer, error) {
	if source == nil {
		return nil, ErrNoSource
	}

	return &Lexer{
		src:      source,
		filename: filename,
		pos:      pos{l: 1, c: 1},
		flags:    flags,
	}, nil
}

// Reset rebinds the lexer to a new source buffer and filename and moves
// the cursor back to offset 0, line 1, column 1. Registered rules and
// Context are kept.
func (l *Lexer) Reset(source []byte, filename string) error {
	if source == nil {
		return ErrNoSource
	}

	l.src = source
	l.filename = filename
	l.pos = pos{l: 1, c: 1}
	return nil
}

// AddRule appends a rule to the table. Registration order is match
// priority: earlier rules win over later ones regardless of match length.
// action may be nil; a nil matcher is rejected. Rules must not be added
// from inside a matcher or action.
func (l *Lexer) AddRule(matcher Matcher, action Action) bool {
	if matcher == nil {
		return false
	}

	l.rules = append(l.rules, rule{matcher: matcher, action: action})
	return true
}

// Current returns the byte at the cursor, or 0 at end of input.
func (l *Lexer) Current() byte {
	if l.pos.off >= len(l.src) {
		return 0
	}
	return l.src[l.pos.off]
}

// Peek returns the byte offset positions ahead of the cursor, or 0 when
// that is past the end of input.
func (l *Lexer) Peek(offset int) byte {
	if l.pos.off+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos.off+offset]
}

// Advance consumes one byte. Consuming a newline increments the line and
// resets the column to 1. Advance at end of input does nothing; nothing
// ever moves the cursor backward except the engine's own backtracking
// between rule attempts.
func (l *Lexer) Advance() {
	if l.pos.off >= len(l.src) {
		return
	}

	c := l.src[l.pos.off]
	l.pos.off++

	if c == '\n' {
		l.pos.l++
		l.pos.c = 1
	} else {
		l.pos.c++
	}
}

// IsEOF reports whether the cursor is at or past the end of the buffer.
func (l *Lexer) IsEOF() bool {
	return l.pos.off >= len(l.src)
}

func (l *Lexer) Pos() int    { return l.pos.off }
func (l *Lexer) Line() int   { return l.pos.l }
func (l *Lexer) Column() int { return l.pos.c }

// Lexeme returns the source slice of length bytes starting at start. It
// returns nil when start lies past the end of the buffer and clamps
// length to the remaining buffer size.
func (l *Lexer) Lexeme(start, length int) []byte {
	if start < 0 || start >= len(l.src) {
		return nil
	}

	if start+length > len(l.src) {
		length = len(l.src) - start
	}

	return l.src[start : start+length]
}

// NextToken produces the next token. Rules are tried in registration
// order at the current position; the first matcher to succeed wins and
// its action, if any, runs on the matched token. A failed matcher has its
// consumption undone before the next rule is tried. A matched token
// flagged Ignore is discarded and scanning restarts from wherever the
// matcher and action left the cursor, unless the lexer keeps ignorable
// tokens. When no rule matches, a KindError token covering exactly one
// byte is returned and the cursor moves past that byte, so the scan
// always makes progress. At end of input NextToken returns a KindEOF
// token, forever.
func (l *Lexer) NextToken() Token {
	if l.IsEOF() {
		return l.eofToken()
	}

	for {
		origin := l.pos
		skip := false

		for _, r := range l.rules {
			t := Token{
				Lexeme:   l.src[origin.off:origin.off],
				Filename: l.filename,
				Line:     origin.l,
				Column:   origin.c,
			}

			if !r.matcher(l, &t) {
				// Undo any speculative consumption before the next rule.
				l.pos = origin
				continue
			}

			if r.action != nil {
				r.action(l, &t)
			}

			if t.Flags&Ignore != 0 && l.flags&KeepIgnorable == 0 {
				// Discard and rescan from the current position, not the
				// origin of this attempt.
				skip = true
				break
			}

			return t
		}

		if !skip {
			break
		}
	}

	// A matcher may have consumed down to the end of input before its
	// rule pass came up empty.
	if l.IsEOF() {
		return l.eofToken()
	}

	t := Token{
		Kind:     KindError,
		Lexeme:   l.src[l.pos.off : l.pos.off+1],
		Filename: l.filename,
		Line:     l.pos.l,
		Column:   l.pos.c,
	}
	l.Advance()
	return t
}

func (l *Lexer) eofToken() Token {
	return Token{
		Kind:     KindEOF,
		Filename: l.filename,
		Line:     l.pos.l,
		Column:   l.pos.c,
	}
}

// ScanError is a best-effort diagnostic record. The engine never writes
// or consults it; matchers and actions may populate it via SetError for
// the embedding code to report.
type ScanError struct {
	Message string
	Line    int
	Column  int
}

// SetError records a diagnostic. The last record wins.
func (l *Lexer) SetError(message string, line, column int) {
	l.scanErr = &ScanError{Message: message, Line: line, Column: column}
}

// LastError returns the last recorded diagnostic, or nil.
func (l *Lexer) LastError() *ScanError {
	return l.scanErr
}
