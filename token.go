package rulex

// Kind tags a token. KindEOF and KindError are reserved for the engine;
// every other value is caller-defined.
type Kind uint32

const (
	KindEOF Kind = iota
	KindError
)

// TokenFlag is a per-token bit set.
type TokenFlag uint32

const (
	// Ignore marks a matched token for discarding. NextToken skips such
	// tokens and rescans from the current position, unless the lexer was
	// created with KeepIgnorable.
	Ignore TokenFlag = 1 << iota
)

// Flag configures a Lexer.
type Flag uint32

const (
	// KeepIgnorable makes NextToken return tokens flagged Ignore to the
	// caller instead of silently skipping them.
	KeepIgnorable Flag = 1 << iota
)

// Token describes one lexical unit. Lexeme is a slice into the source
// buffer that was current when the token was produced, never a copy; it is
// nil for EOF tokens. Line and Column are 1-based and locate the token's
// first character. A token must not outlive the buffer it points into.
type Token struct {
	Kind     Kind
	Lexeme   []byte
	Filename string
	Line     int
	Column   int
	Flags    TokenFlag
}

// Matcher tries to recognize a token at the lexer's current position. It
// may advance the lexer arbitrarily and populate the token as it goes; on
// a reported failure the engine restores the position, so matchers are
// free to consume speculatively.
type Matcher func(l *Lexer, t *Token) bool

// Action post-processes a successfully matched token, typically to set
// its kind or flags.
type Action func(l *Lexer, t *Token)

type rule struct {
	matcher Matcher
	action  Action
}
