// Package lexer implements spec.md §4.D's lexer: token scanning with
// $synonym expansion (via an input stack) and $0..$9 argument
// substitution, grounded structurally on ha1tch/tsqlparser's
// lexer.Lexer (readChar/peekChar/skipWhitespace shape), generalized
// here to a stack of input frames instead of one flat string since this
// grammar's synonyms and call arguments both need to splice text into
// the middle of the token stream.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
	"github.com/Conceptual-Machines/setsinmotion-go/internal/token"
)

// SynonymTable resolves a `$name` word to its expansion text.
type SynonymTable interface {
	Expand(name string) (text string, ok bool)
}

// ArgSource resolves `$0`..`$9` to the literal spelling of a caller
// argument, used only when InDefinition is true and a call's actual
// arguments are being substituted into its action text.
type ArgSource interface {
	Arg(index int) (spelling string, ok bool)
}

type frame struct {
	input        string
	position     int
	readPosition int
	ch           rune
}

// Lexer scans one token stream, expanding synonyms and arguments
// in-line. InDefinition controls whether `$word` forms and operators
// are recognized (set when lexing a Definition's action text) versus
// plain user call-phrase text.
type Lexer struct {
	frames        []*frame
	line, column  int
	Synonyms      SynonymTable
	Args          ArgSource
	InDefinition  bool
	activeSynonym map[string]bool // cycle guard across the expansion stack
}

// New creates a Lexer over input, starting at line 1.
func New(input string, synonyms SynonymTable, args ArgSource, inDefinition bool) *Lexer {
	l := &Lexer{
		Synonyms:      synonyms,
		Args:          args,
		InDefinition:  inDefinition,
		line:          1,
		activeSynonym: map[string]bool{},
	}
	l.frames = []*frame{{input: input}}
	l.readChar()
	return l
}

func (l *Lexer) top() *frame { return l.frames[len(l.frames)-1] }

func (l *Lexer) readChar() {
	for {
		f := l.top()
		if f.readPosition >= len(f.input) {
			if len(l.frames) > 1 {
				l.frames = l.frames[:len(l.frames)-1]
				continue
			}
			f.ch = 0
			f.position = f.readPosition
			return
		}
		r, size := utf8.DecodeRuneInString(f.input[f.readPosition:])
		f.ch = r
		f.position = f.readPosition
		f.readPosition += size
		l.column++
		if f.ch == '\n' {
			l.line++
			l.column = 0
		}
		return
	}
}

func (l *Lexer) ch() rune { return l.top().ch }

func (l *Lexer) peekChar() rune {
	f := l.top()
	if f.readPosition >= len(f.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(f.input[f.readPosition:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.ch() == ' ' || l.ch() == '\t' || l.ch() == '\n' || l.ch() == '\r' {
		l.readChar()
	}
}

func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return unicode.IsLetter(r) || r == '_' || r == '-' }

// NextToken returns the next token in the fully-expanded stream.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()
	line, col := l.line, l.column

	if l.ch() == 0 {
		return token.Token{Type: token.EOF, Line: line, Column: col}, nil
	}

	switch l.ch() {
	case '$':
		return l.readDollar(line, col)
	case '+':
		l.readChar()
		return token.Token{Type: token.PLUS, Literal: "+", Line: line, Column: col}, nil
	case '-':
		l.readChar()
		return token.Token{Type: token.MINUS, Literal: "-", Line: line, Column: col}, nil
	case '*':
		l.readChar()
		return token.Token{Type: token.STAR, Literal: "*", Line: line, Column: col}, nil
	case '/':
		l.readChar()
		return token.Token{Type: token.SLASH, Literal: "/", Line: line, Column: col}, nil
	case '%':
		l.readChar()
		return token.Token{Type: token.PERCENT, Literal: "%", Line: line, Column: col}, nil
	case '(':
		l.readChar()
		return token.Token{Type: token.LPAREN, Literal: "(", Line: line, Column: col}, nil
	case ')':
		l.readChar()
		return token.Token{Type: token.RPAREN, Literal: ")", Line: line, Column: col}, nil
	case ',':
		l.readChar()
		return token.Token{Type: token.COMMA, Literal: ",", Line: line, Column: col}, nil
	case '=':
		l.readChar()
		return token.Token{Type: token.EQ, Literal: "=", Line: line, Column: col}, nil
	case '<':
		l.readChar()
		if l.ch() == '>' {
			l.readChar()
			return token.Token{Type: token.NEQ, Literal: "<>", Line: line, Column: col}, nil
		}
		if l.ch() == '=' {
			l.readChar()
			return token.Token{Type: token.LTE, Literal: "<=", Line: line, Column: col}, nil
		}
		return token.Token{Type: token.LT, Literal: "<", Line: line, Column: col}, nil
	case '>':
		l.readChar()
		if l.ch() == '=' {
			l.readChar()
			return token.Token{Type: token.GTE, Literal: ">=", Line: line, Column: col}, nil
		}
		return token.Token{Type: token.GT, Literal: ">", Line: line, Column: col}, nil
	}

	if isDigit(l.ch()) {
		return l.readNumber(line, col)
	}
	if isLetter(l.ch()) {
		return l.readWord(line, col)
	}

	bad := string(l.ch())
	l.readChar()
	return token.Token{Type: token.ILLEGAL, Literal: bad, Line: line, Column: col}, nil
}

// readDollar handles `$N` argument substitution and `$name` synonym
// expansion, both implemented by pushing a new input frame rather than
// returning a token directly.
func (l *Lexer) readDollar(line, col int) (token.Token, error) {
	l.readChar() // consume '$'
	var buf []rune
	for isLetter(l.ch()) || isDigit(l.ch()) {
		buf = append(buf, l.ch())
		l.readChar()
	}
	name := string(buf)

	if len(name) == 1 && isDigit(rune(name[0])) {
		if l.Args == nil {
			return token.Token{}, explain.New(explain.DefinitionError, "no argument list available for $%s", name)
		}
		idx := int(name[0] - '0')
		spelling, ok := l.Args.Arg(idx)
		if !ok {
			return token.Token{}, explain.New(explain.DefinitionError, "$%s: no such argument", name)
		}
		l.frames = append(l.frames, &frame{input: spelling})
		l.readChar()
		return l.NextToken()
	}

	if l.Synonyms != nil {
		if text, ok := l.Synonyms.Expand(name); ok {
			if l.activeSynonym[name] {
				return token.Token{}, explain.New(explain.DefinitionError, "synonym %q expands into itself", name)
			}
			l.activeSynonym[name] = true
			l.frames = append(l.frames, &frame{input: text})
			l.readChar()
			// NextToken is called directly (not tail-returned) so the
			// guard above stays active for the whole nested expansion,
			// including any further $-references inside it, and is
			// only cleared once that expansion has fully unwound.
			tok, err := l.NextToken()
			delete(l.activeSynonym, name)
			return tok, err
		}
	}

	// Not a synonym or numbered argument: treat as a literal $-prefixed
	// word (e.g. $until_home, a built-in/enumerated constant spelled
	// with its $ per spec.md §3's Fraction note).
	return token.Token{Type: token.WORD, Literal: "$" + name, Line: line, Column: col}, nil
}

// readNumber recognizes INTEGER, `N/M`, and `N and N/M` fractions,
// matching spec.md §4.D's "greedy" fraction recognition.
func (l *Lexer) readNumber(line, col int) (token.Token, error) {
	whole := l.readDigits()
	wholeVal := atoi(whole)

	if l.ch() == '/' {
		l.readChar()
		denomStr := l.readDigits()
		return token.Token{Type: token.FRACTION, Literal: whole + "/" + denomStr, Line: line, Column: col,
			Num: wholeVal, Denom: atoi(denomStr)}, nil
	}

	if l.ch() == ' ' && l.peekLiteralAt(1, "and ") {
		save := *l.top()
		l.advance(1 + len("and "))
		if isDigit(l.ch()) {
			num := l.readDigits()
			if l.ch() == '/' {
				l.readChar()
				denom := l.readDigits()
				return token.Token{Type: token.FRACTION, Literal: whole + " and " + num + "/" + denom,
					Line: line, Column: col, IntVal: wholeVal, Num: atoi(num), Denom: atoi(denom)}, nil
			}
		}
		*l.top() = save
	}

	return token.Token{Type: token.INTEGER, Literal: whole, Line: line, Column: col, IntVal: wholeVal}, nil
}

// readDigits accumulates a run of digits by rune rather than slicing the
// frame's input, since the run can cross a frame-pop boundary (e.g. a
// single-digit argument substitution merging with adjacent parent text).
func (l *Lexer) readDigits() string {
	var buf []rune
	for isDigit(l.ch()) {
		buf = append(buf, l.ch())
		l.readChar()
	}
	return string(buf)
}

// peekLiteralAt reports whether s occurs starting offset bytes past the
// current position, without consuming input.
func (l *Lexer) peekLiteralAt(offset int, s string) bool {
	f := l.top()
	start := f.position + offset
	if start < 0 || start > len(f.input) {
		return false
	}
	rest := f.input[start:]
	return len(rest) >= len(s) && rest[:len(s)] == s
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		l.readChar()
	}
}

func atoi(s string) int {
	v := 0
	for _, r := range s {
		v = v*10 + int(r-'0')
	}
	return v
}

func (l *Lexer) readWord(line, col int) (token.Token, error) {
	var buf []rune
	for isLetter(l.ch()) || isDigit(l.ch()) {
		buf = append(buf, l.ch())
		l.readChar()
	}
	lit := string(buf)
	if l.ch() == 0 && len(l.frames) == 1 {
		return token.Token{Type: token.FINAL_PARTIAL, Literal: lit, Line: line, Column: col}, nil
	}
	typ := token.WORD
	if l.InDefinition {
		typ = token.LookupWord(lit)
	}
	return token.Token{Type: typ, Literal: lit, Line: line, Column: col}, nil
}
