// Package lexer turns preprocessed MSL source into a token stream.
// Matching is ordered longest-match: every rule is tried at the
// current offset, the longest result wins, and ties are broken by
// rule order below. This is grounded in the original compiler's
// TOKENTYPES regex table (compiler/main.py): rather than hand-rolling
// keyword/identifier disambiguation, the original relies on its
// reserved words simply producing longer or earlier matches than a
// plain identifier would — e.g. "scoreboard" always out-matches
// "score" because MCCMD also swallows the rest of the line, and a
// bare "store" used as a variable name is indistinguishable from the
// EXEC keyword by design. The same property holds here without any
// lookaround, since Go's regexp (RE2) doesn't support it.
package lexer

import (
	"regexp"
	"strings"

	"github.com/malmosmo/msl/pkgs/diagnostics"
	"github.com/malmosmo/msl/pkgs/preprocessor"
)

type rule struct {
	typ TokenType
	re  *regexp.Regexp
}

var whitespaceRe = regexp.MustCompile(`^[ \t\r\f\v]+`)
var newlineRe = regexp.MustCompile(`^\n`)

var rules = []rule{
	{COMMENT, regexp.MustCompile(`^/\*[\s\S]*?\*/`)},
	{COMMENT, regexp.MustCompile(`^//[^\n]*`)},
	{EXEC, regexp.MustCompile(`^(align|anchored|as|at|facing|if|in|positioned|rotated|unless|store)`)},
	{SCORE, regexp.MustCompile(`^score`)},
	{MCCMD, regexp.MustCompile(`^(` + mccmdAlternation + `)\b[^\n]*`)},

	{FUNC, regexp.MustCompile(`^func`)},
	{FOR, regexp.MustCompile(`^for`)},
	{WHILE, regexp.MustCompile(`^while`)},

	{PLUSEQ, regexp.MustCompile(`^\+=`)},
	{MINUSEQ, regexp.MustCompile(`^-=`)},
	{MULTEQ, regexp.MustCompile(`^\*=`)},
	{DIVEQ, regexp.MustCompile(`^/=`)},

	{LSHIFT, regexp.MustCompile(`^<<`)},
	{RSHIFT, regexp.MustCompile(`^>>`)},
	{SWAP, regexp.MustCompile(`^><`)},

	{INCR, regexp.MustCompile(`^\+\+`)},
	{DECR, regexp.MustCompile(`^--`)},

	{EQ, regexp.MustCompile(`^==`)},
	{GE, regexp.MustCompile(`^>=`)},
	{LE, regexp.MustCompile(`^<=`)},
	{NEQ, regexp.MustCompile(`^!=`)},
	{AND, regexp.MustCompile(`^&&`)},
	{OR, regexp.MustCompile(`^\|\|`)},

	{PLUS, regexp.MustCompile(`^\+`)},
	{MINUS, regexp.MustCompile(`^-`)},
	{MULT, regexp.MustCompile(`^\*`)},
	{DIV, regexp.MustCompile(`^/`)},
	{LT, regexp.MustCompile(`^<`)},
	{GT, regexp.MustCompile(`^>`)},
	{NOT, regexp.MustCompile(`^!`)},
	{ASSIGN, regexp.MustCompile(`^=`)},

	{BOOLEAN, regexp.MustCompile(`^(true|false)`)},
	{FLOAT, regexp.MustCompile(`^\d+\.\d+`)},
	{INTEGER, regexp.MustCompile(`^\d+`)},
	{STRING, regexp.MustCompile(`^"[^"]*"`)},

	{LPAREN, regexp.MustCompile(`^\(`)},
	{RPAREN, regexp.MustCompile(`^\)`)},
	{LBRACE, regexp.MustCompile(`^\{`)},
	{RBRACE, regexp.MustCompile(`^\}`)},
	{COMMA, regexp.MustCompile(`^,`)},
	{COLON, regexp.MustCompile(`^:`)},
	{SEMI, regexp.MustCompile(`^;`)},

	{IDENTIFIER, regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*`)},
}

// mccmdAlternation is built at init from preprocessor.MinecraftKeywords
// so the two packages can never drift apart on what counts as a
// reserved command. The MCCMD rule requires a word boundary after the
// keyword, so e.g. `while` is not read as the `w` command.
var mccmdAlternation = buildMccmdAlternation()

// Lexer scans a preprocessed source buffer into tokens on demand.
type Lexer struct {
	file   string
	src    string
	input  string
	pos    int
	line   int
	column int
}

// New creates a Lexer over src. file is used only for diagnostic
// rendering.
func New(file, src string) *Lexer {
	return &Lexer{file: file, src: src, input: src, line: 1, column: 1}
}

func (l *Lexer) advance(n int) {
	for _, r := range l.input[:n] {
		if r == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
	}
	l.input = l.input[n:]
	l.pos += n
}

func (l *Lexer) skipWhitespace() {
	for {
		if m := whitespaceRe.FindString(l.input); m != "" {
			l.advance(len(m))
			continue
		}
		if m := newlineRe.FindString(l.input); m != "" {
			l.advance(len(m))
			continue
		}
		break
	}
}

// Next returns the next token, or a SyntaxError diagnostic if no rule
// matches at the current offset.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	pos := Position{Line: l.line, Column: l.column}

	if l.input == "" {
		return Token{Type: EOF, Pos: pos}, nil
	}

	bestLen := -1
	bestRule := -1
	for i, r := range rules {
		m := r.re.FindString(l.input)
		if len(m) > bestLen {
			bestLen = len(m)
			bestRule = i
		}
	}

	if bestRule == -1 || bestLen == 0 {
		diagPos := &diagnostics.Position{Line: pos.Line, Column: pos.Column}
		return Token{}, diagnostics.Newf(diagnostics.SyntaxError, diagPos, l.file, l.src,
			"Unrecognized character %q", l.input[:1])
	}

	lexeme := l.input[:bestLen]
	l.advance(bestLen)

	return Token{Type: rules[bestRule].typ, Literal: lexeme, Pos: pos}, nil
}

// All scans the whole input, returning every token up to and
// including EOF, or the first diagnostic encountered.
func (l *Lexer) All() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

func buildMccmdAlternation() string {
	return strings.Join(preprocessor.MinecraftKeywords, "|")
}
