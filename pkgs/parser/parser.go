// Package parser turns a lexer.Token stream into an ast.Program via
// straightforward recursive descent with precedence climbing for
// expressions. Every production reports its own position so
// diagnostics can point a caret at the exact token that broke.
package parser

import (
	"strconv"

	"github.com/malmosmo/msl/pkgs/ast"
	"github.com/malmosmo/msl/pkgs/diagnostics"
	"github.com/malmosmo/msl/pkgs/lexer"
)

// Parser consumes tokens one at a time, always keeping one token of
// lookahead in cur.
type Parser struct {
	toks []lexer.Token
	pos  int
	file string
	src  string
}

// New tokenizes src in full before parsing begins; a lexer error
// surfaces immediately as the returned error.
func New(file, src string) (*Parser, error) {
	toks, err := lexer.New(file, src).All()
	if err != nil {
		return nil, err
	}
	return &Parser{toks: toks, file: file, src: src}, nil
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *Parser) pos2ast(pos lexer.Position) ast.Position { return pos }

func (p *Parser) errorf(format string, args ...any) error {
	if p.at(lexer.EOF) {
		return diagnostics.Newf(diagnostics.UnexpectedEndError, nil, p.file, p.src, format, args...)
	}
	pos := &diagnostics.Position{Line: p.cur().Pos.Line, Column: p.cur().Pos.Column}
	return diagnostics.Newf(diagnostics.SyntaxError, pos, p.file, p.src, format, args...)
}

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if !p.at(tt) {
		return lexer.Token{}, p.errorf("Expected %s but got %s %q", tt, p.cur().Type, p.cur().Literal)
	}
	return p.advance(), nil
}

// Parse runs the whole program production.
func Parse(file, src string) (*ast.Program, error) {
	p, err := New(file, src)
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	startPos := p.cur().Pos
	var stmts []ast.Node
	for !p.at(lexer.EOF) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return &ast.Program{Statements: stmts, Pos: p.pos2ast(startPos)}, nil
}

func (p *Parser) parseBlock() ([]ast.Node, error) {
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Node
	for !p.at(lexer.RBRACE) {
		if p.at(lexer.EOF) {
			return nil, p.errorf("Unexpected end of input inside block")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Node, error) {
	switch p.cur().Type {
	case lexer.COMMENT:
		tok := p.advance()
		return &ast.Comment{Text: tok.Literal, Pos: p.pos2ast(tok.Pos)}, nil
	case lexer.MCCMD:
		tok := p.advance()
		return &ast.McCmd{Text: tok.Literal, Pos: p.pos2ast(tok.Pos)}, nil
	case lexer.SCORE:
		return p.parseScore()
	case lexer.FUNC:
		return p.parseFunc()
	case lexer.FOR:
		return p.parseFor()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.EXEC:
		return p.parseGroup()
	case lexer.IDENTIFIER:
		return p.parseIdentifierStatement()
	default:
		return nil, p.errorf("Unexpected Token %s %q", p.cur().Type, p.cur().Literal)
	}
}

func (p *Parser) parseScore() (ast.Node, error) {
	startTok, err := p.expect(lexer.SCORE)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	objTok, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.ASSIGN) {
		if _, err := p.expect(lexer.SEMI); err != nil {
			return nil, err
		}
		return &ast.ScoreDecl{Name: nameTok.Literal, Objective: objTok.Literal, Pos: p.pos2ast(startTok.Pos)}, nil
	}
	p.advance() // consume '='
	val, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}
	return &ast.ScoreInit{Name: nameTok.Literal, Objective: objTok.Literal, Value: val, Pos: p.pos2ast(startTok.Pos)}, nil
}

func (p *Parser) parseFunc() (ast.Node, error) {
	startTok, err := p.expect(lexer.FUNC)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Func{Name: nameTok.Literal, Body: body, Pos: p.pos2ast(startTok.Pos)}, nil
}

func (p *Parser) parseFor() (ast.Node, error) {
	startTok, err := p.expect(lexer.FOR)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}

	initTok, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	initVal, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	init := &ast.VariableAssign{Name: initTok.Literal, Value: initVal, Pos: p.pos2ast(initTok.Pos)}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}

	stepTok, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	step, err := p.parseAssignmentCore(stepTok)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Init: init, Cond: cond, Step: step, Body: body, Pos: p.pos2ast(startTok.Pos)}, nil
}

func (p *Parser) parseWhile() (ast.Node, error) {
	startTok, err := p.expect(lexer.WHILE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body, Pos: p.pos2ast(startTok.Pos)}, nil
}

func (p *Parser) parseGroup() (ast.Node, error) {
	startPos := p.cur().Pos
	var specs []ast.GroupSpec
	for p.at(lexer.EXEC) {
		kwTok := p.advance()
		if _, err := p.expect(lexer.LPAREN); err != nil {
			return nil, err
		}
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		specs = append(specs, ast.GroupSpec{Keyword: kwTok.Literal, Arg: arg, Pos: p.pos2ast(kwTok.Pos)})
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Group{Specs: specs, Body: body, Pos: p.pos2ast(startPos)}, nil
}

func (p *Parser) parseIdentifierStatement() (ast.Node, error) {
	nameTok := p.advance()
	node, err := p.parseAssignmentCore(nameTok)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI); err != nil {
		return nil, err
	}
	return node, nil
}

// parseAssignmentCore parses the assgn production — a decl
// (`IDENT '=' expr`), an increment/decrement (`IDENT '++'`/`IDENT
// '--'`), or one of the language's compound-assignment/score-op
// supplements — starting right after nameTok, without consuming a
// trailing terminator. The top-level statement form consumes a ';'
// itself; `for`'s bounded third clause is terminated by ')' instead,
// so both callers share this core and decide their own closing token.
func (p *Parser) parseAssignmentCore(nameTok lexer.Token) (ast.Node, error) {
	switch p.cur().Type {
	case lexer.ASSIGN:
		p.advance()
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		return &ast.VariableAssign{Name: nameTok.Literal, Value: val, Pos: p.pos2ast(nameTok.Pos)}, nil

	case lexer.INCR, lexer.DECR:
		opTok := p.advance()
		kind := ast.Incr
		if opTok.Type == lexer.DECR {
			kind = ast.Decr
		}
		return &ast.IncrDecr{Name: nameTok.Literal, Op: kind, Pos: p.pos2ast(nameTok.Pos)}, nil

	case lexer.PLUSEQ, lexer.MINUSEQ, lexer.MULTEQ, lexer.DIVEQ:
		opTok := p.advance()
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		return &ast.SelfOp{Name: nameTok.Literal, Op: selfOpKind(opTok.Type), Value: val, Pos: p.pos2ast(nameTok.Pos)}, nil

	case lexer.LSHIFT, lexer.RSHIFT, lexer.SWAP:
		opTok := p.advance()
		rightTok, err := p.expect(lexer.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		return &ast.ScoreOp{Left: nameTok.Literal, Op: scoreOpKind(opTok.Type), Right: rightTok.Literal, Pos: p.pos2ast(nameTok.Pos)}, nil

	default:
		return nil, p.errorf("Unexpected Token %s %q after identifier %q", p.cur().Type, p.cur().Literal, nameTok.Literal)
	}
}

func selfOpKind(tt lexer.TokenType) ast.SelfOpKind {
	switch tt {
	case lexer.PLUSEQ:
		return ast.SelfAdd
	case lexer.MINUSEQ:
		return ast.SelfSub
	case lexer.MULTEQ:
		return ast.SelfMult
	default:
		return ast.SelfDiv
	}
}

func scoreOpKind(tt lexer.TokenType) ast.ScoreOpKind {
	switch tt {
	case lexer.LSHIFT:
		return ast.ScoreLeft
	case lexer.RSHIFT:
		return ast.ScoreRight
	default:
		return ast.ScoreSwap
	}
}

// precedence table. Associativity for PLUS/MINUS is right per the
// language's historical grammar; everything else is left.
type opInfo struct {
	prec  int
	right bool
}

var binOps = map[lexer.TokenType]struct {
	kind ast.BinOpKind
	info opInfo
}{
	lexer.OR:     {ast.BinOr, opInfo{1, false}},
	lexer.AND:    {ast.BinAnd, opInfo{2, false}},
	lexer.EQ:     {ast.BinEQ, opInfo{3, false}},
	lexer.NEQ:    {ast.BinNEQ, opInfo{3, false}},
	lexer.LT:     {ast.BinLT, opInfo{4, false}},
	lexer.GT:     {ast.BinGT, opInfo{4, false}},
	lexer.LE:     {ast.BinLE, opInfo{4, false}},
	lexer.GE:     {ast.BinGE, opInfo{4, false}},
	lexer.PLUS:   {ast.BinAdd, opInfo{5, true}},
	lexer.MINUS:  {ast.BinSub, opInfo{5, true}},
	lexer.MULT:   {ast.BinMult, opInfo{6, false}},
	lexer.DIV:    {ast.BinDiv, opInfo{6, false}},
}

func (p *Parser) parseExpr(minPrec int) (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		entry, ok := binOps[p.cur().Type]
		if !ok || entry.info.prec < minPrec {
			return left, nil
		}
		opTok := p.advance()

		nextMin := entry.info.prec + 1
		if entry.info.right {
			nextMin = entry.info.prec
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: entry.kind, Left: left, Right: right, Pos: p.pos2ast(opTok.Pos)}
	}
}

func (p *Parser) parseUnary() (ast.Node, error) {
	switch p.cur().Type {
	case lexer.PLUS, lexer.MINUS, lexer.NOT:
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		kind := ast.UnaryPlus
		switch opTok.Type {
		case lexer.MINUS:
			kind = ast.UnaryMinus
		case lexer.NOT:
			kind = ast.UnaryNot
		}
		return &ast.UnaryOp{Op: kind, Operand: operand, Pos: p.pos2ast(opTok.Pos)}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	tok := p.cur()
	switch tok.Type {
	case lexer.INTEGER:
		p.advance()
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf("Invalid integer literal %q", tok.Literal)
		}
		return &ast.Integer{Value: n, Pos: p.pos2ast(tok.Pos)}, nil
	case lexer.FLOAT:
		p.advance()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf("Invalid float literal %q", tok.Literal)
		}
		return &ast.Float{Value: f, Pos: p.pos2ast(tok.Pos)}, nil
	case lexer.STRING:
		p.advance()
		return &ast.String{Value: tok.Literal[1 : len(tok.Literal)-1], Pos: p.pos2ast(tok.Pos)}, nil
	case lexer.BOOLEAN:
		p.advance()
		return &ast.Boolean{Value: tok.Literal == "true", Pos: p.pos2ast(tok.Pos)}, nil
	case lexer.IDENTIFIER:
		p.advance()
		return &ast.VariableAccess{Name: tok.Literal, Pos: p.pos2ast(tok.Pos)}, nil
	case lexer.LPAREN:
		p.advance()
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf("Unexpected Token %s %q", tok.Type, tok.Literal)
	}
}
