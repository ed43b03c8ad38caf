// Package interp walks an ast.Program and produces the Minecraft
// commands it describes. It is deliberately a single dispatcher
// function that type-switches over the concrete AST node — not a set
// of per-node methods — so every interpretation rule lives in one
// place and the tagged union stays closed.
package interp

import (
	"fmt"
	"strings"

	"github.com/malmosmo/msl/pkgs/ast"
	"github.com/malmosmo/msl/pkgs/diagnostics"
	"github.com/malmosmo/msl/pkgs/value"
)

// maxWhileIterations caps compile-time unrolling of `while` and `for`
// so a condition that never goes false can't hang the compiler.
const maxWhileIterations = 10000

// maxInterpolationPasses caps `$(name)` template substitution passes
// inside a raw command so a self-referential template can't loop
// forever.
const maxInterpolationPasses = 10

// Interpret evaluates node in ctx and returns the Value it produces.
// Every error returned is a *diagnostics.Diagnostic.
func Interpret(node ast.Node, ctx *value.Context) (value.Value, error) {
	switch n := node.(type) {

	case *ast.Program:
		return interpretStatements(n.Statements, ctx)

	case *ast.Comment:
		return value.CommentVal(renderComment(n.Text)), nil

	case *ast.McCmd:
		text, err := interpolate(n, ctx)
		if err != nil {
			return value.Value{}, err
		}
		return value.Command(strings.TrimSuffix(text, ";")), nil

	case *ast.ScoreDecl:
		if err := declareOnlyOnce(ctx, n.Name, n.Pos); err != nil {
			return value.Value{}, err
		}
		ctx.SetScore(n.Name, value.ScoreRef{Holder: n.Name, Objective: n.Objective})
		return value.Null(), nil

	case *ast.ScoreInit:
		if err := declareOnlyOnce(ctx, n.Name, n.Pos); err != nil {
			return value.Value{}, err
		}
		v, err := evalConst(n.Value, ctx)
		if err != nil {
			return value.Value{}, err
		}
		if v.Kind() != value.KindInteger {
			return value.Value{}, valueErr(ctx, n.Pos, "A score can only be initialized with an integer, got %s", v.Kind())
		}
		ctx.SetScore(n.Name, value.ScoreRef{Holder: n.Name, Objective: n.Objective})
		cmd := fmt.Sprintf("scoreboard players set %s %s %d", n.Name, n.Objective, v.Integer())
		return value.Command(cmd), nil

	case *ast.VariableAssign:
		return interpretVariableAssign(n, ctx)

	case *ast.VariableAccess:
		if ctx.IsScore(n.Name) {
			s, _ := ctx.GetScore(n.Name)
			return value.Score(s), nil
		}
		if v, ok := ctx.GetVariable(n.Name); ok {
			return v, nil
		}
		return value.Value{}, nameErr(ctx, n.Pos, "Name %q is not defined", n.Name)

	case *ast.IncrDecr:
		return interpretIncrDecr(n, ctx)

	case *ast.SelfOp:
		return interpretSelfOp(n, ctx)

	case *ast.ScoreOp:
		return interpretScoreOp(n, ctx)

	case *ast.BinaryOp:
		return interpretBinaryOp(n, ctx)

	case *ast.UnaryOp:
		return interpretUnaryOp(n, ctx)

	case *ast.Integer:
		return value.Int(n.Value), nil
	case *ast.Float:
		return value.Flt(n.Value), nil
	case *ast.String:
		return value.Str(n.Value), nil
	case *ast.Boolean:
		return value.Bool(n.Value), nil

	case *ast.For:
		return interpretFor(n, ctx)

	case *ast.While:
		return interpretWhile(n, ctx)

	case *ast.Group:
		return interpretGroup(n, ctx)

	case *ast.Func:
		body, err := interpretStatements(n.Body, ctx)
		if err != nil {
			return value.Value{}, err
		}
		ctx.SetFunc(n.Name, body)
		return value.Null(), nil

	default:
		return value.Value{}, fmt.Errorf("interp: unhandled node type %T", node)
	}
}

func interpretStatements(stmts []ast.Node, ctx *value.Context) (value.Value, error) {
	var out []value.Value
	for _, s := range stmts {
		v, err := Interpret(s, ctx)
		if err != nil {
			return value.Value{}, err
		}
		switch v.Kind() {
		case value.KindNull:
		case value.KindCommandList:
			out = append(out, v.Commands()...)
		default:
			out = append(out, v)
		}
	}
	return value.List(out...), nil
}

func declareOnlyOnce(ctx *value.Context, name string, pos ast.Position) error {
	if ctx.IsVariable(name) || ctx.IsScore(name) {
		return nameErr(ctx, pos, "Name %q is already declared", name)
	}
	return nil
}

func nameErr(ctx *value.Context, pos ast.Position, format string, args ...any) error {
	return diagnostics.Newf(diagnostics.NameError, astPos(pos), ctx.SrcFile, ctx.Src, format, args...)
}

func valueErr(ctx *value.Context, pos ast.Position, format string, args ...any) error {
	return diagnostics.Newf(diagnostics.ValueError, astPos(pos), ctx.SrcFile, ctx.Src, format, args...)
}

func runtimeErr(ctx *value.Context, pos ast.Position, format string, args ...any) error {
	return diagnostics.Newf(diagnostics.RuntimeError, astPos(pos), ctx.SrcFile, ctx.Src, format, args...)
}

func astPos(pos ast.Position) *diagnostics.Position {
	return &diagnostics.Position{Line: pos.Line, Column: pos.Column}
}

// renderComment converts a source comment into the `#`-prefixed form
// Minecraft function files use. It strips the comment delimiters from
// both ends (trimming any run of '/', '*', newline, or space), then
// treats a first line starting with '>' as a section marker: the
// whole line is lower-cased and butted directly against the leading
// '#' with no space, instead of the usual "# " every other line gets.
func renderComment(text string) string {
	body := strings.Trim(text, "/*\n ")
	lines := strings.Split(body, "\n")

	if strings.HasPrefix(lines[0], ">") {
		lines[0] = strings.ToLower(lines[0])
	} else {
		lines[0] = " " + lines[0]
	}

	return "#" + strings.Join(lines, "\n# ")
}

// interpolate expands every `$(name)` placeholder in an mccmd's text
// against ctx's bound variables, re-scanning the result until no
// placeholder remains or the pass cap is hit. A placeholder naming an
// unbound variable is replaced by the bare name, without an error.
func interpolate(n *ast.McCmd, ctx *value.Context) (string, error) {
	text := n.Text
	for i := 0; i < maxInterpolationPasses; i++ {
		next, changed, err := interpolateOnce(text, n, ctx)
		if err != nil {
			return "", err
		}
		if !changed {
			return next, nil
		}
		text = next
	}
	return "", runtimeErr(ctx, n.Pos, "Template interpolation did not converge after %d passes", maxInterpolationPasses)
}

func interpolateOnce(text string, n *ast.McCmd, ctx *value.Context) (string, bool, error) {
	var b strings.Builder
	changed := false
	i := 0
	for i < len(text) {
		if text[i] == '$' && i+1 < len(text) && text[i+1] == '(' {
			end := strings.IndexByte(text[i+2:], ')')
			if end == -1 {
				b.WriteByte(text[i])
				i++
				continue
			}
			name := text[i+2 : i+2+end]
			if v, ok := ctx.GetVariable(name); ok {
				b.WriteString(v.String())
			} else {
				b.WriteString(name)
			}
			i = i + 2 + end + 1
			changed = true
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String(), changed, nil
}

// interpretVariableAssign implements `name = expr`. If name already
// names a score, the assignment lowers to a scoreboard mutation
// instead of rebinding a compile-time variable: an integer RHS sets it
// directly, a ScoreRef RHS composes a `scoreboard players operation
// ... = ...`. Otherwise name is bound (or rebound) as a compile-time
// constant in the current scope.
func interpretVariableAssign(n *ast.VariableAssign, ctx *value.Context) (value.Value, error) {
	v, err := Interpret(n.Value, ctx)
	if err != nil {
		return value.Value{}, err
	}

	if ctx.IsScore(n.Name) {
		left, _ := ctx.GetScore(n.Name)
		switch v.Kind() {
		case value.KindInteger:
			cmd := fmt.Sprintf("scoreboard players set %s %s %d", left.Holder, left.Objective, v.Integer())
			return value.Command(cmd), nil
		case value.KindScoreRef:
			right := v.ScoreRef()
			cmd := fmt.Sprintf("scoreboard players operation %s %s = %s %s",
				left.Holder, left.Objective, right.Holder, right.Objective)
			return value.Command(cmd), nil
		default:
			return value.Value{}, valueErr(ctx, n.Pos, "Cannot assign a %s to score %q", v.Kind(), n.Name)
		}
	}

	if !v.IsConstant() {
		return value.Value{}, valueErr(ctx, n.Pos, "Cannot bind a %s to a variable", v.Kind())
	}
	ctx.SetVariable(n.Name, v)
	return value.Null(), nil
}

// interpretIncrDecr implements `name++`/`name--`: rebind ±1 for a
// compile-time variable, or emit `scoreboard players add/remove ... 1`
// for a score.
func interpretIncrDecr(n *ast.IncrDecr, ctx *value.Context) (value.Value, error) {
	if ctx.IsScore(n.Name) {
		s, _ := ctx.GetScore(n.Name)
		verb := "add"
		if n.Op == ast.Decr {
			verb = "remove"
		}
		return value.Command(fmt.Sprintf("scoreboard players %s %s %s 1", verb, s.Holder, s.Objective)), nil
	}

	v, ok := ctx.GetVariable(n.Name)
	if !ok {
		return value.Value{}, nameErr(ctx, n.Pos, "Name %q is not defined", n.Name)
	}
	if !v.IsNumeric() {
		return value.Value{}, valueErr(ctx, n.Pos, "%s requires a number, got %s", n.Op, v.Kind())
	}
	delta := int64(1)
	if n.Op == ast.Decr {
		delta = -1
	}
	if v.Kind() == value.KindInteger {
		ctx.SetVariable(n.Name, value.Int(v.Integer()+delta))
	} else {
		ctx.SetVariable(n.Name, value.Flt(v.Float()+float64(delta)))
	}
	return value.Null(), nil
}

// interpretFor implements the three-clause compile-time unroller:
// evaluate Init once, then repeatedly check Cond and — while truthy —
// interpret Body, run Step, and recheck Cond. Init, Body, and Step all
// run against the same ctx the caller passed in: a `for` loop's
// counter is visible after the loop ends, exactly as the original
// compiler's ForNode.interpret evaluates assgn/condition/increment
// against one shared context with no child scope pushed.
func interpretFor(n *ast.For, ctx *value.Context) (value.Value, error) {
	if _, err := Interpret(n.Init, ctx); err != nil {
		return value.Value{}, err
	}

	var out []value.Value
	for i := 0; ; i++ {
		if i >= maxWhileIterations {
			return value.Value{}, runtimeErr(ctx, n.Pos, "`for` exceeded %d iterations without its condition going false", maxWhileIterations)
		}
		cond, err := evalConst(n.Cond, ctx)
		if err != nil {
			return value.Value{}, err
		}
		if cond.Kind() != value.KindBoolean {
			return value.Value{}, valueErr(ctx, n.Pos, "`for` condition must be a boolean")
		}
		if !cond.Boolean() {
			break
		}

		body, err := interpretStatements(n.Body, ctx)
		if err != nil {
			return value.Value{}, err
		}
		out = append(out, body.Commands()...)

		step, err := Interpret(n.Step, ctx)
		if err != nil {
			return value.Value{}, err
		}
		switch step.Kind() {
		case value.KindCommandList:
			out = append(out, step.Commands()...)
		case value.KindNull:
		default:
			out = append(out, step)
		}
	}
	return value.List(out...), nil
}

func interpretWhile(n *ast.While, ctx *value.Context) (value.Value, error) {
	var out []value.Value
	for i := 0; ; i++ {
		if i >= maxWhileIterations {
			return value.Value{}, runtimeErr(ctx, n.Pos, "`while` exceeded %d iterations without its condition going false", maxWhileIterations)
		}
		cond, err := evalConst(n.Cond, ctx)
		if err != nil {
			return value.Value{}, err
		}
		if cond.Kind() != value.KindBoolean {
			return value.Value{}, valueErr(ctx, n.Pos, "`while` condition must be a boolean")
		}
		if !cond.Boolean() {
			break
		}
		v, err := interpretStatements(n.Body, ctx)
		if err != nil {
			return value.Value{}, err
		}
		out = append(out, v.Commands()...)
	}
	return value.List(out...), nil
}

// evalConst interprets node and requires the result to be a
// compile-time constant — the rule for every context (score
// initializers, `for`/`while` conditions, group qualifiers) that
// can't reason about scores directly.
func evalConst(node ast.Node, ctx *value.Context) (value.Value, error) {
	v, err := Interpret(node, ctx)
	if err != nil {
		return value.Value{}, err
	}
	if !v.IsConstant() {
		return value.Value{}, valueErr(ctx, node.Position(), "Expected a compile-time constant, got a %s", v.Kind())
	}
	return v, nil
}

func interpretUnaryOp(n *ast.UnaryOp, ctx *value.Context) (value.Value, error) {
	v, err := Interpret(n.Operand, ctx)
	if err != nil {
		return value.Value{}, err
	}
	if !v.IsConstant() {
		return value.Value{}, valueErr(ctx, n.Pos, "Cannot apply %s to a %s", n.Op, v.Kind())
	}
	switch n.Op {
	case ast.UnaryNot:
		if v.Kind() != value.KindBoolean {
			return value.Value{}, valueErr(ctx, n.Pos, "`!` requires a boolean, got %s", v.Kind())
		}
		return value.Bool(!v.Boolean()), nil
	case ast.UnaryMinus, ast.UnaryPlus:
		if !v.IsNumeric() {
			return value.Value{}, valueErr(ctx, n.Pos, "Unary %s requires a number, got %s", n.Op, v.Kind())
		}
		sign := 1.0
		if n.Op == ast.UnaryMinus {
			sign = -1.0
		}
		if v.Kind() == value.KindInteger {
			return value.Int(int64(sign) * v.Integer()), nil
		}
		return value.Flt(sign * v.Float()), nil
	default:
		return value.Value{}, fmt.Errorf("interp: unhandled unary operator %v", n.Op)
	}
}

func interpretBinaryOp(n *ast.BinaryOp, ctx *value.Context) (value.Value, error) {
	l, err := Interpret(n.Left, ctx)
	if err != nil {
		return value.Value{}, err
	}
	if !l.IsConstant() {
		return value.Value{}, valueErr(ctx, n.Pos, "Cannot use a %s in a compile-time expression", l.Kind())
	}
	r, err := Interpret(n.Right, ctx)
	if err != nil {
		return value.Value{}, err
	}
	if !r.IsConstant() {
		return value.Value{}, valueErr(ctx, n.Pos, "Cannot use a %s in a compile-time expression", r.Kind())
	}

	switch n.Op {
	case ast.BinAdd:
		if l.Kind() == value.KindString || r.Kind() == value.KindString {
			if l.Kind() != value.KindString || r.Kind() != value.KindString {
				return value.Value{}, valueErr(ctx, n.Pos, "Cannot add %s and %s", l.Kind(), r.Kind())
			}
			return value.Str(l.Str() + r.Str()), nil
		}
		return numericBinOp(ctx, n.Pos, l, r, func(a, b float64) float64 { return a + b })
	case ast.BinSub:
		return numericBinOp(ctx, n.Pos, l, r, func(a, b float64) float64 { return a - b })
	case ast.BinMult:
		return numericBinOp(ctx, n.Pos, l, r, func(a, b float64) float64 { return a * b })
	case ast.BinDiv:
		if r.IsNumeric() && r.AsFloat64() == 0 {
			return value.Value{}, valueErr(ctx, n.Pos, "Division by zero")
		}
		return numericBinOp(ctx, n.Pos, l, r, func(a, b float64) float64 { return a / b })
	case ast.BinLT, ast.BinGT, ast.BinLE, ast.BinGE:
		return numericCompare(ctx, n.Pos, n.Op, l, r)
	case ast.BinEQ:
		return value.Bool(valuesEqual(l, r)), nil
	case ast.BinNEQ:
		return value.Bool(!valuesEqual(l, r)), nil
	case ast.BinAnd:
		if l.Kind() != value.KindBoolean || r.Kind() != value.KindBoolean {
			return value.Value{}, valueErr(ctx, n.Pos, "`&&` requires booleans")
		}
		return value.Bool(l.Boolean() && r.Boolean()), nil
	case ast.BinOr:
		if l.Kind() != value.KindBoolean || r.Kind() != value.KindBoolean {
			return value.Value{}, valueErr(ctx, n.Pos, "`||` requires booleans")
		}
		return value.Bool(l.Boolean() || r.Boolean()), nil
	default:
		return value.Value{}, fmt.Errorf("interp: unhandled binary operator %v", n.Op)
	}
}

func numericBinOp(ctx *value.Context, pos ast.Position, l, r value.Value, f func(a, b float64) float64) (value.Value, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return value.Value{}, valueErr(ctx, pos, "Expected numbers, got %s and %s", l.Kind(), r.Kind())
	}
	result := f(l.AsFloat64(), r.AsFloat64())
	if l.Kind() == value.KindInteger && r.Kind() == value.KindInteger {
		return value.Int(int64(result)), nil
	}
	return value.Flt(result), nil
}

func numericCompare(ctx *value.Context, pos ast.Position, op ast.BinOpKind, l, r value.Value) (value.Value, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return value.Value{}, valueErr(ctx, pos, "Expected numbers, got %s and %s", l.Kind(), r.Kind())
	}
	a, b := l.AsFloat64(), r.AsFloat64()
	switch op {
	case ast.BinLT:
		return value.Bool(a < b), nil
	case ast.BinGT:
		return value.Bool(a > b), nil
	case ast.BinLE:
		return value.Bool(a <= b), nil
	default:
		return value.Bool(a >= b), nil
	}
}

func valuesEqual(l, r value.Value) bool {
	if l.IsNumeric() && r.IsNumeric() {
		return l.AsFloat64() == r.AsFloat64()
	}
	if l.Kind() != r.Kind() {
		return false
	}
	switch l.Kind() {
	case value.KindString:
		return l.Str() == r.Str()
	case value.KindBoolean:
		return l.Boolean() == r.Boolean()
	default:
		return false
	}
}

// interpretSelfOp lowers a compound assignment on a score to a single
// command. A score right-hand side gives a direct `scoreboard players
// operation`; a compile-time integer gives `scoreboard players
// add`/`remove` for `+=`/`-=`, while `*=`/`/=` by an integer is a
// ValueError.
func interpretSelfOp(n *ast.SelfOp, ctx *value.Context) (value.Value, error) {
	if !ctx.IsScore(n.Name) {
		return value.Value{}, nameErr(ctx, n.Pos, "Name %q is not a score", n.Name)
	}
	left, _ := ctx.GetScore(n.Name)

	rhs, err := Interpret(n.Value, ctx)
	if err != nil {
		return value.Value{}, err
	}

	op := map[ast.SelfOpKind]string{
		ast.SelfAdd: "+=", ast.SelfSub: "-=", ast.SelfMult: "*=", ast.SelfDiv: "/=",
	}[n.Op]

	switch rhs.Kind() {
	case value.KindScoreRef:
		right := rhs.ScoreRef()
		cmd := fmt.Sprintf("scoreboard players operation %s %s %s %s %s",
			left.Holder, left.Objective, op, right.Holder, right.Objective)
		return value.Command(cmd), nil
	case value.KindInteger:
		verb := map[ast.SelfOpKind]string{ast.SelfAdd: "add", ast.SelfSub: "remove"}[n.Op]
		if verb == "" {
			return value.Value{}, valueErr(ctx, n.Pos, "%s on score %q requires a score operand, got an integer", n.Op, n.Name)
		}
		return value.Command(fmt.Sprintf("scoreboard players %s %s %s %d", verb, left.Holder, left.Objective, rhs.Integer())), nil
	default:
		return value.Value{}, valueErr(ctx, n.Pos, "%s requires a score or an integer, got %s", n.Op, rhs.Kind())
	}
}

// interpretScoreOp lowers a direct score-to-score operation
// (`<< >> ><`) to `scoreboard players operation`, using the vanilla
// `<`/`>`/`><` sub-operations that take the lesser, the greater, or
// swap the two values.
func interpretScoreOp(n *ast.ScoreOp, ctx *value.Context) (value.Value, error) {
	if !ctx.IsScore(n.Left) {
		return value.Value{}, nameErr(ctx, n.Pos, "Name %q is not a score", n.Left)
	}
	if !ctx.IsScore(n.Right) {
		return value.Value{}, nameErr(ctx, n.Pos, "Name %q is not a score", n.Right)
	}
	left, _ := ctx.GetScore(n.Left)
	right, _ := ctx.GetScore(n.Right)

	op := map[ast.ScoreOpKind]string{
		ast.ScoreLeft: "<", ast.ScoreRight: ">", ast.ScoreSwap: "><",
	}[n.Op]

	cmd := fmt.Sprintf("scoreboard players operation %s %s %s %s %s",
		left.Holder, left.Objective, op, right.Holder, right.Objective)
	return value.Command(cmd), nil
}
