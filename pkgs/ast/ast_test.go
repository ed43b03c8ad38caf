package ast

import "testing"

func TestProgramStringJoinsStatements(t *testing.T) {
	p := &Program{
		Statements: []Node{
			&ScoreDecl{Name: "x", Objective: "obj", Pos: Position{Line: 1, Column: 1}},
			&McCmd{Text: "say hi;", Pos: Position{Line: 2, Column: 1}},
		},
	}
	want := "score x : obj\nsay hi;"
	if got := p.String(); got != want {
		t.Errorf("Program.String() = %q, want %q", got, want)
	}
}

func TestGroupStringRendersSpecsAndBody(t *testing.T) {
	g := &Group{
		Specs: []GroupSpec{
			{Keyword: "as", Arg: &String{Value: "@a"}},
		},
		Body: []Node{&McCmd{Text: "say hi;"}},
	}
	want := `as("@a") { say hi; }`
	if got := g.String(); got != want {
		t.Errorf("Group.String() = %q, want %q", got, want)
	}
}

func TestBinaryOpStringPrecedenceAgnostic(t *testing.T) {
	b := &BinaryOp{
		Op:    BinAdd,
		Left:  &Integer{Value: 1},
		Right: &BinaryOp{Op: BinMult, Left: &Integer{Value: 2}, Right: &Integer{Value: 3}},
	}
	want := "(1 + (2 * 3))"
	if got := b.String(); got != want {
		t.Errorf("BinaryOp.String() = %q, want %q", got, want)
	}
}

func TestSelfOpAndScoreOpStrings(t *testing.T) {
	self := &SelfOp{Name: "x", Op: SelfAdd, Value: &Integer{Value: 1}}
	if got, want := self.String(), "x += 1"; got != want {
		t.Errorf("SelfOp.String() = %q, want %q", got, want)
	}

	swap := &ScoreOp{Left: "x", Op: ScoreSwap, Right: "y"}
	if got, want := swap.String(), "x >< y"; got != want {
		t.Errorf("ScoreOp.String() = %q, want %q", got, want)
	}
}

func TestUnaryOpString(t *testing.T) {
	u := &UnaryOp{Op: UnaryNot, Operand: &Boolean{Value: true}}
	if got, want := u.String(), "(!true)"; got != want {
		t.Errorf("UnaryOp.String() = %q, want %q", got, want)
	}
}

func TestLiteralPositions(t *testing.T) {
	pos := Position{Line: 3, Column: 4}
	nodes := []Node{
		&Integer{Value: 1, Pos: pos},
		&Float{Value: 1.5, Pos: pos},
		&String{Value: "s", Pos: pos},
		&Boolean{Value: false, Pos: pos},
	}
	for _, n := range nodes {
		if n.Position() != pos {
			t.Errorf("%T.Position() = %+v, want %+v", n, n.Position(), pos)
		}
	}
}
