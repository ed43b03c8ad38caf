package interp

import (
	"testing"

	"github.com/malmosmo/msl/pkgs/parser"
	"github.com/malmosmo/msl/pkgs/preprocessor"
	"github.com/malmosmo/msl/pkgs/value"
)

func run(t *testing.T, src string) ([]value.Value, *value.Context) {
	t.Helper()
	processed := preprocessor.AddEndings(src)
	prog, err := parser.Parse("test.msl", processed)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	ctx := value.NewContext("test.msl", "test.mcfunction", processed)
	v, err := Interpret(prog, ctx)
	if err != nil {
		t.Fatalf("Interpret() error: %v", err)
	}
	return v.Commands(), ctx
}

func renders(cmds []value.Value) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Render()
	}
	return out
}

func TestLineCommentRendersWithHashPrefix(t *testing.T) {
	cmds, _ := run(t, "// hello world\n")
	want := "# hello world"
	if len(cmds) != 1 || cmds[0].Render() != want {
		t.Fatalf("got %v, want [%q]", renders(cmds), want)
	}
}

func TestBlockCommentRendersOneHashLinePerSourceLine(t *testing.T) {
	cmds, _ := run(t, "/*\nfirst\nsecond\n*/\n")
	want := "# first\n# second"
	if len(cmds) != 1 || cmds[0].Render() != want {
		t.Fatalf("got %v, want [%q]", renders(cmds), want)
	}
}

func TestSectionMarkerCommentIsLowercasedWithNoSpaceAfterHash(t *testing.T) {
	cmds, _ := run(t, "// > Movement Rules\n")
	want := "#> movement rules"
	if len(cmds) != 1 || cmds[0].Render() != want {
		t.Fatalf("got %v, want [%q]", renders(cmds), want)
	}
}

func TestScoreInitEmitsSetCommand(t *testing.T) {
	cmds, _ := run(t, "score x : obj = 5\n")
	want := "scoreboard players set x obj 5"
	if len(cmds) != 1 || cmds[0].Render() != want {
		t.Fatalf("got %v, want [%q]", renders(cmds), want)
	}
}

func TestScoreDeclEmitsNothing(t *testing.T) {
	cmds, _ := run(t, "score x : obj\n")
	if len(cmds) != 0 {
		t.Fatalf("want no emitted commands, got %v", renders(cmds))
	}
}

func TestVariableInterpolationInCommand(t *testing.T) {
	cmds, _ := run(t, "name = \"Steve\";\nsay hello $(name)\n")
	want := "say hello Steve"
	if len(cmds) != 1 || cmds[0].Render() != want {
		t.Fatalf("got %v, want [%q]", renders(cmds), want)
	}
}

func TestForUnrollsBody(t *testing.T) {
	cmds, _ := run(t, "for (i = 0; i < 3; i++) {\nsay hi\n}\n")
	if len(cmds) != 3 {
		t.Fatalf("want 3 unrolled commands, got %d: %v", len(cmds), renders(cmds))
	}
}

func TestForInterpolatesLoopVariable(t *testing.T) {
	cmds, _ := run(t, "for (i = 0; i < 3; i++) {\nsay $(i)\n}\n")
	want := []string{"say 0", "say 1", "say 2"}
	got := renders(cmds)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestForStepMutatesScoreAndCollectsCommand(t *testing.T) {
	cmds, _ := run(t, "score x : obj = 0\nfor (i = 0; i < 2; x++) {\nsay tick\ni++;\n}\n")
	want := []string{
		"scoreboard players set x obj 0",
		"say tick",
		"scoreboard players add x obj 1",
		"say tick",
		"scoreboard players add x obj 1",
	}
	got := renders(cmds)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestForLoopVariableSurvivesLoop(t *testing.T) {
	// i leaks into the enclosing scope after the loop: the original
	// compiler's ForNode.interpret shares one context across
	// decl/cond/body/step, with no child scope pushed.
	cmds, ctx := run(t, "for (i = 0; i < 2; i++) {\nsay hi\n}\nsay $(i)\n")
	want := []string{"say hi", "say hi", "say 2"}
	got := renders(cmds)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if v, ok := ctx.GetVariable("i"); !ok || v.Integer() != 2 {
		t.Fatalf("want i == 2 to survive the loop, got %#v, ok=%v", v, ok)
	}
}

func TestWhileUnrollsUntilConditionFalse(t *testing.T) {
	cmds, _ := run(t, "count = 0;\nwhile(count < 3) {\nsay tick\ncount = count + 1;\n}\n")
	if len(cmds) != 3 {
		t.Fatalf("want 3 unrolled commands, got %d: %v", len(cmds), renders(cmds))
	}
}

func TestWhileExceedingCapIsRuntimeError(t *testing.T) {
	_, err := New(t, "x = 1;\nwhile(x > 0) {\nsay spin\n}\n")
	if err == nil {
		t.Fatal("expected a RuntimeError for a non-terminating while")
	}
}

// New is a thin helper mirroring run() but surfacing the error instead
// of failing the test, for cases exercising compiler error paths.
func New(t *testing.T, src string) ([]value.Value, error) {
	t.Helper()
	processed := preprocessor.AddEndings(src)
	prog, err := parser.Parse("test.msl", processed)
	if err != nil {
		return nil, err
	}
	ctx := value.NewContext("test.msl", "test.mcfunction", processed)
	v, err := Interpret(prog, ctx)
	if err != nil {
		return nil, err
	}
	return v.Commands(), nil
}

func TestGroupWrapsBodyWithExecutePrefix(t *testing.T) {
	cmds, _ := run(t, `as("@a") {
say hi
}
`)
	want := `execute as @a run say hi`
	if len(cmds) != 1 || cmds[0].Render() != want {
		t.Fatalf("got %v, want [%q]", renders(cmds), want)
	}
}

func TestNestedGroupsComposeExecutePrefix(t *testing.T) {
	cmds, _ := run(t, `as("@a") {
at("@s") {
say hi
}
}
`)
	want := `execute as @a at @s run say hi`
	if len(cmds) != 1 || cmds[0].Render() != want {
		t.Fatalf("got %v, want [%q]", renders(cmds), want)
	}
}

func TestIfTakesAPlainStringConditionLikeEveryOtherGroupKeyword(t *testing.T) {
	cmds, _ := run(t, `if("entity @e[type=cow]") {
say big
}
`)
	want := `execute if entity @e[type=cow] run say big`
	if len(cmds) != 1 || cmds[0].Render() != want {
		t.Fatalf("got %v, want [%q]", renders(cmds), want)
	}
}

func TestUnlessTakesAPlainStringCondition(t *testing.T) {
	cmds, _ := run(t, `unless("entity @e[type=cow]") {
say none
}
`)
	want := `execute unless entity @e[type=cow] run say none`
	if len(cmds) != 1 || cmds[0].Render() != want {
		t.Fatalf("got %v, want [%q]", renders(cmds), want)
	}
}

func TestIfWithNonStringArgumentIsValueError(t *testing.T) {
	_, err := New(t, `if(1 > 2) {
say unreachable
}
`)
	if err == nil {
		t.Fatal("expected a ValueError: if(...) requires a string argument, not a score comparison")
	}
}

func TestSelfOpAgainstScoreEmitsOperation(t *testing.T) {
	cmds, _ := run(t, `score x : obj = 0
score y : obj = 1
x += y
`)
	want := "scoreboard players operation x obj += y obj"
	if cmds[len(cmds)-1].Render() != want {
		t.Fatalf("got %q, want %q", cmds[len(cmds)-1].Render(), want)
	}
}

func TestScoreSwapEmitsOperation(t *testing.T) {
	cmds, _ := run(t, `score x : obj = 0
score y : obj = 1
x >< y
`)
	want := "scoreboard players operation x obj >< y obj"
	if cmds[len(cmds)-1].Render() != want {
		t.Fatalf("got %q, want %q", cmds[len(cmds)-1].Render(), want)
	}
}

func TestIncrementOnVariableRebinds(t *testing.T) {
	cmds, ctx := run(t, "count = 0;\ncount++;\nsay $(count)\n")
	if len(cmds) != 1 || cmds[0].Render() != "say 1" {
		t.Fatalf("got %v, want [%q]", renders(cmds), "say 1")
	}
	if v, ok := ctx.GetVariable("count"); !ok || v.Integer() != 1 {
		t.Fatalf("want count == 1, got %#v, ok=%v", v, ok)
	}
}

func TestDecrementOnVariableRebinds(t *testing.T) {
	cmds, _ := run(t, "count = 5;\ncount--;\nsay $(count)\n")
	if len(cmds) != 1 || cmds[0].Render() != "say 4" {
		t.Fatalf("got %v, want [%q]", renders(cmds), "say 4")
	}
}

func TestIncrementOnScoreEmitsAdd(t *testing.T) {
	cmds, _ := run(t, "score x : obj = 0\nx++;\n")
	want := "scoreboard players add x obj 1"
	if cmds[len(cmds)-1].Render() != want {
		t.Fatalf("got %q, want %q", cmds[len(cmds)-1].Render(), want)
	}
}

func TestDecrementOnScoreEmitsRemove(t *testing.T) {
	cmds, _ := run(t, "score x : obj = 0\nx--;\n")
	want := "scoreboard players remove x obj 1"
	if cmds[len(cmds)-1].Render() != want {
		t.Fatalf("got %q, want %q", cmds[len(cmds)-1].Render(), want)
	}
}

func TestIncrementOnUndefinedNameIsNameError(t *testing.T) {
	_, err := New(t, "missing++;\n")
	if err == nil {
		t.Fatal("expected a NameError for incrementing an undefined name")
	}
}

func TestAssignIntegerToExistingScoreEmitsSet(t *testing.T) {
	cmds, _ := run(t, "score x : obj = 5\nx = 10;\n")
	want := "scoreboard players set x obj 10"
	if cmds[len(cmds)-1].Render() != want {
		t.Fatalf("got %q, want %q", cmds[len(cmds)-1].Render(), want)
	}
}

func TestAssignScoreToExistingScoreEmitsOperation(t *testing.T) {
	cmds, _ := run(t, "score x : obj = 5\nscore y : obj = 1\nx = y;\n")
	want := "scoreboard players operation x obj = y obj"
	if cmds[len(cmds)-1].Render() != want {
		t.Fatalf("got %q, want %q", cmds[len(cmds)-1].Render(), want)
	}
}

func TestAssignStringToExistingScoreIsValueError(t *testing.T) {
	_, err := New(t, `score x : obj = 5
x = "nope";
`)
	if err == nil {
		t.Fatal("expected a ValueError assigning a string to a score")
	}
}

func TestDuplicateDeclarationIsNameError(t *testing.T) {
	_, err := New(t, "score x : obj = 1\nscore x : obj = 2\n")
	if err == nil {
		t.Fatal("expected a NameError for redeclaring x")
	}
}

func TestFuncRegistersBodyWithoutEmittingInline(t *testing.T) {
	cmds, ctx := run(t, `func greet {
say hi
}
say after
`)
	if len(cmds) != 1 || cmds[0].Render() != "say after" {
		t.Fatalf("func body should not emit inline, got %v", renders(cmds))
	}
	body, ok := ctx.Funcs()["greet"]
	if !ok || len(body.Commands()) != 1 || body.Commands()[0].Render() != "say hi" {
		t.Fatalf("expected registered function body with 'say hi', got %#v", body)
	}
}
