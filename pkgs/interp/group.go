package interp

import (
	"fmt"
	"strings"

	"github.com/malmosmo/msl/pkgs/ast"
	"github.com/malmosmo/msl/pkgs/value"
)

// interpretGroup lowers a `spec(...) spec(...) { ... }` block into an
// `execute ... run ...` command (or chain of commands, one per
// statement the body produces — `execute` only ever wraps a single
// trailing command).
func interpretGroup(n *ast.Group, ctx *value.Context) (value.Value, error) {
	fragments := make([]string, len(n.Specs))
	for i, spec := range n.Specs {
		frag, err := resolveSpec(spec, ctx)
		if err != nil {
			return value.Value{}, err
		}
		fragments[i] = frag
	}

	body, err := interpretStatements(n.Body, ctx)
	if err != nil {
		return value.Value{}, err
	}

	if len(fragments) == 0 {
		return body, nil
	}
	prefix := strings.Join(fragments, " ")

	var out []value.Value
	for _, cmd := range body.Commands() {
		switch cmd.Kind() {
		case value.KindCommand, value.KindExecuteCommand, value.KindComment, value.KindCommandList:
		default:
			return value.Value{}, runtimeErr(ctx, n.Pos, "group body did not evaluate to a command list: found a %s", cmd.Kind())
		}
		wrapped := wrapWithPrefix(prefix, cmd)
		if wrapped.Kind() == value.KindCommandList {
			out = append(out, wrapped.Commands()...)
		} else {
			out = append(out, wrapped)
		}
	}
	return value.List(out...), nil
}

// wrapWithPrefix distributes an execute prefix over a single command.
// A plain Command needs "execute <prefix> run <cmd>"; an
// ExecuteCommand already carries its own prefix and "run" tail, so the
// new prefix is simply spliced in front of it, composing the two
// execute chains into one. A Comment passes through unchanged, and a
// nested CommandList has the prefix distributed over its members. Any
// other kind is rejected with a RuntimeError by interpretGroup before
// it gets here; this function returns such a value unchanged.
func wrapWithPrefix(prefix string, cmd value.Value) value.Value {
	switch cmd.Kind() {
	case value.KindCommand:
		return value.ExecuteCmd(fmt.Sprintf("execute %s run %s", prefix, cmd.Render()))
	case value.KindExecuteCommand:
		return value.ExecuteCmd(fmt.Sprintf("execute %s %s", prefix, strings.TrimPrefix(cmd.Render(), "execute ")))
	case value.KindComment:
		return cmd
	case value.KindCommandList:
		nested := cmd.Commands()
		out := make([]value.Value, len(nested))
		for i, c := range nested {
			out[i] = wrapWithPrefix(prefix, c)
		}
		return value.List(out...)
	default:
		return cmd
	}
}

// resolveSpec renders one EXEC(...) qualifier into its execute-prefix
// fragment. Every keyword — including if/unless — takes a plain
// string literal and passes it through unchanged after the keyword,
// exactly like `as`/`at`: the caller writes the literal execute
// condition text themselves (e.g. `if("score x obj matches 1..")`),
// there is no score-comparison sub-language here.
func resolveSpec(spec ast.GroupSpec, ctx *value.Context) (string, error) {
	v, err := evalConst(spec.Arg, ctx)
	if err != nil {
		return "", err
	}
	if v.Kind() != value.KindString {
		return "", valueErr(ctx, spec.Pos, "%s(...) requires a string argument, got %s", spec.Keyword, v.Kind())
	}
	return fmt.Sprintf("%s %s", spec.Keyword, v.Str()), nil
}
