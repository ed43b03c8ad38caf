package value

import "fmt"

// Context is the lexical scope the interpreter threads through every
// call: the source/destination function file being emitted into, the
// variables and scores declared so far, and a pointer to the
// enclosing scope. A name is always either a compile-time variable or
// a scoreboard reference, never both — callers enforce that before
// inserting into either map.
type Context struct {
	SrcFile   string
	DstFile   string
	Src       string // full preprocessed source, for diagnostic rendering
	variables map[string]Value
	scores    map[string]ScoreRef
	parent    *Context

	// funcs is shared by every context descended from the same root:
	// function files are a global Minecraft namespace, not a lexical
	// one, so declarations register here regardless of which nested
	// group or block they appear in.
	funcs *map[string]Value
}

// NewContext creates a root context for compiling srcFile into
// dstFile from the given preprocessed source text.
func NewContext(srcFile, dstFile, src string) *Context {
	fns := make(map[string]Value)
	return &Context{
		SrcFile:   srcFile,
		DstFile:   dstFile,
		Src:       src,
		variables: make(map[string]Value),
		scores:    make(map[string]ScoreRef),
		funcs:     &fns,
	}
}

// Child creates a scope nested under ctx, inheriting its file and
// source but starting with empty variable/score maps of its own.
// Lookups fall through to ctx when a name isn't found locally.
func (ctx *Context) Child() *Context {
	return &Context{
		SrcFile:   ctx.SrcFile,
		DstFile:   ctx.DstFile,
		Src:       ctx.Src,
		variables: make(map[string]Value),
		scores:    make(map[string]ScoreRef),
		parent:    ctx,
		funcs:     ctx.funcs,
	}
}

// SetFunc registers a compiled function body under name, overwriting
// any previous declaration with the same name.
func (ctx *Context) SetFunc(name string, body Value) {
	(*ctx.funcs)[name] = body
}

// Funcs returns every function registered anywhere in this context
// tree, keyed by name.
func (ctx *Context) Funcs() map[string]Value {
	return *ctx.funcs
}

// IsVariable reports whether name resolves to a compile-time constant
// somewhere in the scope chain.
func (ctx *Context) IsVariable(name string) bool {
	for c := ctx; c != nil; c = c.parent {
		if _, ok := c.variables[name]; ok {
			return true
		}
	}
	return false
}

// IsScore reports whether name resolves to a scoreboard reference
// somewhere in the scope chain.
func (ctx *Context) IsScore(name string) bool {
	for c := ctx; c != nil; c = c.parent {
		if _, ok := c.scores[name]; ok {
			return true
		}
	}
	return false
}

// GetVariable looks up a compile-time constant through the scope
// chain.
func (ctx *Context) GetVariable(name string) (Value, bool) {
	for c := ctx; c != nil; c = c.parent {
		if v, ok := c.variables[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// GetScore looks up a scoreboard reference through the scope chain.
func (ctx *Context) GetScore(name string) (ScoreRef, bool) {
	for c := ctx; c != nil; c = c.parent {
		if s, ok := c.scores[name]; ok {
			return s, true
		}
	}
	return ScoreRef{}, false
}

// SetVariable binds name to a compile-time constant in the current
// scope. It panics if name is already a score in this exact scope —
// callers are expected to check IsScore/IsVariable first and turn the
// conflict into a NameError diagnostic instead.
func (ctx *Context) SetVariable(name string, v Value) {
	if _, ok := ctx.scores[name]; ok {
		panic(fmt.Sprintf("value: %q is already bound as a score in this scope", name))
	}
	ctx.variables[name] = v
}

// SetScore binds name to a scoreboard reference in the current scope.
func (ctx *Context) SetScore(name string, s ScoreRef) {
	if _, ok := ctx.variables[name]; ok {
		panic(fmt.Sprintf("value: %q is already bound as a variable in this scope", name))
	}
	ctx.scores[name] = s
}
