// Package compiler wires the pipeline together: preprocess, parse,
// interpret, emit. It is the single entry point both the CLI and
// tests call through.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/malmosmo/msl/pkgs/diagnostics"
	"github.com/malmosmo/msl/pkgs/emit"
	"github.com/malmosmo/msl/pkgs/interp"
	"github.com/malmosmo/msl/pkgs/parser"
	"github.com/malmosmo/msl/pkgs/preprocessor"
	"github.com/malmosmo/msl/pkgs/value"
)

// Options configures a Compile call. NoColor disables ANSI escapes in
// any returned diagnostic.
type Options struct {
	NoColor bool
	DstFile string // output path for the root file; defaults to srcFile with a .mcfunction extension
}

// Compile reads srcPath, runs it through the full pipeline, and
// returns every `.mcfunction` file the program produced — the root
// file plus one per declared `func`. The returned error is always
// either a *diagnostics.Diagnostic or a plain I/O error; Compile
// never panics on malformed input.
func Compile(srcPath string, opts Options) ([]emit.File, error) {
	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", srcPath, err)
	}

	dstFile := opts.DstFile
	if dstFile == "" {
		ext := filepath.Ext(srcPath)
		dstFile = srcPath[:len(srcPath)-len(ext)] + ".mcfunction"
	}

	src := preprocessor.Include(filepath.Dir(srcPath), string(raw))
	src = preprocessor.AddEndings(src)

	prog, err := parser.Parse(srcPath, src)
	if err != nil {
		return nil, withNoColor(err, opts.NoColor)
	}

	ctx := value.NewContext(srcPath, dstFile, src)
	root, err := interp.Interpret(prog, ctx)
	if err != nil {
		return nil, withNoColor(err, opts.NoColor)
	}

	return emit.Files(dstFile, root, ctx.Funcs()), nil
}

func withNoColor(err error, noColor bool) error {
	if !noColor {
		return err
	}
	if d, ok := err.(*diagnostics.Diagnostic); ok {
		d.NoColor = true
		return d
	}
	return err
}
